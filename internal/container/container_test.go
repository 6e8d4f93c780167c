package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	count int
}

func TestContainer_RegisterValue(t *testing.T) {
	c := New()

	err := c.RegisterValue("config", map[string]bool{"debug": true})
	require.NoError(t, err)

	v, err := c.Resolve("config")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"debug": true}, v)
}

func TestContainer_SingletonIdentity(t *testing.T) {
	c := New()

	built := 0
	err := c.RegisterConstructor("counter", func(_ *Container) (any, error) {
		built++
		return &counter{}, nil
	}, Singleton)
	require.NoError(t, err)

	a, err := c.Resolve("counter")
	require.NoError(t, err)
	a.(*counter).count = 5

	b, err := c.Resolve("counter")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 5, b.(*counter).count)
	assert.Equal(t, 1, built, "singleton constructor runs at most once per container")
}

func TestContainer_TransientFactory(t *testing.T) {
	c := New()

	n := 0
	err := c.RegisterFactory("rand", func() (any, error) {
		n++
		return n, nil
	}, Transient)
	require.NoError(t, err)

	for want := 1; want <= 3; want++ {
		v, err := c.Resolve("rand")
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}
	assert.Equal(t, 3, n, "transient factory runs once per resolve")
}

func TestContainer_UnknownToken(t *testing.T) {
	c := New()

	_, err := c.Resolve("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no provider registered")

	scope := c.CreateScope()
	_, err = scope.Resolve("missing")
	require.Error(t, err, "unknown in scope and every ancestor")
}

func TestContainer_ScopeFallbackAndShadowing(t *testing.T) {
	parent := New()
	require.NoError(t, parent.RegisterValue("value", "parent"))

	scope := parent.CreateScope()

	// Fallback: the scope resolves tokens registered only on the parent.
	v, err := scope.Resolve("value")
	require.NoError(t, err)
	assert.Equal(t, "parent", v)
	assert.True(t, scope.Has("value"))

	// Shadowing: registering in the scope never affects the parent.
	require.NoError(t, scope.RegisterValue("value", "child"))

	v, err = scope.Resolve("value")
	require.NoError(t, err)
	assert.Equal(t, "child", v)

	v, err = parent.Resolve("value")
	require.NoError(t, err)
	assert.Equal(t, "parent", v)
}

func TestContainer_ReRegistrationEvictsSingleton(t *testing.T) {
	c := New()

	require.NoError(t, c.RegisterFactory("svc", func() (any, error) {
		return "first", nil
	}, Singleton))

	v, err := c.Resolve("svc")
	require.NoError(t, err)
	assert.Equal(t, "first", v)

	require.NoError(t, c.RegisterFactory("svc", func() (any, error) {
		return "second", nil
	}, Singleton))

	v, err = c.Resolve("svc")
	require.NoError(t, err)
	assert.Equal(t, "second", v, "next resolve reflects the new provider")
}

func TestContainer_Alias(t *testing.T) {
	c := New()

	require.NoError(t, c.RegisterValue("primary", 42))
	require.NoError(t, c.RegisterAlias("alias", "primary"))

	v, err := c.Resolve("alias")
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestContainer_AliasCycle(t *testing.T) {
	c := New()

	require.NoError(t, c.RegisterAlias("self", "self"))
	_, err := c.Resolve("self")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alias cycle")

	require.NoError(t, c.RegisterAlias("a", "b"))
	require.NoError(t, c.RegisterAlias("b", "a"))
	_, err = c.Resolve("a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alias cycle")

	// An alias chain ending at a real provider still resolves.
	require.NoError(t, c.RegisterValue("real", 7))
	require.NoError(t, c.RegisterAlias("hop", "real"))
	require.NoError(t, c.RegisterAlias("hop2", "hop"))
	v, err := c.Resolve("hop2")
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestContainer_Clear(t *testing.T) {
	parent := New()
	require.NoError(t, parent.RegisterValue("kept", 1))

	scope := parent.CreateScope()
	require.NoError(t, scope.RegisterValue("dropped", 2))

	scope.Clear()

	assert.Equal(t, 0, scope.Size())
	// Clear empties this container only; parent fallback still works.
	v, err := scope.Resolve("kept")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestContainer_InvalidRegistrations(t *testing.T) {
	c := New()

	assert.Error(t, c.Register(nil, Provider{Value: 1}, Singleton))
	assert.Error(t, c.Register("empty", Provider{}, Singleton))
	assert.Error(t, c.Register("both", Provider{Value: 1, AliasFor: "x"}, Singleton))
	assert.Error(t, c.Register("badlife", Provider{Value: 1}, Lifetime("forever")))
}

func TestContainer_TypeTokens(t *testing.T) {
	type dbKey struct{}
	c := New()

	require.NoError(t, c.RegisterValue(dbKey{}, "connection"))
	assert.True(t, c.Has(dbKey{}))

	v, err := ResolveAs[string](c, dbKey{})
	require.NoError(t, err)
	assert.Equal(t, "connection", v)

	_, err = ResolveAs[int](c, dbKey{})
	assert.Error(t, err, "wrong type assertion surfaces as an error")
}
