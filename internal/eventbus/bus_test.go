package eventbus

import (
	"bytes"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus() *Bus {
	return New(log.New(io.Discard))
}

func TestBus_EmitInRegistrationOrder(t *testing.T) {
	bus := newTestBus()

	var order []string
	bus.On("push", func(data any) error {
		order = append(order, fmt.Sprintf("h1:%v", data))
		return nil
	})
	bus.On("push", func(data any) error {
		order = append(order, fmt.Sprintf("h2:%v", data))
		return nil
	})

	bus.Emit("push", "payload")
	assert.Equal(t, []string{"h1:payload", "h2:payload"}, order)
}

func TestBus_OffRemovesHandler(t *testing.T) {
	bus := newTestBus()

	var calls []string
	h1 := func(data any) error { calls = append(calls, "h1"); return nil }
	h2 := func(data any) error { calls = append(calls, "h2"); return nil }

	bus.On("push", h1)
	bus.On("push", h2)
	bus.Emit("push", "payload")
	require.Equal(t, []string{"h1", "h2"}, calls)

	bus.Off("push", h1)
	calls = nil
	bus.Emit("push", "payload2")
	assert.Equal(t, []string{"h2"}, calls)

	bus.Off("push", h2)
	assert.Equal(t, 0, bus.ListenerCount("push"))
}

func TestBus_DistinctClosuresFromOneLiteral(t *testing.T) {
	bus := newTestBus()

	// Two closures minted by the same literal are different handlers and
	// must both register, fire, and unsubscribe independently.
	var calls []string
	handlerFor := func(id string) func(data any) error {
		return func(data any) error {
			calls = append(calls, id)
			return nil
		}
	}
	h1 := handlerFor("h1")
	h2 := handlerFor("h2")

	bus.On("tick", h1)
	bus.On("tick", h2)
	require.Equal(t, 2, bus.ListenerCount("tick"))

	bus.Emit("tick", nil)
	assert.Equal(t, []string{"h1", "h2"}, calls)

	bus.Off("tick", h1)
	calls = nil
	bus.Emit("tick", nil)
	assert.Equal(t, []string{"h2"}, calls, "Off removes exactly the handler it was given")
}

func TestBus_DuplicateRegistrationIsNoOp(t *testing.T) {
	bus := newTestBus()

	calls := 0
	h := func(data any) error { calls++; return nil }

	bus.On("sync", h)
	bus.On("sync", h)
	assert.Equal(t, 1, bus.ListenerCount("sync"))

	bus.Emit("sync", nil)
	assert.Equal(t, 1, calls)
}

func TestBus_HandlerIsolation(t *testing.T) {
	var buf bytes.Buffer
	bus := New(log.New(&buf))

	var reached bool
	bus.On("sync", func(data any) error {
		panic("handler exploded")
	})
	bus.On("sync", func(data any) error {
		return fmt.Errorf("handler errored")
	})
	bus.On("sync", func(data any) error {
		reached = true
		return nil
	})

	// Neither the panic nor the error escapes Emit or stops later handlers.
	assert.NotPanics(t, func() { bus.Emit("sync", nil) })
	assert.True(t, reached)

	logged := buf.String()
	assert.Contains(t, logged, "sync", "failures are tagged with the event name")
	assert.Contains(t, logged, "handler exploded")
	assert.Contains(t, logged, "handler errored")
}

func TestBus_OnceFiresAtMostOnce(t *testing.T) {
	bus := newTestBus()

	calls := 0
	bus.Once("auth", func(data any) error { calls++; return nil })
	require.Equal(t, 1, bus.ListenerCount("auth"))

	bus.Emit("auth", nil)
	bus.Emit("auth", nil)
	bus.Emit("auth", nil)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.ListenerCount("auth"), "once handlers remove themselves")
}

func TestBus_OnceRemovedBeforeInvocation(t *testing.T) {
	bus := newTestBus()

	// Re-emitting from inside a once handler must not recurse.
	calls := 0
	var handler func(data any) error
	handler = func(data any) error {
		calls++
		bus.Emit("loop", nil)
		return nil
	}
	bus.Once("loop", handler)

	bus.Emit("loop", nil)
	assert.Equal(t, 1, calls)
}

func TestBus_AsyncHandlerNotAwaited(t *testing.T) {
	var buf bytes.Buffer
	bus := New(log.New(&buf))

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	bus.OnAsync("fetch", func(data any) error {
		close(started)
		<-release
		close(done)
		return fmt.Errorf("late failure")
	})

	bus.Emit("fetch", nil)

	// Emit returned while the handler is still blocked.
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("async handler never started")
	}
	close(release)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("async handler never finished")
	}

	// The eventual failure is logged out of band.
	assert.Eventually(t, func() bool {
		return bytes.Contains(buf.Bytes(), []byte("late failure"))
	}, time.Second, 10*time.Millisecond)
}

func TestBus_Clear(t *testing.T) {
	bus := newTestBus()

	bus.On("a", func(data any) error { return nil })
	bus.On("b", func(data any) error { return nil })
	bus.On("c", func(data any) error { return nil })

	bus.Clear("a")
	assert.Equal(t, 0, bus.ListenerCount("a"))
	assert.Equal(t, 1, bus.ListenerCount("b"))

	bus.Clear()
	assert.Equal(t, 0, bus.ListenerCount("b"))
	assert.Equal(t, 0, bus.ListenerCount("c"))

	// Clearing an empty bus is fine.
	bus.Clear("never-registered")
}

func TestBus_EmitWithoutSubscribers(t *testing.T) {
	bus := newTestBus()
	assert.NotPanics(t, func() { bus.Emit("nothing", "data") })
}

func TestBus_NilHandlerIgnored(t *testing.T) {
	bus := newTestBus()
	bus.On("x", nil)
	bus.Once("x", nil)
	bus.OnAsync("x", nil)
	assert.Equal(t, 0, bus.ListenerCount("x"))
}
