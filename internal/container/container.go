// Package container implements neo's dependency-injection container: a
// token→provider registry with singleton/transient lifetimes and child
// scopes that fall back to their parent for unresolved tokens.
package container

import (
	"fmt"
	"sync"
)

// Token is the identity under which a dependency is registered. Any
// comparable value works; the runtime uses strings for its core services and
// typed keys for internal wiring.
type Token any

// Lifetime controls whether a resolved value is cached.
type Lifetime string

const (
	// Singleton caches the built value; at most one instance exists per
	// container per token.
	Singleton Lifetime = "singleton"

	// Transient never caches; every Resolve re-invokes the provider.
	Transient Lifetime = "transient"
)

// Constructor builds a value, resolving its own dependencies from the
// container it is registered in. It is the Go rendition of a constructible
// class provider.
type Constructor func(c *Container) (any, error)

// Factory builds a value with no access to the container.
type Factory func() (any, error)

// Provider describes how to produce a value for a token. Exactly one field
// is set; Register rejects ambiguous or empty providers.
type Provider struct {
	// Value is returned as-is on every resolve.
	Value any

	// Construct is invoked with the owning container.
	Construct Constructor

	// Produce is invoked with no arguments.
	Produce Factory

	// AliasFor resolves another token in this container.
	AliasFor Token

	kind providerKind
}

type providerKind int

const (
	kindUnset providerKind = iota
	kindValue
	kindConstructor
	kindFactory
	kindAlias
)

func (p *Provider) resolveKind() (providerKind, error) {
	set := 0
	kind := kindUnset
	if p.Value != nil {
		set++
		kind = kindValue
	}
	if p.Construct != nil {
		set++
		kind = kindConstructor
	}
	if p.Produce != nil {
		set++
		kind = kindFactory
	}
	if p.AliasFor != nil {
		set++
		kind = kindAlias
	}
	if set == 0 {
		return kindUnset, fmt.Errorf("provider must set one of Value, Construct, Produce, AliasFor")
	}
	if set > 1 {
		return kindUnset, fmt.Errorf("provider must set exactly one strategy, got %d", set)
	}
	return kind, nil
}

type registration struct {
	provider Provider
	lifetime Lifetime
}

// Container is a registry of registrations plus a cache of constructed
// singleton instances. A scope is a child container whose lookups fall back
// to the parent; registering in a scope never mutates the parent.
type Container struct {
	mu            sync.RWMutex
	registrations map[Token]*registration
	instances     map[Token]any
	parent        *Container
}

// New creates an empty root container.
func New() *Container {
	return &Container{
		registrations: make(map[Token]*registration),
		instances:     make(map[Token]any),
	}
}

// Register stores or replaces the binding for token. Replacing a binding
// evicts any cached singleton instance for that token so the next Resolve
// reflects the new provider.
func (c *Container) Register(token Token, provider Provider, lifetime Lifetime) error {
	if token == nil {
		return fmt.Errorf("container: token cannot be nil")
	}
	kind, err := provider.resolveKind()
	if err != nil {
		return fmt.Errorf("container: register %v: %w", token, err)
	}
	provider.kind = kind

	if lifetime != Singleton && lifetime != Transient {
		return fmt.Errorf("container: register %v: unknown lifetime %q", token, lifetime)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.registrations[token] = &registration{provider: provider, lifetime: lifetime}
	delete(c.instances, token)
	return nil
}

// RegisterValue binds token to a fixed value (singleton by construction).
func (c *Container) RegisterValue(token Token, value any) error {
	return c.Register(token, Provider{Value: value}, Singleton)
}

// RegisterConstructor binds token to a constructor with the given lifetime.
func (c *Container) RegisterConstructor(token Token, ctor Constructor, lifetime Lifetime) error {
	return c.Register(token, Provider{Construct: ctor}, lifetime)
}

// RegisterFactory binds token to a factory with the given lifetime.
func (c *Container) RegisterFactory(token Token, factory Factory, lifetime Lifetime) error {
	return c.Register(token, Provider{Produce: factory}, lifetime)
}

// RegisterAlias binds token to resolve whatever target resolves to.
func (c *Container) RegisterAlias(token Token, target Token) error {
	return c.Register(token, Provider{AliasFor: target}, Singleton)
}

// Resolve returns the value for token. Singletons are built at most once per
// container; transients re-invoke their provider on every call. An unknown
// token (here and in every ancestor scope) is a programming error and
// returns a plain error rather than a Result.
func (c *Container) Resolve(token Token) (any, error) {
	return c.resolve(token, nil)
}

// resolve carries the set of tokens already traversed through alias
// providers, so an alias cycle fails with an error instead of recursing
// without bound.
func (c *Container) resolve(token Token, seen map[Token]bool) (any, error) {
	if seen[token] {
		return nil, fmt.Errorf("container: alias cycle detected at token %v", token)
	}

	c.mu.RLock()
	reg, ok := c.registrations[token]
	if ok && reg.lifetime == Singleton {
		if cached, hit := c.instances[token]; hit {
			c.mu.RUnlock()
			return cached, nil
		}
	}
	c.mu.RUnlock()

	if !ok {
		if c.parent != nil {
			return c.parent.resolve(token, seen)
		}
		return nil, fmt.Errorf("container: no provider registered for token %v", token)
	}

	value, err := c.build(reg.provider, token, seen)
	if err != nil {
		return nil, fmt.Errorf("container: resolving token %v: %w", token, err)
	}

	if reg.lifetime == Singleton {
		c.mu.Lock()
		// Re-registration may have replaced the binding while we were
		// building; only cache for the registration we resolved.
		if current, still := c.registrations[token]; still && current == reg {
			c.instances[token] = value
		}
		c.mu.Unlock()
	}

	return value, nil
}

func (c *Container) build(p Provider, token Token, seen map[Token]bool) (any, error) {
	switch p.kind {
	case kindValue:
		return p.Value, nil
	case kindConstructor:
		return p.Construct(c)
	case kindFactory:
		return p.Produce()
	case kindAlias:
		if seen == nil {
			seen = make(map[Token]bool)
		}
		seen[token] = true
		return c.resolve(p.AliasFor, seen)
	default:
		return nil, fmt.Errorf("invalid provider")
	}
}

// MustResolve is Resolve for wiring paths where a missing token means the
// process was assembled wrong. It panics on error.
func (c *Container) MustResolve(token Token) any {
	v, err := c.Resolve(token)
	if err != nil {
		panic(err)
	}
	return v
}

// Has reports whether token is resolvable by this container or an ancestor.
func (c *Container) Has(token Token) bool {
	c.mu.RLock()
	_, ok := c.registrations[token]
	c.mu.RUnlock()
	if ok {
		return true
	}
	if c.parent != nil {
		return c.parent.Has(token)
	}
	return false
}

// CreateScope returns a child container. The child resolves its own
// registrations first and falls back to this container for the rest;
// registrations made on the child never affect this container.
func (c *Container) CreateScope() *Container {
	scope := New()
	scope.parent = c
	return scope
}

// Clear empties registrations and the singleton cache for this container
// only; ancestors are untouched.
func (c *Container) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registrations = make(map[Token]*registration)
	c.instances = make(map[Token]any)
}

// Size reports the number of registrations held directly by this container.
func (c *Container) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.registrations)
}

// ResolveAs resolves token and type-asserts the value to T.
func ResolveAs[T any](c *Container, token Token) (T, error) {
	var zero T
	v, err := c.Resolve(token)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("container: token %v resolved to %T, want %T", token, v, zero)
	}
	return typed, nil
}
