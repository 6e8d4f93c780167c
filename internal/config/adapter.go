package config

import (
	"fmt"
	"strings"
	"sync"

	"neo/pkg/neoerrors"
)

// Adapter wraps a Store with dot-separated path access and dirty tracking.
// It is the Config surface handed to plugins through the plugin context.
//
// Get/Set/Has/Delete operate on an in-memory cache. The cache is primed by
// an out-of-band Load issued at context-creation time; callers needing a
// guaranteed-fresh value must call Load explicitly.
type Adapter struct {
	mu    sync.RWMutex
	store Store
	cache map[string]any
	dirty bool
}

// NewAdapter creates an adapter over store with an empty cache.
func NewAdapter(store Store) *Adapter {
	return &Adapter{
		store: store,
		cache: make(map[string]any),
	}
}

// Get returns the value at a dot-separated path and whether it exists.
func (a *Adapter) Get(path string) (any, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	parent, leaf, ok := walk(a.cache, path, false)
	if !ok {
		return nil, false
	}
	value, exists := parent[leaf]
	return value, exists
}

// GetString returns the string value at path, or "" if absent or not a
// string.
func (a *Adapter) GetString(path string) string {
	v, ok := a.Get(path)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Set stores value at a dot-separated path, creating intermediate maps as
// needed, and marks the adapter dirty.
func (a *Adapter) Set(path string, value any) {
	a.mu.Lock()
	defer a.mu.Unlock()

	parent, leaf, _ := walk(a.cache, path, true)
	parent[leaf] = value
	a.dirty = true
}

// Has reports whether a value exists at path.
func (a *Adapter) Has(path string) bool {
	_, ok := a.Get(path)
	return ok
}

// Delete removes the value at path. Deleting an absent path is a no-op and
// does not mark the adapter dirty.
func (a *Adapter) Delete(path string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	parent, leaf, ok := walk(a.cache, path, false)
	if !ok {
		return
	}
	if _, exists := parent[leaf]; !exists {
		return
	}
	delete(parent, leaf)
	a.dirty = true
}

// IsDirty reports whether the cache has unsaved changes.
func (a *Adapter) IsDirty() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.dirty
}

// Load replaces the cache with the persisted configuration and clears the
// dirty flag. Unsaved changes are discarded.
func (a *Adapter) Load() neoerrors.Result[map[string]any] {
	cfg, err := a.store.Read()
	if err != nil {
		return neoerrors.Fail[map[string]any](
			neoerrors.NewConfigurationError("", fmt.Sprintf("failed to load configuration: %v", err)).WithCause(err))
	}

	a.mu.Lock()
	a.cache = cfg
	a.dirty = false
	a.mu.Unlock()

	return neoerrors.Ok(cfg)
}

// Save persists the cache and clears the dirty flag.
func (a *Adapter) Save() neoerrors.Result[neoerrors.Unit] {
	a.mu.RLock()
	snapshot := a.cache
	a.mu.RUnlock()

	if err := a.store.Write(snapshot); err != nil {
		return neoerrors.Fail[neoerrors.Unit](
			neoerrors.NewFileSystemError(a.store.Path(), neoerrors.FileOpWrite,
				fmt.Sprintf("failed to save configuration: %v", err)).WithCause(err))
	}

	a.mu.Lock()
	a.dirty = false
	a.mu.Unlock()

	return neoerrors.OkUnit()
}

// Snapshot returns a shallow copy of the top-level cache, for listings.
func (a *Adapter) Snapshot() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make(map[string]any, len(a.cache))
	for k, v := range a.cache {
		out[k] = v
	}
	return out
}

// walk descends the nested map along the dot-separated path and returns the
// parent map of the final segment. With create set, missing or non-map
// intermediate nodes are replaced by fresh maps; otherwise walk reports
// failure.
func walk(root map[string]any, path string, create bool) (parent map[string]any, leaf string, ok bool) {
	segments := strings.Split(path, ".")
	current := root
	for _, segment := range segments[:len(segments)-1] {
		next, exists := current[segment]
		if !exists {
			if !create {
				return nil, "", false
			}
			child := make(map[string]any)
			current[segment] = child
			current = child
			continue
		}
		child, isMap := next.(map[string]any)
		if !isMap {
			if !create {
				return nil, "", false
			}
			child = make(map[string]any)
			current[segment] = child
		}
		current = child
	}
	return current, segments[len(segments)-1], true
}
