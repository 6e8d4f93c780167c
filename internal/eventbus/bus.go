// Package eventbus implements neo's in-process publish/subscribe channel.
//
// Handlers originate from independently authored plugins, so handler
// isolation is the one correctness property that matters: a handler that
// fails or panics is logged, tagged with the event name, and never prevents
// the remaining handlers from running or the error from escaping Emit.
package eventbus

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/charmbracelet/log"

	"neo/pkg/neotypes"
)

// entry is one registered handler. Handler identity (for set semantics and
// Off) is the originally registered function value, so a Once or async
// wrapper still removes cleanly.
type entry struct {
	key     uintptr
	handler neotypes.EventHandler
	async   bool
	once    bool
}

// Bus is the shared event bus, one instance per process. All mutation is
// guarded by a mutex so fire-and-forget async delivery stays safe.
type Bus struct {
	mu       sync.Mutex
	handlers map[string][]*entry
	logger   *log.Logger
}

// New creates an event bus that reports handler failures to logger.
func New(logger *log.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]*entry),
		logger:   logger,
	}
}

// handlerKey derives the identity of a handler function value. The first
// word of a func value is the pointer to its closure allocation, so two
// distinct closures built from the same function literal get distinct keys,
// while re-registering the same value compares equal. The closure stays
// reachable through the entry for as long as the key is held.
// reflect.Value.Pointer is not usable here: it returns the shared code
// pointer.
func handlerKey(h neotypes.EventHandler) uintptr {
	return uintptr(*(*unsafe.Pointer)(unsafe.Pointer(&h)))
}

func (b *Bus) add(event string, e *entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.handlers[event] {
		if existing.key == e.key {
			return // set semantics: same handler registered twice is a no-op
		}
	}
	b.handlers[event] = append(b.handlers[event], e)
}

// On registers a synchronous handler for event. Registering the same
// function twice for one event is a no-op.
func (b *Bus) On(event string, handler neotypes.EventHandler) {
	if handler == nil {
		return
	}
	b.add(event, &entry{key: handlerKey(handler), handler: handler})
}

// OnAsync registers a fire-and-forget handler: Emit invokes it on its own
// goroutine without waiting, and its eventual failure is logged after Emit
// has returned.
func (b *Bus) OnAsync(event string, handler neotypes.EventHandler) {
	if handler == nil {
		return
	}
	b.add(event, &entry{key: handlerKey(handler), handler: handler, async: true})
}

// Once registers a handler that is removed before its first invocation,
// guaranteeing at most one call across repeated emits.
func (b *Bus) Once(event string, handler neotypes.EventHandler) {
	if handler == nil {
		return
	}
	b.add(event, &entry{key: handlerKey(handler), handler: handler, once: true})
}

// Off removes a previously registered handler. The event's entry is dropped
// entirely once its last handler is removed.
func (b *Bus) Off(event string, handler neotypes.EventHandler) {
	if handler == nil {
		return
	}
	key := handlerKey(handler)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(event, key)
}

func (b *Bus) removeLocked(event string, key uintptr) {
	entries := b.handlers[event]
	for i, e := range entries {
		if e.key == key {
			entries = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	if len(entries) == 0 {
		delete(b.handlers, event)
	} else {
		b.handlers[event] = entries
	}
}

// Emit invokes every handler currently registered for event in registration
// order, passing data (nil when the publisher has none). Synchronous
// handlers run inside the call; async handlers are started and not awaited.
// A handler that returns an error or panics is logged and isolated.
func (b *Bus) Emit(event string, data any) {
	b.mu.Lock()
	entries := b.handlers[event]
	snapshot := make([]*entry, len(entries))
	copy(snapshot, entries)
	// Once handlers self-unsubscribe before invocation.
	for _, e := range snapshot {
		if e.once {
			b.removeLocked(event, e.key)
		}
	}
	b.mu.Unlock()

	for _, e := range snapshot {
		if e.async {
			go b.invoke(event, e.handler, data)
			continue
		}
		b.invoke(event, e.handler, data)
	}
}

// invoke runs one handler with panic recovery, logging failures tagged with
// the event name.
func (b *Bus) invoke(event string, handler neotypes.EventHandler, data any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked", "event", event, "error", fmt.Sprintf("%v", r))
		}
	}()
	if err := handler(data); err != nil {
		b.logger.Error("Event handler failed", "event", event, "error", err)
	}
}

// Clear removes all handlers for the named events, or every handler when
// called with no arguments. Idempotent.
func (b *Bus) Clear(events ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(events) == 0 {
		b.handlers = make(map[string][]*entry)
		return
	}
	for _, event := range events {
		delete(b.handlers, event)
	}
}

// ListenerCount reports the number of live handlers for event.
func (b *Bus) ListenerCount(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[event])
}
