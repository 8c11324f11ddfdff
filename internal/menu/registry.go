package menu

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrHandlerNotFound is returned by Invoke for names that were never registered.
var ErrHandlerNotFound = errors.New("handler not found")

// Action is a side-effecting callback bound to a handler name.
type Action func()

// Registry maps handler names to actions. Every registered action is wrapped
// so that running it is followed by a close request on the bound controller.
//
// A Registry serves one controller. Binding a second controller moves close
// requests to it; the first no longer closes after its actions run.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]Action
	closer  func()
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		actions: make(map[string]Action),
	}
}

// Register binds name to fn, replacing any previous binding.
func (r *Registry) Register(name string, fn Action) {
	if fn == nil {
		return
	}

	wrapped := func() {
		fn()
		r.mu.RLock()
		closer := r.closer
		r.mu.RUnlock()
		if closer != nil {
			closer()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[name] = wrapped
}

// Unregister removes the binding for name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.actions, name)
}

// Has reports whether name is bound.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.actions[name]
	return ok
}

// Names returns the bound handler names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the action bound to name. The lock is not held while the
// action runs, so actions may register further handlers.
func (r *Registry) Invoke(name string) error {
	r.mu.RLock()
	fn, ok := r.actions[name]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrHandlerNotFound, name)
	}

	fn()
	return nil
}

// bindCloser sets the close request run after each action and reports
// whether it replaced an earlier one.
func (r *Registry) bindCloser(fn func()) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rebound := r.closer != nil
	r.closer = fn
	return rebound
}
