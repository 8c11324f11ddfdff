package app

import (
	"sync"

	"github.com/ayusman/mefu/internal/layout"
)

// Window fans primary clicks out to the listeners the controller attaches
// while a menu is shown. It implements menu.Window.
type Window struct {
	mu        sync.Mutex
	next      int
	listeners map[int]func(layout.Point)
	order     []int
}

// NewWindow creates a window with no listeners.
func NewWindow() *Window {
	return &Window{listeners: make(map[int]func(layout.Point))}
}

// ListenPrimaryClicks registers fn and returns its detach function.
// Detaching twice is a no-op.
func (w *Window) ListenPrimaryClicks(fn func(pos layout.Point)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.next
	w.next++
	w.listeners[id] = fn
	w.order = append(w.order, id)

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if _, ok := w.listeners[id]; !ok {
			return
		}
		delete(w.listeners, id)
		for i, v := range w.order {
			if v == id {
				w.order = append(w.order[:i], w.order[i+1:]...)
				break
			}
		}
	}
}

// Listeners returns the number of attached listeners.
func (w *Window) Listeners() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.listeners)
}

// dispatch calls every listener registered before the click, in order.
// Listeners may detach themselves or others while running.
func (w *Window) dispatch(pos layout.Point) {
	w.mu.Lock()
	fns := make([]func(layout.Point), 0, len(w.order))
	for _, id := range w.order {
		fns = append(fns, w.listeners[id])
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn(pos)
	}
}
