// Package tray provides the system tray: gesture-mode toggle, open menu,
// last activation and quit.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mefu/internal/menu"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onOpen   func()
	onQuit   func()
	enabled  bool
	last     string
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuLast   *systray.MenuItem
}

// New creates a new Tray with gesture mode in the given state.
func New(gestureEnabled bool) *Tray {
	return &Tray{
		enabled: gestureEnabled,
	}
}

// OnToggle sets the callback run when gesture mode is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpen sets the callback run when "Open Menu" is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback run when "Quit" is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray. It blocks until systray.Quit is called and
// must run on the main goroutine on macOS.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops the tray from any goroutine.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("mefu")
	systray.SetTooltip("mefu popup menu")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle hand gesture control")
	systray.AddSeparator()
	menuOpen := systray.AddMenuItem("Open Menu", "Open the popup menu at screen center")
	t.menuLast = systray.AddMenuItem(lastTitle(t.last), "Last activated item")
	t.menuLast.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit mefu")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetGestureEnabled reflects a gesture-mode change made elsewhere.
func (t *Tray) SetGestureEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}

// SetLast updates the last activation display.
func (t *Tray) SetLast(label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = label
	if t.menuLast != nil {
		t.menuLast.SetTitle(lastTitle(label))
	}
}

// Last returns the label shown as the last activation.
func (t *Tray) Last() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// IsEnabled reports whether gesture mode is on.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Journal returns a menu.Journal that shows every invoked item as the last
// activation.
func (t *Tray) Journal() menu.Journal {
	return menu.JournalFunc(func(e menu.Entry) {
		if e.Kind == menu.EntryInvoked {
			t.SetLast(e.Label)
		}
	})
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Gesture Mode"
	}
	return "○ Gesture Mode"
}

func lastTitle(label string) string {
	if label == "" {
		return "Last: none"
	}
	return "Last: " + label
}
