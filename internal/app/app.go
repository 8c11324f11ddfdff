// Package app runs the single-threaded menu loop: pointer input, gesture
// samples and animation ticks are all delivered to the controller from one
// goroutine.
package app

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/mefu/internal/anim"
	"github.com/ayusman/mefu/internal/capture"
	"github.com/ayusman/mefu/internal/detector"
	"github.com/ayusman/mefu/internal/gesture"
	"github.com/ayusman/mefu/internal/layout"
	"github.com/ayusman/mefu/internal/logging"
	"github.com/ayusman/mefu/internal/menu"
)

// DefaultTickRate is the loop frequency in Hz.
const DefaultTickRate = 30

// DefaultAbsenceFrames is how many consecutive hand-less samples end
// gesture navigation, about half a second at 30 Hz.
const DefaultAbsenceFrames = 15

// ToggleGestureHandler is the built-in handler that flips gesture mode.
const ToggleGestureHandler = "toggle_gesture"

// Button identifies a pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

// PointerEvent is a press at a window position (bottom-left origin).
type PointerEvent struct {
	Pos    layout.Point
	Button Button
}

// Config holds configuration options for the loop.
type Config struct {
	Viewport layout.Viewport
	TickRate int
	Menu     menu.Config
	Layout   layout.Config
	Gesture  gesture.Config

	// AbsenceFrames consecutive samples without a hand clear the hover and
	// release a held select.
	AbsenceFrames int
}

// DefaultConfig returns a 30 Hz loop over a 1440x900 viewport.
func DefaultConfig() Config {
	return Config{
		Viewport:      layout.Viewport{Width: 1440, Height: 900},
		TickRate:      DefaultTickRate,
		AbsenceFrames: DefaultAbsenceFrames,
		Menu:          menu.DefaultConfig(),
		Layout:        layout.DefaultConfig(),
		Gesture:       gesture.DefaultConfig(),
	}
}

// App owns the controller and everything that feeds it. Only Post, Do,
// SetGestureEnabled and GestureEnabled are safe from other goroutines.
type App struct {
	cfg        Config
	logger     *slog.Logger
	controller *menu.Controller
	registry   *menu.Registry
	driver     *anim.Driver
	window     *Window
	normalizer *layout.Normalizer
	recognizer *gesture.Recognizer
	slot       *capture.PoseSlot
	items      []menu.Item

	mu      sync.Mutex
	pending []func()
	wake    chan struct{}

	lastStep time.Time
	absent   int

	gestureOn  atomic.Bool
	sampler    *capture.Sampler
	samplerGen int
	cancel     context.CancelFunc
	samplerWG  sync.WaitGroup
	onGesture  func(bool)
}

// New creates an App rendering to surface. A nil registry gets a fresh one.
func New(cfg Config, surface menu.Surface, registry *menu.Registry) *App {
	if cfg.TickRate <= 0 {
		cfg.TickRate = DefaultTickRate
	}
	if cfg.AbsenceFrames <= 0 {
		cfg.AbsenceFrames = DefaultAbsenceFrames
	}
	if registry == nil {
		registry = menu.NewRegistry()
	}

	a := &App{
		cfg:        cfg,
		logger:     logging.With("app"),
		registry:   registry,
		driver:     anim.NewDriver(),
		window:     NewWindow(),
		normalizer: layout.NewNormalizer(cfg.Layout),
		recognizer: gesture.NewRecognizer(cfg.Gesture),
		slot:       capture.NewPoseSlot(),
		wake:       make(chan struct{}, 1),
	}

	a.controller = menu.NewController(cfg.Menu, surface, a.driver, a.window, registry)
	a.controller.SetNormalizer(a.normalizer)
	a.controller.SetViewport(cfg.Viewport)

	registry.Register(ToggleGestureHandler, func() {
		a.setGesture(!a.gestureOn.Load())
	})

	return a
}

// Controller returns the menu controller.
func (a *App) Controller() *menu.Controller { return a.controller }

// Registry returns the action registry.
func (a *App) Registry() *menu.Registry { return a.registry }

// Slot returns the pose slot gesture samples are read from.
func (a *App) Slot() *capture.PoseSlot { return a.slot }

// Window returns the click fan-out the controller listens on.
func (a *App) Window() *Window { return a.window }

// SetLogger replaces the loop and controller loggers.
func (a *App) SetLogger(l *slog.Logger) {
	a.logger = l
	a.controller.SetLogger(l)
}

// SetJournal forwards controller activity to j.
func (a *App) SetJournal(j menu.Journal) { a.controller.SetJournal(j) }

// SetItems sets the root menu opened by pointer and gesture.
func (a *App) SetItems(items []menu.Item) { a.items = items }

// Items returns the root menu.
func (a *App) Items() []menu.Item { return a.items }

// SetViewport changes the window size used for anchoring and clamping.
func (a *App) SetViewport(vp layout.Viewport) {
	a.cfg.Viewport = vp
	a.controller.SetViewport(vp)
}

// Post queues a pointer event for the next step.
func (a *App) Post(ev PointerEvent) {
	a.Do(func() { a.handlePointer(ev) })
}

// Do queues fn to run on the loop goroutine.
func (a *App) Do(fn func()) {
	a.mu.Lock()
	a.pending = append(a.pending, fn)
	a.mu.Unlock()

	select {
	case a.wake <- struct{}{}:
	default:
	}
}

// Run steps the loop at the configured tick rate until ctx is cancelled.
// Queued work is also drained as soon as it is posted.
func (a *App) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(a.cfg.TickRate))
	defer ticker.Stop()
	defer a.stopSampler()

	a.logger.Info("loop started", "tick_rate", a.cfg.TickRate)
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("loop stopped")
			return nil
		case <-a.wake:
			a.drain()
		case now := <-ticker.C:
			a.Step(now)
		}
	}
}

// Step runs one loop iteration: queued work, then at most one gesture
// sample, then the animation clock.
func (a *App) Step(now time.Time) {
	a.drain()

	if a.gestureOn.Load() {
		if s, ok := a.slot.Take(); ok {
			a.handleSample(s)
		}
	}

	var dt float32
	if !a.lastStep.IsZero() && now.After(a.lastStep) {
		dt = float32(now.Sub(a.lastStep).Seconds())
	}
	a.lastStep = now
	a.driver.Update(dt)
}

// handleSample feeds the recognizer and ends navigation once the hand has
// been gone for AbsenceFrames samples in a row.
func (a *App) handleSample(s detector.Sample) {
	if !s.HasHand() {
		a.absent++
		if a.absent == a.cfg.AbsenceFrames {
			a.logger.Debug("hand lost", "samples", a.absent)
			a.controller.ClearHover()
		}
		return
	}
	a.absent = 0

	for _, ev := range a.recognizer.Process(s) {
		a.handleGesture(ev)
	}
}

func (a *App) drain() {
	for {
		a.mu.Lock()
		batch := a.pending
		a.pending = nil
		a.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, fn := range batch {
			fn()
		}
	}
}

func (a *App) open(anchor layout.Anchor) {
	a.controller.RequestOpen(anchor, menu.NewModel(a.items))
}

// OpenAtCenter opens the root menu at the viewport center, as the open
// gesture does. Call it on the loop goroutine.
func (a *App) OpenAtCenter() {
	if a.controller.State() == menu.StateClosed {
		a.open(a.normalizer.Center(a.cfg.Viewport))
	}
}

func (a *App) handlePointer(ev PointerEvent) {
	switch ev.Button {
	case ButtonSecondary:
		if a.controller.State() != menu.StateClosed {
			return
		}
		a.open(a.normalizer.NormalizeOpen(ev.Pos, a.cfg.Viewport))
	case ButtonPrimary:
		a.window.dispatch(ev.Pos)
		a.controller.Click(ev.Pos)
	}
}

func (a *App) handleGesture(ev gesture.Event) {
	switch ev.Kind {
	case gesture.KindOpenMenu:
		a.logger.Debug("gesture", "kind", ev.Kind)
		a.OpenAtCenter()
	case gesture.KindSwipeRight:
		a.logger.Debug("gesture", "kind", ev.Kind)
		a.controller.RequestClose()
	case gesture.KindNavigate:
		if a.controller.State() != menu.StateOpen {
			return
		}
		a.controller.Navigate(layout.FrameToViewport(ev.Pos, ev.Frame, a.cfg.Viewport), ev.Select)
	}
}
