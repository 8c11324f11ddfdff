package menu

import (
	"log/slog"
	"time"

	"github.com/ayusman/mefu/internal/layout"
	"github.com/ayusman/mefu/internal/logging"
)

// State is the visual state of the controller.
type State int

const (
	StateClosed State = iota
	StateOpening
	StateOpen
	StateClosingShrink
	StateClosingToCircle
	StateClosingCollapse
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpening:
		return "opening"
	case StateOpen:
		return "open"
	case StateClosingShrink:
		return "closing_shrink"
	case StateClosingToCircle:
		return "closing_to_circle"
	case StateClosingCollapse:
		return "closing_collapse"
	default:
		return "unknown"
	}
}

// Config holds the card geometry and animation settings.
type Config struct {
	Width          float64
	RowHeight      float64 // row pitch
	RowSpacing     float64 // gap between row boxes
	PaddingSide    float64
	PaddingTop     float64
	PaddingTopBack float64
	BasePadding    float64
	Animate        bool
	Timing         Timing
}

// DefaultConfig returns the default card geometry with animation enabled.
func DefaultConfig() Config {
	return Config{
		Width:          280,
		RowHeight:      60,
		RowSpacing:     10,
		PaddingSide:    15,
		PaddingTop:     24,
		PaddingTopBack: 15,
		BasePadding:    30,
		Animate:        true,
		Timing:         DefaultTiming(),
	}
}

// HoverState tracks the row under the navigation point. Armed reports that a
// select has fired and is still held; it clears on release, on a move to
// another row, or when the point leaves the card. It survives submenu
// reopens, so one held pinch fires once.
type HoverState struct {
	Index int
	Valid bool
	Armed bool
}

// Controller is the menu state machine. It is not safe for concurrent use;
// all calls, including animation and window callbacks, must come from one
// goroutine.
type Controller struct {
	cfg      Config
	surface  Surface
	animator Animator
	window   Window
	registry *Registry
	norm     *layout.Normalizer
	viewport layout.Viewport
	journal  Journal
	logger   *slog.Logger

	state        State
	model        Model
	anchor       layout.Anchor
	bounds       layout.Rect
	rows         []Row
	opacity      []float64
	shown        bool
	hover        HoverState
	selectHeld   bool
	pendingClose bool
	detach       func()
	anim         Handle
	gen          uint64
}

// NewController creates a closed controller. animator may be nil, which
// behaves as if animation were disabled. A nil registry gets an empty one.
// The registry is bound to the new controller; see Registry.
func NewController(cfg Config, surface Surface, animator Animator, window Window, registry *Registry) *Controller {
	if registry == nil {
		registry = NewRegistry()
	}
	c := &Controller{
		cfg:      cfg,
		surface:  surface,
		animator: animator,
		window:   window,
		registry: registry,
		norm:     layout.NewNormalizer(layout.DefaultConfig()),
		logger:   logging.With("menu"),
	}
	if registry.bindCloser(c.RequestClose) {
		c.logger.Warn("registry was bound to another controller; its actions now close this one")
	}
	return c
}

// SetJournal sets the sink for activity and diagnostics.
func (c *Controller) SetJournal(j Journal) { c.journal = j }

// SetLogger replaces the controller's logger.
func (c *Controller) SetLogger(l *slog.Logger) {
	if l != nil {
		c.logger = l
	}
}

// SetNormalizer replaces the clamping rules.
func (c *Controller) SetNormalizer(n *layout.Normalizer) {
	if n != nil {
		c.norm = n
	}
}

// SetViewport updates the window size used for clamping.
func (c *Controller) SetViewport(vp layout.Viewport) { c.viewport = vp }

// Registry returns the handler registry bound to this controller.
func (c *Controller) Registry() *Registry { return c.registry }

// State returns the current visual state.
func (c *Controller) State() State { return c.state }

// Rows returns a copy of the rendered rows.
func (c *Controller) Rows() []Row {
	out := make([]Row, len(c.rows))
	copy(out, c.rows)
	return out
}

// Bounds returns the final card rectangle of the current layout.
func (c *Controller) Bounds() layout.Rect { return c.bounds }

// Anchor returns the remembered anchor of the current layout.
func (c *Controller) Anchor() layout.Anchor { return c.anchor }

// Depth returns the submenu depth.
func (c *Controller) Depth() int { return c.model.Depth() }

// Items returns the items of the current level.
func (c *Controller) Items() []Item { return c.model.Items() }

// RowRect returns the hit box of row i on the final card, in window
// coordinates.
func (c *Controller) RowRect(i int) (layout.Rect, bool) {
	if i < 0 || i >= len(c.rows) {
		return layout.Rect{}, false
	}
	return c.cfg.rowRect(c.bounds, i, c.rows[0].Back), true
}

// Hover returns the current hover state.
func (c *Controller) Hover() HoverState {
	h := c.hover
	h.Armed = c.selectHeld
	return h
}

// ClearHover drops the hover and releases the select latch, as if the
// navigation point had left the card.
func (c *Controller) ClearHover() {
	c.clearHover()
	c.selectHeld = false
}

// RequestOpen opens m at anchor. It does nothing unless the controller is closed.
func (c *Controller) RequestOpen(anchor layout.Anchor, m Model) {
	if c.state != StateClosed {
		c.logger.Debug("open ignored", slog.String("state", c.state.String()))
		return
	}
	c.model = m.Clone()
	c.open(anchor)
	c.record(Entry{Kind: EntryOpened, Row: -1})
}

// RequestClose starts closing. A close requested while opening runs once the
// grow animation completes.
func (c *Controller) RequestClose() {
	switch c.state {
	case StateOpening:
		c.pendingClose = true
	case StateOpen:
		if !c.animated() {
			c.finishClose()
			return
		}
		c.closeShrink()
	}
}

// Activate confirms row. Only valid while open.
func (c *Controller) Activate(row int) {
	if c.state != StateOpen {
		return
	}
	if row < 0 || row >= len(c.rows) {
		c.stale(row)
		return
	}

	r := c.rows[row]
	c.record(Entry{Kind: EntryActivated, Label: r.Label, Row: row})

	if r.Back {
		c.GoBack()
		return
	}

	item, ok := c.model.At(r.ItemIndex)
	if !ok {
		c.stale(row)
		return
	}

	if item.HasChildren() {
		c.model.Enter(item.Children)
		c.record(Entry{Kind: EntrySubmenu, Label: item.Name, Row: row})
		c.open(c.anchor)
		return
	}

	if !c.registry.Has(item.Handler) {
		c.missing(item, row)
		return
	}
	c.record(Entry{Kind: EntryInvoked, Label: item.Name, Handler: item.Handler, Row: row})
	if err := c.registry.Invoke(item.Handler); err != nil {
		c.missing(item, row)
	}
}

// GoBack leaves the current submenu and reopens the parent level at the
// remembered anchor. It does nothing at the root level.
func (c *Controller) GoBack() {
	if !c.model.Back() {
		return
	}
	c.record(Entry{Kind: EntryBack, Row: -1})
	c.open(c.anchor)
}

// Navigate moves the hover to pos and fires an activation on the rising edge
// of sel. Only valid while open.
func (c *Controller) Navigate(pos layout.Point, sel bool) {
	if c.state != StateOpen {
		return
	}

	idx, ok := c.cfg.hitTest(c.bounds, c.rows, pos)
	if !ok {
		c.ClearHover()
		return
	}
	if !c.hover.Valid || c.hover.Index != idx {
		// A reopen leaves no hover; only a move between rows re-arms.
		if c.hover.Valid {
			c.selectHeld = false
		}
		c.setHover(idx)
	}

	if !sel {
		c.selectHeld = false
		return
	}
	if c.selectHeld {
		return
	}
	c.selectHeld = true
	c.Activate(idx)
}

// Click activates the row under a primary click.
func (c *Controller) Click(pos layout.Point) {
	if c.state != StateOpen {
		return
	}
	if idx, ok := c.cfg.hitTest(c.bounds, c.rows, pos); ok {
		c.Activate(idx)
	}
}

func (c *Controller) onPrimaryClick(pos layout.Point) {
	if c.state == StateClosed || c.bounds.Contains(pos) {
		return
	}
	c.RequestClose()
}

func (c *Controller) animated() bool {
	return c.cfg.Animate && c.animator != nil
}

// open lays out the current level at anchor and starts the grow animation.
func (c *Controller) open(anchor layout.Anchor) {
	c.teardown()

	c.anchor = anchor
	size := c.cfg.menuSize(c.model)
	placed := anchor
	if !anchor.FromGesture {
		placed = c.norm.ClampFinal(anchor, size, c.viewport)
	}
	c.bounds = layout.Rect{X: placed.X, Y: placed.Y, Width: size.Width, Height: size.Height}
	c.rows = buildRows(c.model)
	c.opacity = make([]float64, len(c.rows))

	if c.window != nil {
		c.detach = c.window.ListenPrimaryClicks(c.onPrimaryClick)
	}

	c.logger.Debug("menu open",
		slog.Int("rows", len(c.rows)),
		slog.Int("depth", c.model.Depth()),
		slog.Float64("x", c.bounds.X),
		slog.Float64("y", c.bounds.Y))

	if !c.animated() {
		c.show(c.bounds)
		c.state = StateOpen
		return
	}

	start := layout.Rect{X: c.bounds.X, Y: c.bounds.Y}
	c.show(start)
	c.reveal(0)
	c.runPhase(StateOpening, start, c.bounds, c.cfg.Timing.Grow,
		func(cur layout.Rect) { c.reveal(cur.Height) },
		c.opened)
}

func (c *Controller) opened() {
	c.state = StateOpen
	for i := range c.rows {
		c.setOpacity(i, 1)
	}
	if c.pendingClose {
		c.pendingClose = false
		c.RequestClose()
	}
}

func (c *Controller) closeShrink() {
	c.clearHover()
	b := c.bounds
	size := c.cfg.Timing.CircleSize
	to := layout.Rect{X: b.X, Y: b.Y + b.Height - size, Width: b.Width, Height: size}
	c.runPhase(StateClosingShrink, b, to, c.cfg.Timing.Shrink,
		func(cur layout.Rect) { c.hide(cur.Height) },
		func() { c.closeCircle(to) })
}

func (c *Controller) closeCircle(from layout.Rect) {
	for i := range c.rows {
		c.setOpacity(i, 0)
	}
	size := c.cfg.Timing.CircleSize
	to := layout.Rect{X: from.X + (from.Width-size)/2, Y: from.Y, Width: size, Height: size}
	c.runPhase(StateClosingToCircle, from, to, c.cfg.Timing.Circle, nil,
		func() { c.closeCollapse(to) })
}

func (c *Controller) closeCollapse(from layout.Rect) {
	to := layout.Rect{X: from.X, Y: from.Y}
	c.runPhase(StateClosingCollapse, from, to, c.cfg.Timing.Collapse, nil, c.finishClose)
}

// runPhase enters s and animates from -> to. Callbacks from an older
// generation or a different state are dropped.
func (c *Controller) runPhase(s State, from, to layout.Rect, d time.Duration, progress func(layout.Rect), next func()) {
	c.state = s
	gen := c.gen
	h := c.animator.Animate(Tween{
		From:     from,
		To:       to,
		Duration: d,
		Easing:   c.cfg.Timing.Easing,
		OnProgress: func(cur layout.Rect, _ float64) {
			if gen != c.gen || c.state != s {
				return
			}
			if c.shown {
				c.surface.Resize(cur)
			}
			if progress != nil {
				progress(cur)
			}
		},
		OnComplete: func() {
			if gen != c.gen || c.state != s {
				return
			}
			c.anim = nil
			next()
		},
	})
	if gen == c.gen && c.state == s {
		c.anim = h
	}
}

// finishClose tears the card down and clears the submenu history.
func (c *Controller) finishClose() {
	c.teardown()
	c.model.Reset()
	c.record(Entry{Kind: EntryClosed, Row: -1})
	c.logger.Debug("menu closed")
}

// teardown removes all visual state and returns to Closed.
func (c *Controller) teardown() {
	if c.anim != nil {
		c.anim.Stop()
		c.anim = nil
	}
	c.gen++
	if c.shown {
		c.surface.Remove()
		c.shown = false
	}
	if c.detach != nil {
		c.detach()
		c.detach = nil
	}
	c.rows = nil
	c.opacity = nil
	c.hover = HoverState{}
	c.pendingClose = false
	c.state = StateClosed
}

func (c *Controller) show(bounds layout.Rect) {
	c.surface.Show(bounds, c.Rows())
	c.shown = true
	for i := range c.opacity {
		c.opacity[i] = 1
	}
}

func (c *Controller) reveal(height float64) {
	for i := range c.rows {
		c.setOpacity(i, boolOpacity(c.cfg.revealed(c.rows, i, height)))
	}
}

func (c *Controller) hide(height float64) {
	for i := range c.rows {
		c.setOpacity(i, boolOpacity(c.cfg.retained(c.rows, i, height)))
	}
}

func (c *Controller) setOpacity(row int, v float64) {
	if row >= len(c.opacity) || c.opacity[row] == v {
		return
	}
	c.opacity[row] = v
	c.surface.SetRowOpacity(row, v)
}

func (c *Controller) setHover(idx int) {
	if c.hover.Valid {
		c.surface.SetRowHighlight(c.hover.Index, false)
	}
	c.hover = HoverState{Index: idx, Valid: true}
	c.surface.SetRowHighlight(idx, true)
}

func (c *Controller) clearHover() {
	if c.hover.Valid && c.shown {
		c.surface.SetRowHighlight(c.hover.Index, false)
	}
	c.hover = HoverState{}
}

func (c *Controller) stale(row int) {
	c.logger.Warn("stale row ignored", slog.Int("row", row), slog.Int("rows", len(c.rows)))
	c.record(Entry{Kind: EntryStaleRow, Row: row})
}

func (c *Controller) missing(item Item, row int) {
	c.logger.Warn("handler not found", slog.String("handler", item.Handler), slog.String("item", item.Name))
	c.record(Entry{Kind: EntryHandlerMissing, Label: item.Name, Handler: item.Handler, Row: row})
}

func (c *Controller) record(e Entry) {
	if c.journal == nil {
		return
	}
	e.Depth = c.model.Depth()
	e.At = time.Now()
	c.journal.Record(e)
}

func boolOpacity(visible bool) float64 {
	if visible {
		return 1
	}
	return 0
}
