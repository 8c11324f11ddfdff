package menu

import (
	"reflect"
	"testing"

	"github.com/ayusman/mefu/internal/layout"
	"github.com/ayusman/mefu/internal/logging"
)

type highlight struct {
	row int
	on  bool
}

type fakeSurface struct {
	shown      bool
	shows      int
	removes    int
	bounds     layout.Rect
	rows       []Row
	opacity    map[int]float64
	highlights []highlight
}

func (s *fakeSurface) Show(bounds layout.Rect, rows []Row) {
	s.shown = true
	s.shows++
	s.bounds = bounds
	s.rows = rows
	s.opacity = make(map[int]float64)
	for i := range rows {
		s.opacity[i] = 1
	}
}

func (s *fakeSurface) Resize(bounds layout.Rect) { s.bounds = bounds }
func (s *fakeSurface) SetRowOpacity(row int, opacity float64) { s.opacity[row] = opacity }
func (s *fakeSurface) SetRowHighlight(row int, on bool) {
	s.highlights = append(s.highlights, highlight{row, on})
}

func (s *fakeSurface) Remove() {
	s.shown = false
	s.removes++
}

type fakeTween struct {
	Tween
	stopped bool
	done    bool
}

func (t *fakeTween) Stop() { t.stopped = true }

// fakeAnimator records tweens and completes them only when told to.
type fakeAnimator struct {
	tweens []*fakeTween
}

func (a *fakeAnimator) Animate(t Tween) Handle {
	ft := &fakeTween{Tween: t}
	a.tweens = append(a.tweens, ft)
	return ft
}

func (a *fakeAnimator) last() *fakeTween {
	return a.tweens[len(a.tweens)-1]
}

func (a *fakeAnimator) progress(t *fakeTween, height float64) {
	cur := t.To
	cur.Height = height
	t.OnProgress(cur, 0.5)
}

func (a *fakeAnimator) complete(t *fakeTween) {
	t.OnProgress(t.To, 1)
	t.done = true
	t.OnComplete()
}

// drain completes every live tween, including ones started by completions.
func (a *fakeAnimator) drain() {
	for i := 0; i < len(a.tweens); i++ {
		if t := a.tweens[i]; !t.done && !t.stopped {
			a.complete(t)
		}
	}
}

type fakeWindow struct {
	next      int
	listeners map[int]func(layout.Point)
}

func (w *fakeWindow) ListenPrimaryClicks(fn func(layout.Point)) func() {
	if w.listeners == nil {
		w.listeners = make(map[int]func(layout.Point))
	}
	id := w.next
	w.next++
	w.listeners[id] = fn
	return func() { delete(w.listeners, id) }
}

func (w *fakeWindow) click(p layout.Point) {
	var fns []func(layout.Point)
	for _, fn := range w.listeners {
		fns = append(fns, fn)
	}
	for _, fn := range fns {
		fn(p)
	}
}

type recorder struct {
	entries []Entry
}

func (r *recorder) Record(e Entry) { r.entries = append(r.entries, e) }

func (r *recorder) count(k EntryKind) int {
	n := 0
	for _, e := range r.entries {
		if e.Kind == k {
			n++
		}
	}
	return n
}

type harness struct {
	t       *testing.T
	c       *Controller
	surface *fakeSurface
	anim    *fakeAnimator
	window  *fakeWindow
	reg     *Registry
	journal *recorder
	calls   map[string]int
}

func newHarness(t *testing.T, animate bool) *harness {
	t.Helper()
	h := &harness{
		t:       t,
		surface: &fakeSurface{},
		anim:    &fakeAnimator{},
		window:  &fakeWindow{},
		reg:     NewRegistry(),
		journal: &recorder{},
		calls:   make(map[string]int),
	}
	for _, name := range []string{"copy", "paste", "cut", "parent"} {
		h.reg.Register(name, func() { h.calls[name]++ })
	}

	cfg := DefaultConfig()
	cfg.Animate = animate
	h.c = NewController(cfg, h.surface, h.anim, h.window, h.reg)
	h.c.SetViewport(layout.Viewport{Width: 1000, Height: 800})
	h.c.SetJournal(h.journal)
	h.c.SetLogger(logging.Discard())
	return h
}

func (h *harness) rowCenter(i int) layout.Point {
	r, ok := h.c.RowRect(i)
	if !ok {
		h.t.Fatalf("no row %d", i)
	}
	return layout.Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

func flatItems() []Item {
	return []Item{
		{Name: "Copy", Icon: "copy", Handler: "copy"},
		{Name: "Paste", Icon: "paste", Handler: "paste"},
		{Name: "Cut", Icon: "cut", Handler: "cut"},
	}
}

func nestedItems() []Item {
	return []Item{
		{Name: "Edit", Icon: "edit", Handler: "parent", Children: []Item{
			{Name: "Copy", Handler: "copy"},
			{Name: "Paste", Handler: "paste"},
		}},
		{Name: "Cut", Handler: "cut"},
		{Name: "Nothing", Handler: "unbound"},
	}
}

func labels(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Label
	}
	return out
}

var anchor = layout.Anchor{Point: layout.Point{X: 100, Y: 100}}

func TestController_OpenWithoutAnimation(t *testing.T) {
	h := newHarness(t, false)
	h.c.RequestOpen(anchor, NewModel(flatItems()))

	if h.c.State() != StateOpen {
		t.Fatalf("state = %v, want open", h.c.State())
	}
	if got := len(h.c.Rows()); got != 3 {
		t.Fatalf("rows = %d, want 3", got)
	}
	want := layout.Rect{X: 100, Y: 100, Width: 280, Height: 210}
	if h.c.Bounds() != want {
		t.Errorf("bounds = %+v, want %+v", h.c.Bounds(), want)
	}
	if !h.surface.shown || h.surface.bounds != want {
		t.Errorf("surface shown=%v bounds=%+v", h.surface.shown, h.surface.bounds)
	}
	if len(h.window.listeners) != 1 {
		t.Errorf("listeners = %d, want 1", len(h.window.listeners))
	}
	if h.journal.count(EntryOpened) != 1 {
		t.Error("open not journaled")
	}
}

func TestController_OpenIgnoredWhileOpen(t *testing.T) {
	h := newHarness(t, true)
	h.c.RequestOpen(anchor, NewModel(flatItems()))
	h.c.RequestOpen(layout.Anchor{Point: layout.Point{X: 500, Y: 500}}, NewModel(nestedItems()))

	if h.surface.shows != 1 {
		t.Errorf("shows = %d, want 1", h.surface.shows)
	}
	if h.c.Bounds().X != 100 {
		t.Errorf("second open moved the card to %+v", h.c.Bounds())
	}
	if len(h.anim.tweens) != 1 {
		t.Errorf("tweens = %d, want 1", len(h.anim.tweens))
	}
}

func TestController_ClampsPointerAnchor(t *testing.T) {
	tests := []struct {
		name   string
		anchor layout.Anchor
		want   layout.Point
	}{
		{"inside", layout.Anchor{Point: layout.Point{X: 100, Y: 100}}, layout.Point{X: 100, Y: 100}},
		{"top right", layout.Anchor{Point: layout.Point{X: 900, Y: 700}}, layout.Point{X: 710, Y: 580}},
		{"negative", layout.Anchor{Point: layout.Point{X: -50, Y: 2}}, layout.Point{X: 10, Y: 10}},
		{"gesture skips clamp", layout.Anchor{Point: layout.Point{X: 900, Y: 700}, FromGesture: true}, layout.Point{X: 900, Y: 700}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, false)
			h.c.RequestOpen(tt.anchor, NewModel(flatItems()))
			if got := h.c.Bounds().Origin(); got != tt.want {
				t.Errorf("origin = %+v, want %+v", got, tt.want)
			}
			if h.c.Anchor() != tt.anchor {
				t.Errorf("remembered anchor = %+v, want %+v", h.c.Anchor(), tt.anchor)
			}
		})
	}
}

func TestController_ActivateHandlerClosesOnce(t *testing.T) {
	h := newHarness(t, true)
	h.c.RequestOpen(anchor, NewModel(flatItems()))
	if h.c.State() != StateOpening {
		t.Fatalf("state = %v, want opening", h.c.State())
	}
	h.anim.drain()
	if h.c.State() != StateOpen || len(h.c.Rows()) != 3 {
		t.Fatalf("state=%v rows=%d", h.c.State(), len(h.c.Rows()))
	}

	h.c.Activate(1)
	h.c.Activate(1)
	if h.c.State() != StateClosingShrink {
		t.Fatalf("state = %v, want closing_shrink", h.c.State())
	}

	h.anim.drain()
	h.c.Activate(1)

	if h.calls["paste"] != 1 {
		t.Errorf("paste calls = %d, want 1", h.calls["paste"])
	}
	if h.c.State() != StateClosed {
		t.Errorf("state = %v, want closed", h.c.State())
	}
	if n := h.journal.count(EntryClosed); n != 1 {
		t.Errorf("closed entries = %d, want 1", n)
	}
	if h.surface.shown {
		t.Error("surface still shown")
	}
	if len(h.window.listeners) != 0 {
		t.Error("outside-click listener not detached")
	}
}

func TestController_CloseSequenceGeometry(t *testing.T) {
	h := newHarness(t, true)
	h.c.RequestOpen(anchor, NewModel(flatItems()))
	h.anim.drain()
	h.c.RequestClose()

	shrink := h.anim.last()
	wantShrink := layout.Rect{X: 100, Y: 100 + 210 - 15, Width: 280, Height: 15}
	if shrink.To != wantShrink || shrink.Duration != DefaultTiming().Shrink {
		t.Fatalf("shrink = %+v over %v", shrink.To, shrink.Duration)
	}

	h.anim.complete(shrink)
	if h.c.State() != StateClosingToCircle {
		t.Fatalf("state = %v, want closing_to_circle", h.c.State())
	}
	circle := h.anim.last()
	wantCircle := layout.Rect{X: 100 + (280-15)/2.0, Y: wantShrink.Y, Width: 15, Height: 15}
	if circle.From != wantShrink || circle.To != wantCircle {
		t.Fatalf("circle = %+v -> %+v", circle.From, circle.To)
	}

	h.anim.complete(circle)
	if h.c.State() != StateClosingCollapse {
		t.Fatalf("state = %v, want closing_collapse", h.c.State())
	}
	collapse := h.anim.last()
	if collapse.To != (layout.Rect{X: wantCircle.X, Y: wantCircle.Y}) {
		t.Fatalf("collapse to %+v", collapse.To)
	}
	if collapse.Duration != DefaultTiming().Collapse {
		t.Errorf("collapse duration = %v", collapse.Duration)
	}

	h.anim.complete(collapse)
	if h.c.State() != StateClosed {
		t.Errorf("state = %v, want closed", h.c.State())
	}
}

func TestController_ProgressiveReveal(t *testing.T) {
	h := newHarness(t, true)
	h.c.RequestOpen(anchor, NewModel(flatItems()))
	grow := h.anim.last()

	if grow.From.Height != 0 || grow.To.Height != 210 || grow.Easing != EaseOutCubic {
		t.Fatalf("grow = %+v -> %+v (%s)", grow.From, grow.To, grow.Easing)
	}
	for i := 0; i < 3; i++ {
		if h.surface.opacity[i] != 0 {
			t.Errorf("row %d visible at height 0", i)
		}
	}

	// Bottom row first: child c appears once height > (c+1)*60 - 10.
	h.anim.progress(grow, 60)
	if got := []float64{h.surface.opacity[0], h.surface.opacity[1], h.surface.opacity[2]}; !reflect.DeepEqual(got, []float64{0, 0, 1}) {
		t.Errorf("opacity at 60 = %v", got)
	}
	h.anim.progress(grow, 115)
	if got := []float64{h.surface.opacity[0], h.surface.opacity[1], h.surface.opacity[2]}; !reflect.DeepEqual(got, []float64{0, 1, 1}) {
		t.Errorf("opacity at 115 = %v", got)
	}

	h.anim.complete(grow)
	for i := 0; i < 3; i++ {
		if h.surface.opacity[i] != 1 {
			t.Errorf("row %d hidden after open", i)
		}
	}

	h.c.RequestClose()
	shrink := h.anim.last()
	h.anim.progress(shrink, 100)
	if got := []float64{h.surface.opacity[0], h.surface.opacity[1], h.surface.opacity[2]}; !reflect.DeepEqual(got, []float64{0, 0, 1}) {
		t.Errorf("opacity while shrinking at 100 = %v", got)
	}
}

func TestController_BackRowVisibleDuringGrow(t *testing.T) {
	h := newHarness(t, true)
	h.c.RequestOpen(anchor, NewModel(nestedItems()))
	h.anim.drain()
	h.c.Activate(0)

	rows := h.c.Rows()
	if len(rows) != 3 || !rows[0].Back {
		t.Fatalf("rows = %v", labels(rows))
	}
	if h.surface.opacity[0] != 1 {
		t.Error("back row hidden at height 0")
	}
	if h.surface.opacity[1] != 0 || h.surface.opacity[2] != 0 {
		t.Error("item rows visible at height 0")
	}
	if got := h.anim.last().To.Height; got != 2*60+30+60 {
		t.Errorf("submenu height = %v, want 210", got)
	}
}

func TestController_SubmenuAndBack(t *testing.T) {
	h := newHarness(t, false)
	h.c.RequestOpen(anchor, NewModel(nestedItems()))
	top := labels(h.c.Rows())

	h.c.Activate(0)
	if h.calls["parent"] != 0 {
		t.Error("item with children invoked its handler")
	}
	if h.c.Depth() != 1 {
		t.Fatalf("depth = %d, want 1", h.c.Depth())
	}
	if got := labels(h.c.Rows()); !reflect.DeepEqual(got, []string{"Back", "Copy", "Paste"}) {
		t.Fatalf("submenu rows = %v", got)
	}
	if h.c.State() != StateOpen {
		t.Fatalf("state = %v", h.c.State())
	}
	if h.c.Bounds().Origin() != anchor.Point {
		t.Errorf("submenu moved to %+v", h.c.Bounds().Origin())
	}
	if len(h.window.listeners) != 1 {
		t.Errorf("listeners = %d, want 1", len(h.window.listeners))
	}

	h.c.Activate(0)
	if h.c.Depth() != 0 {
		t.Fatalf("depth after back = %d", h.c.Depth())
	}
	if got := labels(h.c.Rows()); !reflect.DeepEqual(got, top) {
		t.Errorf("rows after back = %v, want %v", got, top)
	}
	if h.journal.count(EntryBack) != 1 || h.journal.count(EntrySubmenu) != 1 {
		t.Errorf("journal = %+v", h.journal.entries)
	}
}

func TestController_GoBackAtRootIsNoop(t *testing.T) {
	h := newHarness(t, false)
	h.c.RequestOpen(anchor, NewModel(flatItems()))
	shows := h.surface.shows

	h.c.GoBack()
	if h.c.Depth() != 0 || h.c.State() != StateOpen || h.surface.shows != shows {
		t.Errorf("GoBack at root changed state: depth=%d state=%v shows=%d", h.c.Depth(), h.c.State(), h.surface.shows)
	}
	if h.journal.count(EntryBack) != 0 {
		t.Error("back journaled at root")
	}
}

func TestController_CloseResetsHistory(t *testing.T) {
	h := newHarness(t, false)
	items := nestedItems()
	h.c.RequestOpen(anchor, NewModel(items))
	h.c.Activate(0)
	h.c.Activate(1) // Copy

	if h.calls["copy"] != 1 || h.c.State() != StateClosed {
		t.Fatalf("copy=%d state=%v", h.calls["copy"], h.c.State())
	}
	if h.c.Depth() != 0 {
		t.Errorf("depth after close = %d", h.c.Depth())
	}
	if got := h.c.Items(); len(got) != len(items) || got[0].Name != "Edit" {
		t.Errorf("items after close = %v", got)
	}
}

func TestController_PinchRisingEdge(t *testing.T) {
	h := newHarness(t, false)
	h.c.RequestOpen(anchor, NewModel(nestedItems()))
	p := h.rowCenter(2) // unbound handler: menu stays open

	for _, d := range []float64{0.01, 0.01, 0.01, 0.03, 0.01} {
		h.c.Navigate(p, d < 0.02)
	}

	if n := h.journal.count(EntryActivated); n != 2 {
		t.Errorf("activations = %d, want 2", n)
	}
	if n := h.journal.count(EntryHandlerMissing); n != 2 {
		t.Errorf("handler_missing = %d, want 2", n)
	}
	if h.c.State() != StateOpen {
		t.Errorf("missing handler closed the menu: %v", h.c.State())
	}
}

func TestController_NavigateHighlight(t *testing.T) {
	h := newHarness(t, false)
	h.c.RequestOpen(anchor, NewModel(flatItems()))

	h.c.Navigate(h.rowCenter(0), false)
	h.c.Navigate(h.rowCenter(0), false)
	h.c.Navigate(h.rowCenter(1), false)
	if hv := h.c.Hover(); !hv.Valid || hv.Index != 1 {
		t.Fatalf("hover = %+v", hv)
	}

	h.c.Navigate(layout.Point{X: 5, Y: 5}, false)
	if h.c.Hover().Valid {
		t.Error("hover kept outside the card")
	}

	want := []highlight{{0, true}, {0, false}, {1, true}, {1, false}}
	if !reflect.DeepEqual(h.surface.highlights, want) {
		t.Errorf("highlights = %v, want %v", h.surface.highlights, want)
	}
}

func TestController_NavigateRearmsOnHoverChange(t *testing.T) {
	h := newHarness(t, false)
	h.c.RequestOpen(anchor, NewModel([]Item{{Name: "A", Handler: "x"}, {Name: "B", Handler: "y"}}))

	h.c.Navigate(h.rowCenter(0), true)
	h.c.Navigate(h.rowCenter(1), true)
	h.c.Navigate(layout.Point{X: 0, Y: 0}, true)
	h.c.Navigate(h.rowCenter(1), true)

	if n := h.journal.count(EntryActivated); n != 3 {
		t.Errorf("activations = %d, want 3", n)
	}
}

func TestController_HeldPinchFiresOnceAcrossReopen(t *testing.T) {
	h := newHarness(t, false)
	h.c.RequestOpen(anchor, NewModel(nestedItems()))
	p := h.rowCenter(0) // Edit, which has children

	for i := 0; i < 6; i++ {
		h.c.Navigate(p, true)
	}

	if n := h.journal.count(EntryActivated); n != 1 {
		t.Errorf("activations = %d, want 1", n)
	}
	if h.journal.count(EntrySubmenu) != 1 || h.journal.count(EntryBack) != 0 {
		t.Fatalf("submenu = %d, back = %d; want 1, 0", h.journal.count(EntrySubmenu), h.journal.count(EntryBack))
	}
	if h.c.Depth() != 1 {
		t.Fatalf("depth = %d, want 1", h.c.Depth())
	}
	if !h.c.Hover().Armed {
		t.Error("the held pinch should stay latched in the submenu")
	}

	// Release over Back, then pinch again.
	back := h.rowCenter(0)
	h.c.Navigate(back, false)
	h.c.Navigate(back, true)

	if h.journal.count(EntryBack) != 1 || h.c.Depth() != 0 {
		t.Errorf("back = %d, depth = %d; want 1, 0", h.journal.count(EntryBack), h.c.Depth())
	}
}

func TestController_HeldPinchFiresOnceAcrossAnimatedReopen(t *testing.T) {
	h := newHarness(t, true)
	h.c.RequestOpen(anchor, NewModel(nestedItems()))
	h.anim.drain()
	p := h.rowCenter(0)

	h.c.Navigate(p, true)
	if h.c.State() != StateOpening {
		t.Fatalf("state = %v, want opening", h.c.State())
	}
	h.c.Navigate(p, true)
	h.anim.drain()
	for i := 0; i < 4; i++ {
		h.c.Navigate(p, true)
	}

	if h.journal.count(EntrySubmenu) != 1 || h.journal.count(EntryBack) != 0 {
		t.Errorf("submenu = %d, back = %d; want 1, 0", h.journal.count(EntrySubmenu), h.journal.count(EntryBack))
	}
	if n := h.journal.count(EntryActivated); n != 1 {
		t.Errorf("activations = %d, want 1", n)
	}
}

func TestController_LeavingCardReleasesLatch(t *testing.T) {
	h := newHarness(t, false)
	h.c.RequestOpen(anchor, NewModel(nestedItems()))
	p := h.rowCenter(0)

	h.c.Navigate(p, true) // enters Edit
	back := h.rowCenter(0)
	h.c.Navigate(layout.Point{X: 5, Y: 5}, true)
	h.c.Navigate(back, true)

	if h.journal.count(EntryBack) != 1 {
		t.Errorf("back = %d, want 1 after leaving and re-entering the card", h.journal.count(EntryBack))
	}
}

func TestController_ClearHover(t *testing.T) {
	h := newHarness(t, false)
	h.c.RequestOpen(anchor, NewModel(flatItems()))
	h.c.Navigate(h.rowCenter(1), false)

	h.c.ClearHover()

	if hv := h.c.Hover(); hv.Valid || hv.Armed {
		t.Errorf("hover = %+v, want cleared", hv)
	}
	want := []highlight{{1, true}, {1, false}}
	if !reflect.DeepEqual(h.surface.highlights, want) {
		t.Errorf("highlights = %v, want %v", h.surface.highlights, want)
	}
}

func TestController_NavigateIgnoredUnlessOpen(t *testing.T) {
	h := newHarness(t, true)
	h.c.Navigate(layout.Point{X: 200, Y: 200}, true)
	h.c.RequestOpen(anchor, NewModel(flatItems()))
	h.c.Navigate(layout.Point{X: 240, Y: 261}, true)

	if h.journal.count(EntryActivated) != 0 {
		t.Error("activation while not open")
	}
}

func TestController_ClickActivatesRow(t *testing.T) {
	h := newHarness(t, false)
	h.c.RequestOpen(anchor, NewModel(flatItems()))

	p := h.rowCenter(2)
	h.window.click(p)
	h.c.Click(p)

	if h.calls["cut"] != 1 || h.c.State() != StateClosed {
		t.Errorf("cut=%d state=%v", h.calls["cut"], h.c.State())
	}
}

func TestController_OutsideClickCloses(t *testing.T) {
	h := newHarness(t, true)
	h.c.RequestOpen(anchor, NewModel(flatItems()))
	h.anim.drain()

	h.window.click(layout.Point{X: 150, Y: 150})
	if h.c.State() != StateOpen {
		t.Fatalf("inside click closed the menu: %v", h.c.State())
	}

	h.window.click(layout.Point{X: 900, Y: 50})
	if h.c.State() != StateClosingShrink {
		t.Fatalf("state = %v, want closing_shrink", h.c.State())
	}
	h.window.click(layout.Point{X: 900, Y: 50})
	h.anim.drain()

	if h.c.State() != StateClosed || h.journal.count(EntryClosed) != 1 {
		t.Errorf("state=%v closed=%d", h.c.State(), h.journal.count(EntryClosed))
	}
	if len(h.window.listeners) != 0 {
		t.Error("listener still attached")
	}
}

func TestController_CloseDuringOpening(t *testing.T) {
	h := newHarness(t, true)
	h.c.RequestOpen(anchor, NewModel(flatItems()))
	h.c.RequestClose()

	if h.c.State() != StateOpening {
		t.Fatalf("state = %v, want opening", h.c.State())
	}
	h.anim.complete(h.anim.last())
	if h.c.State() != StateClosingShrink {
		t.Fatalf("state = %v, want closing_shrink", h.c.State())
	}
	h.anim.drain()
	if h.c.State() != StateClosed {
		t.Errorf("state = %v, want closed", h.c.State())
	}
}

func TestController_GoBackDuringClose(t *testing.T) {
	h := newHarness(t, true)
	h.c.RequestOpen(anchor, NewModel(nestedItems()))
	h.anim.drain()
	h.c.Activate(0)
	h.anim.drain()

	h.c.RequestClose()
	shrink := h.anim.last()
	h.c.GoBack()

	if !shrink.stopped {
		t.Error("shrink tween not stopped")
	}
	if h.c.State() != StateOpening || h.c.Depth() != 0 {
		t.Fatalf("state=%v depth=%d", h.c.State(), h.c.Depth())
	}

	// Late callbacks from the stopped tween are ignored.
	shrink.OnComplete()
	if h.c.State() != StateOpening {
		t.Errorf("stale completion moved state to %v", h.c.State())
	}
	h.anim.drain()
	if h.c.State() != StateOpen || len(h.c.Rows()) != 3 {
		t.Errorf("state=%v rows=%d", h.c.State(), len(h.c.Rows()))
	}
}

func TestController_StaleRow(t *testing.T) {
	h := newHarness(t, false)
	h.c.RequestOpen(anchor, NewModel(flatItems()))

	h.c.Activate(7)
	h.c.Activate(-1)

	if n := h.journal.count(EntryStaleRow); n != 2 {
		t.Errorf("stale entries = %d, want 2", n)
	}
	if h.c.State() != StateOpen {
		t.Errorf("state = %v", h.c.State())
	}
}

func TestController_NilAnimatorOpensImmediately(t *testing.T) {
	c := NewController(DefaultConfig(), &fakeSurface{}, nil, nil, nil)
	c.SetLogger(logging.Discard())
	c.SetViewport(layout.Viewport{Width: 800, Height: 600})

	c.RequestOpen(anchor, NewModel(flatItems()))
	if c.State() != StateOpen {
		t.Fatalf("state = %v", c.State())
	}
	c.RequestClose()
	if c.State() != StateClosed {
		t.Errorf("state = %v", c.State())
	}
}

func TestController_SharedRegistryClosesLastBound(t *testing.T) {
	h := newHarness(t, false)
	second := NewController(DefaultConfig(), &fakeSurface{}, nil, nil, h.reg)
	second.SetLogger(logging.Discard())
	second.SetViewport(layout.Viewport{Width: 800, Height: 600})

	h.c.RequestOpen(anchor, NewModel(flatItems()))
	second.RequestOpen(anchor, NewModel(flatItems()))

	if err := h.reg.Invoke("copy"); err != nil {
		t.Fatalf("Invoke(copy) error = %v", err)
	}
	if second.State() != StateClosed {
		t.Errorf("last bound controller state = %v, want closed", second.State())
	}
	if h.c.State() != StateOpen {
		t.Errorf("earlier controller state = %v, want open", h.c.State())
	}
}

func TestState_String(t *testing.T) {
	if StateClosingToCircle.String() != "closing_to_circle" || State(99).String() != "unknown" {
		t.Error("unexpected state names")
	}
}

func TestController_RowRect(t *testing.T) {
	h := newHarness(t, false)
	if _, ok := h.c.RowRect(0); ok {
		t.Fatal("RowRect() on a closed menu should fail")
	}

	h.c.RequestOpen(layout.Anchor{Point: layout.Point{X: 100, Y: 100}}, NewModel(flatItems()))

	// Card {100,100,280,210}: top 310, first row 24 below it, 50 tall.
	r, ok := h.c.RowRect(0)
	if !ok {
		t.Fatal("RowRect(0) should exist")
	}
	want := layout.Rect{X: 115, Y: 236, Width: 250, Height: 50}
	if r != want {
		t.Errorf("RowRect(0) = %+v, want %+v", r, want)
	}
	if r2, _ := h.c.RowRect(2); r2.Y != 116 {
		t.Errorf("RowRect(2).Y = %v, want 116", r2.Y)
	}
	if _, ok := h.c.RowRect(3); ok {
		t.Error("RowRect(3) should be out of range")
	}
}
