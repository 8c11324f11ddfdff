package menu

import (
	"time"

	"github.com/ayusman/mefu/internal/layout"
)

// Surface is the render side of the menu. The controller only issues these
// abstract operations; drawing, theming and ripples are the surface's concern.
type Surface interface {
	// Show attaches the menu card at bounds with the given rows.
	Show(bounds layout.Rect, rows []Row)
	// Resize moves or resizes the attached card.
	Resize(bounds layout.Rect)
	// SetRowOpacity fades one row; 0 hides it, 1 shows it.
	SetRowOpacity(row int, opacity float64)
	// SetRowHighlight toggles the hover highlight on one row.
	SetRowHighlight(row int, highlighted bool)
	// Remove detaches the card and all its rows.
	Remove()
}

// Tween describes one animation of the menu card between two rectangles.
type Tween struct {
	From     layout.Rect
	To       layout.Rect
	Duration time.Duration
	Easing   string
	// OnProgress receives the interpolated rectangle and the elapsed fraction.
	OnProgress func(current layout.Rect, progress float64)
	// OnComplete runs once after the final OnProgress.
	OnComplete func()
}

// Handle controls a running tween.
type Handle interface {
	// Stop cancels the tween; no further callbacks run.
	Stop()
}

// Animator runs tweens and reports progress and completion asynchronously.
type Animator interface {
	Animate(t Tween) Handle
}

// Window delivers primary-button presses anywhere in the window.
type Window interface {
	// ListenPrimaryClicks registers fn and returns the function that removes it.
	ListenPrimaryClicks(fn func(pos layout.Point)) (detach func())
}

// Easing names understood by the animation driver.
const (
	EaseLinear   = "linear"
	EaseOutCubic = "out_cubic"
)

// Timing holds the animation durations of the open and close sequences.
type Timing struct {
	Grow       time.Duration
	Shrink     time.Duration
	Circle     time.Duration
	Collapse   time.Duration
	Easing     string
	CircleSize float64
}

// DefaultTiming returns the durations the menu animations were tuned with.
func DefaultTiming() Timing {
	return Timing{
		Grow:       300 * time.Millisecond,
		Shrink:     200 * time.Millisecond,
		Circle:     200 * time.Millisecond,
		Collapse:   300 * time.Millisecond,
		Easing:     EaseOutCubic,
		CircleSize: 15,
	}
}
