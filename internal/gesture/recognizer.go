// Package gesture turns the per-frame stream of hand poses into discrete menu
// events: open, dismiss (swipe right) and navigate with a pinch-select flag.
package gesture

import (
	"time"

	"github.com/ayusman/mefu/internal/detector"
	"github.com/ayusman/mefu/internal/layout"
)

// Kind identifies a recognized gesture.
type Kind int

const (
	// KindOpenMenu is an upward flick of an open hand.
	KindOpenMenu Kind = iota + 1
	// KindSwipeRight is a fast rightward wrist movement, used to dismiss.
	KindSwipeRight
	// KindNavigate carries the pointing position every frame a hand is visible.
	KindNavigate
)

func (k Kind) String() string {
	switch k {
	case KindOpenMenu:
		return "open_menu"
	case KindSwipeRight:
		return "swipe_right"
	case KindNavigate:
		return "navigate"
	default:
		return "unknown"
	}
}

// Event is one recognized gesture. Pos is in frame pixels with Y growing
// upward; Frame carries the frame size so callers can rescale it.
type Event struct {
	Kind   Kind
	Pos    layout.Point
	Select bool
	Frame  layout.Size
	At     time.Time
}

// Config holds the tuned recognition thresholds.
type Config struct {
	// SwipeDelta is the per-frame wrist travel in pixels that counts as a flick.
	SwipeDelta float64
	// OpenCooldown is the minimum time since the last trigger for OpenMenu.
	OpenCooldown time.Duration
	// SwipeCooldown is the minimum time since the last trigger for SwipeRight.
	SwipeCooldown time.Duration
	// BottomMargin is the fraction of frame height below which the wrist
	// cannot open the menu.
	BottomMargin float64
	// MinFingerSpread is the normalized middle-tip to wrist distance required
	// for OpenMenu, which rejects a closed fist.
	MinFingerSpread float64
	// PinchDistance is the normalized thumb-tip to middle-tip distance under
	// which navigation reports select.
	PinchDistance float64
}

// DefaultConfig returns the thresholds the recognizer was tuned with.
func DefaultConfig() Config {
	return Config{
		SwipeDelta:      40,
		OpenCooldown:    300 * time.Millisecond,
		SwipeCooldown:   time.Second,
		BottomMargin:    0.9,
		MinFingerSpread: 0.1,
		PinchDistance:   0.02,
	}
}

// Recognizer keeps the minimal cross-frame state needed for flick detection.
// It is not safe for concurrent use; feed it from a single goroutine.
type Recognizer struct {
	cfg       Config
	prevX     float64
	prevY     float64
	hasPrev   bool
	lastEvent time.Time
	now       func() time.Time
}

// NewRecognizer creates a Recognizer with the given thresholds.
func NewRecognizer(cfg Config) *Recognizer {
	return &Recognizer{cfg: cfg, now: time.Now}
}

// Config returns the active thresholds.
func (r *Recognizer) Config() Config {
	return r.cfg
}

// Reset forgets the previous wrist position and trigger time.
func (r *Recognizer) Reset() {
	r.hasPrev = false
	r.prevX, r.prevY = 0, 0
	r.lastEvent = time.Time{}
}

// Process consumes one sample. A frame without a hand yields nothing and
// leaves the stored wrist position untouched, so one dropped frame does not
// corrupt the next delta. Otherwise the result holds at most one trigger
// (OpenMenu before SwipeRight) followed by a Navigate event.
func (r *Recognizer) Process(s detector.Sample) []Event {
	if s.Pose == nil {
		return nil
	}

	now := s.At
	if now.IsZero() {
		now = r.now()
	}

	w := float64(s.FrameWidth)
	h := float64(s.FrameHeight)
	frame := layout.Size{Width: w, Height: h}
	pose := s.Pose

	wristX := pose.Wrist.X * w
	wristY := pose.Wrist.Y * h

	var events []Event

	if r.hasPrev {
		if trigger, ok := r.trigger(pose, wristX, wristY, h, now); ok {
			trigger.Frame = frame
			events = append(events, trigger)
		}
	}

	// Deltas above were taken against the previous frame; only now advance.
	r.prevX, r.prevY = wristX, wristY
	r.hasPrev = true

	events = append(events, Event{
		Kind:   KindNavigate,
		Pos:    layout.Point{X: pose.IndexTip.X * w, Y: h - pose.IndexTip.Y*h},
		Select: detector.Distance2D(pose.ThumbTip, pose.MiddleTip) < r.cfg.PinchDistance,
		Frame:  frame,
		At:     now,
	})

	return events
}

func (r *Recognizer) trigger(pose *detector.HandPose, wristX, wristY, h float64, now time.Time) (Event, bool) {
	pos := layout.Point{X: wristX, Y: h - wristY}
	since := now.Sub(r.lastEvent)

	dy := r.prevY - wristY
	if dy > r.cfg.SwipeDelta &&
		since > r.cfg.OpenCooldown &&
		wristY < h*r.cfg.BottomMargin &&
		detector.Distance2D(pose.MiddleTip, pose.Wrist) > r.cfg.MinFingerSpread {
		r.lastEvent = now
		return Event{Kind: KindOpenMenu, Pos: pos, At: now}, true
	}

	dx := wristX - r.prevX
	if dx > r.cfg.SwipeDelta && since > r.cfg.SwipeCooldown {
		r.lastEvent = now
		return Event{Kind: KindSwipeRight, Pos: pos, At: now}, true
	}

	return Event{}, false
}
