// Package anim drives menu card tweens with gween.
//
// There is no timer: the owner calls Update(dt) from its loop, and all
// progress and completion callbacks run inside that call.
package anim

import (
	"log/slog"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/ayusman/mefu/internal/layout"
	"github.com/ayusman/mefu/internal/logging"
	"github.com/ayusman/mefu/internal/menu"
)

var easings = map[string]ease.TweenFunc{
	menu.EaseLinear:   ease.Linear,
	menu.EaseOutCubic: ease.OutCubic,
	"in_cubic":        ease.InCubic,
	"in_out_cubic":    ease.InOutCubic,
	"out_quad":        ease.OutQuad,
	"in_out_quad":     ease.InOutQuad,
}

// Easing returns the easing function for name, or linear if unknown.
func Easing(name string) (ease.TweenFunc, bool) {
	fn, ok := easings[name]
	if !ok {
		return ease.Linear, false
	}
	return fn, true
}

// tween animates the four edges of a rectangle.
type tween struct {
	spec     menu.Tween
	fields   [4]*gween.Tween
	elapsed  float32
	duration float32
	stopped  bool
}

// Stop cancels the tween. Safe to call from inside a callback.
func (t *tween) Stop() { t.stopped = true }

func (t *tween) step(dt float32) (layout.Rect, float64, bool) {
	t.elapsed += dt
	if t.duration <= 0 || t.elapsed >= t.duration {
		return t.spec.To, 1, true
	}

	var v [4]float32
	for i, f := range t.fields {
		v[i], _ = f.Update(dt)
	}
	cur := layout.Rect{X: float64(v[0]), Y: float64(v[1]), Width: float64(v[2]), Height: float64(v[3])}
	return cur, float64(t.elapsed / t.duration), false
}

// Driver implements menu.Animator.
type Driver struct {
	active []*tween
	logger *slog.Logger
}

// NewDriver creates an idle driver.
func NewDriver() *Driver {
	return &Driver{logger: logging.With("anim")}
}

// Animate schedules t; it starts advancing on the next Update.
func (d *Driver) Animate(t menu.Tween) menu.Handle {
	fn, ok := Easing(t.Easing)
	if !ok && t.Easing != "" {
		d.logger.Warn("unknown easing, using linear", slog.String("easing", t.Easing))
	}

	dur := float32(t.Duration.Seconds())
	tw := &tween{spec: t, duration: dur}
	tw.fields[0] = gween.New(float32(t.From.X), float32(t.To.X), dur, fn)
	tw.fields[1] = gween.New(float32(t.From.Y), float32(t.To.Y), dur, fn)
	tw.fields[2] = gween.New(float32(t.From.Width), float32(t.To.Width), dur, fn)
	tw.fields[3] = gween.New(float32(t.From.Height), float32(t.To.Height), dur, fn)

	d.active = append(d.active, tw)
	return tw
}

// Update advances every running tween by dt seconds. Tweens started from a
// callback begin on the following Update.
func (d *Driver) Update(dt float32) {
	if len(d.active) == 0 {
		return
	}

	batch := d.active
	d.active = nil

	var running, finished []*tween
	for _, tw := range batch {
		if tw.stopped {
			continue
		}
		cur, progress, done := tw.step(dt)
		if tw.spec.OnProgress != nil {
			tw.spec.OnProgress(cur, progress)
		}
		if done {
			finished = append(finished, tw)
		} else {
			running = append(running, tw)
		}
	}

	for _, tw := range finished {
		if tw.stopped {
			continue
		}
		tw.stopped = true
		if tw.spec.OnComplete != nil {
			tw.spec.OnComplete()
		}
	}

	kept := running[:0]
	for _, tw := range running {
		if !tw.stopped {
			kept = append(kept, tw)
		}
	}
	d.active = append(kept, d.active...)
}

// Active returns the number of running tweens.
func (d *Driver) Active() int {
	n := 0
	for _, tw := range d.active {
		if !tw.stopped {
			n++
		}
	}
	return n
}
