package layout

// Config holds the tuned heuristics used by the Normalizer.
type Config struct {
	// ScaleThreshold decides the device-scale correction: when
	// rawX*ScaleThreshold <= viewport width the raw point is scaled.
	ScaleThreshold float64
	// ScaleFactor is applied to both axes when the correction triggers.
	ScaleFactor float64
	// InvertFraction is the fraction of viewport height below which the
	// raw Y is mirrored (height - y).
	InvertFraction float64
	// Margin is the minimum gap kept between a clamped menu and the viewport edges.
	Margin float64
}

// DefaultConfig returns the thresholds the menu was tuned with.
func DefaultConfig() Config {
	return Config{
		ScaleThreshold: 1.9,
		ScaleFactor:    2.0,
		InvertFraction: 0.4,
		Margin:         10,
	}
}

// Normalizer turns raw input positions into menu anchors.
//
// The scale correction is a heuristic for displays that report pointer
// positions in points while rendering in pixels; it is not a DPI query.
type Normalizer struct {
	cfg Config
}

// NewNormalizer creates a Normalizer. Zero fields fall back to defaults.
func NewNormalizer(cfg Config) *Normalizer {
	def := DefaultConfig()
	if cfg.ScaleThreshold <= 0 {
		cfg.ScaleThreshold = def.ScaleThreshold
	}
	if cfg.ScaleFactor <= 0 {
		cfg.ScaleFactor = def.ScaleFactor
	}
	if cfg.InvertFraction <= 0 {
		cfg.InvertFraction = def.InvertFraction
	}
	if cfg.Margin <= 0 {
		cfg.Margin = def.Margin
	}
	return &Normalizer{cfg: cfg}
}

// Config returns the active configuration.
func (n *Normalizer) Config() Config {
	return n.cfg
}

// Scale returns the device-scale factor chosen for a raw X coordinate.
// Equality with the threshold selects the scaled branch.
func (n *Normalizer) Scale(rawX float64, vp Viewport) float64 {
	if rawX*n.cfg.ScaleThreshold <= vp.Width {
		return n.cfg.ScaleFactor
	}
	return 1.0
}

// NormalizeOpen converts a raw pointer position into a pointer anchor.
// The vertical inversion is decided on the raw Y, applied to the scaled Y.
func (n *Normalizer) NormalizeOpen(raw Point, vp Viewport) Anchor {
	scale := n.Scale(raw.X, vp)

	x := raw.X * scale
	y := raw.Y * scale
	if raw.Y < vp.Height*n.cfg.InvertFraction {
		y = vp.Height - y
	}

	return Anchor{Point: Point{X: x, Y: y}, FromGesture: false}
}

// ClampFinal moves the bottom-left corner of a menu of the given size so the
// whole rectangle stays Margin pixels inside the viewport. When the menu is
// larger than the viewport the lower bound wins.
func (n *Normalizer) ClampFinal(a Anchor, menu Size, vp Viewport) Anchor {
	m := n.cfg.Margin
	a.X = clamp(a.X, m, vp.Width-menu.Width-m)
	a.Y = clamp(a.Y, m, vp.Height-menu.Height-m)
	return a
}

// Center returns the fixed anchor used for gesture-opened menus.
func (n *Normalizer) Center(vp Viewport) Anchor {
	return Anchor{Point: Point{X: vp.Width / 2, Y: vp.Height / 2}, FromGesture: true}
}

// FrameToViewport rescales a position in camera-frame pixels (Y already
// flipped to grow upward) into window coordinates.
func FrameToViewport(p Point, frame Size, vp Viewport) Point {
	if frame.Width <= 0 || frame.Height <= 0 {
		return p
	}
	return Point{
		X: p.X * vp.Width / frame.Width,
		Y: p.Y * vp.Height / frame.Height,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
