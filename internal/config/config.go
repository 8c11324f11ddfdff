// Package config loads the application configuration: defaults, then an
// optional YAML file, then environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/mefu/internal/anim"
	"github.com/ayusman/mefu/internal/app"
	"github.com/ayusman/mefu/internal/capture"
	"github.com/ayusman/mefu/internal/detector"
	"github.com/ayusman/mefu/internal/gesture"
	"github.com/ayusman/mefu/internal/layout"
	"github.com/ayusman/mefu/internal/logging"
	"github.com/ayusman/mefu/internal/menu"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type ViewportConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type MenuConfig struct {
	File           string         `yaml:"file"`
	Width          float64        `yaml:"width"`
	RowHeight      float64        `yaml:"row_height"`
	RowSpacing     float64        `yaml:"row_spacing"`
	PaddingSide    float64        `yaml:"padding_side"`
	PaddingTop     float64        `yaml:"padding_top"`
	PaddingTopBack float64        `yaml:"padding_top_back"`
	BasePadding    float64        `yaml:"base_padding"`
	Animate        bool           `yaml:"animate"`
	Viewport       ViewportConfig `yaml:"viewport"`
}

type AnimationConfig struct {
	GrowMs     int     `yaml:"grow_ms"`
	ShrinkMs   int     `yaml:"shrink_ms"`
	CircleMs   int     `yaml:"circle_ms"`
	CollapseMs int     `yaml:"collapse_ms"`
	Easing     string  `yaml:"easing"`
	CircleSize float64 `yaml:"circle_size"`
}

type LayoutConfig struct {
	ScaleThreshold float64 `yaml:"scale_threshold"`
	ScaleFactor    float64 `yaml:"scale_factor"`
	InvertFraction float64 `yaml:"invert_fraction"`
	Margin         float64 `yaml:"margin"`
}

type DetectorConfig struct {
	MaxHands      int     `yaml:"max_hands"`
	MinConfidence float64 `yaml:"min_confidence"`
	MinTracking   float64 `yaml:"min_tracking"`
	Script        string  `yaml:"script"`
}

type GestureConfig struct {
	Enabled         bool           `yaml:"enabled"`
	CameraID        int            `yaml:"camera_id"`
	FrameWidth      int            `yaml:"frame_width"`
	FrameHeight     int            `yaml:"frame_height"`
	FPS             int            `yaml:"fps"`
	Mirror          bool           `yaml:"mirror"`
	SwipeDelta      float64        `yaml:"swipe_delta"`
	OpenCooldownMs  int            `yaml:"open_cooldown_ms"`
	SwipeCooldownMs int            `yaml:"swipe_cooldown_ms"`
	BottomMargin    float64        `yaml:"bottom_margin"`
	MinFingerSpread float64        `yaml:"min_finger_spread"`
	PinchDistance   float64        `yaml:"pinch_distance"`
	AbsenceFrames   int            `yaml:"absence_frames"`
	Detector        DetectorConfig `yaml:"detector"`
}

type ServerConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Listen    string `yaml:"listen"`
	StaticDir string `yaml:"static_dir"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type PluginsConfig struct {
	Dir       string `yaml:"dir"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type TrayConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Config is the full application configuration.
type Config struct {
	ConfigVersion int             `yaml:"config_version"`
	Logging       LoggingConfig   `yaml:"logging"`
	Menu          MenuConfig      `yaml:"menu"`
	Animation     AnimationConfig `yaml:"animation"`
	Layout        LayoutConfig    `yaml:"layout"`
	Gesture       GestureConfig   `yaml:"gesture"`
	Server        ServerConfig    `yaml:"server"`
	Store         StoreConfig     `yaml:"store"`
	Plugins       PluginsConfig   `yaml:"plugins"`
	Tray          TrayConfig      `yaml:"tray"`
}

// Defaults returns the application defaults. Tuned values come from the
// packages that own them.
func Defaults() Config {
	lc := layout.DefaultConfig()
	mc := menu.DefaultConfig()
	gc := gesture.DefaultConfig()
	dc := detector.DefaultConfig()
	sc := capture.DefaultSamplerConfig()
	cc := capture.DefaultCameraConfig()

	return Config{
		ConfigVersion: 1,
		Logging:       LoggingConfig{Level: "info", Format: "text"},
		Menu: MenuConfig{
			Width:          mc.Width,
			RowHeight:      mc.RowHeight,
			RowSpacing:     mc.RowSpacing,
			PaddingSide:    mc.PaddingSide,
			PaddingTop:     mc.PaddingTop,
			PaddingTopBack: mc.PaddingTopBack,
			BasePadding:    mc.BasePadding,
			Animate:        mc.Animate,
			Viewport:       ViewportConfig{Width: 1440, Height: 900},
		},
		Animation: AnimationConfig{
			GrowMs:     int(mc.Timing.Grow / time.Millisecond),
			ShrinkMs:   int(mc.Timing.Shrink / time.Millisecond),
			CircleMs:   int(mc.Timing.Circle / time.Millisecond),
			CollapseMs: int(mc.Timing.Collapse / time.Millisecond),
			Easing:     mc.Timing.Easing,
			CircleSize: mc.Timing.CircleSize,
		},
		Layout: LayoutConfig{
			ScaleThreshold: lc.ScaleThreshold,
			ScaleFactor:    lc.ScaleFactor,
			InvertFraction: lc.InvertFraction,
			Margin:         lc.Margin,
		},
		Gesture: GestureConfig{
			Enabled:         false,
			CameraID:        cc.DeviceID,
			FrameWidth:      cc.Width,
			FrameHeight:     cc.Height,
			FPS:             sc.FPS,
			Mirror:          sc.Mirror,
			SwipeDelta:      gc.SwipeDelta,
			OpenCooldownMs:  int(gc.OpenCooldown / time.Millisecond),
			SwipeCooldownMs: int(gc.SwipeCooldown / time.Millisecond),
			BottomMargin:    gc.BottomMargin,
			MinFingerSpread: gc.MinFingerSpread,
			PinchDistance:   gc.PinchDistance,
			AbsenceFrames:   app.DefaultAbsenceFrames,
			Detector: DetectorConfig{
				MaxHands:      dc.MaxHands,
				MinConfidence: dc.MinConfidence,
				MinTracking:   dc.MinTrackingConf,
			},
		},
		Server:  ServerConfig{Enabled: true, Listen: "127.0.0.1:8765"},
		Store:   StoreConfig{Path: filepath.Join(DataDir(), "mefu.db")},
		Plugins: PluginsConfig{Dir: filepath.Join(DataDir(), "plugins"), TimeoutMs: 5000},
		Tray:    TrayConfig{Enabled: true},
	}
}

// Env var names used as overrides.
const (
	EnvLogLevel  = "MEFU_LOG_LEVEL"
	EnvLogFormat = "MEFU_LOG_FORMAT"
	EnvLogFile   = "MEFU_LOG_FILE"
	EnvCameraID  = "MEFU_CAMERA_ID"
	EnvGesture   = "MEFU_GESTURE"
	EnvAnimate   = "MEFU_ANIMATE"
	EnvDB        = "MEFU_DB"
	EnvListen    = "MEFU_LISTEN"
	EnvMenuFile  = "MEFU_MENU"
)

// DataDir returns the per-user data directory.
func DataDir() string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "mefu")
	case "windows":
		if base := os.Getenv("AppData"); base != "" {
			return filepath.Join(base, "mefu")
		}
		return filepath.Join(home, "AppData", "Roaming", "mefu")
	default:
		return filepath.Join(home, ".mefu")
	}
}

// DefaultPath returns the per-user config file path.
func DefaultPath() string {
	return filepath.Join(DataDir(), "config.yaml")
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file; a
// missing file at DefaultPath is not an error.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && path == DefaultPath():
		default:
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg as YAML to path.
func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func parseBool(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCameraID)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Gesture.CameraID = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvGesture)); v != "" {
		cfg.Gesture.Enabled = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvAnimate)); v != "" {
		cfg.Menu.Animate = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvDB)); v != "" {
		cfg.Store.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvListen)); v != "" {
		cfg.Server.Listen = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvMenuFile)); v != "" {
		cfg.Menu.File = v
	}
}

// Validate reports every out-of-range field, joined, each wrapping
// ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	bad := func(field, format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s: %s", ErrInvalidConfig, field, fmt.Sprintf(format, args...)))
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		bad("logging.level", "unknown level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		bad("logging.format", "unknown format %q", c.Logging.Format)
	}

	if c.Menu.Width <= 0 {
		bad("menu.width", "must be positive")
	}
	if c.Menu.RowHeight <= c.Menu.RowSpacing {
		bad("menu.row_height", "must exceed row_spacing (%g)", c.Menu.RowSpacing)
	}
	if c.Menu.Viewport.Width <= 0 || c.Menu.Viewport.Height <= 0 {
		bad("menu.viewport", "must be positive")
	}

	for name, ms := range map[string]int{
		"animation.grow_ms":     c.Animation.GrowMs,
		"animation.shrink_ms":   c.Animation.ShrinkMs,
		"animation.circle_ms":   c.Animation.CircleMs,
		"animation.collapse_ms": c.Animation.CollapseMs,
	} {
		if ms < 0 {
			bad(name, "must not be negative")
		}
	}
	if _, ok := anim.Easing(c.Animation.Easing); !ok {
		bad("animation.easing", "unknown easing %q", c.Animation.Easing)
	}

	if c.Layout.ScaleThreshold <= 0 || c.Layout.ScaleFactor <= 0 {
		bad("layout", "scale threshold and factor must be positive")
	}
	if c.Layout.InvertFraction < 0 || c.Layout.InvertFraction > 1 {
		bad("layout.invert_fraction", "must be within [0,1]")
	}

	if c.Gesture.FPS <= 0 {
		bad("gesture.fps", "must be positive")
	}
	if c.Gesture.CameraID < 0 {
		bad("gesture.camera_id", "must not be negative")
	}
	if c.Gesture.AbsenceFrames < 1 {
		bad("gesture.absence_frames", "must be at least 1")
	}
	if c.Gesture.FrameWidth <= 0 || c.Gesture.FrameHeight <= 0 {
		bad("gesture.frame_width", "frame size must be positive")
	}
	if c.Gesture.BottomMargin <= 0 || c.Gesture.BottomMargin > 1 {
		bad("gesture.bottom_margin", "must be within (0,1]")
	}
	if c.Gesture.SwipeDelta <= 0 {
		bad("gesture.swipe_delta", "must be positive")
	}

	if c.Plugins.TimeoutMs < 0 {
		bad("plugins.timeout_ms", "must not be negative")
	}

	return errors.Join(errs...)
}

// LoggingOptions maps the logging section onto logging.Options.
func (c Config) LoggingOptions() logging.Options {
	return logging.Options{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		AddSource: c.Logging.Source,
		File:      c.Logging.File,
	}
}

// LayoutConfig maps the layout section onto layout.Config.
func (c Config) LayoutConfig() layout.Config {
	return layout.Config{
		ScaleThreshold: c.Layout.ScaleThreshold,
		ScaleFactor:    c.Layout.ScaleFactor,
		InvertFraction: c.Layout.InvertFraction,
		Margin:         c.Layout.Margin,
	}
}

// MenuConfig maps the menu and animation sections onto menu.Config.
func (c Config) MenuConfig() menu.Config {
	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }
	return menu.Config{
		Width:          c.Menu.Width,
		RowHeight:      c.Menu.RowHeight,
		RowSpacing:     c.Menu.RowSpacing,
		PaddingSide:    c.Menu.PaddingSide,
		PaddingTop:     c.Menu.PaddingTop,
		PaddingTopBack: c.Menu.PaddingTopBack,
		BasePadding:    c.Menu.BasePadding,
		Animate:        c.Menu.Animate,
		Timing: menu.Timing{
			Grow:       ms(c.Animation.GrowMs),
			Shrink:     ms(c.Animation.ShrinkMs),
			Circle:     ms(c.Animation.CircleMs),
			Collapse:   ms(c.Animation.CollapseMs),
			Easing:     c.Animation.Easing,
			CircleSize: c.Animation.CircleSize,
		},
	}
}

// Viewport returns the configured window size.
func (c Config) Viewport() layout.Viewport {
	return layout.Viewport{Width: c.Menu.Viewport.Width, Height: c.Menu.Viewport.Height}
}

// GestureConfig maps the gesture thresholds onto gesture.Config.
func (c Config) GestureConfig() gesture.Config {
	return gesture.Config{
		SwipeDelta:      c.Gesture.SwipeDelta,
		OpenCooldown:    time.Duration(c.Gesture.OpenCooldownMs) * time.Millisecond,
		SwipeCooldown:   time.Duration(c.Gesture.SwipeCooldownMs) * time.Millisecond,
		BottomMargin:    c.Gesture.BottomMargin,
		MinFingerSpread: c.Gesture.MinFingerSpread,
		PinchDistance:   c.Gesture.PinchDistance,
	}
}

// SamplerConfig maps the capture settings onto capture.SamplerConfig.
func (c Config) SamplerConfig() capture.SamplerConfig {
	return capture.SamplerConfig{FPS: c.Gesture.FPS, Mirror: c.Gesture.Mirror}
}

// AppConfig assembles the menu loop configuration.
func (c Config) AppConfig() app.Config {
	return app.Config{
		Viewport:      c.Viewport(),
		TickRate:      app.DefaultTickRate,
		Menu:          c.MenuConfig(),
		Layout:        c.LayoutConfig(),
		Gesture:       c.GestureConfig(),
		AbsenceFrames: c.Gesture.AbsenceFrames,
	}
}

// CameraConfig maps the capture device settings onto capture.CameraConfig.
func (c Config) CameraConfig() capture.CameraConfig {
	return capture.CameraConfig{
		DeviceID: c.Gesture.CameraID,
		Width:    c.Gesture.FrameWidth,
		Height:   c.Gesture.FrameHeight,
	}
}

// DetectorConfig maps the detector section onto detector.Config.
func (c Config) DetectorConfig() detector.Config {
	return detector.Config{
		MaxHands:        c.Gesture.Detector.MaxHands,
		MinConfidence:   c.Gesture.Detector.MinConfidence,
		MinTrackingConf: c.Gesture.Detector.MinTracking,
		ScriptPath:      c.Gesture.Detector.Script,
	}
}

// PluginTimeout returns the per-invocation plugin timeout.
func (c Config) PluginTimeout() time.Duration {
	return time.Duration(c.Plugins.TimeoutMs) * time.Millisecond
}
