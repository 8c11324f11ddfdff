package app

import (
	"log/slog"

	"github.com/ayusman/mefu/internal/layout"
	"github.com/ayusman/mefu/internal/menu"
)

// LogSurface is a headless menu.Surface that logs every render call at
// debug level. It stands in for a real renderer.
type LogSurface struct {
	logger *slog.Logger
	shown  bool
	bounds layout.Rect
	rows   []menu.Row
}

// NewLogSurface creates a surface logging to logger.
func NewLogSurface(logger *slog.Logger) *LogSurface {
	return &LogSurface{logger: logger}
}

func (s *LogSurface) Show(bounds layout.Rect, rows []menu.Row) {
	s.shown = true
	s.bounds = bounds
	s.rows = append(s.rows[:0], rows...)

	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = r.Label
	}
	s.logger.Debug("show", "bounds", bounds, "rows", labels)
}

func (s *LogSurface) Resize(bounds layout.Rect) {
	s.bounds = bounds
}

func (s *LogSurface) SetRowOpacity(row int, opacity float64) {
	s.logger.Debug("row opacity", "row", row, "opacity", opacity)
}

func (s *LogSurface) SetRowHighlight(row int, highlighted bool) {
	if row >= 0 && row < len(s.rows) {
		s.logger.Debug("row highlight", "row", row, "label", s.rows[row].Label, "on", highlighted)
	}
}

func (s *LogSurface) Remove() {
	s.logger.Debug("remove", "bounds", s.bounds)
	s.shown = false
	s.rows = s.rows[:0]
}

// Shown reports whether a card is attached.
func (s *LogSurface) Shown() bool { return s.shown }

// Bounds returns the last card rectangle.
func (s *LogSurface) Bounds() layout.Rect { return s.bounds }
