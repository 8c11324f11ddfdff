package menu

import "github.com/ayusman/mefu/internal/layout"

// Row is one rendered line of the menu card, top to bottom.
type Row struct {
	Label string
	Icon  string
	Back  bool
	// ItemIndex is the backing index into the current level; -1 for the Back row.
	ItemIndex int
}

const (
	backLabel = "Back"
	backIcon  = "arrow-left"
)

// buildRows lays out the current level, with a Back row first inside a submenu.
func buildRows(m Model) []Row {
	rows := make([]Row, 0, m.Len()+1)
	if m.InSubmenu() {
		rows = append(rows, Row{Label: backLabel, Icon: backIcon, Back: true, ItemIndex: -1})
	}
	for i, item := range m.Items() {
		rows = append(rows, Row{Label: item.Name, Icon: item.Icon, ItemIndex: i})
	}
	return rows
}

// menuSize returns the final card size for the current level.
func (c Config) menuSize(m Model) layout.Size {
	h := float64(m.Len())*c.RowHeight + c.BasePadding
	if m.InSubmenu() {
		h += c.RowHeight
	}
	return layout.Size{Width: c.Width, Height: h}
}

func (c Config) paddingTop(back bool) float64 {
	if back {
		return c.PaddingTopBack
	}
	return c.PaddingTop
}

// rowRect returns the hit box of row r on a card at bounds.
func (c Config) rowRect(bounds layout.Rect, r int, back bool) layout.Rect {
	h := c.RowHeight - c.RowSpacing
	top := bounds.Top() - c.paddingTop(back) - float64(r)*c.RowHeight
	return layout.Rect{
		X:      bounds.X + c.PaddingSide,
		Y:      top - h,
		Width:  bounds.Width - 2*c.PaddingSide,
		Height: h,
	}
}

// hitTest finds the row under p.
func (c Config) hitTest(bounds layout.Rect, rows []Row, p layout.Point) (int, bool) {
	if !bounds.Contains(p) {
		return 0, false
	}
	back := len(rows) > 0 && rows[0].Back
	for i := range rows {
		if c.rowRect(bounds, i, back).Contains(p) {
			return i, true
		}
	}
	return 0, false
}

// revealed reports whether row r is visible while the card grows to height.
// Rows appear bottom first; the Back row is always visible.
func (c Config) revealed(rows []Row, r int, height float64) bool {
	if rows[r].Back {
		return true
	}
	child := len(rows) - 1 - r
	return height > float64(child+1)*c.RowHeight-c.RowSpacing
}

// retained reports whether row r is still visible while the card shrinks to height.
func (c Config) retained(rows []Row, r int, height float64) bool {
	child := len(rows) - 1 - r
	return height-float64(child+1)*c.RowHeight > 0
}
