// Package menu implements the popup menu: its content tree, submenu history,
// handler registry and the controller state machine that drives opening,
// navigation, activation and closing.
package menu

// Item is one entry of the menu content tree. Items are supplied by the
// application and never mutated by the controller.
type Item struct {
	Name     string `json:"name" yaml:"name"`
	Icon     string `json:"icon" yaml:"icon"`
	Handler  string `json:"handler,omitempty" yaml:"handler,omitempty"`
	Children []Item `json:"children,omitempty" yaml:"children,omitempty"`
}

// HasChildren reports whether selecting the item descends into a submenu.
// Children win over Handler when both are set.
func (i Item) HasChildren() bool {
	return len(i.Children) > 0
}

// Model is the visible item level plus the stack of parent levels.
// The zero value is an empty menu.
type Model struct {
	items   []Item
	history [][]Item
}

// NewModel creates a model showing items at the root level.
func NewModel(items []Item) Model {
	return Model{items: items}
}

// Items returns the current level.
func (m Model) Items() []Item {
	return m.items
}

// Len returns the number of items at the current level.
func (m Model) Len() int {
	return len(m.items)
}

// At returns the item at index i of the current level.
func (m Model) At(i int) (Item, bool) {
	if i < 0 || i >= len(m.items) {
		return Item{}, false
	}
	return m.items[i], true
}

// Depth is the number of parent levels on the history stack.
func (m Model) Depth() int {
	return len(m.history)
}

// InSubmenu reports whether a Back row should be shown.
func (m Model) InSubmenu() bool {
	return len(m.history) > 0
}

// Enter pushes the current level and shows children.
func (m *Model) Enter(children []Item) {
	m.history = append(m.history, m.items)
	m.items = children
}

// Back pops one level. It returns false, leaving the model untouched, when
// already at the root.
func (m *Model) Back() bool {
	n := len(m.history)
	if n == 0 {
		return false
	}
	m.items = m.history[n-1]
	m.history[n-1] = nil
	m.history = m.history[:n-1]
	return true
}

// Reset returns to the root level and clears the history.
func (m *Model) Reset() {
	if len(m.history) > 0 {
		m.items = m.history[0]
	}
	m.history = nil
}

// Clone returns a model that shares item slices but owns its history stack.
func (m Model) Clone() Model {
	c := Model{items: m.items}
	if len(m.history) > 0 {
		c.history = make([][]Item, len(m.history))
		copy(c.history, m.history)
	}
	return c
}
