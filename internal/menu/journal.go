package menu

import "time"

// EntryKind classifies a journal entry.
type EntryKind string

// Journal entry kinds. HandlerMissing and StaleRow are diagnostics.
const (
	EntryOpened         EntryKind = "opened"
	EntryActivated      EntryKind = "activated"
	EntrySubmenu        EntryKind = "submenu"
	EntryBack           EntryKind = "back"
	EntryInvoked        EntryKind = "invoked"
	EntryHandlerMissing EntryKind = "handler_missing"
	EntryStaleRow       EntryKind = "stale_row"
	EntryClosed         EntryKind = "closed"
)

// IsDiagnostic reports whether the entry records an anomaly.
func (k EntryKind) IsDiagnostic() bool {
	return k == EntryHandlerMissing || k == EntryStaleRow
}

// Entry is one observable event of the controller.
type Entry struct {
	Kind    EntryKind
	Label   string
	Handler string
	Row     int
	Depth   int
	At      time.Time
}

// Journal receives controller activity and diagnostics.
type Journal interface {
	Record(e Entry)
}

// JournalFunc adapts a function to the Journal interface.
type JournalFunc func(e Entry)

// Record calls f(e).
func (f JournalFunc) Record(e Entry) { f(e) }

// MultiJournal records every entry to each of js in order.
func MultiJournal(js ...Journal) Journal {
	return JournalFunc(func(e Entry) {
		for _, j := range js {
			if j != nil {
				j.Record(e)
			}
		}
	})
}
