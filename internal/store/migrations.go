package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Journal of controller activity and diagnostics
		`CREATE TABLE IF NOT EXISTS journal (
			id TEXT PRIMARY KEY,
			session TEXT NOT NULL,
			seq INTEGER NOT NULL,
			kind TEXT NOT NULL,
			label TEXT NOT NULL DEFAULT '',
			handler TEXT NOT NULL DEFAULT '',
			row_index INTEGER NOT NULL DEFAULT -1,
			depth INTEGER NOT NULL DEFAULT 0,
			at_ns INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_journal_kind ON journal(kind)`,
		`CREATE INDEX IF NOT EXISTS idx_journal_session_seq ON journal(session, seq)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
