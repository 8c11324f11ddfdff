package store

import (
	"database/sql"
	"errors"
	"strconv"
)

// Settings is a key-value view over the settings table.
type Settings struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *Settings {
	return &Settings{db: s.db}
}

// Get returns the value for key, or ErrNotFound.
func (r *Settings) Get(key string) (string, error) {
	var v string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return v, err
}

// Set stores value under key, replacing any previous value.
func (r *Settings) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// Bool returns the boolean stored under key, or def when it is missing or
// unparsable.
func (r *Settings) Bool(key string, def bool) bool {
	v, err := r.Get(key)
	if err != nil {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// SetBool stores a boolean under key.
func (r *Settings) SetBool(key string, v bool) error {
	return r.Set(key, strconv.FormatBool(v))
}
