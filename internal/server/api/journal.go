// Package api provides HTTP API handlers over the journal and settings.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/mefu/internal/menu"
	"github.com/ayusman/mefu/internal/store"
)

// defaultLimit caps GET /api/journal without a limit parameter.
const defaultLimit = 100

var kinds = []menu.EntryKind{
	menu.EntryOpened,
	menu.EntryActivated,
	menu.EntrySubmenu,
	menu.EntryBack,
	menu.EntryInvoked,
	menu.EntryHandlerMissing,
	menu.EntryStaleRow,
	menu.EntryClosed,
}

// JournalHandler serves the current session's journal.
type JournalHandler struct {
	journal *store.Journal
}

// NewJournalHandler creates a new JournalHandler.
func NewJournalHandler(j *store.Journal) *JournalHandler {
	return &JournalHandler{journal: j}
}

type entryResponse struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Label      string `json:"label,omitempty"`
	Handler    string `json:"handler,omitempty"`
	Row        int    `json:"row"`
	Depth      int    `json:"depth"`
	At         string `json:"at"`
	Diagnostic bool   `json:"diagnostic"`
}

type listEntriesResponse struct {
	Session string          `json:"session"`
	Entries []entryResponse `json:"entries"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toEntryResponse(r store.Record) entryResponse {
	return entryResponse{
		ID:         r.ID,
		Kind:       string(r.Kind),
		Label:      r.Label,
		Handler:    r.Handler,
		Row:        r.Row,
		Depth:      r.Depth,
		At:         r.At.UTC().Format(time.RFC3339Nano),
		Diagnostic: r.Kind.IsDiagnostic(),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// ServeHTTP routes /api/journal and /api/journal/counts.
func (h *JournalHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/journal")
	path = strings.TrimPrefix(path, "/")

	switch path {
	case "":
		h.list(w, r)
	case "counts":
		h.counts(w, r)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *JournalHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := h.journal.List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list journal")
		return
	}

	resp := listEntriesResponse{
		Session: h.journal.Session(),
		Entries: make([]entryResponse, 0, len(records)),
	}
	for _, rec := range records {
		resp.Entries = append(resp.Entries, toEntryResponse(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *JournalHandler) counts(w http.ResponseWriter, r *http.Request) {
	counts := make(map[string]int, len(kinds))
	for _, k := range kinds {
		n, err := h.journal.CountByKind(k)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to count journal")
			return
		}
		counts[string(k)] = n
	}
	writeJSON(w, http.StatusOK, counts)
}

// SettingsHandler reads and writes single settings at /api/settings/{key}.
type SettingsHandler struct {
	settings *store.Settings
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(s *store.Settings) *SettingsHandler {
	return &SettingsHandler{settings: s}
}

type settingBody struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ServeHTTP implements http.Handler.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/api/settings/")
	if key == "" || strings.Contains(key, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		v, err := h.settings.Get(key)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "setting not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to read setting")
			return
		}
		writeJSON(w, http.StatusOK, settingBody{Key: key, Value: v})
	case http.MethodPut:
		var body settingBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if err := h.settings.Set(key, body.Value); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to write setting")
			return
		}
		writeJSON(w, http.StatusOK, settingBody{Key: key, Value: body.Value})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
