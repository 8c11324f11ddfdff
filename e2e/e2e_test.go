package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mefu/internal/app"
	"github.com/ayusman/mefu/internal/detector"
	"github.com/ayusman/mefu/internal/layout"
	"github.com/ayusman/mefu/internal/logging"
	"github.com/ayusman/mefu/internal/menu"
	"github.com/ayusman/mefu/internal/server"
	"github.com/ayusman/mefu/internal/store"
)

type stack struct {
	t     *testing.T
	app   *app.App
	ts    *httptest.Server
	calls map[string]int
	now   time.Time
}

func newStack(t *testing.T) *stack {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "mefu.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })
	journal := st.Journal()

	cfg := app.DefaultConfig()
	cfg.Viewport = layout.Viewport{Width: 1000, Height: 800}
	cfg.Menu.Animate = false

	s := &stack{t: t, calls: make(map[string]int), now: time.Now()}
	s.app = app.New(cfg, app.NewLogSurface(logging.Discard()), nil)
	s.app.SetLogger(logging.Discard())
	s.app.SetJournal(journal)
	for _, name := range []string{"copy", "paste"} {
		s.app.Registry().Register(name, func() { s.calls[name]++ })
	}
	s.app.SetItems([]menu.Item{
		{Name: "Copy", Icon: "copy", Handler: "copy"},
		{Name: "Paste", Icon: "paste", Handler: "paste"},
	})

	srv := server.New(server.Config{
		Slot:     s.app.Slot(),
		Journal:  journal,
		Settings: st.Settings(),
		Logger:   logging.Discard(),
		OnPointer: func(pos layout.Point, secondary bool) {
			b := app.ButtonPrimary
			if secondary {
				b = app.ButtonSecondary
			}
			s.app.Post(app.PointerEvent{Pos: pos, Button: b})
		},
	})
	s.ts = httptest.NewServer(srv)
	t.Cleanup(s.ts.Close)
	return s
}

func (s *stack) step() {
	s.now = s.now.Add(33 * time.Millisecond)
	s.app.Step(s.now)
}

func (s *stack) pointer(x, y float64, button string) {
	s.t.Helper()
	body, _ := json.Marshal(map[string]any{"x": x, "y": y, "button": button})
	resp, err := s.ts.Client().Post(s.ts.URL+"/api/pointer", "application/json", bytes.NewReader(body))
	if err != nil {
		s.t.Fatalf("POST /api/pointer: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		s.t.Fatalf("POST /api/pointer status = %d", resp.StatusCode)
	}
	s.step()
}

func (s *stack) dial() *websocket.Conn {
	s.t.Helper()
	url := "ws" + strings.TrimPrefix(s.ts.URL, "http") + "/api/landmarks"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		s.t.Fatalf("dial %s: %v", url, err)
	}
	s.t.Cleanup(func() { conn.Close() })
	return conn
}

// ingest sends one 1000x800 frame, so frame and window coordinates coincide,
// then runs a loop step.
func (s *stack) ingest(conn *websocket.Conn, hand detector.HandLandmarks) {
	s.t.Helper()
	conn.SetDeadline(time.Now().Add(5 * time.Second))
	err := conn.WriteJSON(map[string]any{
		"width":  1000,
		"height": 800,
		"hands":  []detector.HandLandmarks{hand},
	})
	if err != nil {
		s.t.Fatalf("write: %v", err)
	}
	var ack server.IngestAck
	if err := conn.ReadJSON(&ack); err != nil {
		s.t.Fatalf("read ack: %v", err)
	}
	if !ack.OK {
		s.t.Fatalf("ack = %+v", ack)
	}
	s.step()
}

type journalBody struct {
	Session string `json:"session"`
	Entries []struct {
		Kind    string `json:"kind"`
		Handler string `json:"handler"`
	} `json:"entries"`
}

func (s *stack) journal() journalBody {
	s.t.Helper()
	resp, err := s.ts.Client().Get(s.ts.URL + "/api/journal")
	if err != nil {
		s.t.Fatalf("GET /api/journal: %v", err)
	}
	defer resp.Body.Close()
	var body journalBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		s.t.Fatalf("decode journal: %v", err)
	}
	return body
}

// pointAt moves the index tip of hand to a window position.
func pointAt(hand detector.HandLandmarks, p layout.Point, pinch bool) detector.HandLandmarks {
	hand.Points[detector.IndexTip] = detector.Point3D{X: p.X / 1000, Y: 1 - p.Y/800}
	if pinch {
		hand.Points[detector.MiddleTip] = hand.Points[detector.ThumbTip]
	}
	return hand
}

func TestE2E_GestureOpenAndPinch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	s := newStack(t)
	s.app.SetGestureEnabled(true)
	s.step()

	conn := s.dial()
	palm := detector.OpenPalmLandmarks()
	raised := detector.Translate(palm, 0, -0.2)

	s.ingest(conn, palm)
	s.ingest(conn, raised)

	c := s.app.Controller()
	if c.State() != menu.StateOpen {
		t.Fatalf("State() = %v, want open", c.State())
	}
	if b := c.Bounds(); b.X != 500 || b.Y != 400 {
		t.Errorf("origin = (%v, %v), want viewport center", b.X, b.Y)
	}

	r, ok := c.RowRect(0)
	if !ok {
		t.Fatal("no row 0")
	}
	target := layout.Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}

	s.ingest(conn, pointAt(raised, target, false))
	if hv := c.Hover(); !hv.Valid || hv.Index != 0 {
		t.Fatalf("Hover() = %+v, want row 0", hv)
	}
	s.ingest(conn, pointAt(raised, target, true))

	if s.calls["copy"] != 1 {
		t.Errorf("copy calls = %d, want 1", s.calls["copy"])
	}
	if c.State() != menu.StateClosed {
		t.Errorf("State() = %v, want closed", c.State())
	}

	body := s.journal()
	if body.Session == "" {
		t.Error("journal should report a session")
	}
	seen := make(map[string]bool)
	for _, e := range body.Entries {
		seen[e.Kind] = true
		if e.Kind == string(menu.EntryInvoked) && e.Handler != "copy" {
			t.Errorf("invoked handler = %q, want copy", e.Handler)
		}
	}
	for _, k := range []menu.EntryKind{menu.EntryOpened, menu.EntryInvoked, menu.EntryClosed} {
		if !seen[string(k)] {
			t.Errorf("journal is missing a %q entry: %+v", k, body.Entries)
		}
	}
}

func TestE2E_PointerOpenAndActivate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	s := newStack(t)
	s.pointer(600, 500, "secondary")

	c := s.app.Controller()
	if c.State() != menu.StateOpen {
		t.Fatalf("State() = %v, want open", c.State())
	}

	r, ok := c.RowRect(1)
	if !ok {
		t.Fatal("no row 1")
	}
	s.pointer(r.X+r.Width/2, r.Y+r.Height/2, "primary")

	if s.calls["paste"] != 1 {
		t.Errorf("paste calls = %d, want 1", s.calls["paste"])
	}
	if c.State() != menu.StateClosed {
		t.Errorf("State() = %v, want closed", c.State())
	}

	// Gesture mode is off, so ingested frames are ignored.
	conn := s.dial()
	s.ingest(conn, detector.OpenPalmLandmarks())
	s.ingest(conn, detector.Translate(detector.OpenPalmLandmarks(), 0, -0.2))
	if c.State() != menu.StateClosed {
		t.Errorf("State() = %v, want closed while gestures are off", c.State())
	}
}
