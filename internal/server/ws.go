package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mefu/internal/capture"
	"github.com/ayusman/mefu/internal/detector"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// IngestFrame is one message from a remote landmark detector. Coordinates
// are normalized to the frame; Width and Height give its pixel size.
type IngestFrame struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// IngestAck is written back after every frame.
type IngestAck struct {
	OK    bool   `json:"ok"`
	Hands int    `json:"hands"`
	Error string `json:"error,omitempty"`
}

// IngestHandler accepts landmark frames over a websocket and publishes each
// one to a PoseSlot. A frame with no hands publishes an absent sample.
type IngestHandler struct {
	slot   *capture.PoseSlot
	logger *slog.Logger
	now    func() time.Time
}

// NewIngestHandler creates a handler publishing to slot.
func NewIngestHandler(slot *capture.PoseSlot, logger *slog.Logger) *IngestHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestHandler{slot: slot, logger: logger, now: time.Now}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	h.logger.Info("landmark source connected", "remote", r.RemoteAddr)
	defer h.logger.Info("landmark source disconnected", "remote", r.RemoteAddr)

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		ack := IngestAck{OK: true}
		n, err := h.ingest(data)
		if err != nil {
			h.logger.Debug("rejected landmark frame", "error", err)
			ack = IngestAck{Error: err.Error()}
		}
		ack.Hands = n

		if err := conn.WriteJSON(ack); err != nil {
			return
		}
	}
}

func (h *IngestHandler) ingest(data []byte) (int, error) {
	var frame IngestFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return 0, fmt.Errorf("parse frame: %w", err)
	}
	if frame.Width <= 0 || frame.Height <= 0 {
		return 0, fmt.Errorf("invalid frame size %dx%d", frame.Width, frame.Height)
	}

	hands, err := detector.ParseHands(data)
	if err != nil {
		return 0, err
	}

	h.slot.Put(detector.SampleFromHands(hands, frame.Width, frame.Height, h.now()))
	return len(hands), nil
}
