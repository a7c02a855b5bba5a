package server

import (
	"bytes"
	"encoding/json"
	"image"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/scanforge/dmscan/internal/scanner"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checks are delegated to the deployment's proxy.
		return true
	},
}

// FrameRequest is one frame submitted over the WebSocket stream. The image
// is a base64 JSON byte field holding an encoded PNG or JPEG.
type FrameRequest struct {
	ID    string `json:"id,omitempty"`
	Image []byte `json:"image"`
}

// FrameResponse carries the scan outcome for one frame.
type FrameResponse struct {
	ID         string            `json:"id,omitempty"`
	Detections []DetectionResult `json:"detections"`
	Reason     string            `json:"reason,omitempty"`
	Error      string            `json:"error,omitempty"`
	TimeMs     int64             `json:"time_ms"`
}

// scanWebSocketHandler streams per-frame scan results, for live camera
// feeds.
func (s *Server) scanWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()
		if messageType != websocket.TextMessage {
			continue
		}
		s.handleFrame(r, conn, data)
	}
}

func (s *Server) handleFrame(r *http.Request, conn *websocket.Conn, data []byte) {
	var req FrameRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.writeFrame(conn, FrameResponse{Error: "invalid frame message"})
		return
	}

	img, _, err := image.Decode(bytes.NewReader(req.Image))
	if err != nil {
		s.writeFrame(conn, FrameResponse{ID: req.ID, Error: "invalid image data"})
		return
	}

	start := time.Now()
	detections, reason := s.scanner.Scan(r.Context(), img)
	elapsed := time.Since(start)

	scanRequestsTotal.WithLabelValues("ws", reason.String()).Inc()
	scanDuration.WithLabelValues("ws").Observe(elapsed.Seconds())

	resp := FrameResponse{
		ID:         req.ID,
		Detections: toDetectionResults(detections),
		TimeMs:     elapsed.Milliseconds(),
	}
	if reason != scanner.ReasonNone {
		resp.Reason = reason.String()
	}
	s.writeFrame(conn, resp)
}

func (s *Server) writeFrame(conn *websocket.Conn, resp FrameResponse) {
	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		slog.Error("failed to write WebSocket message", "error", err)
		return
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
}
