package server

import (
	"bytes"
	"image"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// The MagicMirror display connects from its own origin; CORS-style
		// origin filtering happens at the reverse proxy when deployed.
		return true
	},
}

// wsDetectResponse is the per-frame payload sent back over the socket.
type wsDetectResponse struct {
	Type   string        `json:"type"` // "result" or "error"
	Result *DetectResult `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// detectWebSocketHandler runs frame-by-frame detection over a WebSocket:
// each binary message is a full encoded image, each reply a JSON detection
// result with the framing plan included.
func (s *Server) detectWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()
	slog.Debug("WebSocket connection opened", "remote", r.RemoteAddr)

	conn.SetReadLimit(s.maxUploadMB * 1024 * 1024)

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("WebSocket read error", "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()

		if msgType != websocket.BinaryMessage {
			s.writeWSError(conn, "expected binary image message")
			continue
		}
		s.handleWSFrame(conn, data)
	}
}

// handleWSFrame decodes one frame, runs detection and writes the reply.
func (s *Server) handleWSFrame(conn *websocket.Conn, data []byte) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		detectRequestsTotal.WithLabelValues("websocket", "error").Inc()
		s.writeWSError(conn, "invalid image format")
		return
	}

	start := time.Now()
	res, err := s.pipeline.ProcessImage(img)
	if err != nil {
		detectRequestsTotal.WithLabelValues("websocket", "error").Inc()
		s.writeWSError(conn, "detection failed: "+err.Error())
		return
	}
	detectRequestsTotal.WithLabelValues("websocket", "success").Inc()
	detectProcessingDuration.WithLabelValues("websocket").Observe(time.Since(start).Seconds())

	result, err := s.buildDetectResult(res, true)
	if err != nil {
		s.writeWSError(conn, err.Error())
		return
	}
	s.writeWSJSON(conn, wsDetectResponse{Type: "result", Result: result})
}

func (s *Server) writeWSError(conn *websocket.Conn, message string) {
	s.writeWSJSON(conn, wsDetectResponse{Type: "error", Error: message})
}

func (s *Server) writeWSJSON(conn *websocket.Conn, payload wsDetectResponse) {
	if err := conn.WriteJSON(payload); err != nil {
		slog.Debug("WebSocket write failed", "error", err)
		return
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
}
