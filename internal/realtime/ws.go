package realtime

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Ping/Pong settings
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// StreamHandler streams hub events to WebSocket clients as JSON messages
// ⭐ SSOT: 진행 이벤트 WebSocket 전송은 여기서만
type StreamHandler struct {
	hub *Hub
	log zerolog.Logger
}

// NewStreamHandler creates a WebSocket handler over hub
func NewStreamHandler(hub *Hub, log zerolog.Logger) *StreamHandler {
	return &StreamHandler{
		hub: hub,
		log: log.With().Str("component", "realtime.stream").Logger(),
	}
}

// ServeHTTP upgrades the connection and forwards events until either side closes
func (s *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	events := s.hub.Subscribe()
	defer s.hub.Unsubscribe(events)

	s.log.Debug().Str("remote", r.RemoteAddr).Msg("stream client connected")

	// Read loop only handles control frames and detects close
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing"))
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				s.log.Debug().Err(err).Msg("stream write failed")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			s.log.Debug().Str("remote", r.RemoteAddr).Msg("stream client disconnected")
			return
		case <-r.Context().Done():
			return
		}
	}
}
