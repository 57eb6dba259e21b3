package transport

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pion/logging"

	"github.com/quietroom/core/pkg/ids"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20 // 1 MiB
	sendBufferSize = 64
)

// Handler is invoked once per inbound Event on a WebSocketSocket's read
// pump, running on that socket's own goroutine so events from the same
// socket are processed strictly in arrival order (spec.md §5).
type Handler func(sock *WebSocketSocket, event Event)

// WebSocketSocket implements Socket over a gorilla/websocket connection,
// grounded on CatsMeow492/nochat.io's Client ReadPump/WritePump split: a
// buffered send channel drained by a dedicated writer goroutine, and a
// reader goroutine enforcing read deadlines and max message size.
type WebSocketSocket struct {
	id   ids.ID
	conn *websocket.Conn
	send chan Frame
	log  logging.LeveledLogger

	closeOnce closeGuard
}

type closeGuard struct {
	done chan struct{}
}

// NewWebSocketSocket wraps conn, assigning it a fresh identity.
func NewWebSocketSocket(conn *websocket.Conn, log logging.LeveledLogger) *WebSocketSocket {
	return &WebSocketSocket{
		id:        ids.New(),
		conn:      conn,
		send:      make(chan Frame, sendBufferSize),
		log:       log,
		closeOnce: closeGuard{done: make(chan struct{})},
	}
}

// ID implements Socket.
func (s *WebSocketSocket) ID() ids.ID { return s.id }

// Send implements Socket. It never blocks: a full buffer means the
// socket is too slow to keep up, so the frame is dropped and logged
// rather than stalling the coordinator's dispatch path.
func (s *WebSocketSocket) Send(frame Frame) {
	select {
	case s.send <- frame:
	default:
		s.log.Warnf("transport: dropping frame %q for socket %s: send buffer full", frame.Type, s.id)
	}
}

// Close implements Socket.
func (s *WebSocketSocket) Close() {
	select {
	case <-s.closeOnce.done:
	default:
		close(s.closeOnce.done)
		s.conn.Close()
	}
}

// ReadPump runs the read loop, decoding inbound frames as Events and
// invoking handle for each, until the connection closes. Call this on
// its own goroutine, one per socket.
func (s *WebSocketSocket) ReadPump(handle Handler) {
	defer s.Close()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			s.log.Warnf("transport: dropping unparseable frame on socket %s: %v", s.id, err)
			continue
		}
		handle(s, event)
	}
}

// WritePump drains the send channel to the connection and pings
// periodically, until Close is called or a write fails. Call this on its
// own goroutine, one per socket.
func (s *WebSocketSocket) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Close()
	}()

	for {
		select {
		case frame, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			payload, err := json.Marshal(frame)
			if err != nil {
				s.log.Warnf("transport: failed to encode frame %q for socket %s: %v", frame.Type, s.id, err)
				continue
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.closeOnce.done:
			return
		}
	}
}
