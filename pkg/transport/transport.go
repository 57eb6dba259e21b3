// Package transport abstracts the live connection a socket event arrives
// on, so the coordinator can be driven by a real WebSocket hub in
// production and an in-memory fake in tests. Grounded on the teacher's
// habit of hiding concrete transports behind a small interface
// (pkg/transport/udp.go's MessageHandler) and on CatsMeow492's
// ReadPump/WritePump split for the concrete WebSocket implementation.
package transport

import (
	"encoding/json"

	"github.com/quietroom/core/pkg/ids"
)

// Event is one inbound socket event: a typed envelope the coordinator
// dispatches on Type.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Frame is one outbound message the coordinator emits to a socket.
type Frame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Socket is the minimal contract the coordinator needs from a live
// connection: a stable identity and a non-blocking send.
type Socket interface {
	// ID returns the socket's stable identity for the lifetime of the
	// connection.
	ID() ids.ID

	// Send enqueues frame for delivery. It must never block the
	// caller on a slow or stalled peer; implementations drop the frame
	// (and log) rather than stall the coordinator's dispatch path.
	Send(frame Frame)

	// Close terminates the underlying connection.
	Close()
}
