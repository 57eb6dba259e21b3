package coordinator

import (
	"context"

	"github.com/quietroom/core/pkg/registry"
	"github.com/quietroom/core/pkg/transport"
)

// handleLeaveOrDisconnect implements spec.md §4.9.6 for both leave_room
// and disconnect: a missing session is a no-op (idempotent); otherwise
// peers are told the key should be considered stale and that the
// participant left, the doctor slot is released if applicable, and the
// session is removed.
func (c *Coordinator) handleLeaveOrDisconnect(ctx context.Context, sock transport.Socket, reason string) {
	session, err := c.sessions.BySocket(sock.ID())
	if err != nil {
		return
	}

	peers := c.sessions.PeersExcept(session.RoomID, sock.ID())
	c.broadcast(peers, transport.Frame{Type: "cipher_key_invalidated", Payload: cipherKeyInvalidatedPayload{Reason: reason}})
	c.broadcast(peers, transport.Frame{Type: "user_left", Payload: userLeftPayload{
		Role:     string(session.Role),
		DoctorID: nilableID(session.DoctorID),
	}})

	if session.Role == registry.RoleDoctor {
		if err := c.rooms.ReleaseDoctor(ctx, session.RoomID, session.DoctorID); err != nil {
			c.log.Warnf("coordinator: release-doctor failed for room %s: %v", session.RoomID, err)
		}
	}

	c.sessions.Remove(sock.ID())
	c.unregisterSocket(sock.ID())
	c.clearAudioBuffer(sock.ID())
}
