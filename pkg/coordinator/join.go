package coordinator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/quietroom/core/pkg/ids"
	"github.com/quietroom/core/pkg/registry"
	"github.com/quietroom/core/pkg/roomstore"
	"github.com/quietroom/core/pkg/token"
	"github.com/quietroom/core/pkg/transport"
)

func (c *Coordinator) handleJoinRoom(ctx context.Context, sock transport.Socket, raw json.RawMessage) {
	var payload joinRoomPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.emitError(sock, newError(KindInvalidArgument, "malformed join_room payload"))
		return
	}
	if payload.RoomID == "" {
		c.emitError(sock, errMissingRoomID)
		return
	}
	role, ok := roleFrom(payload.Role)
	if !ok {
		c.emitError(sock, errInvalidRole)
		return
	}
	roomID, err := ids.Parse(payload.RoomID)
	if err != nil {
		c.emitError(sock, errRoomNotFound)
		return
	}

	var doctorID ids.ID
	if role == registry.RoleDoctor {
		claims, err := c.tokens.Verify(payload.Token)
		switch {
		case err == token.ErrExpired:
			c.emitError(sock, errTokenExpired)
			return
		case err != nil:
			c.emitError(sock, errUnauthenticated)
			return
		case claims.Kind != token.KindDoctor:
			c.emitError(sock, newError(KindForbidden, "token is not a doctor token"))
			return
		}
		doctorID = claims.ID
	}

	room, err := c.rooms.Get(ctx, roomID)
	switch {
	case err == roomstore.ErrNotFound:
		c.emitError(sock, errRoomNotFound)
		return
	case err != nil:
		c.emitError(sock, newError(KindInternal, "failed to load room"))
		return
	}

	if role == registry.RoleDoctor && !room.DoctorID.IsNil() && room.DoctorID != doctorID {
		c.emitError(sock, errWrongDoctor)
		return
	}

	language := payload.Language
	if language == "" {
		language = "en"
	}

	session := registry.Member{
		SocketID:    sock.ID(),
		RoomID:      roomID,
		DoctorID:    doctorID,
		Role:        role,
		Language:    language,
		ConnectedAt: time.Now(),
	}
	c.sessions.Add(session)
	c.registerSocket(sock)

	members := c.sessions.Room(roomID)
	var joined participants
	for _, m := range members {
		switch m.Role {
		case registry.RolePatient:
			joined.Patient = true
		case registry.RoleDoctor:
			joined.Doctor = true
		}
	}

	roomJoined := roomJoinedPayload{
		RoomID:       roomID.String(),
		Role:         string(role),
		DoctorID:     nilableID(room.DoctorID),
		Participants: joined,
	}
	sock.Send(transport.Frame{Type: "room_joined", Payload: roomJoined})

	peers := c.sessions.PeersExcept(roomID, sock.ID())
	c.broadcast(peers, transport.Frame{
		Type: "user_joined",
		Payload: userJoinedPayload{
			Role:     string(role),
			DoctorID: nilableID(doctorID),
		},
	})

	for _, entry := range c.offline.Drain(roomID) {
		sock.Send(transport.Frame{Type: "new_message", Payload: newMessagePayload{
			ID:            entry.MessageID.String(),
			Content:       entry.Content,
			Language:      entry.Language,
			SenderRole:    entry.SenderRole,
			SenderID:      nilableID(entry.SenderID),
			Timestamp:     entry.Timestamp.Format(time.RFC3339Nano),
			IsAudioOrigin: entry.IsAudio,
		}})
	}

	if c.sessions.BothPresent(roomID) {
		exchange := transport.Frame{Type: "cipher_key_exchange", Payload: cipherKeyExchangePayload{CipherKey: room.CipherKey.String()}}
		for _, m := range c.sessions.Room(roomID) {
			if s, ok := c.lookupSocket(m.SocketID); ok {
				s.Send(exchange)
			}
		}
	}
}

func nilableID(id ids.ID) string {
	if id.IsNil() {
		return ""
	}
	return id.String()
}
