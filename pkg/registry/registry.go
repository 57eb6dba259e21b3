// Package registry tracks which sockets are live in which rooms: the C7
// session registry. It holds no persistent state and exists purely to let
// the coordinator fan messages out to whichever participants currently
// hold a connection, indexed both by room and by socket (grounded on
// sessionStore in Alexander-D-Karpov/concord's voice-assign service, which
// keeps the same byRoom/byUser dual-index shape over a single mutex).
package registry

import (
	"errors"
	"sync"
	"time"

	"github.com/quietroom/core/pkg/ids"
)

// ErrNotFound is returned when a lookup finds no matching member.
var ErrNotFound = errors.New("registry: not found")

// Role distinguishes the two participant kinds a room can hold.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// Member is a single live connection registered to a room — the C7
// in-memory analogue of spec.md §3's Session entity.
type Member struct {
	SocketID    ids.ID
	RoomID      ids.ID
	DoctorID    ids.ID // ids.Nil unless Role == RoleDoctor
	Role        Role
	Language    string
	ConnectedAt time.Time
}

// Registry is a concurrency-safe, in-memory directory of live members,
// indexed by room and by socket.
type Registry struct {
	mu       sync.RWMutex
	byRoom   map[ids.ID]map[ids.ID]*Member // roomID -> socketID -> member
	bySocket map[ids.ID]*Member            // socketID -> member
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{
		byRoom:   make(map[ids.ID]map[ids.ID]*Member),
		bySocket: make(map[ids.ID]*Member),
	}
}

// Add registers a new live member. If socketID is already registered its
// entry is replaced (the caller is expected to have already removed any
// stale socket on reconnect).
func (r *Registry) Add(m Member) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := m
	r.bySocket[m.SocketID] = &stored

	room, ok := r.byRoom[m.RoomID]
	if !ok {
		room = make(map[ids.ID]*Member)
		r.byRoom[m.RoomID] = room
	}
	room[m.SocketID] = &stored
}

// Remove drops socketID from the registry, returning the removed member's
// room so the caller can decide whether the room is now empty.
func (r *Registry) Remove(socketID ids.ID) (ids.ID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.bySocket[socketID]
	if !ok {
		return ids.Nil, false
	}
	delete(r.bySocket, socketID)

	if room, ok := r.byRoom[m.RoomID]; ok {
		delete(room, socketID)
		if len(room) == 0 {
			delete(r.byRoom, m.RoomID)
		}
	}
	return m.RoomID, true
}

// BySocket returns the member registered under socketID.
func (r *Registry) BySocket(socketID ids.ID) (Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.bySocket[socketID]
	if !ok {
		return Member{}, ErrNotFound
	}
	return *m, nil
}

// Room returns every live member currently registered to roomID, in no
// particular order.
func (r *Registry) Room(roomID ids.ID) []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.byRoom[roomID]
	if !ok {
		return nil
	}
	out := make([]Member, 0, len(room))
	for _, m := range room {
		out = append(out, *m)
	}
	return out
}

// RoomCount reports how many live sockets are currently in roomID.
func (r *Registry) RoomCount(roomID ids.ID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byRoom[roomID])
}

// Peer returns the other live member of roomID relative to socketID — the
// one counterpart in a two-party room — or ErrNotFound if there is none.
func (r *Registry) Peer(roomID, socketID ids.ID) (Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.byRoom[roomID]
	if !ok {
		return Member{}, ErrNotFound
	}
	for sid, m := range room {
		if sid != socketID {
			return *m, nil
		}
	}
	return Member{}, ErrNotFound
}

// PeersExcept returns every live member of roomID other than socketID, a
// snapshot copy in no particular order.
func (r *Registry) PeersExcept(roomID, socketID ids.ID) []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.byRoom[roomID]
	if !ok {
		return nil
	}
	out := make([]Member, 0, len(room))
	for sid, m := range room {
		if sid != socketID {
			out = append(out, *m)
		}
	}
	return out
}

// BothPresent reports whether roomID currently holds at least one
// patient session and at least one doctor session (spec.md §4.7).
func (r *Registry) BothPresent(roomID ids.ID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.byRoom[roomID]
	if !ok {
		return false
	}
	var patient, doctor bool
	for _, m := range room {
		switch m.Role {
		case RolePatient:
			patient = true
		case RoleDoctor:
			doctor = true
		}
	}
	return patient && doctor
}
