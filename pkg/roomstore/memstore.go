package roomstore

import (
	"context"
	"sync"
	"time"

	"github.com/quietroom/core/pkg/cipher"
	"github.com/quietroom/core/pkg/ids"
)

// MemStore is an in-memory Store used by tests.
type MemStore struct {
	mu    sync.Mutex
	rooms map[ids.ID]*Room
}

// NewMemStore constructs an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{rooms: make(map[ids.ID]*Room)}
}

// Create implements Store.
func (s *MemStore) Create(_ context.Context) (Room, error) {
	key, err := cipher.NewKey()
	if err != nil {
		return Room{}, err
	}
	now := time.Now()
	room := Room{ID: ids.New(), CipherKey: key, CreatedAt: now, UpdatedAt: now}

	s.mu.Lock()
	defer s.mu.Unlock()
	stored := room
	s.rooms[room.ID] = &stored
	return room, nil
}

// Get implements Store.
func (s *MemStore) Get(_ context.Context, roomID ids.ID) (Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return Room{}, ErrNotFound
	}
	return *room, nil
}

// ClaimDoctor implements Store.
func (s *MemStore) ClaimDoctor(_ context.Context, roomID, doctorID ids.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return ErrNotFound
	}
	if !room.DoctorID.IsNil() && room.DoctorID != doctorID {
		return ErrAlreadyClaimed
	}
	room.DoctorID = doctorID
	room.UpdatedAt = time.Now()
	return nil
}

// ReleaseDoctor implements Store.
func (s *MemStore) ReleaseDoctor(_ context.Context, roomID, doctorID ids.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return ErrNotFound
	}
	if room.DoctorID != doctorID {
		return ErrNotClaimant
	}
	room.DoctorID = ids.Nil
	room.UpdatedAt = time.Now()
	return nil
}

var _ Store = (*MemStore)(nil)
