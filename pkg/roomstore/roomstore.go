// Package roomstore persists rooms and their doctor-claim state (C4).
// claim-doctor and release-doctor must be atomic with respect to
// concurrent claims; PGStore achieves this with a single conditional
// UPDATE ... WHERE, the pgx analogue of the teacher's in-memory
// conditional-CAS pattern in pkg/fabric/table.go, where the database row
// plays the role the mutex plays in-process.
package roomstore

import (
	"context"
	"errors"
	"time"

	"github.com/quietroom/core/pkg/cipher"
	"github.com/quietroom/core/pkg/ids"
)

// Errors returned by Store methods.
var (
	ErrNotFound      = errors.New("roomstore: room not found")
	ErrAlreadyClaimed = errors.New("roomstore: room already has a doctor assigned")
	ErrNotClaimant   = errors.New("roomstore: caller is not the claiming doctor")
)

// Room is a persisted room record.
type Room struct {
	ID        ids.ID
	DoctorID  ids.ID // ids.Nil when unclaimed
	CipherKey cipher.Key
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is the persistence contract for rooms.
type Store interface {
	// Create persists a new room with a fresh 256-bit key and a null
	// doctor.
	Create(ctx context.Context) (Room, error)

	// Get loads a room by id.
	Get(ctx context.Context, roomID ids.ID) (Room, error)

	// ClaimDoctor succeeds if the room's doctor id is null or already
	// equals doctorID; fails with ErrAlreadyClaimed otherwise.
	ClaimDoctor(ctx context.Context, roomID, doctorID ids.ID) error

	// ReleaseDoctor sets the room's doctor id to null iff it currently
	// equals doctorID; fails with ErrNotClaimant otherwise.
	ReleaseDoctor(ctx context.Context, roomID, doctorID ids.ID) error
}

// DoctorLookup validates that a doctor id exists, modeling the
// out-of-scope doctors table the HTTP registration surface populates
// (spec.md §6; SPEC_FULL.md §4.4).
type DoctorLookup interface {
	Exists(ctx context.Context, doctorID ids.ID) (bool, error)
}
