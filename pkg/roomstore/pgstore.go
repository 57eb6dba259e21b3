package roomstore

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quietroom/core/pkg/cipher"
	"github.com/quietroom/core/pkg/ids"
)

// PGStore is the production Store backed by Postgres.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore wraps an existing pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Create implements Store.
func (s *PGStore) Create(ctx context.Context) (Room, error) {
	key, err := cipher.NewKey()
	if err != nil {
		return Room{}, err
	}
	id := ids.New()

	const q = `
		INSERT INTO rooms (id, doctor_id, cipher_key)
		VALUES ($1, NULL, $2)
		RETURNING created_at, updated_at`

	var createdAt, updatedAt time.Time
	if err := s.pool.QueryRow(ctx, q, id.String(), key.String()).Scan(&createdAt, &updatedAt); err != nil {
		return Room{}, err
	}

	return Room{ID: id, CipherKey: key, CreatedAt: createdAt, UpdatedAt: updatedAt}, nil
}

// Get implements Store.
func (s *PGStore) Get(ctx context.Context, roomID ids.ID) (Room, error) {
	const q = `SELECT doctor_id, cipher_key, created_at, updated_at FROM rooms WHERE id = $1`

	var doctorID *string
	var keyStr string
	var createdAt, updatedAt time.Time

	err := s.pool.QueryRow(ctx, q, roomID.String()).Scan(&doctorID, &keyStr, &createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Room{}, ErrNotFound
	}
	if err != nil {
		return Room{}, err
	}

	key, err := cipher.ParseKey(keyStr)
	if err != nil {
		return Room{}, err
	}

	room := Room{ID: roomID, CipherKey: key, CreatedAt: createdAt, UpdatedAt: updatedAt}
	if doctorID != nil {
		room.DoctorID, err = ids.Parse(*doctorID)
		if err != nil {
			return Room{}, err
		}
	}
	return room, nil
}

// ClaimDoctor implements Store with a single conditional UPDATE, atomic
// at the row regardless of how many coordinator replicas race for it.
func (s *PGStore) ClaimDoctor(ctx context.Context, roomID, doctorID ids.ID) error {
	const q = `
		UPDATE rooms
		SET doctor_id = $2, updated_at = now()
		WHERE id = $1 AND (doctor_id IS NULL OR doctor_id = $2)`

	tag, err := s.pool.Exec(ctx, q, roomID.String(), doctorID.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	if _, err := s.Get(ctx, roomID); err != nil {
		return err
	}
	return ErrAlreadyClaimed
}

// ReleaseDoctor implements Store with a single conditional UPDATE.
func (s *PGStore) ReleaseDoctor(ctx context.Context, roomID, doctorID ids.ID) error {
	const q = `
		UPDATE rooms
		SET doctor_id = NULL, updated_at = now()
		WHERE id = $1 AND doctor_id = $2`

	tag, err := s.pool.Exec(ctx, q, roomID.String(), doctorID.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	if _, err := s.Get(ctx, roomID); err != nil {
		return err
	}
	return ErrNotClaimant
}

var _ Store = (*PGStore)(nil)
