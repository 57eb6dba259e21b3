// Package messagestore persists encrypted message records and serves
// reverse-chronological pages, decrypting on read (C3). The Store
// interface lets the coordinator depend on the abstraction while PGStore
// backs it with Postgres and MemStore backs tests (grounded on
// internal/voiceassign/service.go's pool-wrapping constructor shape and
// pgx.ErrNoRows idiom, in Alexander-D-Karpov/concord).
package messagestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/quietroom/core/pkg/cipher"
	"github.com/quietroom/core/pkg/ids"
)

// SenderRole distinguishes who wrote a message.
type SenderRole string

const (
	SenderPatient SenderRole = "patient"
	SenderDoctor  SenderRole = "doctor"
)

// Errors returned by Store methods.
var (
	ErrInvalidArgument = errors.New("messagestore: invalid argument")
	ErrNotFound        = errors.New("messagestore: room not found")
	ErrDecrypt         = errors.New("messagestore: stored body will not decrypt under supplied key")
)

// Record is a message as returned to callers: content is already
// decrypted (spec.md §4.3: "returns a record with decrypted content").
type Record struct {
	ID                ids.ID
	RoomID            ids.ID
	SenderRole        SenderRole
	SenderID          ids.ID // ids.Nil for patient messages
	Content           string
	TranslatedContent string // empty if absent
	Language          string
	TargetLanguage    string // empty if absent
	Timestamp         time.Time
	IsAudioOrigin     bool
}

// AppendInput carries everything needed to append a new message.
type AppendInput struct {
	RoomID             ids.ID
	SenderRole         SenderRole
	SenderID           ids.ID // must be ids.Nil when SenderRole == SenderPatient
	Content            string
	TranslatedContent  string // empty means absent
	Language           string
	TargetLanguage     string // empty means absent
	IsAudioOrigin      bool
	Key                cipher.Key
}

// Store is the persistence contract for messages.
type Store interface {
	// Append enforces the anonymity invariant (patient messages carry
	// no sender id) before writing, encrypts content/translated
	// content under in.Key, and returns the decrypted record with the
	// store-assigned timestamp.
	Append(ctx context.Context, in AppendInput) (Record, error)

	// Page returns up to limit messages for roomID, newest first,
	// skipping the newest offset records, decrypted under key.
	Page(ctx context.Context, roomID ids.ID, key cipher.Key, limit, offset int) ([]Record, error)
}

func validateAppend(in AppendInput) error {
	if strings.TrimSpace(in.Content) == "" {
		return ErrInvalidArgument
	}
	if in.SenderRole != SenderPatient && in.SenderRole != SenderDoctor {
		return ErrInvalidArgument
	}
	if in.SenderRole == SenderPatient && !in.SenderID.IsNil() {
		return ErrInvalidArgument
	}
	if in.SenderRole == SenderDoctor && in.SenderID.IsNil() {
		return ErrInvalidArgument
	}
	return nil
}

func validatePage(limit, offset int) error {
	if limit < 1 || limit > 100 || offset < 0 {
		return ErrInvalidArgument
	}
	return nil
}
