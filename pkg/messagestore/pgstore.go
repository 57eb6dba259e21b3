package messagestore

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quietroom/core/pkg/cipher"
	"github.com/quietroom/core/pkg/ids"
)

// PGStore is the production Store backed by Postgres, per the schema in
// SPEC_FULL.md §4.3.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore wraps an existing pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Append implements Store.
func (s *PGStore) Append(ctx context.Context, in AppendInput) (Record, error) {
	if err := validateAppend(in); err != nil {
		return Record{}, err
	}

	content, err := cipher.Encrypt([]byte(in.Content), in.Key)
	if err != nil {
		return Record{}, err
	}

	var translatedContent *string
	if in.TranslatedContent != "" {
		enc, err := cipher.Encrypt([]byte(in.TranslatedContent), in.Key)
		if err != nil {
			return Record{}, err
		}
		translatedContent = &enc
	}

	var senderID *string
	if !in.SenderID.IsNil() {
		s := in.SenderID.String()
		senderID = &s
	}
	var targetLang *string
	if in.TargetLanguage != "" {
		targetLang = &in.TargetLanguage
	}

	id := ids.New()
	const q = `
		INSERT INTO messages
			(id, room_id, sender_role, sender_id, content, translated_content,
			 language, target_language, is_audio_origin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING "timestamp"`

	var ts time.Time
	err = s.pool.QueryRow(ctx, q,
		id.String(), in.RoomID.String(), string(in.SenderRole), senderID,
		content, translatedContent, in.Language, targetLang, in.IsAudioOrigin,
	).Scan(&ts)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}

	return Record{
		ID:                id,
		RoomID:            in.RoomID,
		SenderRole:        in.SenderRole,
		SenderID:          in.SenderID,
		Content:           in.Content,
		TranslatedContent: in.TranslatedContent,
		Language:          in.Language,
		TargetLanguage:    in.TargetLanguage,
		Timestamp:         ts,
		IsAudioOrigin:     in.IsAudioOrigin,
	}, nil
}

// Page implements Store.
func (s *PGStore) Page(ctx context.Context, roomID ids.ID, key cipher.Key, limit, offset int) ([]Record, error) {
	if err := validatePage(limit, offset); err != nil {
		return nil, err
	}

	const q = `
		SELECT id, sender_role, sender_id, content, translated_content,
		       language, target_language, "timestamp", is_audio_origin
		FROM messages
		WHERE room_id = $1
		ORDER BY "timestamp" DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.pool.Query(ctx, q, roomID.String(), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			idStr, senderRole, content, language string
			senderIDStr, translatedContent, targetLang *string
			ts                                          time.Time
			isAudio                                      bool
		)
		if err := rows.Scan(&idStr, &senderRole, &senderIDStr, &content,
			&translatedContent, &language, &targetLang, &ts, &isAudio); err != nil {
			return nil, err
		}

		rec := Record{
			SenderRole:    SenderRole(senderRole),
			Language:      language,
			Timestamp:     ts,
			IsAudioOrigin: isAudio,
		}
		rec.ID, err = ids.Parse(idStr)
		if err != nil {
			return nil, err
		}
		rec.RoomID = roomID
		if senderIDStr != nil {
			rec.SenderID, err = ids.Parse(*senderIDStr)
			if err != nil {
				return nil, err
			}
		}
		if targetLang != nil {
			rec.TargetLanguage = *targetLang
		}

		plaintext, err := cipher.Decrypt(content, key)
		if err != nil {
			return nil, ErrDecrypt
		}
		rec.Content = string(plaintext)

		if translatedContent != nil {
			tp, err := cipher.Decrypt(*translatedContent, key)
			if err != nil {
				return nil, ErrDecrypt
			}
			rec.TranslatedContent = string(tp)
		}

		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
