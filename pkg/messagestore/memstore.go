package messagestore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/quietroom/core/pkg/cipher"
	"github.com/quietroom/core/pkg/ids"
)

// MemStore is an in-memory Store used by tests. Stored content is
// encrypted exactly as PGStore would encrypt it, so round-trip and
// decrypt-failure behavior matches production.
type MemStore struct {
	mu       sync.Mutex
	byRoom   map[ids.ID][]storedRecord
	clockNow func() time.Time
}

type storedRecord struct {
	id                ids.ID
	roomID            ids.ID
	senderRole        SenderRole
	senderID          ids.ID
	content           string // ciphertext
	translatedContent string // ciphertext, empty if absent
	language          string
	targetLanguage    string
	timestamp         time.Time
	isAudioOrigin     bool
}

// NewMemStore constructs an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		byRoom:   make(map[ids.ID][]storedRecord),
		clockNow: time.Now,
	}
}

// Append implements Store.
func (s *MemStore) Append(_ context.Context, in AppendInput) (Record, error) {
	if err := validateAppend(in); err != nil {
		return Record{}, err
	}

	content, err := cipher.Encrypt([]byte(in.Content), in.Key)
	if err != nil {
		return Record{}, err
	}
	var translatedContent string
	if in.TranslatedContent != "" {
		translatedContent, err = cipher.Encrypt([]byte(in.TranslatedContent), in.Key)
		if err != nil {
			return Record{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := storedRecord{
		id:                ids.New(),
		roomID:            in.RoomID,
		senderRole:        in.SenderRole,
		senderID:          in.SenderID,
		content:           content,
		translatedContent: translatedContent,
		language:          in.Language,
		targetLanguage:    in.TargetLanguage,
		timestamp:         s.clockNow(),
		isAudioOrigin:     in.IsAudioOrigin,
	}
	s.byRoom[in.RoomID] = append(s.byRoom[in.RoomID], rec)

	return Record{
		ID:                rec.id,
		RoomID:            rec.roomID,
		SenderRole:        rec.senderRole,
		SenderID:          rec.senderID,
		Content:           in.Content,
		TranslatedContent: in.TranslatedContent,
		Language:          rec.language,
		TargetLanguage:    rec.targetLanguage,
		Timestamp:         rec.timestamp,
		IsAudioOrigin:     rec.isAudioOrigin,
	}, nil
}

// Page implements Store.
func (s *MemStore) Page(_ context.Context, roomID ids.ID, key cipher.Key, limit, offset int) ([]Record, error) {
	if err := validatePage(limit, offset); err != nil {
		return nil, err
	}

	s.mu.Lock()
	records := append([]storedRecord(nil), s.byRoom[roomID]...)
	s.mu.Unlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].timestamp.After(records[j].timestamp)
	})

	if offset >= len(records) {
		return nil, nil
	}
	end := offset + limit
	if end > len(records) {
		end = len(records)
	}

	out := make([]Record, 0, end-offset)
	for _, r := range records[offset:end] {
		plaintext, err := cipher.Decrypt(r.content, key)
		if err != nil {
			return nil, ErrDecrypt
		}
		var translated string
		if r.translatedContent != "" {
			tp, err := cipher.Decrypt(r.translatedContent, key)
			if err != nil {
				return nil, ErrDecrypt
			}
			translated = string(tp)
		}
		out = append(out, Record{
			ID:                r.id,
			RoomID:            r.roomID,
			SenderRole:        r.senderRole,
			SenderID:          r.senderID,
			Content:           string(plaintext),
			TranslatedContent: translated,
			Language:          r.language,
			TargetLanguage:    r.targetLanguage,
			Timestamp:         r.timestamp,
			IsAudioOrigin:     r.isAudioOrigin,
		})
	}
	return out, nil
}

var _ Store = (*MemStore)(nil)
