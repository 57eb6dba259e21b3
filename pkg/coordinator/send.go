package coordinator

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/quietroom/core/pkg/ids"
	"github.com/quietroom/core/pkg/messagestore"
	"github.com/quietroom/core/pkg/offlinequeue"
	"github.com/quietroom/core/pkg/registry"
	"github.com/quietroom/core/pkg/transport"
)

func (c *Coordinator) handleSendMessage(ctx context.Context, sock transport.Socket, raw json.RawMessage) {
	session, err := c.sessions.BySocket(sock.ID())
	if err != nil {
		c.emitError(sock, errNoActiveSession)
		return
	}

	var payload sendMessagePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.emitError(sock, newError(KindInvalidArgument, "malformed send_message payload"))
		return
	}
	if strings.TrimSpace(payload.Content) == "" {
		c.emitError(sock, errEmptyContent)
		return
	}

	c.sendMessage(ctx, sock, session, payload)
}

// sendMessage implements the shared send_message pipeline (spec.md
// §4.9.2), also used by handleAudioChunk once a transcript is available
// (spec.md §4.9.3 step 3).
func (c *Coordinator) sendMessage(ctx context.Context, sock transport.Socket, session registry.Member, payload sendMessagePayload) {
	room, err := c.rooms.Get(ctx, session.RoomID)
	if err != nil {
		c.emitError(sock, newError(KindInternal, "failed to load room"))
		return
	}

	if session.Role == registry.RoleDoctor && room.DoctorID != session.DoctorID {
		// spec.md §9 Open Question 3, resolved: re-check at send time.
		c.emitError(sock, errDoctorNoLongerClaimant)
		return
	}

	language := payload.Language
	if language == "" {
		language = session.Language
	}

	peers := c.sessions.PeersExcept(session.RoomID, sock.ID())

	// translated is what gets persisted (empty on failure, per spec.md
	// §8 invariant 5: a failed translation leaves translated-content
	// null in storage). wireTranslated is what goes out on the
	// new_message frame: Translate already returns the original text
	// on failure, and that original text is what the peer must see
	// alongside translationErrored=true, not an empty string.
	var targetLang, translated, wireTranslated string
	var translationErrored bool
	if len(peers) > 0 {
		peerLang := peers[0].Language
		if peerLang != language {
			targetLang = peerLang
			tctx, cancel := context.WithTimeout(ctx, c.cfg.ProviderTimeout)
			result, errored := c.translator.Translate(tctx, payload.Content, language, peerLang)
			cancel()
			translationErrored = errored
			wireTranslated = result
			if !errored {
				translated = result
			}
		}
	}

	senderRole := messagestore.SenderPatient
	senderID := ids.Nil
	if session.Role == registry.RoleDoctor {
		senderRole = messagestore.SenderDoctor
		senderID = session.DoctorID
	}

	rec, err := c.messages.Append(ctx, messagestore.AppendInput{
		RoomID:            session.RoomID,
		SenderRole:        senderRole,
		SenderID:          senderID,
		Content:           payload.Content,
		TranslatedContent: translated,
		Language:          language,
		TargetLanguage:    targetLang,
		IsAudioOrigin:     payload.IsAudio,
		Key:               room.CipherKey,
	})
	if err != nil {
		c.emitError(sock, newError(KindInternal, "failed to persist message"))
		return
	}

	if len(peers) > 0 {
		c.broadcast(peers, transport.Frame{Type: "new_message", Payload: newMessagePayload{
			ID:                 rec.ID.String(),
			Content:            rec.Content,
			Language:           rec.Language,
			TargetLanguage:     rec.TargetLanguage,
			TranslatedContent:  wireTranslated,
			TranslationErrored: translationErrored,
			SenderRole:         string(rec.SenderRole),
			SenderID:           nilableID(rec.SenderID),
			Timestamp:          rec.Timestamp.Format(time.RFC3339Nano),
			IsAudioOrigin:      rec.IsAudioOrigin,
		}})
		if !translationErrored && translated != "" {
			sock.Send(transport.Frame{Type: "message_translated", Payload: messageTranslatedPayload{
				ID:                rec.ID.String(),
				TranslatedContent: translated,
				TargetLanguage:    targetLang,
			}})
		}
	} else {
		c.offline.Push(session.RoomID, offlinequeue.Entry{
			MessageID:  rec.ID,
			Content:    rec.Content,
			SenderRole: string(rec.SenderRole),
			SenderID:   rec.SenderID,
			Language:   rec.Language,
			Timestamp:  rec.Timestamp,
			IsAudio:    rec.IsAudioOrigin,
		})
	}

	sock.Send(transport.Frame{Type: "message_sent", Payload: messageSentPayload{
		ID:        rec.ID.String(),
		Timestamp: rec.Timestamp.Format(time.RFC3339Nano),
	}})
}
