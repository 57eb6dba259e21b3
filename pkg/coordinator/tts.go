package coordinator

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/quietroom/core/pkg/transport"
)

// handleRequestTTS implements spec.md §4.9.4: synthesize then stream the
// audio back to the requester as base64-framed chunks, paced to avoid
// overwhelming a slow receiver — the one deliberate suspension point on
// the send path.
func (c *Coordinator) handleRequestTTS(ctx context.Context, sock transport.Socket, raw json.RawMessage) {
	if _, err := c.sessions.BySocket(sock.ID()); err != nil {
		c.emitError(sock, errNoActiveSession)
		return
	}

	var payload requestTTSPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.emitError(sock, newError(KindInvalidArgument, "malformed request_tts payload"))
		return
	}
	if strings.TrimSpace(payload.Text) == "" {
		c.emitError(sock, newError(KindInvalidArgument, "tts text must not be empty"))
		return
	}

	language := payload.Language
	if language == "" {
		language = "en"
	}

	tctx, cancel := context.WithTimeout(ctx, c.cfg.ProviderTimeout)
	audio, ok := c.synthesizer.Synthesize(tctx, payload.Text, language)
	cancel()
	if !ok {
		sock.Send(transport.Frame{Type: "tts_error", Payload: ttsErrorPayload{
			MessageID: payload.MessageID,
			Message:   "text-to-speech failed",
		}})
		return
	}

	c.streamAudio(sock, audio, payload.MessageID)
}

func (c *Coordinator) streamAudio(sock transport.Socket, audio []byte, messageID string) {
	chunkSize := c.cfg.TTSChunkSize
	total := (len(audio) + chunkSize - 1) / chunkSize
	if total == 0 {
		total = 1
	}

	for i := 0; i < total; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > len(audio) {
			end = len(audio)
		}

		sock.Send(transport.Frame{Type: "audio_stream", Payload: audioStreamPayload{
			Chunk:     base64.StdEncoding.EncodeToString(audio[start:end]),
			Index:     i,
			Total:     total,
			IsLast:    i == total-1,
			MessageID: messageID,
		}})

		if i < total-1 {
			time.Sleep(c.cfg.TTSFrameDelay)
		}
	}
}
