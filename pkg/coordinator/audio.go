package coordinator

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/quietroom/core/pkg/ids"
	"github.com/quietroom/core/pkg/transport"
)

// handleAudioChunk implements spec.md §4.9.3: successive events
// accumulate chunks under the sender's socket; on is_last, the
// concatenated buffer is transcribed and fed into the send_message
// pipeline. No chunk index is trusted from the client; the per-socket
// buffer is cleared on any error.
func (c *Coordinator) handleAudioChunk(ctx context.Context, sock transport.Socket, raw json.RawMessage) {
	session, err := c.sessions.BySocket(sock.ID())
	if err != nil {
		c.emitError(sock, errNoActiveSession)
		return
	}

	var payload audioChunkPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.clearAudioBuffer(sock.ID())
		c.emitError(sock, newError(KindInvalidArgument, "malformed audio_chunk payload"))
		return
	}

	chunk, err := base64.StdEncoding.DecodeString(payload.Chunk)
	if err != nil {
		c.clearAudioBuffer(sock.ID())
		c.emitError(sock, newError(KindInvalidArgument, "audio chunk is not valid base64"))
		return
	}
	c.appendAudioChunk(sock.ID(), chunk)

	if !payload.IsLast {
		return
	}

	audio := c.takeAudioBuffer(sock.ID())

	language := payload.Language
	if language == "" {
		language = session.Language
	}

	tctx, cancel := context.WithTimeout(ctx, c.cfg.ProviderTimeout)
	text, ok := c.transcriber.Transcribe(tctx, audio, language)
	cancel()
	if !ok {
		sock.Send(transport.Frame{Type: "stt_error", Payload: sttErrorPayload{Message: "speech-to-text failed"}})
		return
	}

	sock.Send(transport.Frame{Type: "audio_transcribed", Payload: audioTranscribedPayload{Text: text, Language: language}})

	c.sendMessage(ctx, sock, session, sendMessagePayload{Content: text, Language: language, IsAudio: true})
}

func (c *Coordinator) appendAudioChunk(socketID ids.ID, chunk []byte) {
	c.audioMu.Lock()
	defer c.audioMu.Unlock()
	c.audioBuffers[socketID] = append(c.audioBuffers[socketID], chunk...)
}

func (c *Coordinator) takeAudioBuffer(socketID ids.ID) []byte {
	c.audioMu.Lock()
	defer c.audioMu.Unlock()
	buf := c.audioBuffers[socketID]
	delete(c.audioBuffers, socketID)
	return buf
}

func (c *Coordinator) clearAudioBuffer(socketID ids.ID) {
	c.audioMu.Lock()
	defer c.audioMu.Unlock()
	delete(c.audioBuffers, socketID)
}
