package coordinator

import (
	"context"
	"testing"

	"github.com/quietroom/core/pkg/cipher"
	"github.com/quietroom/core/pkg/ids"
	"github.com/quietroom/core/pkg/transport"
)

func findFrame(frames []transport.Frame, frameType string) (transport.Frame, bool) {
	for _, f := range frames {
		if f.Type == frameType {
			return f, true
		}
	}
	return transport.Frame{}, false
}

// TestE2E_AnonymousRoundTrip is scenario S1: patient and doctor join,
// both receive cipher_key_exchange, patient's message is translated and
// delivered, sender gets message_sent.
func TestE2E_AnonymousRoundTrip(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()
	h.translator.translations["hello|es"] = "hola"

	room, err := h.rooms.Create(ctx)
	if err != nil {
		t.Fatalf("Create room: %v", err)
	}
	doctorID := ids.New()
	if err := h.rooms.ClaimDoctor(ctx, room.ID, doctorID); err != nil {
		t.Fatalf("ClaimDoctor: %v", err)
	}

	s1 := transport.NewFakeSocket() // patient
	s2 := transport.NewFakeSocket() // doctor

	h.send(s1, "join_room", joinRoomPayload{RoomID: room.ID.String(), Role: "patient", Language: "en"})
	h.send(s2, "join_room", joinRoomPayload{RoomID: room.ID.String(), Role: "doctor", Language: "es", Token: h.issueDoctorToken(doctorID)})

	if _, ok := findFrame(s1.Frames(), "cipher_key_exchange"); !ok {
		t.Fatalf("expected s1 to receive cipher_key_exchange, got %+v", s1.Frames())
	}
	if _, ok := findFrame(s2.Frames(), "cipher_key_exchange"); !ok {
		t.Fatalf("expected s2 to receive cipher_key_exchange, got %+v", s2.Frames())
	}

	h.send(s1, "send_message", sendMessagePayload{Content: "hello"})

	newMsg, ok := findFrame(s2.Frames(), "new_message")
	if !ok {
		t.Fatalf("expected s2 to receive new_message")
	}
	payload := newMsg.Payload.(newMessagePayload)
	if payload.Content != "hello" || payload.Language != "en" || payload.TargetLanguage != "es" ||
		payload.TranslatedContent != "hola" || payload.TranslationErrored ||
		payload.SenderRole != "patient" || payload.SenderID != "" {
		t.Fatalf("unexpected new_message payload: %+v", payload)
	}

	if _, ok := findFrame(s1.Frames(), "message_sent"); !ok {
		t.Fatalf("expected s1 to receive message_sent")
	}
}

// TestE2E_OfflineQueueDrain is scenario S2.
func TestE2E_OfflineQueueDrain(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	room, _ := h.rooms.Create(ctx)
	doctorID := ids.New()
	h.rooms.ClaimDoctor(ctx, room.ID, doctorID)

	s1 := transport.NewFakeSocket()
	h.send(s1, "join_room", joinRoomPayload{RoomID: room.ID.String(), Role: "patient", Language: "en"})
	h.send(s1, "send_message", sendMessagePayload{Content: "waiting"})

	if _, ok := findFrame(s1.Frames(), "message_sent"); !ok {
		t.Fatalf("expected message_sent")
	}
	if _, ok := findFrame(s1.Frames(), "new_message"); ok {
		t.Fatalf("expected no broadcast while alone in room")
	}

	s2 := transport.NewFakeSocket()
	h.send(s2, "join_room", joinRoomPayload{RoomID: room.ID.String(), Role: "doctor", Language: "es", Token: h.issueDoctorToken(doctorID)})

	frames := s2.Frames()
	if _, ok := findFrame(frames, "room_joined"); !ok {
		t.Fatalf("expected room_joined")
	}
	queued, ok := findFrame(frames, "new_message")
	if !ok {
		t.Fatalf("expected drained new_message on join")
	}
	payload := queued.Payload.(newMessagePayload)
	if payload.Content != "waiting" || payload.SenderRole != "patient" {
		t.Fatalf("unexpected drained message: %+v", payload)
	}
	if _, ok := findFrame(frames, "cipher_key_exchange"); !ok {
		t.Fatalf("expected cipher_key_exchange after both present")
	}
}

// TestE2E_DoctorExclusivity is scenario S3.
func TestE2E_DoctorExclusivity(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	room, _ := h.rooms.Create(ctx)
	d1, d2 := ids.New(), ids.New()
	if err := h.rooms.ClaimDoctor(ctx, room.ID, d1); err != nil {
		t.Fatalf("claim d1: %v", err)
	}

	s1 := transport.NewFakeSocket()
	h.send(s1, "join_room", joinRoomPayload{RoomID: room.ID.String(), Role: "doctor", Token: h.issueDoctorToken(d1)})
	if _, ok := findFrame(s1.Frames(), "room_joined"); !ok {
		t.Fatalf("expected d1 to join successfully")
	}

	// d2's HTTP claim attempt fails before the socket join is even
	// attempted in production; simulate the coordinator-level check by
	// having d2 try to join while d1 still holds the room.
	s2 := transport.NewFakeSocket()
	h.send(s2, "join_room", joinRoomPayload{RoomID: room.ID.String(), Role: "doctor", Token: h.issueDoctorToken(d2)})
	errFrame, ok := findFrame(s2.Frames(), "error")
	if !ok {
		t.Fatalf("expected d2's join to be rejected")
	}
	if errFrame.Payload.(errorPayload).Message != errWrongDoctor.Message {
		t.Fatalf("unexpected error message: %+v", errFrame.Payload)
	}

	h.send(s1, "disconnect", nil)
	got, err := h.rooms.Get(ctx, room.ID)
	if err != nil {
		t.Fatalf("Get room: %v", err)
	}
	if !got.DoctorID.IsNil() {
		t.Fatalf("expected doctor slot released after disconnect")
	}

	if err := h.rooms.ClaimDoctor(ctx, room.ID, d2); err != nil {
		t.Fatalf("expected d2 reclaim to succeed: %v", err)
	}
	s3 := transport.NewFakeSocket()
	h.send(s3, "join_room", joinRoomPayload{RoomID: room.ID.String(), Role: "doctor", Token: h.issueDoctorToken(d2)})
	if _, ok := findFrame(s3.Frames(), "room_joined"); !ok {
		t.Fatalf("expected d2's second join attempt to succeed")
	}
}

// TestE2E_TranslationDegradation is scenario S4.
func TestE2E_TranslationDegradation(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()
	h.translator.fail = true

	room, _ := h.rooms.Create(ctx)
	doctorID := ids.New()
	h.rooms.ClaimDoctor(ctx, room.ID, doctorID)

	s1 := transport.NewFakeSocket()
	s2 := transport.NewFakeSocket()
	h.send(s1, "join_room", joinRoomPayload{RoomID: room.ID.String(), Role: "patient", Language: "en"})
	h.send(s2, "join_room", joinRoomPayload{RoomID: room.ID.String(), Role: "doctor", Language: "fr", Token: h.issueDoctorToken(doctorID)})

	h.send(s1, "send_message", sendMessagePayload{Content: "pain"})

	newMsg, ok := findFrame(s2.Frames(), "new_message")
	if !ok {
		t.Fatalf("expected new_message on s2")
	}
	payload := newMsg.Payload.(newMessagePayload)
	if payload.Content != "pain" || payload.TranslatedContent != "pain" ||
		payload.TargetLanguage != "fr" || !payload.TranslationErrored {
		t.Fatalf("unexpected degraded payload: %+v", payload)
	}

	page, err := h.messages.Page(ctx, room.ID, mustRoomKey(h, ctx, room.ID), 1, 0)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if len(page) != 1 || page[0].TranslatedContent != "" {
		t.Fatalf("expected persisted translated-content to be empty, got %+v", page)
	}
}

// TestE2E_KeyInvalidationOnDisconnect is scenario S5.
func TestE2E_KeyInvalidationOnDisconnect(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	room, _ := h.rooms.Create(ctx)
	doctorID := ids.New()
	h.rooms.ClaimDoctor(ctx, room.ID, doctorID)

	s1 := transport.NewFakeSocket()
	s2 := transport.NewFakeSocket()
	h.send(s1, "join_room", joinRoomPayload{RoomID: room.ID.String(), Role: "patient"})
	h.send(s2, "join_room", joinRoomPayload{RoomID: room.ID.String(), Role: "doctor", Token: h.issueDoctorToken(doctorID)})

	h.send(s1, "disconnect", nil)

	frames := s2.Frames()
	invalidated, ok := findFrame(frames, "cipher_key_invalidated")
	if !ok || invalidated.Payload.(cipherKeyInvalidatedPayload).Reason != "participant_disconnected" {
		t.Fatalf("expected cipher_key_invalidated with participant_disconnected reason, got %+v", frames)
	}
	left, ok := findFrame(frames, "user_left")
	if !ok || left.Payload.(userLeftPayload).Role != "patient" {
		t.Fatalf("expected user_left for patient, got %+v", frames)
	}

	got, err := h.rooms.Get(ctx, room.ID)
	if err != nil {
		t.Fatalf("Get room: %v", err)
	}
	if got.DoctorID != doctorID {
		t.Fatalf("expected doctor-id unchanged, got %v", got.DoctorID)
	}
}

// TestE2E_AudioOrigin is scenario S6.
func TestE2E_AudioOrigin(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()
	h.translator.translations["sip water|es"] = "beba agua"
	h.transcriber.text = "sip water"
	h.transcriber.ok = true

	room, _ := h.rooms.Create(ctx)
	doctorID := ids.New()
	h.rooms.ClaimDoctor(ctx, room.ID, doctorID)

	s1 := transport.NewFakeSocket() // patient, es
	s2 := transport.NewFakeSocket() // doctor, en
	h.send(s1, "join_room", joinRoomPayload{RoomID: room.ID.String(), Role: "patient", Language: "es"})
	h.send(s2, "join_room", joinRoomPayload{RoomID: room.ID.String(), Role: "doctor", Language: "en", Token: h.issueDoctorToken(doctorID)})

	h.send(s2, "audio_chunk", audioChunkPayload{Chunk: "AAA=", IsLast: false, Language: "en"})
	h.send(s2, "audio_chunk", audioChunkPayload{Chunk: "AAA=", IsLast: false, Language: "en"})
	h.send(s2, "audio_chunk", audioChunkPayload{Chunk: "AAA=", IsLast: true, Language: "en"})

	transcribed, ok := findFrame(s2.Frames(), "audio_transcribed")
	if !ok {
		t.Fatalf("expected audio_transcribed on sender")
	}
	if transcribed.Payload.(audioTranscribedPayload).Text != "sip water" {
		t.Fatalf("unexpected transcription: %+v", transcribed.Payload)
	}

	newMsg, ok := findFrame(s1.Frames(), "new_message")
	if !ok {
		t.Fatalf("expected new_message on patient socket")
	}
	payload := newMsg.Payload.(newMessagePayload)
	if payload.Content != "sip water" || payload.TranslatedContent != "beba agua" ||
		!payload.IsAudioOrigin || payload.SenderRole != "doctor" || payload.SenderID != doctorID.String() {
		t.Fatalf("unexpected audio-origin message: %+v", payload)
	}
}

func mustRoomKey(h *testHarness, ctx context.Context, roomID ids.ID) cipher.Key {
	room, err := h.rooms.Get(ctx, roomID)
	if err != nil {
		panic(err)
	}
	return room.CipherKey
}
