package coordinator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pion/logging"

	"github.com/quietroom/core/pkg/ids"
	"github.com/quietroom/core/pkg/messagestore"
	"github.com/quietroom/core/pkg/provider"
	"github.com/quietroom/core/pkg/roomstore"
	"github.com/quietroom/core/pkg/token"
	"github.com/quietroom/core/pkg/transport"
)

type fakeTranslator struct {
	translations map[string]string // "text|target" -> translated
	fail         bool
}

func (f *fakeTranslator) Translate(_ context.Context, text, _, targetLang string) (string, bool) {
	if f.fail {
		return text, true
	}
	if t, ok := f.translations[text+"|"+targetLang]; ok {
		return t, false
	}
	return text, false
}

type fakeTranscriber struct {
	text string
	ok   bool
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ []byte, _ string) (string, bool) {
	return f.text, f.ok
}

type fakeSynthesizer struct {
	audio []byte
	ok    bool
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, _, _ string) ([]byte, bool) {
	return f.audio, f.ok
}

var (
	_ provider.Translator  = (*fakeTranslator)(nil)
	_ provider.Transcriber = (*fakeTranscriber)(nil)
	_ provider.Synthesizer = (*fakeSynthesizer)(nil)
)

// testHarness wires a fresh Coordinator over in-memory fakes, grounded on
// the teacher's test/integration/testpair.go in-memory paired-fakes
// idiom: real manager code driven end-to-end over fake collaborators.
type testHarness struct {
	t           interface{ Fatalf(string, ...any) }
	coordinator *Coordinator
	rooms       *roomstore.MemStore
	messages    *messagestore.MemStore
	tokens      *token.Verifier
	translator  *fakeTranslator
	transcriber *fakeTranscriber
	synthesizer *fakeSynthesizer
}

func newTestHarness() *testHarness {
	rooms := roomstore.NewMemStore()
	messages := messagestore.NewMemStore()
	tokens := token.NewVerifier([]byte("test-secret"))
	translator := &fakeTranslator{translations: map[string]string{}}
	transcriber := &fakeTranscriber{ok: true}
	synthesizer := &fakeSynthesizer{ok: true}

	coord := New(Deps{
		Rooms:       rooms,
		Messages:    messages,
		Tokens:      tokens,
		Translator:  translator,
		Transcriber: transcriber,
		Synthesizer: synthesizer,
		Log:         logging.NewDefaultLoggerFactory().NewLogger("coordinator_test"),
	}, Config{TTSFrameDelay: time.Microsecond})

	return &testHarness{
		coordinator: coord,
		rooms:       rooms,
		messages:    messages,
		tokens:      tokens,
		translator:  translator,
		transcriber: transcriber,
		synthesizer: synthesizer,
	}
}

func (h *testHarness) issueDoctorToken(doctorID ids.ID) string {
	claims := token.Claims{ID: doctorID, Email: "doctor@example.com", Kind: token.KindDoctor}
	tok, err := h.tokens.Issue(claims, time.Hour)
	if err != nil {
		panic(err)
	}
	return tok
}

func mustPayload(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return raw
}

func (h *testHarness) send(sock transport.Socket, eventType string, payload any) {
	h.coordinator.HandleEvent(context.Background(), sock, transport.Event{
		Type:    eventType,
		Payload: mustPayload(payload),
	})
}
