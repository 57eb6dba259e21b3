package provider

import "context"

// fakeTranslator is a deterministic Translator used by this package's
// tests, avoiding any network dependency.
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
