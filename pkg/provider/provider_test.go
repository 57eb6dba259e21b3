package provider

import "testing"

func TestVoiceForKnownLanguage(t *testing.T) {
	if got := VoiceFor("es"); got != "sol" {
		t.Fatalf("expected %q, got %q", "sol", got)
	}
}

func TestVoiceForUnknownLanguageDefaultsNeutral(t *testing.T) {
	if got := VoiceFor("xx"); got != "neutral" {
		t.Fatalf("expected neutral default, got %q", got)
	}
}

func TestFakeTranslatorPassesThroughOnFailure(t *testing.T) {
	tr := &fakeTranslator{fail: true}
	got, errored := tr.Translate(nil, "hello", "en", "es")
	if !errored || got != "hello" {
		t.Fatalf("expected passthrough on failure, got (%q, %v)", got, errored)
	}
}

func TestFakeTranslatorLookup(t *testing.T) {
	tr := &fakeTranslator{translations: map[string]string{"hello|es": "hola"}}
	got, errored := tr.Translate(nil, "hello", "en", "es")
	if errored || got != "hola" {
		t.Fatalf("expected (%q, false), got (%q, %v)", "hola", got, errored)
	}
}
