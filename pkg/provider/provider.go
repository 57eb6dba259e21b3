// Package provider wraps the external translation, speech-to-text, and
// text-to-speech collaborators the coordinator invokes as pipeline stages
// (C6). The translator and synthesizer are cache-first; the transcriber
// has no cache and calls its provider on every request. Each makes
// exactly one attempt; none of them owns a retry policy (spec.md §4.6, §9: "Do not encode
// retry policy in the adapter"). The interfaces mirror the teacher's
// single-method ProtocolHandler style and the stt.Provider shape found in
// the MrWong99-glyphoxa whisper.cpp provider in the retrieval pack.
package provider

import "context"

// Translator translates text from one language to another.
type Translator interface {
	// Translate returns the translated text and reports whether the
	// underlying provider call failed. On failure it returns the
	// original text unchanged and errored=true (spec.md §4.6): the
	// message is still sent, the peer is informed translation failed.
	Translate(ctx context.Context, text, sourceLang, targetLang string) (translated string, errored bool)
}

// Transcriber converts audio bytes to text.
type Transcriber interface {
	// Transcribe returns the transcribed text, or ok=false if the
	// provider call failed. The caller decides whether to abort or
	// continue on failure.
	Transcribe(ctx context.Context, audio []byte, lang string) (text string, ok bool)
}

// Synthesizer renders text to speech.
type Synthesizer interface {
	// Synthesize returns encoded audio bytes, or ok=false if the
	// provider call failed.
	Synthesize(ctx context.Context, text, lang string) (audio []byte, ok bool)
}

// defaultVoices maps a language code to a synthesis voice identifier,
// defaulting to "neutral" for anything unlisted (spec.md §4.6: "voice is
// selected deterministically per language from a fixed lookup table,
// defaulting to a neutral voice").
var defaultVoices = map[string]string{
	"en": "amber",
	"es": "sol",
	"fr": "claire",
	"de": "lena",
	"pt": "ines",
}

// VoiceFor returns the fixed voice identifier for lang, or "neutral" if
// lang is not in the table.
func VoiceFor(lang string) string {
	if v, ok := defaultVoices[lang]; ok {
		return v
	}
	return "neutral"
}
