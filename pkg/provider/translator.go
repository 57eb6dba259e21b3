package provider

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pion/logging"

	"github.com/quietroom/core/pkg/artifactcache"
)

const (
	translationCacheTTL = 7 * 24 * time.Hour
	translationModel    = anthropic.ModelClaudeSonnet4_5
	translationTemp     = 0.3
	translationMaxTok   = 1024
)

// AnthropicTranslator implements Translator using the Anthropic messages
// API, with a fixed low temperature for consistent phrasing and a single
// round-trip message per call (spec.md §4.6).
type AnthropicTranslator struct {
	client anthropic.Client
	cache  artifactcache.Cache
	log    logging.LeveledLogger
}

// NewAnthropicTranslator constructs a translator bound to apiKey, caching
// results in cache.
func NewAnthropicTranslator(apiKey string, cache artifactcache.Cache, log logging.LeveledLogger) *AnthropicTranslator {
	return &AnthropicTranslator{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		cache:  cache,
		log:    log,
	}
}

// Translate implements Translator. It is cache-first, keyed by
// translation:sha256(content):<target-lang> per spec.md §4.5.
func (t *AnthropicTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, bool) {
	key := cacheKey("translation", text, targetLang)

	if cached, err := t.cache.Get(ctx, key); err == nil {
		return cached, false
	} else if err != artifactcache.ErrMiss {
		t.log.Debugf("provider: translation cache get failed: %v", err)
	}

	prompt := fmt.Sprintf(
		"Translate the following text from %s to %s. Respond with only the translation, no commentary.\n\n%s",
		sourceLang, targetLang, text,
	)
	msg, err := t.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       translationModel,
		MaxTokens:   translationMaxTok,
		Temperature: anthropic.Float(translationTemp),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		t.log.Warnf("provider: translation request failed: %v", err)
		return text, true
	}
	if len(msg.Content) == 0 {
		t.log.Warnf("provider: translation response had no content blocks")
		return text, true
	}

	translated := msg.Content[0].Text
	if err := t.cache.Set(ctx, key, translated, translationCacheTTL); err != nil {
		t.log.Debugf("provider: translation cache set failed: %v", err)
	}
	return translated, false
}

func cacheKey(kind, content, lang string) string {
	sum := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%s:%s:%s", kind, hex.EncodeToString(sum[:]), lang)
}
