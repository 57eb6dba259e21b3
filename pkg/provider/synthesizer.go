package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pion/logging"

	"github.com/quietroom/core/pkg/artifactcache"
)

const ttsCacheTTL = 24 * time.Hour

// HTTPSynthesizer implements Synthesizer against a configurable TTS HTTP
// server. Audio is cached base64-encoded so the cache value remains plain
// text, keyed tts:sha256(text):<lang> per spec.md §4.5.
type HTTPSynthesizer struct {
	baseURL    string
	httpClient *http.Client
	cache      artifactcache.Cache
	log        logging.LeveledLogger
}

// NewHTTPSynthesizer constructs a synthesizer against baseURL.
func NewHTTPSynthesizer(baseURL string, cache artifactcache.Cache, log logging.LeveledLogger, opts ...Option) *HTTPSynthesizer {
	cfg := defaultHTTPProviderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &HTTPSynthesizer{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: cfg.timeout},
		cache:      cache,
		log:        log,
	}
}

type synthesizeRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

// Synthesize implements Synthesizer. Voice is chosen via VoiceFor.
func (s *HTTPSynthesizer) Synthesize(ctx context.Context, text, lang string) ([]byte, bool) {
	key := cacheKey("tts", text, lang)

	if cached, err := s.cache.Get(ctx, key); err == nil {
		if audio, decErr := base64.StdEncoding.DecodeString(cached); decErr == nil {
			return audio, true
		}
	} else if err != artifactcache.ErrMiss {
		s.log.Debugf("provider: tts cache get failed: %v", err)
	}

	payload, err := json.Marshal(synthesizeRequest{Text: text, Voice: VoiceFor(lang)})
	if err != nil {
		s.log.Warnf("provider: tts request encode failed: %v", err)
		return nil, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/synthesize", bytes.NewReader(payload))
	if err != nil {
		s.log.Warnf("provider: tts request construction failed: %v", err)
		return nil, false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.log.Warnf("provider: tts request failed: %v", err)
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.log.Warnf("provider: tts server returned status %d", resp.StatusCode)
		return nil, false
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		s.log.Warnf("provider: tts response read failed: %v", err)
		return nil, false
	}

	if err := s.cache.Set(ctx, key, base64.StdEncoding.EncodeToString(audio), ttsCacheTTL); err != nil {
		s.log.Debugf("provider: tts cache set failed: %v", err)
	}
	return audio, true
}
