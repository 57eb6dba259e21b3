package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/pion/logging"
)

// Option configures an HTTPTranscriber or HTTPSynthesizer.
type Option func(*httpProviderConfig)

type httpProviderConfig struct {
	timeout time.Duration
}

func defaultHTTPProviderConfig() httpProviderConfig {
	return httpProviderConfig{timeout: 15 * time.Second}
}

// WithTimeout overrides the default per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpProviderConfig) { c.timeout = d }
}

// HTTPTranscriber implements Transcriber against a configurable ASR HTTP
// server, grounded on the whisper.cpp HTTP provider pattern
// (MrWong99-glyphoxa) and the bounded-timeout http.Client shape from
// x0tta6bl4's agent/internal/api client.
type HTTPTranscriber struct {
	baseURL    string
	httpClient *http.Client
	log        logging.LeveledLogger
}

// NewHTTPTranscriber constructs a transcriber against baseURL (e.g. a
// whisper.cpp /inference endpoint).
func NewHTTPTranscriber(baseURL string, log logging.LeveledLogger, opts ...Option) *HTTPTranscriber {
	cfg := defaultHTTPProviderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &HTTPTranscriber{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: cfg.timeout},
		log:        log,
	}
}

type transcribeResponse struct {
	Text string `json:"text"`
}

// Transcribe implements Transcriber via a multipart POST of the raw audio
// bytes to "<base-url>/inference".
func (t *HTTPTranscriber) Transcribe(ctx context.Context, audio []byte, lang string) (string, bool) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "audio.raw")
	if err != nil {
		t.log.Warnf("provider: transcribe multipart setup failed: %v", err)
		return "", false
	}
	if _, err := part.Write(audio); err != nil {
		t.log.Warnf("provider: transcribe multipart write failed: %v", err)
		return "", false
	}
	if lang != "" {
		_ = writer.WriteField("language", lang)
	}
	if err := writer.Close(); err != nil {
		t.log.Warnf("provider: transcribe multipart close failed: %v", err)
		return "", false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/inference", &body)
	if err != nil {
		t.log.Warnf("provider: transcribe request construction failed: %v", err)
		return "", false
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.log.Warnf("provider: transcribe request failed: %v", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.log.Warnf("provider: transcribe server returned status %d", resp.StatusCode)
		return "", false
	}

	var out transcribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.log.Warnf("provider: transcribe response decode failed: %v", err)
		return "", false
	}
	return out.Text, true
}
