package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTTSModel is used when the request does not name one.
const DefaultTTSModel = "eleven_multilingual_v2"

const defaultTTSBaseURL = "https://api.elevenlabs.io"

// upstreamBodyLimit bounds how much of a failing upstream body is carried
// into the error (and ultimately the 502 response).
const upstreamBodyLimit = 300

// UpstreamError reports a non-success response from the speech provider.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("tts upstream returned %d: %s", e.Status, e.Body)
}

// TTSProxy streams synthesized speech from the provider straight through to
// the caller without buffering whole responses.
type TTSProxy struct {
	apiKey  string
	voiceID string
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

// NewTTSProxy creates a proxy for the configured voice.
func NewTTSProxy(apiKey, voiceID string, log *zap.Logger) *TTSProxy {
	if log == nil {
		log = zap.NewNop()
	}
	return &TTSProxy{
		apiKey:  apiKey,
		voiceID: voiceID,
		baseURL: defaultTTSBaseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
		log:     log,
	}
}

// Stream requests synthesis for text and copies the audio/mpeg bytes into w
// as they arrive. A non-200 upstream status becomes an *UpstreamError with a
// truncated copy of the upstream body.
func (p *TTSProxy) Stream(ctx context.Context, text, modelID string, w io.Writer) error {
	if strings.TrimSpace(modelID) == "" {
		modelID = DefaultTTSModel
	}

	payload, err := json.Marshal(map[string]string{
		"text":     text,
		"model_id": modelID,
	})
	if err != nil {
		return fmt.Errorf("marshal tts payload: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s/stream", p.baseURL, p.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build tts request: %w", err)
	}
	req.Header.Set("xi-api-key", p.apiKey)
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, upstreamBodyLimit))
		return &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	written, err := io.Copy(w, resp.Body)
	if err != nil {
		// The client likely went away mid-stream; nothing to send back.
		p.log.Debug("tts stream interrupted", zap.Int64("bytes", written), zap.Error(err))
		return fmt.Errorf("stream tts audio: %w", err)
	}

	p.log.Debug("tts stream complete", zap.Int64("bytes", written))
	return nil
}
