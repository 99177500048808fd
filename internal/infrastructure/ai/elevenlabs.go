package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultElevenLabsBaseURL = "https://api.elevenlabs.io"

// ElevenLabsClient synthesizes story narration via the ElevenLabs
// text-to-speech API.
type ElevenLabsClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewElevenLabsClient creates a client. baseURL overrides the API host when
// non-empty.
func NewElevenLabsClient(apiKey, baseURL string) *ElevenLabsClient {
	if baseURL == "" {
		baseURL = defaultElevenLabsBaseURL
	}
	return &ElevenLabsClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 120 * time.Second},
	}
}

type speechRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	SimilarityBoost float64 `json:"similarity_boost"`
	Stability       float64 `json:"stability"`
}

// Synthesize streams MP3 narration for text using the given voice. The caller
// owns closing the returned body.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text, voiceID string) (io.ReadCloser, error) {
	payload, err := json.Marshal(speechRequest{
		Text:    text,
		ModelID: "eleven_multilingual_v2",
		VoiceSettings: voiceSettings{
			SimilarityBoost: 0.5,
			Stability:       0.5,
		},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("elevenlabs synthesize: status %d: %s", resp.StatusCode, snippet)
	}

	return resp.Body, nil
}
