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

	"github.com/zentale/story-system/internal/core/ports"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"

	visionModel = "gpt-4-vision-preview"
	imageModel  = "dall-e-3"
	textModel   = "gpt-4-0125-preview"

	writerPersona = "You are an amazing writer, with the Nobel Prize in Literature, the Pulitzer Prize, the Booker Prize, the International Booker Prize, PEN America Literary Awards, and the National Book Award, designed to create amazing stories for kids and adults."
)

// OpenAIClient implements the story generation pipeline against the OpenAI
// API: a vision call titles the uploaded photos, an image call illustrates
// the title, and a chat call writes the story body.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewOpenAIClient creates a client. baseURL overrides the API host when
// non-empty (tests point it at a local server).
func NewOpenAIClient(apiKey, baseURL string) *OpenAIClient {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAIClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 120 * time.Second},
	}
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens,omitempty"`
	Messages  []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type imageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// ComposeStory runs the three-step pipeline. Any failing step aborts the
// whole composition; partial results are never returned.
func (c *OpenAIClient) ComposeStory(ctx context.Context, language string, imageURLs []string, maxTokens int) (*ports.ComposedStory, error) {
	title, err := c.generateTitle(ctx, language, imageURLs, maxTokens)
	if err != nil {
		return nil, fmt.Errorf("compose story: title: %w", err)
	}
	title = strings.ReplaceAll(title, `"`, "")

	imageURL, err := c.generateIllustration(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("compose story: illustration: %w", err)
	}

	content, err := c.generateContent(ctx, language, title)
	if err != nil {
		return nil, fmt.Errorf("compose story: content: %w", err)
	}

	return &ports.ComposedStory{Title: title, Content: content, ImageURL: imageURL}, nil
}

func (c *OpenAIClient) generateTitle(ctx context.Context, language string, imageURLs []string, maxTokens int) (string, error) {
	prompt := fmt.Sprintf("Create a story title in %s language for the object in the photo.", language)

	parts := []map[string]interface{}{
		{"type": "text", "text": prompt},
	}
	for _, url := range imageURLs {
		parts = append(parts, map[string]interface{}{
			"type":      "image_url",
			"image_url": map[string]string{"url": url},
		})
	}

	var resp chatResponse
	err := c.post(ctx, "/chat/completions", chatRequest{
		Model:     visionModel,
		MaxTokens: maxTokens,
		Messages:  []chatMessage{{Role: "user", Content: parts}},
	}, &resp)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty vision response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) generateIllustration(ctx context.Context, title string) (string, error) {
	var resp imageResponse
	err := c.post(ctx, "/images/generations", imageRequest{
		Model:  imageModel,
		Prompt: fmt.Sprintf("Create a simple image for a story called: %s without any text or letters in the image.", title),
		N:      1,
		Size:   "1024x1024",
	}, &resp)
	if err != nil {
		return "", err
	}
	if len(resp.Data) == 0 {
		return "", fmt.Errorf("empty image response")
	}
	return resp.Data[0].URL, nil
}

func (c *OpenAIClient) generateContent(ctx context.Context, language, title string) (string, error) {
	userPrompt := fmt.Sprintf(
		"Create a story for kids with the following title: %s. Write the story in %s. Do not add the story title when you return the content.",
		title, language,
	)

	var resp chatResponse
	err := c.post(ctx, "/chat/completions", chatRequest{
		Model: textModel,
		Messages: []chatMessage{
			{Role: "system", Content: writerPersona},
			{Role: "user", Content: userPrompt},
		},
	}, &resp)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("openai %s: status %d: %s", path, resp.StatusCode, snippet)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
