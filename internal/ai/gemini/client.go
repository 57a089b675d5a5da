package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/voicehire/interview-server/internal/logger"
)

const defaultMaxLogLen = 200

// Client wraps the Google GenAI client behind the small surface the
// interview flow needs: send a prompt (optionally with an attached
// document), get the response text back.
type Client struct {
	client    *genai.Client
	modelName string
	log       *zap.Logger
	maxLogLen int
}

// NewClient creates a Client for the Gemini API backend. The API key is
// required; a missing key is a configuration error, not a runtime one.
func NewClient(ctx context.Context, apiKey, model string, log *zap.Logger) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		client:    client,
		modelName: strings.TrimSpace(model),
		log:       log,
		maxLogLen: defaultMaxLogLen,
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.modelName
}

// Generate sends a text-only prompt and returns the raw response text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, genai.Text(prompt), prompt)
}

// GenerateWithDocument sends a prompt with an inline document attachment
// (the resume PDF travels to the provider as bytes, never through our own
// parser on this path).
func (c *Client) GenerateWithDocument(ctx context.Context, prompt, mimeType string, data []byte) (string, error) {
	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
			{Text: prompt},
		},
	}}
	return c.generate(ctx, contents, prompt)
}

func (c *Client) generate(ctx context.Context, contents []*genai.Content, prompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", ErrNotConfigured
	}

	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt must not be empty")
	}

	c.log.Debug("gemini generate content request",
		zap.String("model", c.modelName),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.Truncate(prompt, c.maxLogLen)),
	)

	resp, err := c.client.Models.GenerateContent(ctx, c.modelName, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		// Covers safety blocks and provider responses that carry no text.
		return "", ErrEmptyResponse
	}

	c.log.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(output)),
		zap.String("response_preview", logger.Truncate(output, c.maxLogLen)),
	)

	return output, nil
}
