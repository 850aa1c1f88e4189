package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the chat completions endpoint used when none is set.
const DefaultBaseURL = "https://openrouter.ai/api/v1/chat/completions"

const (
	defaultHTTPTimeout = 15 * time.Second
	maxInputRunes      = 2000
)

// SentimentPrompt instructs the model to classify transcript sentiment.
const SentimentPrompt = `You classify the overall sentiment of a spoken transcript.
Respond with JSON only: {"label":"positive|neutral|negative","probability":0.0-1.0}.
probability is your confidence in the label.`

const healthPrompt = `Respond with {"ok":true}`

// Config captures the runtime settings required to talk to the LLM.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// Client wraps an OpenAI-compatible chat completion endpoint. Every call
// makes exactly one request.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs an LLM client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.Referer = strings.TrimSpace(cfg.Referer)
	cfg.Title = strings.TrimSpace(cfg.Title)
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	client := &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Classification is the decoded sentiment verdict.
type Classification struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
	Raw         string  `json:"-"`
}

// ClassifySentiment asks the model for the sentiment of text. It returns the
// lower-cased label and the probability clamped into [0,1].
func (c *Client) ClassifySentiment(ctx context.Context, text string) (string, float64, error) {
	parsed, err := c.Classify(ctx, text)
	if err != nil {
		return "", 0, err
	}
	return parsed.Label, parsed.Probability, nil
}

// Classify issues a sentiment classification request for text. Input longer
// than 2000 runes is cut before sending.
func (c *Client) Classify(ctx context.Context, text string) (Classification, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Classification{}, errors.New("llm classify: text required")
	}
	if runes := []rune(text); len(runes) > maxInputRunes {
		text = string(runes[:maxInputRunes])
	}
	content, err := c.complete(ctx, "llm classify", SentimentPrompt, text)
	if err != nil {
		return Classification{}, err
	}

	var parsed Classification
	if err := DecodeLLMJSON(content, &parsed); err != nil {
		return Classification{}, fmt.Errorf("llm classify: parse payload: %w", err)
	}
	parsed.Raw = content
	parsed.Label = strings.ToLower(strings.TrimSpace(parsed.Label))
	if parsed.Label == "" {
		return Classification{}, errors.New("llm classify: missing label")
	}
	parsed.Probability = min(max(parsed.Probability, 0), 1)
	return parsed, nil
}

// HealthCheck issues a tiny JSON request to confirm the key and model work.
func (c *Client) HealthCheck(ctx context.Context) error {
	content, err := c.complete(ctx, "llm health", "You must respond with JSON only.", healthPrompt)
	if err != nil {
		return err
	}
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := DecodeLLMJSON(content, &parsed); err != nil {
		return fmt.Errorf("llm health: parse payload: %w", err)
	}
	if !parsed.OK {
		return errors.New("llm health: unexpected response")
	}
	return nil
}

func (c *Client) complete(ctx context.Context, op, systemPrompt, userPrompt string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("%s: api key required", op)
	}
	resp, body, err := c.post(ctx, chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: empty choices", op)
	}
	content, finish, refusal := resp.payload()
	if content == "" {
		return "", &emptyContentError{
			Op:           op,
			FinishReason: finish,
			Refusal:      refusal,
			Snippet:      snippet(string(body)),
		}
	}
	return content, nil
}

func (c *Client) timeout() time.Duration {
	if c.httpClient == nil || c.httpClient.Timeout <= 0 {
		return defaultHTTPTimeout
	}
	return c.httpClient.Timeout
}
