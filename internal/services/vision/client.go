// Package vision classifies facial emotion with an OpenAI-compatible vision
// model.
package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strings"
	"time"
	"unicode"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"valence/internal/media/frames"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	defaultTimeout = 60 * time.Second
)

// Emotions are the labels the model is asked to choose from.
var Emotions = []string{"happy", "surprise", "neutral", "sad", "angry", "fear", "disgust"}

const prompt = "Classify the dominant facial expression of the person in this image. " +
	"Answer with exactly one word from: happy, surprise, neutral, sad, angry, fear, disgust. " +
	"If no face is visible answer neutral."

// Config holds the connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client wraps the chat completions endpoint.
type Client struct {
	client openaigo.Client
	model  string
}

// New returns a vision client. The SDK's automatic retries are disabled.
func New(cfg Config, httpClient *http.Client) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("vision: api key is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		client: openaigo.NewClient(
			option.WithBaseURL(baseURL),
			option.WithAPIKey(apiKey),
			option.WithHTTPClient(httpClient),
			option.WithMaxRetries(0),
			option.WithRequestTimeout(timeout),
		),
		model: model,
	}, nil
}

// ClassifyEmotion returns the emotion label the model chose for img.
func (c *Client) ClassifyEmotion(ctx context.Context, img image.Image) (string, error) {
	data, err := frames.EncodeJPEG(img)
	if err != nil {
		return "", fmt.Errorf("vision: %w", err)
	}
	parts := []openaigo.ChatCompletionContentPartUnionParam{
		openaigo.TextContentPart(prompt),
		openaigo.ImageContentPart(openaigo.ChatCompletionContentPartImageImageURLParam{
			URL: frames.DataURL(data),
		}),
	}
	resp, err := c.client.Chat.Completions.New(ctx, openaigo.ChatCompletionNewParams{
		Model:    openaigo.ChatModel(c.model),
		Messages: []openaigo.ChatCompletionMessageParamUnion{openaigo.UserMessage(parts)},
	})
	if err != nil {
		return "", fmt.Errorf("vision: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("vision: empty choices")
	}
	label := ParseLabel(resp.Choices[0].Message.Content)
	if label == "" {
		return "", errors.New("vision: empty answer")
	}
	return label, nil
}

// HealthCheck sends a blank frame to confirm the model answers.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.ClassifyEmotion(ctx, image.NewGray(image.Rect(0, 0, 32, 32)))
	return err
}

// ParseLabel extracts the first known emotion word from a free-form answer.
// Answers without a known word are returned lowercased.
func ParseLabel(content string) string {
	words := strings.FieldsFunc(strings.ToLower(content), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, word := range words {
		for _, emotion := range Emotions {
			if strings.HasPrefix(word, emotion) || (emotion == "happy" && word == "happiness") {
				return emotion
			}
		}
	}
	return strings.Join(words, " ")
}
