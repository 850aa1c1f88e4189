// Package sentimentapi calls an HTTP text-classification service that speaks
// the Hugging Face inference format.
//
// Requests are POSTed as {"inputs": text}. Responses may be a flat list of
// {label, score} pairs or a list wrapping that list; the highest score wins.
package sentimentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// HTTPDoer describes the HTTP client used by the service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client classifies text through a remote model.
type Client struct {
	url    string
	token  string
	client HTTPDoer
}

// New returns a client for url. A zero timeout selects the default.
func New(url, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return NewWithDoer(url, token, &http.Client{Timeout: timeout})
}

// NewWithDoer returns a client that sends requests through doer.
func NewWithDoer(url, token string, doer HTTPDoer) *Client {
	return &Client{
		url:    strings.TrimSpace(url),
		token:  strings.TrimSpace(token),
		client: doer,
	}
}

// Score is one label and its probability.
type Score struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type request struct {
	Inputs string `json:"inputs"`
}

// ClassifySentiment returns the top label and its probability.
func (c *Client) ClassifySentiment(ctx context.Context, text string) (string, float64, error) {
	scores, err := c.Scores(ctx, text)
	if err != nil {
		return "", 0, err
	}
	best := scores[0]
	for _, s := range scores[1:] {
		if s.Score > best.Score {
			best = s
		}
	}
	return best.Label, min(max(best.Score, 0), 1), nil
}

// Scores returns every label the service reported.
func (c *Client) Scores(ctx context.Context, text string) ([]Score, error) {
	if c == nil || c.client == nil || c.url == "" {
		return nil, errors.New("sentiment api: not configured")
	}
	body, err := json.Marshal(request{Inputs: text})
	if err != nil {
		return nil, fmt.Errorf("sentiment api: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("sentiment api: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sentiment api: request: %w", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("sentiment api: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("sentiment api: %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}
	scores, err := decodeScores(payload)
	if err != nil {
		return nil, fmt.Errorf("sentiment api: %w", err)
	}
	return scores, nil
}

// HealthCheck classifies a fixed phrase to confirm the service responds.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, _, err := c.ClassifySentiment(ctx, "health check")
	return err
}

func decodeScores(payload []byte) ([]Score, error) {
	var flat []Score
	if err := json.Unmarshal(payload, &flat); err == nil && len(flat) > 0 {
		return flat, nil
	}
	var nested [][]Score
	if err := json.Unmarshal(payload, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 {
		return nested[0], nil
	}
	var single Score
	if err := json.Unmarshal(payload, &single); err == nil && single.Label != "" {
		return []Score{single}, nil
	}
	return nil, fmt.Errorf("unrecognized response %q", truncate(string(payload), 120))
}

func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if runes := []rune(value); len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return value
}
