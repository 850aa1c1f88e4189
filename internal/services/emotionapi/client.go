// Package emotionapi calls an HTTP facial-emotion service that speaks the
// DeepFace analyze format.
package emotionapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"valence/internal/media/frames"
)

const defaultTimeout = 30 * time.Second

// HTTPDoer describes the HTTP client used by the service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client classifies the dominant facial emotion of a frame.
type Client struct {
	url    string
	client HTTPDoer
}

// New returns a client for url. A zero timeout selects the default.
func New(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return NewWithDoer(url, &http.Client{Timeout: timeout})
}

// NewWithDoer returns a client that sends requests through doer.
func NewWithDoer(url string, doer HTTPDoer) *Client {
	return &Client{url: strings.TrimRight(strings.TrimSpace(url), "/"), client: doer}
}

type analyzeRequest struct {
	Image            string   `json:"img"`
	Actions          []string `json:"actions"`
	EnforceDetection bool     `json:"enforce_detection"`
}

type analysis struct {
	DominantEmotion string             `json:"dominant_emotion"`
	Emotion         map[string]float64 `json:"emotion"`
}

type analyzeResponse struct {
	Results []analysis `json:"results"`
	analysis
}

// ClassifyEmotion sends img with face detection disabled so that frames
// without a clear face still produce a reading.
func (c *Client) ClassifyEmotion(ctx context.Context, img image.Image) (string, error) {
	if c == nil || c.client == nil || c.url == "" {
		return "", errors.New("emotion api: not configured")
	}
	data, err := frames.EncodeJPEG(img)
	if err != nil {
		return "", fmt.Errorf("emotion api: %w", err)
	}
	body, err := json.Marshal(analyzeRequest{
		Image:            frames.DataURL(data),
		Actions:          []string{"emotion"},
		EnforceDetection: false,
	})
	if err != nil {
		return "", fmt.Errorf("emotion api: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("emotion api: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("emotion api: request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("emotion api: %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var out analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("emotion api: decode: %w", err)
	}
	if label := dominant(out); label != "" {
		return label, nil
	}
	return "", errors.New("emotion api: response has no dominant emotion")
}

// HealthCheck sends a blank frame to confirm the service responds.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.ClassifyEmotion(ctx, image.NewGray(image.Rect(0, 0, 48, 48)))
	return err
}

func dominant(out analyzeResponse) string {
	candidates := append([]analysis{out.analysis}, out.Results...)
	for _, a := range candidates {
		if label := strings.TrimSpace(a.DominantEmotion); label != "" {
			return label
		}
		best, bestScore := "", -1.0
		for label, score := range a.Emotion {
			if score > bestScore || (score == bestScore && label < best) {
				best, bestScore = label, score
			}
		}
		if best != "" {
			return best
		}
	}
	return ""
}
