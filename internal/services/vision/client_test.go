package vision

import (
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func chatServer(t *testing.T, answer string, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("unexpected auth %q", got)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body["model"] != "vision-test" {
			t.Errorf("unexpected model %v", body["model"])
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"bad"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "vision-test",
			"choices": []any{map[string]any{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": answer},
			}},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClassifyEmotion(t *testing.T) {
	server := chatServer(t, "Surprised.", http.StatusOK)
	client, err := New(Config{BaseURL: server.URL, APIKey: "key", Model: "vision-test"}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	label, err := client.ClassifyEmotion(context.Background(), image.NewRGBA(image.Rect(0, 0, 8, 8)))
	if err != nil {
		t.Fatalf("ClassifyEmotion: %v", err)
	}
	if label != "surprise" {
		t.Fatalf("unexpected label %q", label)
	}
}

func TestClassifyEmotionHTTPError(t *testing.T) {
	server := chatServer(t, "", http.StatusInternalServerError)
	client, err := New(Config{BaseURL: server.URL, APIKey: "key", Model: "vision-test"}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New(Config{}, nil); err == nil {
		t.Fatal("expected api key error")
	}
}

func TestParseLabel(t *testing.T) {
	cases := map[string]string{
		"happy":                  "happy",
		"The person looks SAD.":  "sad",
		"Happiness":              "happy",
		"disgusted":              "disgust",
		"contempt":               "contempt",
		"":                       "",
		"I think: angry, maybe.": "angry",
	}
	for input, want := range cases {
		if got := ParseLabel(input); got != want {
			t.Fatalf("ParseLabel(%q) = %q, want %q", input, got, want)
		}
	}
}
