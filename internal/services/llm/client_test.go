package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func completionServer(t *testing.T, choice map[string]any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{"choices": []any{choice}}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClientHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test" {
			t.Errorf("unexpected auth header %q", got)
		}
		if got := r.Header.Get("X-Title"); got != "valence" {
			t.Errorf("unexpected title header %q", got)
		}
		payload := map[string]any{
			"choices": []any{
				map[string]any{
					"message": map[string]any{
						"content": `{"ok":true}`,
					},
				},
			},
		}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model", Title: "valence"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestClientHealthCheckCodeFence(t *testing.T) {
	server := completionServer(t, map[string]any{
		"message": map[string]any{"content": "```json\n{\"ok\":true}\n```"},
	})
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestClientHealthCheckFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL, Model: "demo"})
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health check to fail")
	}
}

func TestClientClassifySentiment(t *testing.T) {
	server := completionServer(t, map[string]any{
		"message": map[string]any{"content": "Sure:\n```json\n{\"label\":\" Positive \",\"probability\":1.7}\n```"},
	})
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"})
	label, prob, err := client.ClassifySentiment(context.Background(), "I really love this")
	if err != nil {
		t.Fatalf("ClassifySentiment returned error: %v", err)
	}
	if label != "positive" {
		t.Fatalf("unexpected label %q", label)
	}
	if prob != 1 {
		t.Fatalf("expected probability clamped to 1, got %v", prob)
	}
}

func TestClientClassifyToolCallsArguments(t *testing.T) {
	server := completionServer(t, map[string]any{
		"message": map[string]any{
			"content": "",
			"tool_calls": []any{
				map[string]any{
					"type":     "function",
					"function": map[string]any{"name": "classify", "arguments": `{"label":"negative","probability":0.8}`},
				},
			},
		},
	})
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"})
	result, err := client.Classify(context.Background(), "this is awful")
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if result.Label != "negative" || result.Probability != 0.8 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestClientClassifyDeltaAndLegacyText(t *testing.T) {
	for name, choice := range map[string]map[string]any{
		"delta":  {"delta": map[string]any{"content": `{"label":"neutral","probability":0.5}`}},
		"legacy": {"text": `{"label":"neutral","probability":0.5}`},
	} {
		t.Run(name, func(t *testing.T) {
			server := completionServer(t, choice)
			client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"})
			result, err := client.Classify(context.Background(), "it is a table")
			if err != nil {
				t.Fatalf("Classify returned error: %v", err)
			}
			if result.Label != "neutral" {
				t.Fatalf("unexpected label %q", result.Label)
			}
		})
	}
}

func TestClientEmptyContentHasSnippet(t *testing.T) {
	server := completionServer(t, map[string]any{
		"message":       map[string]any{"content": "", "refusal": "nope"},
		"finish_reason": "stop",
	})
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"})
	_, err := client.Classify(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected empty content error")
	}
	if !strings.Contains(err.Error(), "response_snippet=") || !strings.Contains(err.Error(), `refusal="nope"`) {
		t.Fatalf("expected diagnostic snippet, got %v", err)
	}
}

func TestClientMakesSingleAttempt(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"})
	if _, _, err := client.ClassifySentiment(context.Background(), "hello"); err == nil {
		t.Fatal("expected failure")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected exactly one request, got %d", got)
	}
}

func TestClientRejectsMissingInput(t *testing.T) {
	client := NewClient(Config{})
	if _, err := client.Classify(context.Background(), "hello"); err == nil {
		t.Fatal("expected api key error")
	}
	client = NewClient(Config{APIKey: "k"})
	if _, err := client.Classify(context.Background(), "   "); err == nil {
		t.Fatal("expected empty text error")
	}
}

func TestDecodeLLMJSONExtractsObject(t *testing.T) {
	var out struct {
		OK bool `json:"ok"`
	}
	if err := DecodeLLMJSON("here you go {\"ok\":true} thanks", &out); err != nil {
		t.Fatalf("DecodeLLMJSON: %v", err)
	}
	if !out.OK {
		t.Fatal("expected ok")
	}
	if err := DecodeLLMJSON("", &out); err == nil {
		t.Fatal("expected empty payload error")
	}
}
