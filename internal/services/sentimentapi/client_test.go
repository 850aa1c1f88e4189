package sentimentapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClassifySentimentResponseShapes(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantLabel string
		wantProb  float64
	}{
		{"flat", `[{"label":"NEGATIVE","score":0.1},{"label":"POSITIVE","score":0.9}]`, "POSITIVE", 0.9},
		{"nested", `[[{"label":"neutral","score":0.6},{"label":"negative","score":0.4}]]`, "neutral", 0.6},
		{"single", `{"label":"negative","score":0.75}`, "negative", 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var req request
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Errorf("decode request: %v", err)
				}
				if req.Inputs != "great day" {
					t.Errorf("unexpected inputs %q", req.Inputs)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer tok" {
					t.Errorf("unexpected auth %q", got)
				}
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := New(server.URL, "tok", 0)
			label, prob, err := client.ClassifySentiment(context.Background(), "great day")
			if err != nil {
				t.Fatalf("ClassifySentiment: %v", err)
			}
			if label != tt.wantLabel || prob != tt.wantProb {
				t.Fatalf("got (%q, %v), want (%q, %v)", label, prob, tt.wantLabel, tt.wantProb)
			}
		})
	}
}

func TestClassifySentimentErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			_, _ = w.Write([]byte(`{"unexpected":true}`))
			return
		}
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	if _, _, err := New(server.URL, "", 0).ClassifySentiment(context.Background(), "x"); err == nil {
		t.Fatal("expected status error")
	}
	if _, _, err := New(server.URL+"/bad", "", 0).ClassifySentiment(context.Background(), "x"); err == nil {
		t.Fatal("expected decode error")
	}
	if err := New("", "", 0).HealthCheck(context.Background()); err == nil {
		t.Fatal("expected not configured error")
	}
}
