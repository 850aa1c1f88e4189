package llm

import (
	"strings"
	"testing"
)

func TestDecodeLLMJSONVariants(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{name: "plain", content: `[1,2,3]`, want: 3},
		{name: "fenced", content: "```json\n[1,2]\n```", want: 2},
		{name: "bare fence", content: "```\n[4]\n```", want: 1},
		{name: "prose", content: "values: [7, 8] done", want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out []int
			if err := DecodeLLMJSON(tt.content, &out); err != nil {
				t.Fatalf("DecodeLLMJSON(%q): %v", tt.content, err)
			}
			if len(out) != tt.want {
				t.Fatalf("got %v, want %d values", out, tt.want)
			}
		})
	}
}

func TestDecodeLLMJSONErrorCarriesSnippet(t *testing.T) {
	var out map[string]any
	err := DecodeLLMJSON("no json\there at all", &out)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "payload snippet: no json here at all") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestSnippetBoundsLength(t *testing.T) {
	long := strings.Repeat("a", snippetLimit+20)
	got := snippet(long)
	if len(got) != snippetLimit+3 || !strings.HasSuffix(got, "...") {
		t.Fatalf("unexpected snippet length %d", len(got))
	}
	if snippet("  \n ") != "<empty>" {
		t.Fatal("expected <empty> for blank content")
	}
}
