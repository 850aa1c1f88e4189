package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewFanoutHandlerCollapses(t *testing.T) {
	if _, ok := newFanoutHandler(nil, nil).(nopHandler); !ok {
		t.Fatal("expected nopHandler when every handler is nil")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := newFanoutHandler(nil, inner); h != inner {
		t.Fatal("expected single non-nil handler to be returned unwrapped")
	}
}

func TestFanoutHandlerRespectsEachLevel(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	infoHandler := slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	debugHandler := slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})

	h := newFanoutHandler(infoHandler, debugHandler)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected fanout to accept debug when one handler does")
	}

	slog.New(h).Debug("pitch frames tracked")
	if infoBuf.Len() != 0 {
		t.Fatal("info handler received a debug record")
	}
	if debugBuf.Len() == 0 {
		t.Fatal("debug handler missed the record")
	}
}

func TestFanoutHandlerWithAttrsReachesAll(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h := newFanoutHandler(slog.NewJSONHandler(&buf1, nil), slog.NewJSONHandler(&buf2, nil))
	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String(FieldRequestID, "abc")}))
	logger.Info("analysis started", slog.String(FieldModality, "audio"))

	for i, buf := range []*bytes.Buffer{&buf1, &buf2} {
		if !bytes.Contains(buf.Bytes(), []byte(`"request_id":"abc"`)) {
			t.Fatalf("buffer %d missing request id: %s", i, buf.String())
		}
		if !bytes.Contains(buf.Bytes(), []byte(`"modality":"audio"`)) {
			t.Fatalf("buffer %d missing record attr: %s", i, buf.String())
		}
	}
}

func TestConsoleHandlerOrdersDetails(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, slog.LevelInfo, false))
	logger.WithGroup("fusion").Info("fused",
		slog.Float64("weight", 0.4),
		slog.String("sentiment", "positive"),
	)
	logger.Info("progress",
		slog.String("clip_path", "/tmp/a.wav"),
		slog.Float64(FieldProgress, 0.254),
		slog.Bool("inconsistency", true),
		slog.Int("frames", 3),
		slog.Int("frames", 7),
	)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		"    - Fusion Weight: 0.4",
		"    - Fusion Sentiment: positive",
		"    - Inconsistency: yes",
		"    - Progress: 25%",
		"    - Frames: 7",
	}
	var details []string
	for _, line := range lines {
		if strings.HasPrefix(line, "    - ") {
			details = append(details, line)
		}
	}
	if strings.Join(details, "\n") != strings.Join(want, "\n") {
		t.Fatalf("details = %q, want %q", details, want)
	}
}
