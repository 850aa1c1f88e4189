package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

const consoleTimeLayout = "2006-01-02 15:04:05"

// Detail lines longer than this are dropped below debug, except errors,
// which are cut to maxErrorLen instead.
const (
	maxInfoValueLen = 120
	maxErrorLen     = 200
)

// headlineKeys are listed first, in this order, under each console line.
var headlineKeys = []string{
	FieldAlert,
	FieldEventType,
	FieldDegraded,
	"sentiment",
	"score",
	"confidence",
	"inconsistency",
	FieldProgress,
	"duration_seconds",
	"frames",
	"pitch_hz",
	"error",
	FieldErrorHint,
	FieldImpact,
}

var headlineRank = func() map[string]int {
	rank := make(map[string]int, len(headlineKeys))
	for i, key := range headlineKeys {
		rank[key] = i
	}
	return rank
}()

var labels = map[string]string{
	FieldAlert:         "Alert",
	FieldEventType:     "Event",
	FieldErrorHint:     "Hint",
	"pitch_hz":         "Pitch (Hz)",
	"duration_seconds": "Duration (s)",
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) write(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.w.Write(p)
	return err
}

type field struct {
	key   string
	value slog.Value
}

// consoleHandler renders a one-line header per record followed by an
// indented list of its attributes:
//
//	2026-01-02 15:04:05 INFO [pipeline] req 01234567 · analyze/visual - message
//	    - Frames: 12
type consoleHandler struct {
	out    *syncWriter
	level  slog.Leveler
	source bool
	prefix string
	preset []field
}

func newConsoleHandler(w io.Writer, level slog.Leveler, source bool) slog.Handler {
	return &consoleHandler{out: &syncWriter{w: w}, level: level, source: source}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := slices.Clone(h.preset)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendAttr(fields, h.prefix, attr)
		return true
	})
	fields = lastWins(fields)

	when := record.Time
	if when.IsZero() {
		when = time.Now()
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}

	var b strings.Builder
	b.WriteString(when.Local().Format(consoleTimeLayout))
	b.WriteString(" " + levelName(record.Level))
	if component := lookup(fields, FieldComponent); component != "" {
		b.WriteString(" [" + component + "]")
	}
	if subject := subjectLine(fields); subject != "" {
		b.WriteString(" " + subject)
	}
	b.WriteString(" - " + msg)
	if h.source {
		if src := record.Source(); src != nil {
			fmt.Fprintf(&b, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	b.WriteByte('\n')

	verbose := record.Level < slog.LevelInfo
	for _, f := range detailFields(fields) {
		value := renderValue(f.key, f.value)
		if !verbose && hiddenBelowDebug(f.key, value) {
			continue
		}
		b.WriteString("    - " + label(f.key) + ": " + value + "\n")
	}
	return h.out.write([]byte(b.String()))
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.preset = slices.Clone(h.preset)
	for _, attr := range attrs {
		next.preset = appendAttr(next.preset, h.prefix, attr)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

// appendAttr flattens groups into dotted keys.
func appendAttr(dst []field, prefix string, attr slog.Attr) []field {
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		inner := prefix
		if attr.Key != "" {
			inner += attr.Key + "."
		}
		for _, a := range value.Group() {
			dst = appendAttr(dst, inner, a)
		}
		return dst
	}
	if attr.Key == "" {
		return dst
	}
	return append(dst, field{key: prefix + attr.Key, value: value})
}

// lastWins keeps the first position of each key with its latest value.
func lastWins(fields []field) []field {
	index := make(map[string]int, len(fields))
	out := fields[:0:0]
	for _, f := range fields {
		if i, ok := index[f.key]; ok {
			out[i].value = f.value
			continue
		}
		index[f.key] = len(out)
		out = append(out, f)
	}
	return out
}

func lookup(fields []field, key string) string {
	for _, f := range fields {
		if f.key == key {
			return plain(f.value)
		}
	}
	return ""
}

// subjectLine renders "req 1a2b3c4d · stage/modality".
func subjectLine(fields []field) string {
	var parts []string
	if id := strings.TrimSpace(lookup(fields, FieldRequestID)); id != "" {
		parts = append(parts, "req "+id[:min(len(id), 8)])
	}
	var scope []string
	for _, key := range []string{FieldStage, FieldModality} {
		if v := strings.TrimSpace(lookup(fields, key)); v != "" {
			scope = append(scope, v)
		}
	}
	if len(scope) > 0 {
		parts = append(parts, strings.Join(scope, "/"))
	}
	return strings.Join(parts, " · ")
}

// detailFields drops the header keys and moves headline keys to the front.
func detailFields(fields []field) []field {
	out := slices.DeleteFunc(slices.Clone(fields), func(f field) bool {
		switch f.key {
		case FieldComponent, FieldRequestID, FieldStage, FieldModality:
			return true
		}
		return false
	})
	rankOf := func(key string) int {
		if r, ok := headlineRank[key]; ok {
			return r
		}
		return len(headlineKeys)
	}
	slices.SortStableFunc(out, func(a, b field) int { return rankOf(a.key) - rankOf(b.key) })
	return out
}

func hiddenBelowDebug(key, value string) bool {
	switch key {
	case FieldVideo, "args", "weight_sum", "sample_rate", "samples":
		return true
	case "error":
		return false
	}
	if strings.HasSuffix(key, "_path") || strings.HasSuffix(key, "_dir") {
		return true
	}
	return len(value) > maxInfoValueLen
}

func label(key string) string {
	if l, ok := labels[key]; ok {
		return l
	}
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '_' || r == '-' || r == '.' })
	if len(words) == 0 {
		return key
	}
	for i, w := range words {
		w = strings.ToLower(w)
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// renderValue formats a detail value. Progress fractions print as whole
// percentages and booleans as yes/no.
func renderValue(key string, v slog.Value) string {
	switch v.Kind() {
	case slog.KindFloat64:
		if key == FieldProgress {
			return strconv.FormatFloat(v.Float64()*100, 'f', 0, 64) + "%"
		}
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindBool:
		if v.Bool() {
			return "yes"
		}
		return "no"
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		return v.Time().Local().Format(consoleTimeLayout)
	}
	text := plain(v)
	if key == "error" {
		text = strings.TrimSpace(text)
		if len(text) > maxErrorLen {
			text = text[:maxErrorLen] + "…"
		}
	}
	if text == "" || strings.ContainsFunc(text, func(r rune) bool { return r < ' ' || r == '"' }) {
		return strconv.Quote(text)
	}
	return text
}

// plain returns the unquoted text of v.
func plain(v slog.Value) string {
	if v.Kind() == slog.KindAny {
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	}
	return v.String()
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
