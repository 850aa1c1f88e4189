package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Result is the decoded ffprobe report.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream holds the per-stream fields valence reads.
type Stream struct {
	CodecType    string `json:"codec_type"`
	Duration     string `json:"duration"`
	SampleRate   string `json:"sample_rate"`
	Channels     int    `json:"channels"`
	AvgFrameRate string `json:"avg_frame_rate"`
	RFrameRate   string `json:"r_frame_rate"`
	NBFrames     string `json:"nb_frames"`
}

// Format holds the container-level fields valence reads.
type Format struct {
	Duration string `json:"duration"`
}

// Parse decodes an ffprobe JSON payload.
func Parse(data []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// CommandRunner executes a binary and returns its stdout.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Prober runs a fixed ffprobe binary.
type Prober struct {
	binary string
	run    CommandRunner
}

// NewProber returns a prober for binary. An empty binary means "ffprobe".
func NewProber(binary string) *Prober {
	return NewProberWithRunner(binary, runCommand)
}

// NewProberWithRunner returns a prober that executes commands through run.
func NewProberWithRunner(binary string, run CommandRunner) *Prober {
	if binary = strings.TrimSpace(binary); binary == "" {
		binary = "ffprobe"
	}
	return &Prober{binary: binary, run: run}
}

// Probe inspects path.
func (p *Prober) Probe(ctx context.Context, path string) (Result, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}
	out, err := p.run(ctx, p.binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w", err)
	}
	return Parse(out)
}

// ProbeDuration returns the duration of path in seconds. A missing or
// unparsable duration is an error.
func (p *Prober) ProbeDuration(ctx context.Context, path string) (float64, error) {
	result, err := p.Probe(ctx, path)
	if err != nil {
		return 0, err
	}
	if d := result.DurationSeconds(); d > 0 {
		return d, nil
	}
	return 0, fmt.Errorf("ffprobe: no usable duration for %s", path)
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

func (r Result) streams(kind string) []Stream {
	var out []Stream
	for _, s := range r.Streams {
		if strings.EqualFold(s.CodecType, kind) {
			out = append(out, s)
		}
	}
	return out
}

func (r Result) VideoStreamCount() int { return len(r.streams("video")) }

func (r Result) AudioStreamCount() int { return len(r.streams("audio")) }

// HasAudio reports whether the container carries at least one audio stream.
func (r Result) HasAudio() bool { return r.AudioStreamCount() > 0 }

func (r Result) video() (Stream, bool) {
	if vs := r.streams("video"); len(vs) > 0 {
		return vs[0], true
	}
	return Stream{}, false
}

// DurationSeconds returns the container duration, falling back to the first
// video stream's. It is 0 when absent and NaN when unparsable.
func (r Result) DurationSeconds() float64 {
	if d := parseSeconds(r.Format.Duration); d != 0 {
		return d
	}
	if v, ok := r.video(); ok {
		return parseSeconds(v.Duration)
	}
	return 0
}

// FrameRate returns the first video stream's average rate, falling back to
// its nominal rate. Zero means unknown.
func (r Result) FrameRate() float64 {
	v, ok := r.video()
	if !ok {
		return 0
	}
	if rate := parseRational(v.AvgFrameRate); rate > 0 {
		return rate
	}
	return parseRational(v.RFrameRate)
}

// FrameCount returns nb_frames when reported, else floor(duration * rate).
func (r Result) FrameCount() int {
	v, ok := r.video()
	if !ok {
		return 0
	}
	if n, err := strconv.Atoi(strings.TrimSpace(v.NBFrames)); err == nil && n > 0 {
		return n
	}
	duration, rate := r.DurationSeconds(), r.FrameRate()
	if !(duration > 0) || rate <= 0 {
		return 0
	}
	return int(math.Floor(duration * rate))
}

func parseSeconds(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" || value == "N/A" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return math.NaN()
	}
	return parsed
}

// parseRational parses rates such as "30000/1001". Invalid input yields 0.
func parseRational(value string) float64 {
	num, den, found := strings.Cut(strings.TrimSpace(value), "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}
