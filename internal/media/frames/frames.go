// Package frames samples still frames from a video with ffmpeg and scales
// them down for classification.
package frames

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"math"
	"os/exec"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"

	"valence/internal/media/ffprobe"
)

// CommandRunner executes a command and returns its stdout.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Prober inspects a video's streams.
type Prober interface {
	Probe(ctx context.Context, path string) (ffprobe.Result, error)
}

// ErrNoVideoStream reports an input without a decodable video stream.
var ErrNoVideoStream = errors.New("frames: no video stream")

// DefaultScale is the downscale factor applied to each grabbed frame.
const DefaultScale = 0.3

// Opener opens videos for random frame access.
type Opener struct {
	FFmpeg string
	Prober Prober
	Scale  float64
	run    CommandRunner
}

// NewOpener returns an opener using ffmpeg and prober.
func NewOpener(ffmpeg string, prober Prober, scale float64) *Opener {
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	return &Opener{FFmpeg: ffmpeg, Prober: prober, Scale: scale, run: runCommand}
}

// WithCommandRunner replaces the ffmpeg runner (for testing).
func (o *Opener) WithCommandRunner(run CommandRunner) {
	o.run = run
}

// Source is an opened video.
type Source struct {
	path   string
	count  int
	fps    float64
	opener *Opener
}

// Open probes path and returns a frame source for it.
func (o *Opener) Open(ctx context.Context, path string) (*Source, error) {
	if o.Prober == nil {
		return nil, errors.New("frames: prober not configured")
	}
	result, err := o.Prober.Probe(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("frames: probe %s: %w", path, err)
	}
	if result.VideoStreamCount() == 0 {
		return nil, ErrNoVideoStream
	}
	count := result.FrameCount()
	fps := result.FrameRate()
	if count <= 0 || fps <= 0 || math.IsNaN(fps) {
		return nil, fmt.Errorf("frames: %s reports %d frames at %.3f fps", path, count, fps)
	}
	return &Source{path: path, count: count, fps: fps, opener: o}, nil
}

// Count returns the number of frames in the video.
func (s *Source) Count() int {
	return s.count
}

// Frame decodes frame index and returns it downscaled.
func (s *Source) Frame(ctx context.Context, index int) (image.Image, error) {
	if index < 0 || index >= s.count {
		return nil, fmt.Errorf("frames: index %d out of range [0,%d)", index, s.count)
	}
	run := s.opener.run
	if run == nil {
		run = runCommand
	}
	data, err := run(ctx, s.opener.FFmpeg, grabArgs(s.path, float64(index)/s.fps)...)
	if err != nil {
		return nil, fmt.Errorf("frames: grab %d: %w", index, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("frames: grab %d: empty output", index)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("frames: decode %d: %w", index, err)
	}
	return Downscale(img, s.opener.Scale), nil
}

func grabArgs(path string, seconds float64) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-ss", strconv.FormatFloat(seconds, 'f', 3, 64),
		"-i", path,
		"-frames:v", "1",
		"-an",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	}
}

// Downscale resizes img by factor. Factors outside (0,1) return img unchanged.
func Downscale(img image.Image, factor float64) image.Image {
	if img == nil || factor <= 0 || factor >= 1 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return img
	}
	nw := max(1, int(math.Round(float64(w)*factor)))
	nh := max(1, int(math.Round(float64(h)*factor)))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return output, nil
}

// JPEGQuality is the quality used when frames are encoded for transport.
const JPEGQuality = 85

// EncodeJPEG encodes img for upload to a classifier.
func EncodeJPEG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, errors.New("frames: nil image")
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("frames: encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURL renders data as a base64 JPEG data URL.
func DataURL(data []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)
}
