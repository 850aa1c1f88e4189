package testsupport

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteFile writes size placeholder bytes to path, creating its directory.
// Sizes below one write a single byte.
func WriteFile(t testing.TB, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x42}, max(size, 1)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteSineWAV writes samples frames of a mono 16-bit sine tone at hz to
// path as a WAVE file.
func WriteSineWAV(path string, hz float64, rate, samples int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	data := make([]int, samples)
	for i := range data {
		data[i] = int(0.5 * math.Sin(2*math.Pi*hz*float64(i)/float64(rate)) * math.MaxInt16)
	}
	enc := wav.NewEncoder(file, rate, 16, 1, 1)
	if err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}); err != nil {
		return err
	}
	return enc.Close()
}
