// Package pcm decodes integer PCM WAVE files into mono float samples in
// [-1, 1].
package pcm

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
)

// ErrNotWAV reports input that lacks a readable RIFF/WAVE header.
var ErrNotWAV = errors.New("pcm: not a RIFF/WAVE stream")

// Audio is decoded mono audio.
type Audio struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the audio length in seconds.
func (a Audio) Duration() float64 {
	if a.SampleRate <= 0 {
		return 0
	}
	return float64(len(a.Samples)) / float64(a.SampleRate)
}

// DecodeWAV reads a 16, 24 or 32-bit integer PCM WAVE stream and averages
// its channels.
func DecodeWAV(r io.ReadSeeker) (Audio, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return Audio{}, ErrNotWAV
	}
	if dec.WavAudioFormat != formatPCM && dec.WavAudioFormat != formatExtensible {
		return Audio{}, fmt.Errorf("pcm: unsupported wave format %d", dec.WavAudioFormat)
	}
	switch dec.BitDepth {
	case 16, 24, 32:
	default:
		return Audio{}, fmt.Errorf("pcm: unsupported bit depth %d", dec.BitDepth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Audio{}, fmt.Errorf("pcm: read data: %w", err)
	}
	return Audio{
		Samples:    downmix(buf),
		SampleRate: buf.Format.SampleRate,
	}, nil
}

// ReadWAVFile decodes the WAVE file at path.
func ReadWAVFile(path string) (Audio, error) {
	file, err := os.Open(path)
	if err != nil {
		return Audio{}, fmt.Errorf("pcm: open %s: %w", path, err)
	}
	defer file.Close()
	return DecodeWAV(file)
}

// downmix averages interleaved channels and normalizes by the source bit
// depth. A trailing partial frame is dropped.
func downmix(buf *audio.IntBuffer) []float64 {
	channels := max(1, buf.Format.NumChannels)
	full := float64(int64(1) << (buf.SourceBitDepth - 1))
	frames := len(buf.Data) / channels
	out := make([]float64, frames)
	for i := range frames {
		var sum float64
		for _, v := range buf.Data[i*channels : (i+1)*channels] {
			sum += float64(v) / full
		}
		out[i] = sum / float64(channels)
	}
	return out
}
