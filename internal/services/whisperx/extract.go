package whisperx

import (
	"context"
	"strconv"
)

// ExtractFullAudio writes the first audio stream of source to dest as mono
// 16-bit PCM WAV at the configured sample rate.
func (s *Service) ExtractFullAudio(ctx context.Context, source, dest string) error {
	return s.run(ctx, s.ffmpeg, extractArgs(source, dest, s.cfg.sampleRate())...)
}

func extractArgs(source, dest string, rate int) []string {
	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", source,
		"-map", "0:a:0", "-vn", "-sn", "-dn",
		"-ac", "1",
		"-ar", strconv.Itoa(rate),
		"-c:a", "pcm_s16le",
		dest,
	}
}
