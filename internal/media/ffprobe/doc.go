// Package ffprobe runs ffprobe with JSON output and exposes the stream and
// format facts the pipeline needs: whether audio is present, the duration,
// the frame rate and the frame count.
package ffprobe
