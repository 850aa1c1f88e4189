// Package deps reports whether the external binaries valence shells out to
// (ffmpeg, ffprobe, uvx) can be found.
package deps
