// Package whisperx extracts speech audio with ffmpeg and transcribes it with
// WhisperX launched through uvx.
//
// Transcriptions are serialized across processes with a file lock so that
// concurrent first runs do not race while uvx populates its model cache.
package whisperx
