package services

import (
	"errors"
	"fmt"
	"strings"
)

// Markers classify failures. Wrap attaches one so callers can test with
// errors.Is without parsing messages.
var (
	// ErrInput means the request itself is unusable: a missing, unreadable
	// or over-long video. It is the only marker that changes the exit code.
	ErrInput = errors.New("input error")
	// ErrExternalTool covers ffmpeg, ffprobe, uvx and remote model failures.
	ErrExternalTool = errors.New("external tool error")
	// ErrConfiguration means a collaborator cannot be built from the config.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransient is the marker used when none is given.
	ErrTransient = errors.New("transient failure")
)

// Process exit statuses.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitInput   = 2
)

// Wrap tags err with marker and prefixes it with "stage: operation: message",
// skipping blank parts. err may be nil.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	detail := joinNonBlank(stage, operation, message)
	if detail == "" {
		detail = "service failure"
	}
	if err == nil {
		return fmt.Errorf("%w: %s", marker, detail)
	}
	return fmt.Errorf("%w: %s: %w", marker, detail, err)
}

// IsInput reports whether err was caused by unusable caller input.
func IsInput(err error) bool {
	return errors.Is(err, ErrInput)
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if IsInput(err) {
		return ExitInput
	}
	return ExitFailure
}

func joinNonBlank(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ": ")
}
