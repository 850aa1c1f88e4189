package services

import "context"

type contextKey int

const (
	requestIDKey contextKey = iota
	stageKey
	modalityKey
	videoKey
)

func withValue(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func value(ctx context.Context, key contextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok && v != ""
}

// WithRequestID tags ctx with the identifier shared by every log line of one
// analysis request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withValue(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) { return value(ctx, requestIDKey) }

// WithStage tags ctx with the pipeline stage (validate, extract, analyze, fuse).
func WithStage(ctx context.Context, stage string) context.Context {
	return withValue(ctx, stageKey, stage)
}

func StageFromContext(ctx context.Context) (string, bool) { return value(ctx, stageKey) }

// WithModality tags ctx with the modality an analyzer is scoring.
func WithModality(ctx context.Context, modality string) context.Context {
	return withValue(ctx, modalityKey, modality)
}

func ModalityFromContext(ctx context.Context) (string, bool) { return value(ctx, modalityKey) }

// WithVideo tags ctx with the source video path.
func WithVideo(ctx context.Context, path string) context.Context {
	return withValue(ctx, videoKey, path)
}

func VideoFromContext(ctx context.Context) (string, bool) { return value(ctx, videoKey) }
