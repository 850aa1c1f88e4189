package preflight

import (
	"context"

	"valence/internal/config"
	"valence/internal/services/emotionapi"
	"valence/internal/services/sentimentapi"
	"valence/internal/services/vision"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Disabled reports a check skipped by configuration. It counts as passed.
func Disabled(name string) Result {
	return Result{Name: name, Passed: true, Detail: "disabled"}
}

// RunAll executes the directory and backend checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	results = append(results, CheckTextBackend(ctx, cfg), CheckEmotionBackend(ctx, cfg))
	return results
}

// CheckTextBackend checks the configured transcript sentiment backend.
func CheckTextBackend(ctx context.Context, cfg *config.Config) Result {
	const name = "Sentiment backend"
	switch cfg.Text.Backend {
	case config.BackendHTTP:
		return CheckService(ctx, name, sentimentapi.New(cfg.Text.URL, cfg.Text.APIKey, cfg.TextTimeout()))
	case config.BackendLLM:
		return CheckLLM(ctx, name, cfg.LLMSettings())
	default:
		return Disabled(name)
	}
}

// CheckEmotionBackend checks the configured facial emotion backend.
func CheckEmotionBackend(ctx context.Context, cfg *config.Config) Result {
	const name = "Emotion backend"
	switch cfg.Emotion.Backend {
	case config.BackendHTTP:
		return CheckService(ctx, name, emotionapi.New(cfg.Emotion.URL, cfg.EmotionTimeout()))
	case config.BackendVision:
		client, err := vision.New(vision.Config{
			BaseURL: cfg.Emotion.BaseURL,
			APIKey:  cfg.Emotion.APIKey,
			Model:   cfg.Emotion.Model,
			Timeout: cfg.EmotionTimeout(),
		}, nil)
		if err != nil {
			return Result{Name: name, Detail: err.Error()}
		}
		return CheckService(ctx, name, client)
	default:
		return Disabled(name)
	}
}
