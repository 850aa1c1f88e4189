package analyzer

import (
	"context"
	"log/slog"

	"valence/internal/logging"
	"valence/internal/sentiment"
)

// degrade logs the branch taken and returns the modality's fallback reading.
func degrade(ctx context.Context, logger *slog.Logger, m sentiment.Modality, reason sentiment.Degradation, err error, attrs ...logging.Attr) sentiment.ModalityResult {
	attrs = append(attrs,
		logging.String(logging.FieldModality, m.String()),
		logging.String(logging.FieldDegraded, string(reason)),
	)
	if err != nil {
		attrs = append(attrs, logging.Error(err))
	}
	logging.WarnWithContext(logging.WithContext(ctx, logger), "modality degraded", "modality_degraded", attrs...)
	return sentiment.Fallback(m, reason)
}

func truncateRunes(value string, limit int) string {
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
