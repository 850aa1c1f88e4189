package services_test

import (
	"context"
	"testing"

	"valence/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRequestID(ctx, "req-123")
	ctx = services.WithStage(ctx, "analyze")
	ctx = services.WithModality(ctx, "visual")
	ctx = services.WithVideo(ctx, "/tmp/clip.mp4")

	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "analyze" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if modality, ok := services.ModalityFromContext(ctx); !ok || modality != "visual" {
		t.Fatalf("unexpected modality: %v %v", modality, ok)
	}
	if video, ok := services.VideoFromContext(ctx); !ok || video != "/tmp/clip.mp4" {
		t.Fatalf("unexpected video: %v %v", video, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}
