package observability

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestWithBuildID(t *testing.T) {
	ctx := context.Background()
	ctx = WithBuildID(ctx, "build-123")

	lc := GetContext(ctx)
	if lc.BuildID != "build-123" {
		t.Errorf("expected build-123, got %s", lc.BuildID)
	}
}

func TestWithStage_PreservesBuildID(t *testing.T) {
	ctx := WithBuildID(context.Background(), "build-123")
	ctx = WithStage(ctx, "permalinks")

	lc := GetContext(ctx)
	if lc.BuildID != "build-123" {
		t.Errorf("build ID lost, got %q", lc.BuildID)
	}
	if lc.Stage != "permalinks" {
		t.Errorf("expected permalinks, got %s", lc.Stage)
	}
}

func TestInfoContext_EmitsContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(old)

	ctx := WithStage(WithBuildID(context.Background(), "b-1"), "load")
	InfoContext(ctx, "Stage started", slog.Int("documents", 4))

	out := buf.String()
	for _, want := range []string{"build.id=b-1", "stage=load", "documents=4", "Stage started"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestGetContext_Empty(t *testing.T) {
	lc := GetContext(context.Background())
	if lc.BuildID != "" || lc.Stage != "" || lc.Collection != "" {
		t.Errorf("expected zero LogContext, got %+v", lc)
	}
}
