package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

func TestInit_EmptyDSN(t *testing.T) {
	flush, err := Init(Config{}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flush == nil {
		t.Fatal("expected flush func")
	}
	flush()
}

func TestInit_InvalidDSN(t *testing.T) {
	flush, err := Init(Config{DSN: "not a dsn"}, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for malformed DSN")
	}
	if flush == nil {
		t.Fatal("flush must be callable even on error")
	}
	flush()
}

func TestCaptureError_UsesContextHub(t *testing.T) {
	var captured []*sentry.Event
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn: "https://public@example.com/1",
		BeforeSend: func(e *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			captured = append(captured, e)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	hub := sentry.NewHub(client, sentry.NewScope())
	ctx := sentry.SetHubOnContext(context.Background(), hub)

	CaptureError(ctx, errors.New("store unreachable"))
	CaptureError(ctx, nil)

	if len(captured) != 1 {
		t.Fatalf("expected 1 event, got %d", len(captured))
	}
	if Hub(ctx) != hub {
		t.Error("Hub must return the context hub")
	}
}

func TestHub_ClonesGlobal(t *testing.T) {
	if Hub(context.Background()) == sentry.CurrentHub() {
		t.Error("expected a clone of the global hub")
	}
}
