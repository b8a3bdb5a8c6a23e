package otel_test

import (
	"context"
	"testing"

	"journeyboard/internal/platform/otel"
)

func TestSetupNoopWhenDisabled(t *testing.T) {
	for _, cfg := range []otel.Config{
		{},
		{Enabled: true},
		{Enabled: false, Endpoint: "http://localhost:4318"},
	} {
		shutdown, err := otel.Setup(context.Background(), cfg)
		if err != nil {
			t.Fatalf("%+v: unexpected error: %v", cfg, err)
		}
		if err := shutdown(context.Background()); err != nil {
			t.Fatalf("%+v: shutdown error: %v", cfg, err)
		}
	}
}

func TestSetupCreatesProvider(t *testing.T) {
	// Non-routable address; nothing is exported before shutdown.
	shutdown, err := otel.Setup(context.Background(), otel.Config{
		Enabled:     true,
		Endpoint:    "http://192.0.2.1:4318",
		ServiceName: "journeyboard-test",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}
