package jobs

import (
	"context"
	"testing"
	"time"

	"jobtrack/internal/config"
	"jobtrack/internal/store"
)

func TestRunner_DisabledReturnsImmediately(t *testing.T) {
	cfg := &config.Config{}
	r := NewRunner(cfg, &store.Store{}, nil)

	done := make(chan struct{})
	go func() {
		r.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("expected Start to return when retention is disabled")
	}
}

func TestRunner_StopsOnContextCancel(t *testing.T) {
	cfg := &config.Config{}
	cfg.Retention.Enabled = true
	cfg.Retention.CleanupIntervalMinutes = 60

	r := NewRunner(cfg, &store.Store{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("expected Start to return after context cancellation")
	}
}
