package utils

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: NewDiscardLogger()}
	calls := 0

	err := r.Do(context.Background(), "flaky", func() error {
		calls++
		if calls < 3 {
			return errors.New("boom")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
}

func TestRetryWrapsLastError(t *testing.T) {
	sentinel := errors.New("still down")
	r := &RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond}

	err := r.Do(context.Background(), "ping", func() error { return sentinel })

	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped sentinel, got %v", err)
	}
	if !strings.Contains(err.Error(), "ping failed after 2 attempts") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &RetryConfig{MaxAttempts: 5, BaseDelay: time.Hour}
	calls := 0

	err := r.Do(ctx, "capture", func() error {
		calls++
		cancel()
		return errors.New("nope")
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLoggerWithWriters(&out, &errOut, LevelWarn)

	l.Debug("hidden debug")
	l.Info("hidden info")
	l.Warn("visible %s", "warn")
	l.Error("visible %s", "error")

	if strings.Contains(out.String(), "hidden") {
		t.Errorf("messages below level were written: %q", out.String())
	}
	if !strings.Contains(out.String(), "visible warn") {
		t.Errorf("warn missing from output: %q", out.String())
	}
	if !strings.Contains(errOut.String(), "visible error") {
		t.Errorf("error missing from error output: %q", errOut.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"chatty", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %d; want %d", tt.in, got, tt.want)
		}
	}
}
