package infra_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"voice-assistant/internal/infra"
)

type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func TestWithRetry_SucceedsAfterFailures(t *testing.T) {
	sleeper := &recordingSleeper{}
	cfg := infra.FixedRetryConfig(10, 500*time.Millisecond)
	cfg.Sleep = sleeper.sleep

	calls := 0
	err := infra.WithRetry(context.Background(), cfg, func() error {
		calls++
		if calls < 4 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls != 4 {
		t.Errorf("calls: got %d, want 4", calls)
	}
	if len(sleeper.delays) != 3 {
		t.Errorf("sleeps: got %d, want 3", len(sleeper.delays))
	}
	for _, d := range sleeper.delays {
		if d != 500*time.Millisecond {
			t.Errorf("delay: got %v, want 500ms", d)
		}
	}
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	sleeper := &recordingSleeper{}
	cfg := infra.FixedRetryConfig(10, 500*time.Millisecond)
	cfg.Sleep = sleeper.sleep

	errBoom := errors.New("boom")
	calls := 0
	err := infra.WithRetry(context.Background(), cfg, func() error {
		calls++
		return errBoom
	})

	if calls != 10 {
		t.Errorf("calls: got %d, want 10", calls)
	}
	if len(sleeper.delays) != 9 {
		t.Errorf("sleeps: got %d, want 9", len(sleeper.delays))
	}
	if !errors.Is(err, infra.ErrAttemptsExhausted) {
		t.Errorf("expected ErrAttemptsExhausted, got %v", err)
	}
	if !errors.Is(err, errBoom) {
		t.Errorf("expected last error to be wrapped, got %v", err)
	}
}

func TestWithRetry_ExponentialBackoff(t *testing.T) {
	sleeper := &recordingSleeper{}
	cfg := infra.DefaultRetryConfig()
	cfg.MaxAttempts = 5
	cfg.InitialDelay = time.Second
	cfg.MaxDelay = 3 * time.Second
	cfg.Sleep = sleeper.sleep

	_ = infra.WithRetry(context.Background(), cfg, func() error {
		return errors.New("fail")
	})

	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second}
	if len(sleeper.delays) != len(want) {
		t.Fatalf("sleeps: got %v, want %v", sleeper.delays, want)
	}
	for i := range want {
		if sleeper.delays[i] != want[i] {
			t.Errorf("delay[%d]: got %v, want %v", i, sleeper.delays[i], want[i])
		}
	}
}

func TestWithRetry_PermanentStopsImmediately(t *testing.T) {
	sleeper := &recordingSleeper{}
	cfg := infra.FixedRetryConfig(3, time.Second)
	cfg.Sleep = sleeper.sleep

	errBad := errors.New("bad request")
	calls := 0
	err := infra.WithRetry(context.Background(), cfg, func() error {
		calls++
		return infra.Permanent(errBad)
	})

	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
	if err != errBad {
		t.Errorf("error: got %v, want %v", err, errBad)
	}
	if errors.Is(err, infra.ErrAttemptsExhausted) {
		t.Error("permanent error should not report exhaustion")
	}
}

func TestWithRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := infra.FixedRetryConfig(3, time.Hour)
	calls := 0
	err := infra.WithRetry(ctx, cfg, func() error {
		calls++
		return errors.New("fail")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
}

func TestWithRetry_OnRetryHook(t *testing.T) {
	cfg := infra.FixedRetryConfig(3, 0)
	var attempts []int
	cfg.OnRetry = func(attempt int, _ error) {
		attempts = append(attempts, attempt)
	}

	_ = infra.WithRetry(context.Background(), cfg, func() error {
		return errors.New("fail")
	})

	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("retry hook attempts: got %v, want [1 2]", attempts)
	}
}

func TestIsRetryableHTTPStatus(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{200, false},
		{400, false},
		{404, false},
		{429, true},
		{500, true},
		{503, true},
	}

	for _, tt := range tests {
		if got := infra.IsRetryableHTTPStatus(tt.status); got != tt.want {
			t.Errorf("IsRetryableHTTPStatus(%d): got %v, want %v", tt.status, got, tt.want)
		}
	}
}
