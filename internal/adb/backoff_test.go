package adb

import (
	"errors"
	"testing"
	"time"

	"droidseed/internal/testutil/testlog"
)

func mustTime(t *testing.T, iso string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02T15:04:05", iso, time.Local)
	if err != nil {
		t.Fatalf("parse time %q: %v", iso, err)
	}
	return ts
}

func TestNextDelayGrowsAndCaps(t *testing.T) {
	testlog.Start(t)
	cfg := BackoffConfig{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     500 * time.Millisecond,
		Multiplier:   2.0,
	}

	prev := time.Duration(0)
	for attempt := 1; attempt <= 6; attempt++ {
		delay := NextDelay(cfg, attempt, nil)
		if delay < prev {
			t.Fatalf("delay decreased at attempt %d: %v < %v", attempt, delay, prev)
		}
		if delay > cfg.MaxDelay {
			t.Fatalf("delay exceeds cap at attempt %d: %v", attempt, delay)
		}
		prev = delay
	}
	if prev != cfg.MaxDelay {
		t.Fatalf("expected delay to reach cap, got %v", prev)
	}
}

func TestWaitForSucceedsOnLateProbe(t *testing.T) {
	testlog.Start(t)
	cfg := BackoffConfig{InitialDelay: 1, MaxDelay: 1, Multiplier: 1, MaxAttempts: 5}

	calls := 0
	err := WaitFor(cfg, func() (bool, error) {
		calls++
		return calls >= 3, nil
	})
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 probes, got %d", calls)
	}
}

func TestWaitForBudgetExceeded(t *testing.T) {
	testlog.Start(t)
	cfg := BackoffConfig{InitialDelay: 1, MaxDelay: 1, Multiplier: 1, MaxAttempts: 2}

	err := WaitFor(cfg, func() (bool, error) { return false, nil })
	if !errors.Is(err, ErrWaitExceeded) {
		t.Fatalf("expected ErrWaitExceeded, got %v", err)
	}
}

func TestWaitForPropagatesProbeError(t *testing.T) {
	testlog.Start(t)
	cfg := BackoffConfig{InitialDelay: 1, MaxAttempts: 5}

	probeErr := errors.New("probe broke")
	err := WaitFor(cfg, func() (bool, error) { return false, probeErr })
	if !errors.Is(err, probeErr) {
		t.Fatalf("expected probe error, got %v", err)
	}
}
