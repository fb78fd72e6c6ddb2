package adb

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// BackoffConfig bounds a readiness-polling loop.
type BackoffConfig struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	MaxAttempts  int
	Jitter       bool
}

func DefaultBackoff() BackoffConfig {
	return BackoffConfig{
		InitialDelay: 250 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
		MaxAttempts:  8,
	}
}

// NextDelay returns the polling delay for attempt N (1-based).
func NextDelay(cfg BackoffConfig, attempt int, rng *rand.Rand) time.Duration {
	if attempt <= 1 {
		return cfg.InitialDelay
	}
	if cfg.InitialDelay <= 0 {
		return 0
	}
	if cfg.Multiplier < 1.0 {
		cfg.Multiplier = 1.0
	}
	delay := float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(attempt-1))
	if cfg.MaxDelay > 0 && delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	if cfg.Jitter {
		f := 0.5
		if rng != nil {
			f = 0.5 + rng.Float64()
		}
		delay = delay * f
	}
	return time.Duration(delay)
}

// WaitFor polls probe until it reports ready, a probe error, or the attempt
// budget is spent.
func WaitFor(cfg BackoffConfig, probe func() (bool, error)) error {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultBackoff().MaxAttempts
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		ready, err := probe()
		if err != nil {
			return err
		}
		if ready {
			return nil
		}
		time.Sleep(NextDelay(cfg, attempt, nil))
	}
	return fmt.Errorf("%w: %d attempts", ErrWaitExceeded, attempts)
}
