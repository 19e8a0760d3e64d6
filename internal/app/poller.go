package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/ava/internal/logfields"
	"github.com/five82/ava/internal/metrics"
	"github.com/five82/ava/internal/state"
)

const (
	defaultRefreshInterval = time.Minute
	maxBackoff             = 10 * time.Minute
)

// RefreshFunc performs one background refresh.
type RefreshFunc func(ctx context.Context) error

// StartPoller launches a goroutine that calls refresh at interval, backing
// off while it keeps failing, and records the outcome in the system section
// of the store. It returns immediately. A non-positive interval disables it.
func StartPoller(ctx context.Context, store *state.Store, refresh RefreshFunc, interval time.Duration, logger *slog.Logger, recorder metrics.Recorder) {
	if interval <= 0 {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	recorder = metrics.OrNoop(recorder)

	go func() {
		failures := 0
		for {
			timer := time.NewTimer(calculateBackoff(failures, interval))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			failures = poll(ctx, store, refresh, logger)
			recorder.SetConsecutiveFailures(failures)
		}
	}()
}

// poll runs refresh once and returns the updated failure count.
func poll(ctx context.Context, store *state.Store, refresh RefreshFunc, logger *slog.Logger) int {
	state.Update(store, state.SystemPath, func(s state.System) state.System {
		s.Active = true
		return s
	})

	err := refresh(ctx)

	var failures int
	state.Update(store, state.SystemPath, func(s state.System) state.System {
		s.Active = false
		if err != nil {
			s.ConsecutiveFailures++
			s.LastError = err
		} else {
			s.ConsecutiveFailures = 0
			s.LastError = nil
			s.LastRefresh = time.Now()
		}
		failures = s.ConsecutiveFailures
		return s
	})
	if err != nil && logger != nil {
		logger.Warn("background refresh failed", logfields.Count(failures), logfields.Error(err))
	}
	return failures
}

// calculateBackoff doubles interval per consecutive failure, capped at
// maxBackoff (or interval itself when that is larger).
func calculateBackoff(failures int, interval time.Duration) time.Duration {
	if failures <= 0 {
		return interval
	}
	limit := max(maxBackoff, interval)
	d := interval
	for range failures {
		d *= 2
		if d >= limit {
			return limit
		}
	}
	return d
}
