package rostercheck

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/okian/mergington/pkg/logger"
)

// ErrNoActivities is returned when the server lists nothing to sign up for.
var ErrNoActivities = errors.New("server lists no activities")

// Run executes the complete roster check.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Named("rostercheck")
	stats := &Stats{StartTime: time.Now()}
	client := newHTTPClient(cfg)

	log.Info(ctx, "starting roster check",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("students", cfg.Students),
		logger.Int("racers", cfg.Racers),
		logger.Int("workers", cfg.Workers),
		logger.Bool("cleanup", cfg.Cleanup),
	)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Snapshot rosters
	before, err := client.activities(ctx)
	if err != nil {
		return nil, err
	}
	if len(before) == 0 {
		return nil, ErrNoActivities
	}

	// Step 3: Race signups
	unique, attempts := generateSignups(slices.Collect(maps.Keys(before)), cfg.Students, cfg.Racers)
	t := fanOut(ctx, cfg.Workers, attempts, func(ctx context.Context, s Signup) outcome {
		return client.roster(ctx, http.MethodPost, "signup", s)
	})
	stats.Attempts = len(attempts)
	stats.Enrolled = int(t.ok.Load())
	stats.Rejected = int(t.rejected.Load())
	stats.Failed = int(t.failed.Load())
	log.Info(ctx, "signups submitted",
		logger.Int("enrolled", stats.Enrolled),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
	)

	// Step 4: Verify rosters
	after, err := client.activities(ctx)
	if err != nil {
		return stats, err
	}
	if err := verifyEnrolled(after, unique, stats.Enrolled); err != nil {
		return stats, err
	}
	log.Info(ctx, "rosters verified", logger.Int("students", len(unique)))

	// Step 5: Undo the run
	if cfg.Cleanup {
		t := fanOut(ctx, cfg.Workers, unique, func(ctx context.Context, s Signup) outcome {
			return client.roster(ctx, http.MethodDelete, "unregister", s)
		})
		stats.Unregistered = int(t.ok.Load())

		restored, err := client.activities(ctx)
		if err != nil {
			return stats, err
		}
		if err := verifyRestored(before, restored); err != nil {
			return stats, err
		}
		log.Info(ctx, "rosters restored", logger.Int("unregistered", stats.Unregistered))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "roster check completed",
		logger.Int("attempts", stats.Attempts),
		logger.Duration("duration", stats.Duration),
	)
	return stats, nil
}

// checkServiceHealth verifies the service answers /healthz.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	resp, err := client.do(ctx, http.MethodGet, "/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return nil
}
