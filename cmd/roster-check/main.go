package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/mergington/internal/rostercheck"
	"github.com/okian/mergington/pkg/logger"
)

// Default configuration constants.
const (
	defaultStudents    = 200
	defaultRacers      = 4
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:8000", "Base URL of the service")
		students = flag.Int("students", defaultStudents, "Number of distinct students to sign up")
		racers   = flag.Int("racers", defaultRacers, "Concurrent signup attempts per student")
		workers  = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		keep     = flag.Bool("keep", false, "Leave generated students on the rosters")
		format   = flag.String("log-format", "text", "Log format: text or json")
	)
	flag.Parse()

	if *students < 1 || *racers < 1 {
		_, _ = os.Stderr.WriteString("students and racers must be positive\n")
		os.Exit(2)
	}

	if err := logger.Init(logger.WithFormat(*format)); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	cfg := &rostercheck.Config{
		BaseURL:  *baseURL,
		Students: *students,
		Racers:   *racers,
		Workers:  *workers,
		Timeout:  *timeout,
		Cleanup:  !*keep,
	}

	if _, err := rostercheck.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "roster check failed", logger.Error(err))
		cancel()
		os.Exit(1)
	}
}
