// Package service provides the activity directory service that backs
// the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/okian/mergington/internal/adapters/mq/queue"
	"github.com/okian/mergington/internal/adapters/mq/sink"
	workerpool "github.com/okian/mergington/internal/adapters/mq/worker"
	"github.com/okian/mergington/internal/adapters/repository"
	"github.com/okian/mergington/internal/domain/model"
	"github.com/okian/mergington/pkg/logger"
	"github.com/okian/mergington/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultWorkerCount = 2
	defaultQueueSize   = 1024
	stopTimeout        = 10 * time.Second
)

// Rejection reasons reported to metrics.
const (
	reasonNotFound        = "not_found"
	reasonAlreadySignedUp = "already_signed_up"
	reasonNotSignedUp     = "not_signed_up"
	reasonInternal        = "internal"
)

// Service implements the API dependencies for the activity directory.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	sink       workerpool.Sink
	eventQueue eventqueue.Queue
	workerPool *workerpool.Pool

	// Configuration
	seed        model.Directory
	workerCount int
	queueSize   int

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of notification workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the roster change queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore replaces the activity store. It takes precedence over WithSeed.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSeed sets the activities the built-in store starts with.
func WithSeed(dir model.Directory) Option {
	return func(s *Service) {
		if len(dir) > 0 {
			s.seed = dir
		}
	}
}

// WithSink sets where roster changes are delivered. Without it changes
// are written to the log. The caller keeps ownership: Stop does not close
// the sink, so the service can be started again on it.
func WithSink(snk workerpool.Sink) Option {
	return func(s *Service) {
		if snk != nil {
			s.sink = snk
		}
	}
}

// New constructs a Service. The directory is usable immediately; roster
// notifications flow once Start is called.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: defaultWorkerCount,
		queueSize:   defaultQueueSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger = s.logger.Named("service")

	if s.store == nil {
		var storeOpts []repository.Option
		if s.seed != nil {
			storeOpts = append(storeOpts, repository.WithSeed(s.seed))
		}
		s.store = repository.NewMemoryStore(storeOpts...)
	}

	ctx := context.Background()
	metrics.UpdateActivityCount(s.store.Count(ctx))
	for name, a := range s.store.List(ctx) {
		metrics.UpdateParticipants(name, len(a.Participants))
	}
	return s
}

// Start creates the notification queue and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting activity service...")

	if s.sink == nil {
		s.sink = sink.NewLogSink(s.logger.Named("roster"))
	}
	q := eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.eventQueue = q
	s.workerPool = workerpool.NewPool(s.workerCount, q, s.sink, workerpool.WithLogger(s.logger))
	// Workers outlive the start context; Stop ends them.
	s.workerPool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "activity service started",
		logger.Int("activities", s.store.Count(ctx)),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
	)
	return nil
}

// Stop drains pending roster changes. The sink is left open.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping activity service...")

	if s.workerPool != nil {
		if err := s.workerPool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "roster changes left undelivered", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "activity service stopped")
}

// List returns a snapshot of every activity.
func (s *Service) List(ctx context.Context) model.Directory {
	return s.store.List(ctx)
}

// Enroll signs email up for activity and returns the confirmation message.
func (s *Service) Enroll(ctx context.Context, activity, email string) (string, error) {
	if _, err := s.store.Enroll(ctx, activity, email); err != nil {
		s.reject(ctx, "enroll", activity, email, err)
		return "", err
	}

	metrics.RecordSignup(activity)
	s.notify(ctx, model.ChangeEnrolled, activity, email)
	return fmt.Sprintf("Signed up %s for %s", email, activity), nil
}

// Withdraw removes email from activity and returns the confirmation message.
func (s *Service) Withdraw(ctx context.Context, activity, email string) (string, error) {
	if _, err := s.store.Withdraw(ctx, activity, email); err != nil {
		s.reject(ctx, "withdraw", activity, email, err)
		return "", err
	}

	metrics.RecordWithdrawal(activity)
	s.notify(ctx, model.ChangeWithdrawn, activity, email)
	return fmt.Sprintf("Unregistered %s from %s", email, activity), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	dir := s.store.List(ctx)

	enrollments := 0
	spotsLeft := 0
	for _, a := range dir {
		enrollments += len(a.Participants)
		spotsLeft += a.SpotsLeft()
	}

	stats := map[string]any{
		"started":     s.started,
		"activities":  len(dir),
		"enrollments": enrollments,
		"spotsLeft":   spotsLeft,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
	}

	if s.started {
		queueLen := s.eventQueue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["delivered"] = s.workerPool.Delivered()
		stats["failed"] = s.workerPool.Failed()

		metrics.UpdateQueueSize(queueLen)
	}
	metrics.UpdateActivityCount(len(dir))

	return stats
}

// notify queues a roster change. A full or stopped queue only loses the
// notification, never the roster update itself.
func (s *Service) notify(ctx context.Context, kind model.ChangeKind, activity, email string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return
	}

	change := model.RosterChange{
		ID:       uuid.NewString(),
		Kind:     kind,
		Activity: activity,
		Email:    email,
		At:       time.Now().UTC(),
	}
	if !s.eventQueue.Enqueue(ctx, change) {
		s.logger.Warn(ctx, "roster change dropped",
			logger.String("id", change.ID),
			logger.String("kind", string(kind)),
			logger.String("activity", activity),
		)
		return
	}
	metrics.UpdateQueueSize(s.eventQueue.Len(ctx))
}

func (s *Service) reject(ctx context.Context, operation, activity, email string, err error) {
	reason := reasonInternal
	switch {
	case errors.Is(err, repository.ErrNotFound):
		reason = reasonNotFound
	case errors.Is(err, repository.ErrAlreadySignedUp):
		reason = reasonAlreadySignedUp
	case errors.Is(err, repository.ErrNotSignedUp):
		reason = reasonNotSignedUp
	}
	metrics.RecordRejection(operation, reason)
	s.logger.Debug(ctx, operation+" rejected",
		logger.String("activity", activity),
		logger.String("email", email),
		logger.String("reason", reason),
	)
}
