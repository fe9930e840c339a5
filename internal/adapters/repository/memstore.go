package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/okian/mergington/internal/domain/model"
	"github.com/okian/mergington/internal/domain/seed"
	"github.com/okian/mergington/pkg/metrics"
)

// record guards one activity. Every check-then-mutate on the roster runs
// under mu.
type record struct {
	mu       sync.Mutex
	activity model.Activity
}

// MemoryStore is the in-memory Store. The set of activities is fixed at
// construction, so the map itself is read-only afterwards and only the
// per-activity records need locking.
type MemoryStore struct {
	seed    model.Directory
	records map[string]*record
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore builds a store from the configured seed, or the default
// Mergington activities when none is given.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{}
	for _, opt := range opts {
		opt(s)
	}
	if s.seed == nil {
		s.seed = seed.Default()
	}

	s.records = make(map[string]*record, len(s.seed))
	for name, a := range s.seed {
		s.records[name] = &record{activity: a.Clone()}
	}
	s.seed = nil
	return s
}

// List returns a deep copy of the directory. Each activity is copied under
// its own lock, so every roster in the result is internally consistent.
func (s *MemoryStore) List(_ context.Context) model.Directory {
	out := make(model.Directory, len(s.records))
	for name, r := range s.records {
		r.mu.Lock()
		out[name] = r.activity.Clone()
		r.mu.Unlock()
	}
	return out
}

// Get returns a copy of one activity.
func (s *MemoryStore) Get(_ context.Context, activity string) (model.Activity, error) {
	r, ok := s.records[activity]
	if !ok {
		return model.Activity{}, ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activity.Clone(), nil
}

// Enroll appends email to the roster unless it is already there. The
// participants gauge is set before the lock is released, so it never lags
// behind a concurrent change to the same roster.
func (s *MemoryStore) Enroll(_ context.Context, activity, email string) (int, error) {
	r, ok := s.records[activity]
	if !ok {
		return 0, ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.activity.Has(email) {
		return len(r.activity.Participants), ErrAlreadySignedUp
	}
	r.activity.Participants = append(r.activity.Participants, email)
	size := len(r.activity.Participants)
	metrics.UpdateParticipants(activity, size)
	return size, nil
}

// Withdraw removes email from the roster, keeping the order of the rest.
// Like Enroll, it sets the participants gauge under the lock.
func (s *MemoryStore) Withdraw(_ context.Context, activity, email string) (int, error) {
	r, ok := s.records[activity]
	if !ok {
		return 0, ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	i := slices.Index(r.activity.Participants, email)
	if i < 0 {
		return len(r.activity.Participants), ErrNotSignedUp
	}
	r.activity.Participants = slices.Delete(r.activity.Participants, i, i+1)
	size := len(r.activity.Participants)
	metrics.UpdateParticipants(activity, size)
	return size, nil
}

// Count returns the number of activities.
func (s *MemoryStore) Count(_ context.Context) int {
	return len(s.records)
}
