package repository

import "github.com/okian/mergington/internal/domain/model"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithSeed sets the activities the store starts with. The directory is
// deep-copied, so the caller may keep using it.
func WithSeed(dir model.Directory) Option {
	return func(s *MemoryStore) {
		if dir != nil {
			s.seed = dir.Clone()
		}
	}
}
