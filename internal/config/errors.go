package config

import (
	"errors"
)

// Sentinel error kinds for configuration.
var (
	// ErrInvalidConfig marks values that parsed but cannot be used.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a file or env source that failed to load or decode.
	ErrLoadConfig = errors.New("load config failed")
)
