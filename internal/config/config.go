// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New builds a Config holding the defaults.
// - Load layers defaults, an optional YAML file and MERGINGTON_* env vars.
// - Validation errors wrap ErrInvalidConfig; load errors wrap ErrLoadConfig.
package config

import (
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// SeedFile optionally replaces the built-in activities with a YAML file.
	SeedFile string `koanf:"seed_file"`

	// QueueSize bounds the roster change notification queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of notification workers.
	WorkerCount int `koanf:"worker_count"`

	// KafkaBrokers is a comma separated broker list. Empty keeps roster
	// notifications in the log.
	KafkaBrokers string `koanf:"kafka_brokers"`

	// KafkaTopic receives roster change messages.
	KafkaTopic string `koanf:"kafka_topic"`

	// MetricsNamespace prefixes every Prometheus metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`

	// MetricsEnabled turns metric recording on or off. /healthz keeps serving.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsRefreshInterval paces the periodic gauge updaters, e.g. "10s".
	MetricsRefreshInterval time.Duration `koanf:"metrics_refresh_interval"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		LogFormat:   "text",
		Addr:        ":8000",
		QueueSize:   1024,
		WorkerCount: 2,
		KafkaTopic:  "mergington.roster-changes",

		MetricsNamespace:       "mergington",
		MetricsEnabled:         true,
		MetricsRefreshInterval: 10 * time.Second,
	}
}

// Brokers splits KafkaBrokers, dropping blanks.
func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
