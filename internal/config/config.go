package config

import "time"

// Config holds all recognised options (§6) for the template matching
// engine. Fields without a yaml tag are not expected to be set via
// file-based configuration (reserved for future CLI/flag wiring).
type Config struct {
	// MinFragmentLength rejects fragments shorter than this during
	// template validation and installation.
	MinFragmentLength int `yaml:"min_fragment_length"`

	// FragmentMatchThreshold is the minimum score a candidate template
	// must reach to be accepted as a match.
	FragmentMatchThreshold float64 `yaml:"fragment_match_threshold"`

	// OptimalBatchSize is a hint for batch callers deciding how many
	// lines to submit to MatchBatchParallel at once.
	OptimalBatchSize int `yaml:"optimal_batch_size"`

	// BufferSize is the sink flush trigger (row count).
	BufferSize int `yaml:"buffer_size"`

	// FlushInterval is the sink's time-based flush trigger.
	FlushInterval time.Duration `yaml:"flush_interval"`

	// GenBatchSize is the unmatched-line collector's size trigger.
	GenBatchSize int `yaml:"gen_batch_size"`

	// GenBatchTimeout is the unmatched-line collector's time trigger.
	GenBatchTimeout time.Duration `yaml:"gen_batch_timeout"`

	// MaxConcurrentGen bounds in-flight generator requests.
	MaxConcurrentGen int `yaml:"max_concurrent_gen"`

	// MaxRetries bounds generator request and store flush retries.
	MaxRetries int `yaml:"max_retries"`

	// InitialBackoffMS is the starting backoff for generator retries.
	InitialBackoffMS int `yaml:"initial_backoff_ms"`

	// BaselineWindow is the prior time window a divergence query
	// compares the current window's template distribution against.
	BaselineWindow time.Duration `yaml:"baseline_window"`

	// GeneratorURL and StoreURL are the external collaborator
	// endpoints (§1 out-of-scope collaborators, specified only by
	// interface).
	GeneratorURL string `yaml:"generator_url"`
	StoreURL     string `yaml:"store_url"`

	// CatalogCachePath is where the catalog is persisted between
	// restarts (§4.7 Persistence).
	CatalogCachePath string `yaml:"catalog_cache_path"`

	// RetentionEnabled, RetentionWindow and RetentionInterval
	// configure the optional template eviction supplement.
	RetentionEnabled  bool          `yaml:"retention_enabled"`
	RetentionWindow   time.Duration `yaml:"retention_window"`
	RetentionInterval time.Duration `yaml:"retention_interval"`
}

// Defaults returns the documented defaults (§6).
func Defaults() *Config {
	return &Config{
		MinFragmentLength:      1,
		FragmentMatchThreshold: 0.3,
		OptimalBatchSize:       1000,
		BufferSize:             1000,
		FlushInterval:          5 * time.Second,
		GenBatchSize:           10,
		GenBatchTimeout:        2 * time.Second,
		MaxConcurrentGen:       5,
		MaxRetries:             3,
		InitialBackoffMS:       1000,
		BaselineWindow:         3 * time.Hour,
		CatalogCachePath:       "catalog_cache.json",
		RetentionEnabled:       false,
		RetentionWindow:        7 * 24 * time.Hour,
		RetentionInterval:      time.Hour,
	}
}

// Validate checks that the configuration is within acceptable ranges,
// refusing to start per §7's ConfigurationError.
func (c *Config) Validate() error {
	if c.MinFragmentLength < 1 {
		return NewConfigError("min_fragment_length must be at least 1")
	}
	if c.FragmentMatchThreshold < 0 || c.FragmentMatchThreshold > 1 {
		return NewConfigError("fragment_match_threshold must be between 0 and 1")
	}
	if c.OptimalBatchSize < 1 {
		return NewConfigError("optimal_batch_size must be at least 1")
	}
	if c.BufferSize < 1 {
		return NewConfigError("buffer_size must be at least 1")
	}
	if c.FlushInterval <= 0 {
		return NewConfigError("flush_interval must be positive")
	}
	if c.GenBatchSize < 1 {
		return NewConfigError("gen_batch_size must be at least 1")
	}
	if c.GenBatchTimeout <= 0 {
		return NewConfigError("gen_batch_timeout must be positive")
	}
	if c.MaxConcurrentGen < 1 {
		return NewConfigError("max_concurrent_gen must be at least 1")
	}
	if c.MaxRetries < 0 {
		return NewConfigError("max_retries must be non-negative")
	}
	if c.InitialBackoffMS < 1 {
		return NewConfigError("initial_backoff_ms must be at least 1")
	}
	if c.BaselineWindow <= 0 {
		return NewConfigError("baseline_window must be positive")
	}
	if c.RetentionEnabled && c.RetentionWindow <= 0 {
		return NewConfigError("retention_window must be positive when retention is enabled")
	}
	return nil
}

// ConfigError represents a configuration error.
type ConfigError struct {
	message string
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string) *ConfigError {
	return &ConfigError{message: message}
}

// Error returns the error message.
func (e *ConfigError) Error() string {
	return e.message
}
