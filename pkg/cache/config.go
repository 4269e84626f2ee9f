package cache

import "time"

// Option configures the memory cache.
type Option func(*Config)

// Config holds memory cache configuration.
type Config struct {
	MaxSize         int
	CleanupInterval time.Duration
}

// WithMaxSize sets max cache size.
func WithMaxSize(size int) Option {
	return func(c *Config) {
		c.MaxSize = size
	}
}

// WithCleanup sets cleanup interval.
func WithCleanup(interval time.Duration) Option {
	return func(c *Config) {
		c.CleanupInterval = interval
	}
}
