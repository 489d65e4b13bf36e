package uploader

import "github.com/thebartekbanach/inspectphoto/pkg/compression"

const (
	DefaultConcurrency  = 3
	MaxConcurrency      = 8
	DefaultCacheControl = "3600"
)

type Config struct {
	Bucket string
	// Concurrency is the number of photos processed at once. Zero selects
	// DefaultConcurrency; other values are clamped to [1, MaxConcurrency].
	Concurrency  int
	CacheControl string
	Compression  compression.Options
}

func (c Config) withDefaults() Config {
	switch {
	case c.Concurrency == 0:
		c.Concurrency = DefaultConcurrency
	case c.Concurrency < 1:
		c.Concurrency = 1
	case c.Concurrency > MaxConcurrency:
		c.Concurrency = MaxConcurrency
	}

	if c.CacheControl == "" {
		c.CacheControl = DefaultCacheControl
	}

	return c
}
