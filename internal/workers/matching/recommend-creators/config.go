// internal/workers/matching/recommend-creators/config.go
package recommendcreators

import "time"

type Config struct {
	CacheTTL time.Duration
	Timeout  time.Duration

	// DefaultLimit applies when the request asks for no limit. Zero defers
	// to the ranker's own default.
	DefaultLimit int
}

func LoadConfig() *Config {
	return &Config{
		CacheTTL:     15 * time.Minute,
		Timeout:      30 * time.Second,
		DefaultLimit: 12,
	}
}
