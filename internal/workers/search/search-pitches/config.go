// internal/workers/search/search-pitches/config.go
package searchpitches

import "time"

type Config struct {
	Timeout time.Duration

	// DefaultLimit applies when the request asks for no limit; AnonymousCap
	// bounds unauthenticated requests. Zero values defer to the fusion
	// engine's own defaults.
	DefaultLimit int
	AnonymousCap int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		DefaultLimit: 20,
		AnonymousCap: 10,
	}
}
