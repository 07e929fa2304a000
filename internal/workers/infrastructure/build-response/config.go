// internal/workers/infrastructure/build-response/config.go
package buildresponse

import "time"

type Config struct {
	RegistryPath string
	CacheTTL     time.Duration
	AppVersion   string
	Timeout      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		RegistryPath: "configs/activity-registry.json",
		CacheTTL:     5 * time.Minute,
		Timeout:      30 * time.Second,
	}
}
