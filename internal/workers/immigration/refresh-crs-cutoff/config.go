// internal/workers/immigration/refresh-crs-cutoff/config.go
package refreshcrscutoff

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{Timeout: 30 * time.Second}
}
