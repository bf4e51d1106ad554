// internal/workers/immigration/calculate-crs-score/config.go
package calculatecrsscore

import "time"

type Config struct {
	Timeout       time.Duration
	IncludeTrends bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       10 * time.Second,
		IncludeTrends: true,
	}
}
