// internal/workers/immigration/record-crs-assessment/config.go
package recordcrsassessment

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{Timeout: 10 * time.Second}
}
