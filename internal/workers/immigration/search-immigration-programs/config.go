// internal/workers/immigration/search-immigration-programs/config.go
package searchimmigrationprograms

import "time"

type Config struct {
	Timeout time.Duration
	Index   string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
		Index:   "immigration-programs",
	}
}
