// internal/workers/immigration/search-immigration-programs/models.go
package searchimmigrationprograms

import "immigration-workers/internal/workers/immigration/search-immigration-programs/queries"

type Input struct {
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
	Province string `json:"province,omitempty"`
	From     int    `json:"from,omitempty"`
	Size     int    `json:"size,omitempty"`
}

type Output struct {
	Programs  []queries.Hit `json:"programs"`
	TotalHits int64         `json:"totalHits"`
	MaxScore  float64       `json:"maxScore"`
	Took      int64         `json:"took"`
}
