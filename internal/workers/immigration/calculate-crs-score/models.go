// internal/workers/immigration/calculate-crs-score/models.go
package calculatecrsscore

import (
	"encoding/json"
	"time"

	"immigration-workers/internal/crs"
)

type Input struct {
	RequestID     string          `json:"requestId"`
	UserID        string          `json:"userId"`
	Profile       json.RawMessage `json:"profile"`
	Cutoff        *int            `json:"cutoff,omitempty"`
	LanguageTests *LanguageTests  `json:"languageTests,omitempty"`
}

// LanguageTests carries raw test scores to convert into CLB levels. A given
// result replaces the matching entry in profile.languages.
type LanguageTests struct {
	First  *crs.TestResult `json:"first,omitempty"`
	Second *crs.TestResult `json:"second,omitempty"`
}

type Output struct {
	RequestID    string          `json:"requestId"`
	UserID       string          `json:"userId"`
	Assessment   *crs.Result     `json:"assessment"`
	Trends       *crs.DrawTrends `json:"trends,omitempty"`
	CutoffSource string          `json:"cutoffSource"`
	ScoredAt     time.Time       `json:"scoredAt"`
}
