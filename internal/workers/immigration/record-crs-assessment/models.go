// internal/workers/immigration/record-crs-assessment/models.go
package recordcrsassessment

import (
	"time"

	"immigration-workers/internal/crs"
)

type Input struct {
	RequestID  string      `json:"requestId"`
	UserID     string      `json:"userId"`
	Assessment *crs.Result `json:"assessment"`
}

type Output struct {
	AssessmentID string    `json:"assessmentId"`
	Duplicate    bool      `json:"duplicate"`
	RecordedAt   time.Time `json:"recordedAt"`
}
