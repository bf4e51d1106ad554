// internal/workers/immigration/refresh-crs-cutoff/models.go
package refreshcrscutoff

import "time"

// Input is empty in practice; the process may pass a requestId for tracing.
type Input struct {
	RequestID string `json:"requestId,omitempty"`
}

type Output struct {
	Cutoff      int       `json:"cutoff"`
	DrawNumber  int       `json:"drawNumber"`
	DrawDate    string    `json:"drawDate"`
	DrawType    string    `json:"drawType"`
	DrawsStored int       `json:"drawsStored"`
	RefreshedAt time.Time `json:"refreshedAt"`
}
