// internal/workers/immigration/search-immigration-programs/queries/search.go
package queries

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"immigration-workers/internal/crs"

	"github.com/elastic/go-elasticsearch/v8"
)

// ResponseError is a non-2xx answer from the cluster.
type ResponseError struct {
	StatusCode int
	Type       string
	Reason     string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("search failed with status %d: %s: %s", e.StatusCode, e.Type, e.Reason)
}

func (e *ResponseError) IndexMissing() bool {
	return e.StatusCode == http.StatusNotFound || e.Type == "index_not_found_exception"
}

type Hit struct {
	Score   float64     `json:"score"`
	Program crs.Program `json:"program"`
}

type Result struct {
	Hits      []Hit
	TotalHits int64
	MaxScore  float64
	Took      int64
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			Score  *float64    `json:"_score"`
			Source crs.Program `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type errorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

// Execute runs q against es and decodes the hits as programs.
func Execute(ctx context.Context, es *elasticsearch.Client, q ProgramQuery) (*Result, error) {
	req, err := BuildSearch(q)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := req.Do(ctx, es)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		var e errorResponse
		_ = json.NewDecoder(res.Body).Decode(&e)
		return nil, &ResponseError{StatusCode: res.StatusCode, Type: e.Error.Type, Reason: e.Error.Reason}
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	result := &Result{
		Hits:      make([]Hit, 0, len(r.Hits.Hits)),
		TotalHits: r.Hits.Total.Value,
		Took:      r.Took,
	}
	if r.Hits.MaxScore != nil {
		result.MaxScore = *r.Hits.MaxScore
	}
	for _, h := range r.Hits.Hits {
		hit := Hit{Program: h.Source}
		if h.Score != nil {
			hit.Score = *h.Score
		}
		result.Hits = append(result.Hits, hit)
	}
	if result.Took == 0 {
		result.Took = time.Since(start).Milliseconds()
	}
	return result, nil
}
