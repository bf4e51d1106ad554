// internal/cutoff/feed_test.go
package cutoff

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"immigration-workers/internal/common/errors"
	"immigration-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `{
  "classes": "",
  "rounds": [
    {"drawNumber": "338", "drawDate": "2025-03-07", "drawDateFull": "March 7, 2025", "drawName": "General", "drawSize": "5,000", "drawCRS": "485"},
    {"drawNumber": "340", "drawDate": "2025-03-21", "drawDateFull": "March 21, 2025", "drawName": "French language proficiency (Version 1)", "drawSize": "7,500", "drawCRS": "379"},
    {"drawNumber": "339", "drawDate": "", "drawDateFull": "March 14, 2025", "drawName": "Provincial Nominee Program", "drawSize": "536", "drawCRS": "736"},
    {"drawNumber": "n/a", "drawDate": "2025-03-01", "drawName": "General", "drawSize": "1", "drawCRS": "500"},
    {"drawNumber": 337, "drawDate": "2025-02-28", "drawName": "Healthcare occupations", "drawSize": "3,500", "drawCRS": 431}
  ]
}`

func TestParseRounds(t *testing.T) {
	draws, skipped, err := ParseRounds([]byte(sampleFeed))
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, draws, 4)

	assert.Equal(t, []int{340, 339, 338, 337}, []int{draws[0].Number, draws[1].Number, draws[2].Number, draws[3].Number})
	assert.Equal(t, 7500, draws[0].Invitations)
	assert.Equal(t, "French language proficiency (Version 1)", draws[0].Type)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), draws[1].Date, "falls back to drawDateFull")
	assert.Equal(t, 431, draws[3].Score, "numeric fields are accepted too")
}

func TestParseRounds_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.ErrorCode
	}{
		{"invalid json", `{"rounds": [`, errors.ErrCodeDrawFeedFailed},
		{"missing rounds", `{"classes": ""}`, errors.ErrCodeDrawFeedEmpty},
		{"only malformed rounds", `{"rounds": [{"drawNumber": "x"}]}`, errors.ErrCodeDrawFeedEmpty},
		{"empty rounds", `{"rounds": []}`, errors.ErrCodeDrawFeedEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseRounds([]byte(tt.body))
			stdErr, ok := errors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, stdErr.Code)
		})
	}
}

func TestFeedClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rounds.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(sampleFeed))
		case "/slow.json":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(sampleFeed))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	log := logger.NewTestLogger(t)

	draws, err := NewFeedClient(srv.URL+"/rounds.json", time.Second, log).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, draws, 4)

	_, err = NewFeedClient(srv.URL+"/down.json", time.Second, log).Fetch(context.Background())
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeDrawFeedFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)

	_, err = NewFeedClient(srv.URL+"/slow.json", 50*time.Millisecond, log).Fetch(context.Background())
	stdErr, ok = errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeDrawFeedTimeout, stdErr.Code)
}
