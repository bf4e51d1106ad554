// internal/crs/trends_test.go
package crs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func recentDraws() []Draw {
	return []Draw{
		{Number: 340, Date: day("2025-03-21"), Type: "French language proficiency", Score: 379, Invitations: 7500},
		{Number: 339, Date: day("2025-03-14"), Type: "Provincial Nominee Program", Score: 736, Invitations: 536},
		{Number: 338, Date: day("2025-03-07"), Type: "General", Score: 485, Invitations: 5000},
		{Number: 337, Date: day("2025-02-28"), Type: "Healthcare occupations", Score: 431, Invitations: 3500},
		{Number: 336, Date: day("2025-02-21"), Type: "STEM occupations", Score: 462, Invitations: 3000},
	}
}

func TestAnalyzeDraws(t *testing.T) {
	tests := []struct {
		name           string
		total          int
		nominated      bool
		wantPercentile int
		wantAlerts     []AlertType
	}{
		{name: "above every draw", total: 800, wantPercentile: 95, wantAlerts: []AlertType{AlertSuccess}},
		{name: "above average", total: 500, wantPercentile: 75, wantAlerts: []AlertType{AlertSuccess}},
		{name: "above lowest", total: 400, wantPercentile: 50, wantAlerts: []AlertType{AlertSuccess}},
		{name: "below lowest", total: 208, wantPercentile: 25, wantAlerts: []AlertType{AlertWarning}},
		{name: "nominated", total: 808, nominated: true, wantPercentile: 95, wantAlerts: []AlertType{AlertSuccess, AlertSuccess}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := AnalyzeDraws(Profile{ProvincialNomination: tt.nominated}, tt.total, recentDraws())
			require.NotNil(t, tr)
			assert.Equal(t, 5, tr.DrawsConsidered)
			assert.Equal(t, 499, tr.AverageScore)
			assert.Equal(t, 379, tr.LowestScore)
			assert.Equal(t, 736, tr.HighestScore)
			assert.Equal(t, tt.wantPercentile, tr.UserPercentile)
			assert.Equal(t, "Approximately every 2 weeks", tr.DrawFrequency)

			types := make([]AlertType, 0, len(tr.Alerts))
			for _, a := range tr.Alerts {
				types = append(types, a.Type)
			}
			assert.Equal(t, tt.wantAlerts, types)
		})
	}
}

func TestAnalyzeDraws_NoDraws(t *testing.T) {
	assert.Nil(t, AnalyzeDraws(Profile{}, 500, nil))
}

func TestSelectCutoff(t *testing.T) {
	draws := recentDraws()

	d, ok := SelectCutoff(draws, "general")
	require.True(t, ok)
	assert.Equal(t, 485, d.Score)

	d, ok = SelectCutoff(draws, "Canadian Experience Class")
	require.True(t, ok)
	assert.Equal(t, 379, d.Score, "falls back to the newest draw")

	d, ok = SelectCutoff(draws, "")
	require.True(t, ok)
	assert.Equal(t, 340, d.Number)

	_, ok = SelectCutoff(nil, "General")
	assert.False(t, ok)

	// input order is preserved
	assert.Equal(t, 340, draws[0].Number)
}
