// internal/crs/trends.go
package crs

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Draw is one published Express Entry invitation round.
type Draw struct {
	Number      int       `json:"drawNumber"`
	Date        time.Time `json:"drawDate"`
	Type        string    `json:"drawType"`
	Score       int       `json:"score"`
	Invitations int       `json:"invitations"`
}

type AlertType string

const (
	AlertInfo    AlertType = "info"
	AlertWarning AlertType = "warning"
	AlertSuccess AlertType = "success"
)

type Alert struct {
	Type    AlertType `json:"type"`
	Message string    `json:"message"`
}

// DrawTrends places a score among recent draws.
type DrawTrends struct {
	DrawsConsidered int     `json:"drawsConsidered"`
	AverageScore    int     `json:"averageScore"`
	LowestScore     int     `json:"lowestScore"`
	HighestScore    int     `json:"highestScore"`
	UserPercentile  int     `json:"userPercentile"`
	DrawFrequency   string  `json:"drawFrequency"`
	Alerts          []Alert `json:"alerts"`
}

const drawFrequency = "Approximately every 2 weeks"

// AnalyzeDraws compares a profile's total with recent draws. It returns nil
// when there are no draws to compare against.
func AnalyzeDraws(p Profile, total int, draws []Draw) *DrawTrends {
	if len(draws) == 0 {
		return nil
	}
	lowest, highest, sum := math.MaxInt, math.MinInt, 0
	for _, d := range draws {
		lowest = min(lowest, d.Score)
		highest = max(highest, d.Score)
		sum += d.Score
	}
	t := &DrawTrends{
		DrawsConsidered: len(draws),
		AverageScore:    int(math.Round(float64(sum) / float64(len(draws)))),
		LowestScore:     lowest,
		HighestScore:    highest,
		DrawFrequency:   drawFrequency,
	}

	switch {
	case total >= t.HighestScore:
		t.UserPercentile = 95
	case total >= t.AverageScore:
		t.UserPercentile = 75
	case total >= t.LowestScore:
		t.UserPercentile = 50
	default:
		t.UserPercentile = 25
	}

	if total >= lowest {
		t.Alerts = append(t.Alerts, Alert{
			Type:    AlertSuccess,
			Message: fmt.Sprintf("Your CRS score of %d is above the lowest recent draw score of %d. You may be eligible for an invitation in upcoming draws.", total, lowest),
		})
	} else {
		t.Alerts = append(t.Alerts, Alert{
			Type:    AlertWarning,
			Message: fmt.Sprintf("Your CRS score of %d is below the lowest recent draw score of %d. Consider improving your score or exploring provincial programs.", total, lowest),
		})
	}
	if p.ProvincialNomination {
		t.Alerts = append(t.Alerts, Alert{
			Type:    AlertSuccess,
			Message: "With a provincial nomination, you receive an additional 600 points, significantly increasing your chances of receiving an invitation to apply.",
		})
	}
	return t
}

// SortDrawsNewestFirst orders draws by date, then draw number, descending.
func SortDrawsNewestFirst(draws []Draw) {
	sort.SliceStable(draws, func(i, j int) bool {
		if !draws[i].Date.Equal(draws[j].Date) {
			return draws[i].Date.After(draws[j].Date)
		}
		return draws[i].Number > draws[j].Number
	})
}

// SelectCutoff picks the newest draw whose type contains drawType (case
// insensitive), falling back to the newest draw of any type.
func SelectCutoff(draws []Draw, drawType string) (Draw, bool) {
	if len(draws) == 0 {
		return Draw{}, false
	}
	sorted := append([]Draw(nil), draws...)
	SortDrawsNewestFirst(sorted)
	if drawType != "" {
		want := strings.ToLower(drawType)
		for _, d := range sorted {
			if strings.Contains(strings.ToLower(d.Type), want) {
				return d, true
			}
		}
	}
	return sorted[0], true
}
