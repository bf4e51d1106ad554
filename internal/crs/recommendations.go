// internal/crs/recommendations.go
package crs

import "sort"

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	}
	return 0
}

type Recommendation struct {
	Category           string   `json:"category"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	EstimatedPointGain int      `json:"estimatedPointGain"`
	Priority           Priority `json:"priority"`
}

const (
	// canadianWorkTarget is the experience level past which more work is not suggested.
	canadianWorkTarget = 3
	// canadianWorkEstimate approximates moving from one to three years of Canadian work.
	canadianWorkEstimate = 40
)

type recommendationRule func(p Profile, b Breakdown) (Recommendation, bool)

// recommendationRules run in this order; the order breaks ties when sorting.
var recommendationRules = []recommendationRule{
	func(p Profile, _ Breakdown) (Recommendation, bool) {
		if fr, ok := p.Languages.Proficiency(French); ok && fr.AllAtLeast(frenchBonusCLB) {
			return Recommendation{}, false
		}
		return Recommendation{
			Category:           "Language",
			Title:              "Improve your French language skills",
			Description:        "You can earn up to 50 additional points by achieving NCLC 7 or higher in all French abilities.",
			EstimatedPointGain: frenchBonusValue(p.Languages),
		}, true
	},
	func(p Profile, _ Breakdown) (Recommendation, bool) {
		if p.HasCanadianEducation() {
			return Recommendation{}, false
		}
		return Recommendation{
			Category:           "Education",
			Title:              "Obtain Canadian educational credentials",
			Description:        "Complete a program of at least 3 years at a Canadian institution to earn 30 additional points.",
			EstimatedPointGain: CanadianEducationLongPoints,
		}, true
	},
	func(p Profile, _ Breakdown) (Recommendation, bool) {
		if p.CanadianWorkYears >= canadianWorkTarget {
			return Recommendation{}, false
		}
		return Recommendation{
			Category:           "Work Experience",
			Title:              "Gain additional Canadian work experience",
			Description:        "With 3 or more years of Canadian work experience, you can earn up to 80 points in this category.",
			EstimatedPointGain: canadianWorkEstimate,
		}, true
	},
	func(p Profile, _ Breakdown) (Recommendation, bool) {
		if p.ProvincialNomination {
			return Recommendation{}, false
		}
		return Recommendation{
			Category:           "Provincial Nomination",
			Title:              "Secure a provincial nomination",
			Description:        "A provincial nomination adds 600 points to your CRS score, virtually guaranteeing an invitation to apply.",
			EstimatedPointGain: ProvincialNominationPoints,
		}, true
	},
	func(p Profile, _ Breakdown) (Recommendation, bool) {
		if p.HasJobOffer() {
			return Recommendation{}, false
		}
		return Recommendation{
			Category:           "Job Offer",
			Title:              "Obtain a valid job offer in Canada",
			Description:        "A job offer in TEER 0 occupations can add up to 200 points to your score.",
			EstimatedPointGain: JobOfferSeniorManagementPoints,
		}, true
	},
}

// Recommend returns improvement actions sorted by priority, then estimated gain.
//
// An action is high priority when it alone closes the gap to the cutoff. The
// remaining actions are medium, except that the ones sharing the smallest
// estimate are low whenever the remaining estimates differ.
func Recommend(p Profile, b Breakdown, cutoff int) []Recommendation {
	recs := make([]Recommendation, 0, len(recommendationRules))
	for _, rule := range recommendationRules {
		if r, ok := rule(p, b); ok {
			recs = append(recs, r)
		}
	}

	gap := max(0, cutoff-b.Total)
	lowest, highest := -1, -1
	for i := range recs {
		if recs[i].EstimatedPointGain >= gap {
			recs[i].Priority = PriorityHigh
			continue
		}
		recs[i].Priority = PriorityMedium
		est := recs[i].EstimatedPointGain
		if lowest < 0 || est < lowest {
			lowest = est
		}
		if est > highest {
			highest = est
		}
	}
	if lowest >= 0 && lowest < highest {
		for i := range recs {
			if recs[i].Priority == PriorityMedium && recs[i].EstimatedPointGain == lowest {
				recs[i].Priority = PriorityLow
			}
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		ri, rj := recs[i].Priority.rank(), recs[j].Priority.rank()
		if ri != rj {
			return ri > rj
		}
		return recs[i].EstimatedPointGain > recs[j].EstimatedPointGain
	})
	return recs
}
