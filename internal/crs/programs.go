// internal/crs/programs.go
package crs

import (
	"math"
	"sort"
)

// Subject is what program requirements are evaluated against.
type Subject struct {
	Profile Profile
	Total   int
}

// Predicate reports whether a subject satisfies a requirement.
type Predicate func(s Subject) bool

// Check keys usable in Requirement.Check.
const (
	CheckSkilledWork1Y          = "skilled-work-1y"
	CheckSkilledWork2Y          = "skilled-work-2y"
	CheckCanadianWork1Y         = "canadian-work-1y"
	CheckFirstLanguageCLB4      = "first-language-clb4"
	CheckFirstLanguageCLB5      = "first-language-clb5"
	CheckFirstLanguageCLB6      = "first-language-clb6"
	CheckFirstLanguageCLB7      = "first-language-clb7"
	CheckFirstLanguageByTEER    = "first-language-by-teer"
	CheckTradesLanguage         = "trades-language"
	CheckEducationSecondary     = "education-secondary"
	CheckEducationPostSecondary = "education-post-secondary"
	CheckEducationBachelor      = "education-bachelor"
	CheckFSWPointsGrid          = "fsw-points-grid"
	CheckExpressEntryFSWOrCEC   = "express-entry-fsw-or-cec"
	CheckExpressEntryAny        = "express-entry-any"
	CheckCRS400                 = "crs-400"
	CheckJobOffer               = "job-offer"
	// CheckAssumed is satisfied for everyone. It stands in for declarations the
	// profile does not capture, such as intending to live outside Quebec.
	CheckAssumed = "assumed"
)

func firstLanguageAtLeast(clb int) Predicate {
	return func(s Subject) bool { return s.Profile.Languages.First.AllAtLeast(clb) }
}

func educationAtLeast(lvl EducationLevel) Predicate {
	return func(s Subject) bool { return s.Profile.EducationLevel.AtLeast(lvl) }
}

func skilledWorkYears(years int) Predicate {
	return func(s Subject) bool {
		return s.Profile.ForeignWorkYears >= years || s.Profile.CanadianWorkYears >= years
	}
}

// Predicates maps check keys to their implementation.
var Predicates = map[string]Predicate{
	CheckSkilledWork1Y:  skilledWorkYears(1),
	CheckSkilledWork2Y:  skilledWorkYears(2),
	CheckCanadianWork1Y: func(s Subject) bool { return s.Profile.CanadianWorkYears >= 1 },

	CheckFirstLanguageCLB4: firstLanguageAtLeast(4),
	CheckFirstLanguageCLB5: firstLanguageAtLeast(5),
	CheckFirstLanguageCLB6: firstLanguageAtLeast(6),
	CheckFirstLanguageCLB7: firstLanguageAtLeast(7),
	CheckFirstLanguageByTEER: func(s Subject) bool {
		clb := 7
		if o := s.Profile.JobOffer; o != nil && o.Present && (o.TEER == "2" || o.TEER == "3") {
			clb = 5
		}
		return s.Profile.Languages.First.AllAtLeast(clb)
	},
	CheckTradesLanguage: func(s Subject) bool { return meetsTradesLanguage(s.Profile) },

	CheckEducationSecondary:     educationAtLeast(EducationSecondary),
	CheckEducationPostSecondary: educationAtLeast(EducationOneYearPostSecondary),
	CheckEducationBachelor:      educationAtLeast(EducationBachelor),

	CheckFSWPointsGrid: func(s Subject) bool {
		p := s.Profile
		return p.Age >= 18 && p.Age <= 35 && p.EducationLevel.AtLeast(EducationSecondary) && skilledWorkYears(1)(s)
	},
	CheckExpressEntryFSWOrCEC: func(s Subject) bool {
		return EligibleFSW(s.Profile) || EligibleCEC(s.Profile)
	},
	CheckExpressEntryAny: func(s Subject) bool {
		return EligibleFSW(s.Profile) || EligibleCEC(s.Profile) || EligibleFST(s.Profile)
	},
	CheckCRS400:   func(s Subject) bool { return s.Total >= 400 },
	CheckJobOffer: func(s Subject) bool { return s.Profile.HasJobOffer() },
	CheckAssumed:  func(Subject) bool { return true },
}

// EligibleFSW approximates the Federal Skilled Worker minimum requirements.
func EligibleFSW(p Profile) bool {
	return (p.ForeignWorkYears >= 1 || p.CanadianWorkYears >= 1) &&
		p.Languages.First.AllAtLeast(7) &&
		p.EducationLevel.AtLeast(EducationSecondary)
}

// EligibleCEC approximates the Canadian Experience Class minimum requirements.
func EligibleCEC(p Profile) bool {
	return p.CanadianWorkYears >= 1 && p.Languages.First.AllAtLeast(7)
}

// EligibleFST approximates the Federal Skilled Trades minimum requirements.
func EligibleFST(p Profile) bool {
	return (p.ForeignWorkYears >= 2 || p.CanadianWorkYears >= 2) &&
		meetsTradesLanguage(p) &&
		p.HasJobOffer()
}

func meetsTradesLanguage(p Profile) bool {
	l := p.Languages.First
	return l.Reading >= 4 && l.Writing >= 4 && l.Speaking >= 5 && l.Listening >= 5
}

type Eligibility string

const (
	Eligible            Eligibility = "eligible"
	PotentiallyEligible Eligibility = "potentially-eligible"
	NotEligible         Eligibility = "not-eligible"
)

const (
	DefaultTopPrograms       = 5
	potentialEligibilityRate = 0.5
)

type RequirementResult struct {
	Name      string `json:"name"`
	Satisfied bool   `json:"satisfied"`
	// Modeled is false when the requirement has no predicate behind it.
	Modeled bool `json:"modeled"`
}

type ProgramMatch struct {
	ProgramID             string              `json:"programId"`
	Name                  string              `json:"name"`
	Category              ProgramCategory     `json:"category"`
	RequirementsTotal     int                 `json:"requirementsTotal"`
	RequirementsSatisfied int                 `json:"requirementsSatisfied"`
	Eligibility           Eligibility         `json:"eligibility"`
	MatchPercentage       int                 `json:"matchPercentage"`
	Requirements          []RequirementResult `json:"requirements"`
	NextSteps             []string            `json:"nextSteps,omitempty"`
	OfficialLink          string              `json:"officialLink,omitempty"`

	fraction float64
}

// EvaluateProgram checks every requirement of p against s.
func EvaluateProgram(p Program, s Subject) ProgramMatch {
	m := ProgramMatch{
		ProgramID:         p.ID,
		Name:              p.Name,
		Category:          p.Category,
		RequirementsTotal: len(p.Requirements),
		Requirements:      make([]RequirementResult, 0, len(p.Requirements)),
		NextSteps:         p.NextSteps,
		OfficialLink:      p.OfficialLink,
	}
	for _, req := range p.Requirements {
		pred, ok := Predicates[req.Check]
		res := RequirementResult{Name: req.Name, Modeled: ok}
		if ok {
			res.Satisfied = pred(s)
		}
		if res.Satisfied {
			m.RequirementsSatisfied++
		}
		m.Requirements = append(m.Requirements, res)
	}
	if m.RequirementsTotal == 0 {
		m.Eligibility = NotEligible
		return m
	}

	m.fraction = float64(m.RequirementsSatisfied) / float64(m.RequirementsTotal)
	m.MatchPercentage = int(math.Round(100 * m.fraction))
	switch {
	case m.RequirementsSatisfied == m.RequirementsTotal:
		m.Eligibility = Eligible
	case m.fraction >= potentialEligibilityRate:
		m.Eligibility = PotentiallyEligible
	default:
		m.Eligibility = NotEligible
	}
	return m
}

// MatchPrograms evaluates the catalog and returns at most limit programs with
// at least one satisfied requirement, best match first. Equal matches keep
// catalog order.
func MatchPrograms(catalog Catalog, s Subject, limit int) []ProgramMatch {
	if limit <= 0 {
		return nil
	}
	all := make([]ProgramMatch, 0, len(catalog))
	for _, p := range catalog {
		all = append(all, EvaluateProgram(p, s))
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].fraction > all[j].fraction })

	out := make([]ProgramMatch, 0, limit)
	for _, m := range all {
		if len(out) == limit {
			break
		}
		if m.fraction > 0 {
			out = append(out, m)
		}
	}
	return out
}
