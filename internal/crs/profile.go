// internal/crs/profile.go
package crs

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

type MaritalStatus string

const (
	MaritalSingle    MaritalStatus = "single"
	MaritalMarried   MaritalStatus = "married"
	MaritalCommonLaw MaritalStatus = "common-law"
	MaritalSeparated MaritalStatus = "separated"
	MaritalDivorced  MaritalStatus = "divorced"
	MaritalWidowed   MaritalStatus = "widowed"
)

func (m MaritalStatus) valid() bool {
	switch m {
	case MaritalSingle, MaritalMarried, MaritalCommonLaw, MaritalSeparated, MaritalDivorced, MaritalWidowed:
		return true
	}
	return false
}

// EducationLevel is the highest completed credential, ordered from lowest to highest.
type EducationLevel string

const (
	EducationBelowSecondary       EducationLevel = "below-secondary"
	EducationSecondary            EducationLevel = "secondary"
	EducationOneYearPostSecondary EducationLevel = "one-year-postsecondary"
	EducationTwoYearPostSecondary EducationLevel = "two-year-postsecondary"
	EducationBachelor             EducationLevel = "bachelor"
	EducationTwoOrMoreCredentials EducationLevel = "two-or-more-credentials"
	EducationMaster               EducationLevel = "master"
	EducationDoctoral             EducationLevel = "doctoral"
)

// EducationLevels lists every level in rank order.
var EducationLevels = []EducationLevel{
	EducationBelowSecondary,
	EducationSecondary,
	EducationOneYearPostSecondary,
	EducationTwoYearPostSecondary,
	EducationBachelor,
	EducationTwoOrMoreCredentials,
	EducationMaster,
	EducationDoctoral,
}

var educationAliases = map[string]EducationLevel{
	"less-than-secondary":     EducationBelowSecondary,
	"less_than_secondary":     EducationBelowSecondary,
	"below_secondary":         EducationBelowSecondary,
	"high-school":             EducationSecondary,
	"one-year":                EducationOneYearPostSecondary,
	"one_year":                EducationOneYearPostSecondary,
	"one_year_postsecondary":  EducationOneYearPostSecondary,
	"two-year":                EducationTwoYearPostSecondary,
	"two_year":                EducationTwoYearPostSecondary,
	"two_year_postsecondary":  EducationTwoYearPostSecondary,
	"bachelors":               EducationBachelor,
	"two-or-more":             EducationTwoOrMoreCredentials,
	"two_or_more":             EducationTwoOrMoreCredentials,
	"two_or_more_credentials": EducationTwoOrMoreCredentials,
	"masters":                 EducationMaster,
	"phd":                     EducationDoctoral,
}

// ParseEducationLevel accepts canonical names and the legacy spellings still sent by older clients.
func ParseEducationLevel(s string) (EducationLevel, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, lvl := range EducationLevels {
		if string(lvl) == v {
			return lvl, true
		}
	}
	if lvl, ok := educationAliases[v]; ok {
		return lvl, true
	}
	return EducationLevel(s), false
}

// Rank returns the position of the level in EducationLevels, or -1.
func (e EducationLevel) Rank() int {
	for i, lvl := range EducationLevels {
		if lvl == e {
			return i
		}
	}
	return -1
}

var tierPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// wellFormed accepts any lowercase tier slug. Tiers missing from the tables
// score 0 and are reported as unknown values instead of failing validation.
func (e EducationLevel) wellFormed() bool {
	return e.Rank() >= 0 || tierPattern.MatchString(string(e))
}

func (e EducationLevel) AtLeast(other EducationLevel) bool {
	r := e.Rank()
	return r >= 0 && r >= other.Rank()
}

func (e *EducationLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	// unknown values are kept verbatim so Validate can report them
	lvl, _ := ParseEducationLevel(s)
	*e = lvl
	return nil
}

type OfficialLanguage string

const (
	English OfficialLanguage = "english"
	French  OfficialLanguage = "french"
)

func (l OfficialLanguage) valid() bool {
	return l == English || l == French
}

// LanguageProficiency holds CLB (English) or NCLC (French) levels; 0 means untested.
type LanguageProficiency struct {
	Language  OfficialLanguage `json:"language"`
	Reading   int              `json:"reading"`
	Writing   int              `json:"writing"`
	Speaking  int              `json:"speaking"`
	Listening int              `json:"listening"`
}

// Abilities returns the four levels in reading, writing, speaking, listening order.
func (p LanguageProficiency) Abilities() [4]int {
	return [4]int{p.Reading, p.Writing, p.Speaking, p.Listening}
}

// AllAtLeast reports whether every ability is at or above clb.
func (p LanguageProficiency) AllAtLeast(clb int) bool {
	for _, v := range p.Abilities() {
		if v < clb {
			return false
		}
	}
	return true
}

type Languages struct {
	First  LanguageProficiency  `json:"first"`
	Second *LanguageProficiency `json:"second,omitempty"`
}

// Proficiency returns the scores recorded for lang, if any.
func (l Languages) Proficiency(lang OfficialLanguage) (LanguageProficiency, bool) {
	if l.First.Language == lang {
		return l.First, true
	}
	if l.Second != nil && l.Second.Language == lang {
		return *l.Second, true
	}
	return LanguageProficiency{}, false
}

type CanadianEducationTier string

const (
	CanadianEducationShort CanadianEducationTier = "one-or-two-year"
	CanadianEducationLong  CanadianEducationTier = "three-year-or-longer"
)

type CanadianEducation struct {
	Present bool                  `json:"present"`
	Tier    CanadianEducationTier `json:"tier,omitempty"`
}

type JobOffer struct {
	Present          bool   `json:"present"`
	SeniorManagement bool   `json:"seniorManagement"`
	TEER             string `json:"teer,omitempty"`
}

type SpouseLanguage struct {
	Reading   int `json:"reading"`
	Writing   int `json:"writing"`
	Speaking  int `json:"speaking"`
	Listening int `json:"listening"`
}

func (s SpouseLanguage) Abilities() [4]int {
	return [4]int{s.Reading, s.Writing, s.Speaking, s.Listening}
}

type SpouseProfile struct {
	EducationLevel    EducationLevel  `json:"educationLevel"`
	Language          *SpouseLanguage `json:"language,omitempty"`
	CanadianWorkYears int             `json:"canadianWorkYears"`
}

// Profile is the applicant data the score is computed from.
type Profile struct {
	Age                  int                `json:"age"`
	MaritalStatus        MaritalStatus      `json:"maritalStatus"`
	SpouseAccompanying   bool               `json:"spouseAccompanying"`
	EducationLevel       EducationLevel     `json:"educationLevel"`
	CanadianEducation    *CanadianEducation `json:"canadianEducation,omitempty"`
	Languages            Languages          `json:"languages"`
	CanadianWorkYears    int                `json:"canadianWorkYears"`
	ForeignWorkYears     int                `json:"foreignWorkYears"`
	Spouse               *SpouseProfile     `json:"spouse,omitempty"`
	ProvincialNomination bool               `json:"provincialNomination"`
	JobOffer             *JobOffer          `json:"jobOffer,omitempty"`
	SiblingInCanada      bool               `json:"siblingInCanada"`
}

// HasAccompanyingSpouse selects the with-spouse column of every table.
func (p Profile) HasAccompanyingSpouse() bool {
	return (p.MaritalStatus == MaritalMarried || p.MaritalStatus == MaritalCommonLaw) && p.SpouseAccompanying
}

func (p Profile) HasJobOffer() bool {
	return p.JobOffer != nil && p.JobOffer.Present
}

func (p Profile) HasCanadianEducation() bool {
	return p.CanadianEducation != nil && p.CanadianEducation.Present
}

// FieldError describes one structural problem in a profile.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError collects every structural problem found in a profile.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Reason))
	}
	return "invalid profile: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, format string, args ...interface{}) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: fmt.Sprintf(format, args...)})
}

// Validate returns a *ValidationError when the profile cannot be scored.
func (p Profile) Validate() error {
	verr := &ValidationError{}

	if p.Age < 0 {
		verr.add("age", "must not be negative, got %d", p.Age)
	}
	if p.MaritalStatus != "" && !p.MaritalStatus.valid() {
		verr.add("maritalStatus", "unknown value %q", p.MaritalStatus)
	}
	if p.EducationLevel != "" && !p.EducationLevel.wellFormed() {
		verr.add("educationLevel", "malformed value %q", p.EducationLevel)
	}
	if p.CanadianWorkYears < 0 {
		verr.add("canadianWorkYears", "must not be negative, got %d", p.CanadianWorkYears)
	}
	if p.ForeignWorkYears < 0 {
		verr.add("foreignWorkYears", "must not be negative, got %d", p.ForeignWorkYears)
	}

	validateProficiency(verr, "languages.first", p.Languages.First, true)
	if p.Languages.Second != nil {
		validateProficiency(verr, "languages.second", *p.Languages.Second, false)
		if p.Languages.Second.Language == p.Languages.First.Language {
			verr.add("languages.second.language", "must differ from the first official language")
		}
	}

	if ce := p.CanadianEducation; ce != nil && ce.Present {
		if ce.Tier != CanadianEducationShort && ce.Tier != CanadianEducationLong {
			verr.add("canadianEducation.tier", "unknown value %q", ce.Tier)
		}
	}

	if s := p.Spouse; s != nil {
		if s.EducationLevel != "" && !s.EducationLevel.wellFormed() {
			verr.add("spouse.educationLevel", "malformed value %q", s.EducationLevel)
		}
		if s.CanadianWorkYears < 0 {
			verr.add("spouse.canadianWorkYears", "must not be negative, got %d", s.CanadianWorkYears)
		}
		if s.Language != nil {
			names := [4]string{"reading", "writing", "speaking", "listening"}
			for i, v := range s.Language.Abilities() {
				if v < MinCLB || v > MaxCLB {
					verr.add("spouse.language."+names[i], "must be between %d and %d, got %d", MinCLB, MaxCLB, v)
				}
			}
		}
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

const (
	MinCLB = 0
	MaxCLB = 12
)

// validateProficiency checks one language entry. An empty first language
// means untested and scores 0.
func validateProficiency(verr *ValidationError, prefix string, p LanguageProficiency, allowAbsent bool) {
	if !(allowAbsent && p.Language == "") && !p.Language.valid() {
		verr.add(prefix+".language", "unknown value %q", p.Language)
	}
	names := [4]string{"reading", "writing", "speaking", "listening"}
	for i, v := range p.Abilities() {
		if v < MinCLB || v > MaxCLB {
			verr.add(prefix+"."+names[i], "must be between %d and %d, got %d", MinCLB, MaxCLB, v)
		}
	}
}
