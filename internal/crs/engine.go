// internal/crs/engine.go
package crs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidCutoff      = errors.New("INVALID_CUTOFF")
	ErrCatalogUnavailable = errors.New("CATALOG_UNAVAILABLE")
	ErrUnknownTableValue  = errors.New("UNKNOWN_TABLE_VALUE")
	ErrProfileValidation  = errors.New("PROFILE_VALIDATION_FAILED")
)

// UnknownValuePolicy decides what happens when a profile value is well formed
// but missing from a points table.
type UnknownValuePolicy string

const (
	// PolicyLenient scores unknown values as 0 and lists them on the result.
	PolicyLenient UnknownValuePolicy = "lenient"
	// PolicyReject fails the score with ErrUnknownTableValue.
	PolicyReject UnknownValuePolicy = "reject"
)

type Result struct {
	Breakdown       Breakdown        `json:"breakdown"`
	Verdict         Verdict          `json:"verdict"`
	Cutoff          int              `json:"cutoff"`
	PointsToCutoff  int              `json:"pointsToCutoff"`
	Recommendations []Recommendation `json:"recommendations"`
	ProgramMatches  []ProgramMatch   `json:"programMatches"`
	UnknownValues   []UnknownValue   `json:"unknownValues,omitempty"`
}

// Engine scores profiles. It is immutable once built and safe for concurrent use.
type Engine struct {
	catalog     Catalog
	classifier  Classifier
	topPrograms int
	policy      UnknownValuePolicy
}

type Option func(*Engine)

func WithCatalog(c Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

func WithNearMissBand(band int) Option {
	return func(e *Engine) {
		if band >= 0 {
			e.classifier.Band = band
		}
	}
}

func WithTopPrograms(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.topPrograms = n
		}
	}
}

func WithUnknownValuePolicy(p UnknownValuePolicy) Option {
	return func(e *Engine) {
		if p == PolicyLenient || p == PolicyReject {
			e.policy = p
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		catalog:     DefaultCatalog(),
		classifier:  Classifier{Band: DefaultNearMissBand},
		topPrograms: DefaultTopPrograms,
		policy:      PolicyLenient,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Catalog() Catalog { return e.catalog }

func (e *Engine) NearMissBand() int { return e.classifier.Band }

// Score computes the breakdown, verdict, recommendations and program matches
// for p against cutoff.
func (e *Engine) Score(p Profile, cutoff int) (*Result, error) {
	if cutoff < 0 {
		return nil, fmt.Errorf("%w: cutoff must not be negative, got %d", ErrInvalidCutoff, cutoff)
	}
	if len(e.catalog) == 0 {
		return nil, fmt.Errorf("%w: no programs loaded", ErrCatalogUnavailable)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProfileValidation, err)
	}

	breakdown, unknown := Compute(p)
	if len(unknown) > 0 && e.policy == PolicyReject {
		vals := make([]string, 0, len(unknown))
		for _, u := range unknown {
			vals = append(vals, fmt.Sprintf("%s[%s]=%q", u.Table, u.Category, u.Value))
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownTableValue, strings.Join(vals, ", "))
	}

	return &Result{
		Breakdown:       breakdown,
		Verdict:         e.classifier.Classify(breakdown.Total, cutoff),
		Cutoff:          cutoff,
		PointsToCutoff:  max(0, cutoff-breakdown.Total),
		Recommendations: Recommend(p, breakdown, cutoff),
		ProgramMatches:  MatchPrograms(e.catalog, Subject{Profile: p, Total: breakdown.Total}, e.topPrograms),
		UnknownValues:   unknown,
	}, nil
}
