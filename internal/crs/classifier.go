// internal/crs/classifier.go
package crs

type Verdict string

const (
	VerdictMeetsCutoff Verdict = "meets-cutoff"
	VerdictNearMiss    Verdict = "near-miss"
	VerdictBelowCutoff Verdict = "below-cutoff"
)

const DefaultNearMissBand = 50

// Classifier labels a total against a cutoff. Totals within Band points below
// the cutoff are near misses.
type Classifier struct {
	Band int
}

func (c Classifier) Classify(total, cutoff int) Verdict {
	switch {
	case total >= cutoff:
		return VerdictMeetsCutoff
	case total >= cutoff-c.Band:
		return VerdictNearMiss
	default:
		return VerdictBelowCutoff
	}
}
