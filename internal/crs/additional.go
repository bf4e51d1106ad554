// internal/crs/additional.go
package crs

const (
	frenchBonusCLB  = 7
	englishBonusCLB = 5
)

// AdditionalPoints is section D.
type AdditionalPoints struct {
	ProvincialNomination int `json:"provincialNomination"`
	JobOffer             int `json:"jobOffer"`
	CanadianEducation    int `json:"canadianEducation"`
	FrenchBonus          int `json:"frenchBonus"`
	Sibling              int `json:"sibling"`
	Subtotal             int `json:"subtotal"`
}

func additionalPoints(p Profile) AdditionalPoints {
	a := AdditionalPoints{
		JobOffer:          jobOfferPoints(p.JobOffer),
		CanadianEducation: canadianEducationPoints(p.CanadianEducation),
		FrenchBonus:       frenchBonus(p.Languages),
	}
	if p.ProvincialNomination {
		a.ProvincialNomination = ProvincialNominationPoints
	}
	if p.SiblingInCanada {
		a.Sibling = SiblingPoints
	}
	a.Subtotal = a.ProvincialNomination + a.JobOffer + a.CanadianEducation + a.FrenchBonus + a.Sibling
	return a
}

func jobOfferPoints(o *JobOffer) int {
	switch {
	case o == nil || !o.Present:
		return 0
	case o.SeniorManagement:
		return JobOfferSeniorManagementPoints
	default:
		return JobOfferPoints
	}
}

func canadianEducationPoints(ce *CanadianEducation) int {
	if ce == nil || !ce.Present {
		return 0
	}
	switch ce.Tier {
	case CanadianEducationShort:
		return CanadianEducationShortPoints
	case CanadianEducationLong:
		return CanadianEducationLongPoints
	}
	return 0
}

func frenchBonus(l Languages) int {
	fr, ok := l.Proficiency(French)
	if !ok || !fr.AllAtLeast(frenchBonusCLB) {
		return 0
	}
	return frenchBonusValue(l)
}

// frenchBonusValue is what the bonus is worth once French qualifies.
func frenchBonusValue(l Languages) int {
	if en, ok := l.Proficiency(English); ok && en.AllAtLeast(englishBonusCLB) {
		return FrenchBonusWithEnglishPoints
	}
	return FrenchBonusPoints
}
