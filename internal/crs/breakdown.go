// internal/crs/breakdown.go
package crs

// Breakdown is the full CRS score. Total is always the sum of the four subtotals.
type Breakdown struct {
	CoreHumanCapital     CoreHumanCapital     `json:"coreHumanCapital"`
	Spouse               SpouseFactors        `json:"spouse"`
	SkillTransferability SkillTransferability `json:"skillTransferability"`
	Additional           AdditionalPoints     `json:"additional"`
	Total                int                  `json:"total"`
}

// Compute scores a profile without validating it. Lookups that hit a key
// missing from a table score 0 and are returned as unknown values.
func Compute(p Profile) (Breakdown, []UnknownValue) {
	l := &lookups{}
	b := Breakdown{
		CoreHumanCapital:     l.coreHumanCapital(p),
		Spouse:               l.spouseFactors(p),
		SkillTransferability: skillTransferability(p),
		Additional:           additionalPoints(p),
	}
	b.Total = b.CoreHumanCapital.Subtotal + b.Spouse.Subtotal +
		b.SkillTransferability.Subtotal + b.Additional.Subtotal
	return b, l.unknown
}
