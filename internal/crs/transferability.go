// internal/crs/transferability.go
package crs

const (
	goodLanguageCLB   = 7
	strongLanguageCLB = 9
)

// SkillTransferability is section C. Subtotal is capped at 100; Uncapped keeps
// the raw sum of the combinations.
type SkillTransferability struct {
	EducationLanguage          int `json:"educationLanguage"`
	EducationCanadianWork      int `json:"educationCanadianWork"`
	ForeignWorkLanguage        int `json:"foreignWorkLanguage"`
	ForeignWorkCanadianWork    int `json:"foreignWorkCanadianWork"`
	CertificateOfQualification int `json:"certificateOfQualification"`
	Uncapped                   int `json:"uncapped"`
	Subtotal                   int `json:"subtotal"`
}

// combination scores a pair of factors. Each leg must qualify; high selects
// the upper row or column of the matrix.
func combination(leg1, high1, leg2, high2 bool) int {
	if !leg1 || !leg2 {
		return 0
	}
	return transferabilityMatrix[b2i(high1)][b2i(high2)]
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

func skillTransferability(p Profile) SkillTransferability {
	postSecondary := p.EducationLevel.AtLeast(EducationOneYearPostSecondary)
	degree := p.EducationLevel.AtLeast(EducationBachelor)

	first := p.Languages.First
	goodLanguage := first.AllAtLeast(goodLanguageCLB)
	strongLanguage := first.AllAtLeast(strongLanguageCLB)

	canadian := p.CanadianWorkYears >= 1
	canadianHigh := p.CanadianWorkYears >= 2
	foreign := p.ForeignWorkYears >= 1
	foreignHigh := p.ForeignWorkYears >= 3

	s := SkillTransferability{
		EducationLanguage:          combination(postSecondary, degree, goodLanguage, strongLanguage),
		EducationCanadianWork:      combination(postSecondary, degree, canadian, canadianHigh),
		ForeignWorkLanguage:        combination(foreign, foreignHigh, goodLanguage, strongLanguage),
		ForeignWorkCanadianWork:    combination(foreign, foreignHigh, canadian, canadianHigh),
		CertificateOfQualification: certificateOfQualification(p),
	}
	s.Uncapped = s.EducationLanguage + s.EducationCanadianWork + s.ForeignWorkLanguage +
		s.ForeignWorkCanadianWork + s.CertificateOfQualification
	s.Subtotal = min(s.Uncapped, SkillTransferabilityCap)
	return s
}

// certificateOfQualification always scores 0: trade certificates are not
// collected on the profile.
func certificateOfQualification(Profile) int {
	return 0
}
