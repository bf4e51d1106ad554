// internal/crs/factors.go
package crs

// UnknownValue records a lookup whose key was not present in its table.
type UnknownValue struct {
	Table    string   `json:"table"`
	Category Category `json:"category"`
	Value    string   `json:"value"`
}

// lookups funnels every categorical lookup so unknown keys are collected
// in one place for the engine's policy to act on.
type lookups struct {
	unknown []UnknownValue
}

func (l *lookups) key(t KeyTable, cat Category, key string) int {
	pts := t.Lookup(cat, key)
	if !pts.Known {
		l.unknown = append(l.unknown, UnknownValue{Table: t.Name, Category: cat, Value: key})
	}
	return pts.Value
}

func agePoints(cat Category, age int) int {
	return AgeTable.Lookup(cat, age).Value
}

func (l *lookups) educationPoints(cat Category, lvl EducationLevel) int {
	if lvl == "" {
		return 0
	}
	return l.key(EducationTable, cat, string(lvl))
}

func firstLanguagePoints(cat Category, p LanguageProficiency) int {
	total := 0
	for _, clb := range p.Abilities() {
		total += FirstLanguageTable.Lookup(cat, clb).Value
	}
	return total
}

func secondLanguagePoints(cat Category, p *LanguageProficiency) int {
	if p == nil {
		return 0
	}
	total := 0
	for _, clb := range p.Abilities() {
		total += SecondLanguageTable.Lookup(cat, clb).Value
	}
	return min(total, SecondLanguageCap[cat])
}

func canadianWorkPoints(cat Category, years int) int {
	return CanadianWorkTable.Lookup(cat, clampYears(years)).Value
}

// CoreHumanCapital is section A of the score.
type CoreHumanCapital struct {
	Age            int `json:"age"`
	Education      int `json:"education"`
	FirstLanguage  int `json:"firstLanguage"`
	SecondLanguage int `json:"secondLanguage"`
	CanadianWork   int `json:"canadianWork"`
	Subtotal       int `json:"subtotal"`
}

func (l *lookups) coreHumanCapital(p Profile) CoreHumanCapital {
	cat := CategoryFor(p)
	c := CoreHumanCapital{
		Age:            agePoints(cat, p.Age),
		Education:      l.educationPoints(cat, p.EducationLevel),
		FirstLanguage:  firstLanguagePoints(cat, p.Languages.First),
		SecondLanguage: secondLanguagePoints(cat, p.Languages.Second),
		CanadianWork:   canadianWorkPoints(cat, p.CanadianWorkYears),
	}
	c.Subtotal = c.Age + c.Education + c.FirstLanguage + c.SecondLanguage + c.CanadianWork
	return c
}

// SpouseFactors is section B. Missing is set when the spouse accompanies the
// applicant but no spouse details were supplied.
type SpouseFactors struct {
	Education    int  `json:"education"`
	Language     int  `json:"language"`
	CanadianWork int  `json:"canadianWork"`
	Subtotal     int  `json:"subtotal"`
	Missing      bool `json:"missing,omitempty"`
}

func (l *lookups) spouseFactors(p Profile) SpouseFactors {
	if !p.HasAccompanyingSpouse() {
		return SpouseFactors{}
	}
	if p.Spouse == nil {
		return SpouseFactors{Missing: true}
	}

	s := SpouseFactors{
		CanadianWork: SpouseCanadianWorkTable.Lookup(WithSpouse, clampYears(p.Spouse.CanadianWorkYears)).Value,
	}
	if p.Spouse.EducationLevel != "" {
		s.Education = l.key(SpouseEducationTable, WithSpouse, string(p.Spouse.EducationLevel))
	}
	if p.Spouse.Language != nil {
		for _, clb := range p.Spouse.Language.Abilities() {
			s.Language += SpouseLanguageTable.Lookup(WithSpouse, clb).Value
		}
		s.Language = min(s.Language, SpouseLanguageCap)
	}
	s.Subtotal = s.Education + s.Language + s.CanadianWork
	return s
}
