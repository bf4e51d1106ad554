// internal/crs/clb.go
package crs

import (
	"fmt"
	"strings"
)

// LanguageTest identifies an approved language test.
type LanguageTest string

const (
	TestIELTS  LanguageTest = "ielts"
	TestCELPIP LanguageTest = "celpip"
	TestTEF    LanguageTest = "tef"
	TestTCF    LanguageTest = "tcf"
)

// Language returns the official language the test certifies.
func (t LanguageTest) Language() OfficialLanguage {
	if t == TestTEF || t == TestTCF {
		return French
	}
	return English
}

type Ability string

const (
	Reading   Ability = "reading"
	Writing   Ability = "writing"
	Speaking  Ability = "speaking"
	Listening Ability = "listening"
)

type threshold struct {
	min float64
	clb int
}

func steps(firstCLB int, mins ...float64) []threshold {
	out := make([]threshold, len(mins))
	for i, m := range mins {
		out[i] = threshold{min: m, clb: firstCLB + i}
	}
	return out
}

// conversionTables hold ascending minimum scores for each CLB level.
var conversionTables = map[LanguageTest]map[Ability][]threshold{
	TestIELTS: {
		Speaking:  steps(4, 4.0, 5.0, 5.5, 6.0, 6.5, 7.0, 7.5),
		Writing:   steps(4, 4.0, 5.0, 5.5, 6.0, 6.5, 7.0, 7.5),
		Listening: steps(4, 4.5, 5.0, 5.5, 6.0, 7.5, 8.0, 8.5),
		Reading:   steps(4, 3.5, 4.0, 5.0, 6.0, 6.5, 8.0, 8.5),
	},
	TestCELPIP: {
		Speaking:  steps(4, 4, 5, 6, 7, 8, 9, 10, 11, 12),
		Writing:   steps(4, 4, 5, 6, 7, 8, 9, 10, 11, 12),
		Listening: steps(4, 4, 5, 6, 7, 8, 9, 10, 11, 12),
		Reading:   steps(4, 4, 5, 6, 7, 8, 9, 10, 11, 12),
	},
	TestTEF: {
		Speaking:  steps(4, 181, 226, 271, 310, 349, 371, 393, 415, 437),
		Writing:   steps(4, 181, 226, 271, 310, 349, 371, 393, 415, 437),
		Listening: steps(4, 145, 181, 217, 249, 280, 298, 316, 334, 353),
		Reading:   steps(4, 121, 151, 181, 206, 234, 248, 263, 277, 290),
	},
	TestTCF: {
		Speaking:  steps(4, 4, 6, 7, 9, 12, 14, 16, 18, 20),
		Writing:   steps(4, 4, 6, 7, 9, 12, 14, 16, 18, 20),
		Listening: steps(4, 331, 369, 397, 457, 502, 522, 543, 563, 584),
		Reading:   steps(4, 342, 374, 406, 453, 499, 524, 549, 574, 599),
	},
}

// ConvertTestScore maps a raw test score to a CLB/NCLC level. Scores below the
// lowest threshold convert to 0.
func ConvertTestScore(test LanguageTest, ability Ability, score float64) (int, error) {
	abilities, ok := conversionTables[LanguageTest(strings.ToLower(string(test)))]
	if !ok {
		return 0, fmt.Errorf("unknown language test %q", test)
	}
	table, ok := abilities[Ability(strings.ToLower(string(ability)))]
	if !ok {
		return 0, fmt.Errorf("unknown language ability %q", ability)
	}
	clb := 0
	for _, t := range table {
		if score >= t.min {
			clb = t.clb
		}
	}
	return clb, nil
}

// TestResult is a set of raw scores from one language test.
type TestResult struct {
	Test      LanguageTest `json:"test"`
	Reading   float64      `json:"reading"`
	Writing   float64      `json:"writing"`
	Speaking  float64      `json:"speaking"`
	Listening float64      `json:"listening"`
}

// Proficiency converts all four raw scores.
func (r TestResult) Proficiency() (LanguageProficiency, error) {
	p := LanguageProficiency{Language: LanguageTest(strings.ToLower(string(r.Test))).Language()}
	var err error
	if p.Reading, err = ConvertTestScore(r.Test, Reading, r.Reading); err != nil {
		return p, err
	}
	if p.Writing, err = ConvertTestScore(r.Test, Writing, r.Writing); err != nil {
		return p, err
	}
	if p.Speaking, err = ConvertTestScore(r.Test, Speaking, r.Speaking); err != nil {
		return p, err
	}
	if p.Listening, err = ConvertTestScore(r.Test, Listening, r.Listening); err != nil {
		return p, err
	}
	return p, nil
}
