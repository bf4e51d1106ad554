// internal/crs/tables.go
package crs

import "math"

// Category selects the column of a two-dimensional points table.
type Category string

const (
	WithoutSpouse Category = "without-spouse"
	WithSpouse    Category = "with-spouse"
)

// CategoryFor returns the table column that applies to the profile.
func CategoryFor(p Profile) Category {
	if p.HasAccompanyingSpouse() {
		return WithSpouse
	}
	return WithoutSpouse
}

// Points is the tagged result of a table lookup. Known is false when the key
// is not present in the table; Value is then always 0.
type Points struct {
	Value int
	Known bool
}

func known(v int) Points { return Points{Value: v, Known: true} }

var unknownValue = Points{}

// Band maps an inclusive integer range to a point value.
type Band struct {
	Min, Max int
	Points   int
}

// BandTable covers the whole integer line: values outside every band score 0
// and are still considered known.
type BandTable struct {
	Name string
	rows map[Category][]Band
}

func (t BandTable) Lookup(cat Category, v int) Points {
	for _, b := range t.rows[cat] {
		if v >= b.Min && v <= b.Max {
			return known(b.Points)
		}
	}
	return known(0)
}

// KeyTable maps categorical values such as education tiers to points.
type KeyTable struct {
	Name string
	rows map[Category]map[string]int
}

func (t KeyTable) Lookup(cat Category, key string) Points {
	row, ok := t.rows[cat]
	if !ok {
		return unknownValue
	}
	v, ok := row[key]
	if !ok {
		return unknownValue
	}
	return known(v)
}

// Keys lists the values the table knows about for cat.
func (t KeyTable) Keys(cat Category) []string {
	out := make([]string, 0, len(t.rows[cat]))
	for k := range t.rows[cat] {
		out = append(out, k)
	}
	return out
}

// MaxWorkYears is where every work-experience table stops growing.
const MaxWorkYears = 5

func clampYears(y int) int {
	if y < 0 {
		return 0
	}
	if y > MaxWorkYears {
		return MaxWorkYears
	}
	return y
}

func yearBands(values ...int) []Band {
	bands := make([]Band, 0, len(values))
	for i, v := range values {
		b := Band{Min: i, Max: i, Points: v}
		if i == len(values)-1 {
			b.Max = math.MaxInt
		}
		bands = append(bands, b)
	}
	return bands
}

func ageBands(byAge map[int]int) []Band {
	bands := make([]Band, 0, len(byAge))
	for age := 18; age <= 44; age++ {
		if v, ok := byAge[age]; ok {
			bands = append(bands, Band{Min: age, Max: age, Points: v})
		}
	}
	return bands
}

func educationRow(values ...int) map[string]int {
	row := make(map[string]int, len(EducationLevels))
	for i, lvl := range EducationLevels {
		row[string(lvl)] = values[i]
	}
	return row
}

var AgeTable = BandTable{
	Name: "age",
	rows: map[Category][]Band{
		WithoutSpouse: ageBands(map[int]int{
			18: 99, 19: 105,
			20: 110, 21: 110, 22: 110, 23: 110, 24: 110, 25: 110, 26: 110, 27: 110, 28: 110, 29: 110,
			30: 105, 31: 99, 32: 94, 33: 88, 34: 83, 35: 77, 36: 72, 37: 66, 38: 61, 39: 55,
			40: 50, 41: 39, 42: 28, 43: 17, 44: 6,
		}),
		WithSpouse: ageBands(map[int]int{
			18: 90, 19: 95,
			20: 100, 21: 100, 22: 100, 23: 100, 24: 100, 25: 100, 26: 100, 27: 100, 28: 100, 29: 100,
			30: 95, 31: 90, 32: 85, 33: 80, 34: 75, 35: 70, 36: 65, 37: 60, 38: 55, 39: 50,
			40: 45, 41: 35, 42: 25, 43: 15, 44: 5,
		}),
	},
}

var EducationTable = KeyTable{
	Name: "education",
	rows: map[Category]map[string]int{
		WithoutSpouse: educationRow(0, 30, 90, 98, 120, 128, 135, 150),
		WithSpouse:    educationRow(0, 28, 84, 91, 112, 119, 126, 140),
	},
}

// FirstLanguageTable is per ability; callers sum the four abilities.
var FirstLanguageTable = BandTable{
	Name: "first-language",
	rows: map[Category][]Band{
		WithoutSpouse: {
			{Min: 4, Max: 5, Points: 6},
			{Min: 6, Max: 6, Points: 9},
			{Min: 7, Max: 7, Points: 17},
			{Min: 8, Max: 8, Points: 23},
			{Min: 9, Max: 9, Points: 31},
			{Min: 10, Max: math.MaxInt, Points: 34},
		},
		WithSpouse: {
			{Min: 4, Max: 5, Points: 6},
			{Min: 6, Max: 6, Points: 8},
			{Min: 7, Max: 7, Points: 16},
			{Min: 8, Max: 8, Points: 22},
			{Min: 9, Max: 9, Points: 29},
			{Min: 10, Max: math.MaxInt, Points: 32},
		},
	},
}

var secondLanguageBands = []Band{
	{Min: 5, Max: 6, Points: 1},
	{Min: 7, Max: 8, Points: 3},
	{Min: 9, Max: math.MaxInt, Points: 6},
}

var SecondLanguageTable = BandTable{
	Name: "second-language",
	rows: map[Category][]Band{
		WithoutSpouse: secondLanguageBands,
		WithSpouse:    secondLanguageBands,
	},
}

// SecondLanguageCap bounds the four-ability sum.
var SecondLanguageCap = map[Category]int{
	WithoutSpouse: 24,
	WithSpouse:    22,
}

var CanadianWorkTable = BandTable{
	Name: "canadian-work",
	rows: map[Category][]Band{
		WithoutSpouse: yearBands(0, 40, 53, 64, 72, 80),
		WithSpouse:    yearBands(0, 35, 46, 56, 63, 70),
	},
}

// Spouse tables only have a with-spouse column.

var SpouseEducationTable = KeyTable{
	Name: "spouse-education",
	rows: map[Category]map[string]int{
		WithSpouse: educationRow(0, 2, 6, 7, 8, 9, 10, 10),
	},
}

var SpouseLanguageTable = BandTable{
	Name: "spouse-language",
	rows: map[Category][]Band{
		WithSpouse: {
			{Min: 5, Max: 6, Points: 1},
			{Min: 7, Max: 8, Points: 3},
			{Min: 9, Max: math.MaxInt, Points: 5},
		},
	},
}

const SpouseLanguageCap = 20

var SpouseCanadianWorkTable = BandTable{
	Name: "spouse-canadian-work",
	rows: map[Category][]Band{
		WithSpouse: yearBands(0, 5, 7, 8, 9, 10),
	},
}

// Skill transferability combinations share one 2x2 shape:
// (lower first leg, lower second leg) = 13, one leg high = 25, both high = 50.
var transferabilityMatrix = [2][2]int{
	{13, 25},
	{25, 50},
}

const SkillTransferabilityCap = 100

// Additional points.
const (
	ProvincialNominationPoints     = 600
	JobOfferSeniorManagementPoints = 200
	JobOfferPoints                 = 50
	CanadianEducationShortPoints   = 15
	CanadianEducationLongPoints    = 30
	FrenchBonusWithEnglishPoints   = 50
	FrenchBonusPoints              = 25
	SiblingPoints                  = 15
)
