// internal/crs/tables_test.go
package crs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAgeTable(t *testing.T) {
	tests := []struct {
		age         int
		withoutWant int
		withWant    int
	}{
		{age: 0, withoutWant: 0, withWant: 0},
		{age: 17, withoutWant: 0, withWant: 0},
		{age: 18, withoutWant: 99, withWant: 90},
		{age: 19, withoutWant: 105, withWant: 95},
		{age: 20, withoutWant: 110, withWant: 100},
		{age: 29, withoutWant: 110, withWant: 100},
		{age: 30, withoutWant: 105, withWant: 95},
		{age: 35, withoutWant: 77, withWant: 70},
		{age: 40, withoutWant: 50, withWant: 45},
		{age: 44, withoutWant: 6, withWant: 5},
		{age: 45, withoutWant: 0, withWant: 0},
		{age: 90, withoutWant: 0, withWant: 0},
	}

	for _, tt := range tests {
		without := AgeTable.Lookup(WithoutSpouse, tt.age)
		with := AgeTable.Lookup(WithSpouse, tt.age)
		assert.True(t, without.Known)
		assert.Equal(t, tt.withoutWant, without.Value, "age %d without spouse", tt.age)
		assert.Equal(t, tt.withWant, with.Value, "age %d with spouse", tt.age)
	}
}

func TestEducationTable(t *testing.T) {
	without := []int{0, 30, 90, 98, 120, 128, 135, 150}
	with := []int{0, 28, 84, 91, 112, 119, 126, 140}
	spouse := []int{0, 2, 6, 7, 8, 9, 10, 10}

	for i, lvl := range EducationLevels {
		assert.Equal(t, known(without[i]), EducationTable.Lookup(WithoutSpouse, string(lvl)), lvl)
		assert.Equal(t, known(with[i]), EducationTable.Lookup(WithSpouse, string(lvl)), lvl)
		assert.Equal(t, known(spouse[i]), SpouseEducationTable.Lookup(WithSpouse, string(lvl)), lvl)
	}

	assert.Equal(t, Points{}, EducationTable.Lookup(WithoutSpouse, "associate-degree"))
	assert.Equal(t, Points{}, SpouseEducationTable.Lookup(WithoutSpouse, string(EducationMaster)))
	assert.Len(t, EducationTable.Keys(WithSpouse), len(EducationLevels))
}

func TestLanguageTables(t *testing.T) {
	tests := []struct {
		clb           int
		firstWithout  int
		firstWith     int
		second        int
		spouseAbility int
	}{
		{clb: 0, firstWithout: 0, firstWith: 0, second: 0, spouseAbility: 0},
		{clb: 3, firstWithout: 0, firstWith: 0, second: 0, spouseAbility: 0},
		{clb: 4, firstWithout: 6, firstWith: 6, second: 0, spouseAbility: 0},
		{clb: 5, firstWithout: 6, firstWith: 6, second: 1, spouseAbility: 1},
		{clb: 6, firstWithout: 9, firstWith: 8, second: 1, spouseAbility: 1},
		{clb: 7, firstWithout: 17, firstWith: 16, second: 3, spouseAbility: 3},
		{clb: 8, firstWithout: 23, firstWith: 22, second: 3, spouseAbility: 3},
		{clb: 9, firstWithout: 31, firstWith: 29, second: 6, spouseAbility: 5},
		{clb: 10, firstWithout: 34, firstWith: 32, second: 6, spouseAbility: 5},
		{clb: 12, firstWithout: 34, firstWith: 32, second: 6, spouseAbility: 5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.firstWithout, FirstLanguageTable.Lookup(WithoutSpouse, tt.clb).Value, "CLB %d", tt.clb)
		assert.Equal(t, tt.firstWith, FirstLanguageTable.Lookup(WithSpouse, tt.clb).Value, "CLB %d", tt.clb)
		assert.Equal(t, tt.second, SecondLanguageTable.Lookup(WithoutSpouse, tt.clb).Value, "CLB %d", tt.clb)
		assert.Equal(t, tt.second, SecondLanguageTable.Lookup(WithSpouse, tt.clb).Value, "CLB %d", tt.clb)
		assert.Equal(t, tt.spouseAbility, SpouseLanguageTable.Lookup(WithSpouse, tt.clb).Value, "CLB %d", tt.clb)
	}
}

func TestWorkTables(t *testing.T) {
	without := []int{0, 40, 53, 64, 72, 80}
	with := []int{0, 35, 46, 56, 63, 70}
	spouse := []int{0, 5, 7, 8, 9, 10}

	for years := 0; years <= 8; years++ {
		idx := min(years, MaxWorkYears)
		assert.Equal(t, without[idx], CanadianWorkTable.Lookup(WithoutSpouse, clampYears(years)).Value)
		assert.Equal(t, with[idx], CanadianWorkTable.Lookup(WithSpouse, clampYears(years)).Value)
		assert.Equal(t, spouse[idx], SpouseCanadianWorkTable.Lookup(WithSpouse, clampYears(years)).Value)
	}
	assert.Equal(t, 0, clampYears(-2))
}

func TestCategoryFor(t *testing.T) {
	tests := []struct {
		status      MaritalStatus
		accompanies bool
		want        Category
	}{
		{MaritalSingle, true, WithoutSpouse},
		{MaritalMarried, true, WithSpouse},
		{MaritalCommonLaw, true, WithSpouse},
		{MaritalMarried, false, WithoutSpouse},
		{MaritalDivorced, true, WithoutSpouse},
		{MaritalWidowed, false, WithoutSpouse},
	}
	for _, tt := range tests {
		p := Profile{MaritalStatus: tt.status, SpouseAccompanying: tt.accompanies}
		assert.Equal(t, tt.want, CategoryFor(p), "%s accompanying=%v", tt.status, tt.accompanies)
	}
}
