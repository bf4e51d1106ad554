// internal/crs/profile_test.go
package crs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_UnmarshalAliases(t *testing.T) {
	raw := `{
		"age": 33,
		"maritalStatus": "married",
		"spouseAccompanying": true,
		"educationLevel": "masters",
		"languages": {"first": {"language": "english", "reading": 8, "writing": 7, "speaking": 8, "listening": 9}},
		"spouse": {"educationLevel": "bachelors", "canadianWorkYears": 1}
	}`

	var p Profile
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	assert.Equal(t, EducationMaster, p.EducationLevel)
	assert.Equal(t, EducationBachelor, p.Spouse.EducationLevel)
	assert.True(t, p.HasAccompanyingSpouse())
	assert.NoError(t, p.Validate())
}

func TestParseEducationLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   EducationLevel
		wantOK bool
	}{
		{"doctoral", EducationDoctoral, true},
		{" Bachelor ", EducationBachelor, true},
		{"less-than-secondary", EducationBelowSecondary, true},
		{"two_or_more", EducationTwoOrMoreCredentials, true},
		{"one-year", EducationOneYearPostSecondary, true},
		{"associate-degree", EducationLevel("associate-degree"), false},
	}
	for _, tt := range tests {
		got, ok := ParseEducationLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
	}
}

func TestEducationLevel_AtLeast(t *testing.T) {
	assert.True(t, EducationMaster.AtLeast(EducationBachelor))
	assert.True(t, EducationBachelor.AtLeast(EducationBachelor))
	assert.False(t, EducationTwoYearPostSecondary.AtLeast(EducationBachelor))
	assert.False(t, EducationLevel("associate-degree").AtLeast(EducationBelowSecondary))
}

func TestProfile_Validate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(p *Profile)
		wantFields []string
	}{
		{name: "valid", mutate: func(p *Profile) {}},
		{name: "empty marital status treated as unset", mutate: func(p *Profile) { p.MaritalStatus = "" }},
		{name: "negative foreign work", mutate: func(p *Profile) { p.ForeignWorkYears = -1 }, wantFields: []string{"foreignWorkYears"}},
		{name: "absent education", mutate: func(p *Profile) { p.EducationLevel = "" }},
		{name: "untested first language", mutate: func(p *Profile) { p.Languages.First = LanguageProficiency{} }},
		{
			name: "second language still needs a tag",
			mutate: func(p *Profile) {
				p.Languages.Second = &LanguageProficiency{Reading: 5}
			},
			wantFields: []string{"languages.second.language"},
		},
		{name: "unknown first language", mutate: func(p *Profile) { p.Languages.First.Language = "spanish" }, wantFields: []string{"languages.first.language"}},
		{
			name: "bad Canadian education tier",
			mutate: func(p *Profile) {
				p.CanadianEducation = &CanadianEducation{Present: true, Tier: "six-months"}
			},
			wantFields: []string{"canadianEducation.tier"},
		},
		{
			name: "bad spouse values",
			mutate: func(p *Profile) {
				p.Spouse = &SpouseProfile{
					EducationLevel:    "Master's",
					CanadianWorkYears: -1,
					Language:          &SpouseLanguage{Reading: 13},
				}
			},
			wantFields: []string{"spouse.educationLevel", "spouse.canadianWorkYears", "spouse.language.reading"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := createTestProfile()
			tt.mutate(&p)
			err := p.Validate()
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			got := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				got = append(got, f.Field)
			}
			assert.Equal(t, tt.wantFields, got)
		})
	}
}
