// internal/crs/engine_test.go
package crs

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func english(r, w, s, l int) LanguageProficiency {
	return LanguageProficiency{Language: English, Reading: r, Writing: w, Speaking: s, Listening: l}
}

func french(r, w, s, l int) *LanguageProficiency {
	return &LanguageProficiency{Language: French, Reading: r, Writing: w, Speaking: s, Listening: l}
}

func createTestProfile() Profile {
	return Profile{
		Age:            25,
		MaritalStatus:  MaritalSingle,
		EducationLevel: EducationSecondary,
		Languages:      Languages{First: english(7, 7, 7, 7)},
	}
}

func assertBreakdownInvariants(t *testing.T, b Breakdown) {
	t.Helper()
	assert.Equal(t, b.CoreHumanCapital.Subtotal+b.Spouse.Subtotal+b.SkillTransferability.Subtotal+b.Additional.Subtotal, b.Total)
	assert.LessOrEqual(t, b.SkillTransferability.Subtotal, SkillTransferabilityCap)
}

// ==========================
// Scenario Tests
// ==========================

func TestEngine_Score_Scenarios(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name           string
		profile        Profile
		cutoff         int
		validateOutput func(t *testing.T, result *Result)
	}{
		{
			name:    "young secondary graduate with CLB 7",
			profile: createTestProfile(),
			cutoff:  470,
			validateOutput: func(t *testing.T, result *Result) {
				core := result.Breakdown.CoreHumanCapital
				assert.Equal(t, 110, core.Age)
				assert.Equal(t, 30, core.Education)
				assert.Equal(t, 68, core.FirstLanguage)
				assert.Equal(t, 0, core.SecondLanguage)
				assert.Equal(t, 0, core.CanadianWork)
				assert.Equal(t, 208, core.Subtotal)
				assert.Equal(t, 208, result.Breakdown.Total)
				assert.Equal(t, VerdictBelowCutoff, result.Verdict)
				assert.Equal(t, 262, result.PointsToCutoff)

				require.Len(t, result.Recommendations, 5)
				var frenchGain int
				for _, r := range result.Recommendations {
					if r.Category == "Language" {
						frenchGain = r.EstimatedPointGain
					}
				}
				assert.Equal(t, 50, frenchGain)
			},
		},
		{
			name: "bachelor with CLB 9 and three years in Canada",
			profile: Profile{
				Age:               30,
				MaritalStatus:     MaritalSingle,
				EducationLevel:    EducationBachelor,
				Languages:         Languages{First: english(9, 9, 9, 9)},
				CanadianWorkYears: 3,
			},
			cutoff: 470,
			validateOutput: func(t *testing.T, result *Result) {
				core := result.Breakdown.CoreHumanCapital
				assert.Equal(t, 105, core.Age)
				assert.Equal(t, 120, core.Education)
				assert.Equal(t, 124, core.FirstLanguage)
				assert.Equal(t, 64, core.CanadianWork)
				assert.Equal(t, 413, core.Subtotal)

				st := result.Breakdown.SkillTransferability
				assert.Equal(t, 50, st.EducationLanguage)
				assert.Equal(t, 50, st.EducationCanadianWork)
				assert.Equal(t, 0, st.ForeignWorkLanguage)
				assert.Equal(t, 0, st.ForeignWorkCanadianWork)
				assert.Equal(t, 100, st.Subtotal)

				assert.Equal(t, 513, result.Breakdown.Total)
				assert.Equal(t, VerdictMeetsCutoff, result.Verdict)
				assert.Equal(t, 0, result.PointsToCutoff)
			},
		},
		{
			name: "provincial nomination only",
			profile: Profile{ProvincialNomination: true},
			cutoff:  470,
			validateOutput: func(t *testing.T, result *Result) {
				assert.Equal(t, 0, result.Breakdown.CoreHumanCapital.Subtotal)
				assert.Equal(t, 600, result.Breakdown.Additional.ProvincialNomination)
				assert.Equal(t, 600, result.Breakdown.Additional.Subtotal)
				assert.Equal(t, 600, result.Breakdown.Total)
				assert.Equal(t, VerdictMeetsCutoff, result.Verdict)
				assert.Empty(t, result.UnknownValues)
			},
		},
		{
			name: "spouse not accompanying",
			profile: func() Profile {
				p := createTestProfile()
				p.MaritalStatus = MaritalMarried
				p.SpouseAccompanying = false
				p.Spouse = &SpouseProfile{
					EducationLevel:    EducationMaster,
					Language:          &SpouseLanguage{Reading: 9, Writing: 9, Speaking: 9, Listening: 9},
					CanadianWorkYears: 5,
				}
				return p
			}(),
			cutoff: 470,
			validateOutput: func(t *testing.T, result *Result) {
				assert.Equal(t, SpouseFactors{}, result.Breakdown.Spouse)
				// without-spouse column still applies
				assert.Equal(t, 110, result.Breakdown.CoreHumanCapital.Age)
			},
		},
		{
			name: "foreign and Canadian work combination",
			profile: Profile{
				Age:               35,
				MaritalStatus:     MaritalSingle,
				EducationLevel:    EducationSecondary,
				Languages:         Languages{First: english(5, 5, 5, 5)},
				CanadianWorkYears: 2,
				ForeignWorkYears:  4,
			},
			cutoff: 470,
			validateOutput: func(t *testing.T, result *Result) {
				st := result.Breakdown.SkillTransferability
				assert.Equal(t, 0, st.EducationLanguage)
				assert.Equal(t, 0, st.EducationCanadianWork)
				assert.Equal(t, 0, st.ForeignWorkLanguage)
				assert.Equal(t, 50, st.ForeignWorkCanadianWork)
				assert.Equal(t, 50, st.Subtotal)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.Score(tt.profile, tt.cutoff)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, tt.cutoff, result.Cutoff)
			assertBreakdownInvariants(t, result.Breakdown)
			tt.validateOutput(t, result)
		})
	}
}

// ==========================
// Factor Tests
// ==========================

func TestEngine_Score_AccompanyingSpouse(t *testing.T) {
	p := createTestProfile()
	p.MaritalStatus = MaritalCommonLaw
	p.SpouseAccompanying = true
	p.Spouse = &SpouseProfile{
		EducationLevel:    EducationMaster,
		Language:          &SpouseLanguage{Reading: 10, Writing: 10, Speaking: 10, Listening: 10},
		CanadianWorkYears: 7,
	}

	result, err := NewEngine().Score(p, 470)
	require.NoError(t, err)

	assert.Equal(t, 100, result.Breakdown.CoreHumanCapital.Age)
	assert.Equal(t, 28, result.Breakdown.CoreHumanCapital.Education)
	assert.Equal(t, 64, result.Breakdown.CoreHumanCapital.FirstLanguage)

	spouse := result.Breakdown.Spouse
	assert.Equal(t, 10, spouse.Education)
	assert.Equal(t, 20, spouse.Language)
	assert.Equal(t, 10, spouse.CanadianWork)
	assert.Equal(t, 40, spouse.Subtotal)
	assert.False(t, spouse.Missing)
	assertBreakdownInvariants(t, result.Breakdown)
}

func TestEngine_Score_MissingSpouseDetails(t *testing.T) {
	p := createTestProfile()
	p.MaritalStatus = MaritalMarried
	p.SpouseAccompanying = true

	result, err := NewEngine().Score(p, 470)
	require.NoError(t, err)

	assert.True(t, result.Breakdown.Spouse.Missing)
	assert.Equal(t, 0, result.Breakdown.Spouse.Subtotal)
	assert.Equal(t, 100, result.Breakdown.CoreHumanCapital.Age)
}

func TestEngine_Score_SecondLanguageAndFrenchBonus(t *testing.T) {
	tests := []struct {
		name               string
		profile            Profile
		wantSecondLanguage int
		wantFrenchBonus    int
	}{
		{
			name: "second language capped without spouse",
			profile: Profile{
				Age: 28, MaritalStatus: MaritalSingle, EducationLevel: EducationBachelor,
				Languages: Languages{First: english(10, 10, 10, 10), Second: french(9, 9, 9, 9)},
			},
			wantSecondLanguage: 24,
			wantFrenchBonus:    50,
		},
		{
			name: "second language capped with spouse",
			profile: Profile{
				Age: 28, MaritalStatus: MaritalMarried, SpouseAccompanying: true, EducationLevel: EducationBachelor,
				Languages: Languages{First: english(10, 10, 10, 10), Second: french(10, 10, 10, 10)},
				Spouse:    &SpouseProfile{EducationLevel: EducationSecondary},
			},
			wantSecondLanguage: 22,
			wantFrenchBonus:    50,
		},
		{
			name: "French first with weak English",
			profile: Profile{
				Age: 28, MaritalStatus: MaritalSingle, EducationLevel: EducationBachelor,
				Languages: Languages{
					First:  LanguageProficiency{Language: French, Reading: 7, Writing: 7, Speaking: 7, Listening: 7},
					Second: &LanguageProficiency{Language: English, Reading: 4, Writing: 5, Speaking: 5, Listening: 5},
				},
			},
			wantSecondLanguage: 3,
			wantFrenchBonus:    25,
		},
		{
			name: "French below NCLC 7 in one ability",
			profile: Profile{
				Age: 28, MaritalStatus: MaritalSingle, EducationLevel: EducationBachelor,
				Languages: Languages{First: english(9, 9, 9, 9), Second: french(7, 7, 6, 7)},
			},
			wantSecondLanguage: 10,
			wantFrenchBonus:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewEngine().Score(tt.profile, 470)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSecondLanguage, result.Breakdown.CoreHumanCapital.SecondLanguage)
			assert.Equal(t, tt.wantFrenchBonus, result.Breakdown.Additional.FrenchBonus)
		})
	}
}

func TestEngine_Score_SkillTransferabilityCap(t *testing.T) {
	p := Profile{
		Age:               29,
		MaritalStatus:     MaritalSingle,
		EducationLevel:    EducationDoctoral,
		Languages:         Languages{First: english(10, 10, 10, 10)},
		CanadianWorkYears: 3,
		ForeignWorkYears:  3,
	}

	result, err := NewEngine().Score(p, 470)
	require.NoError(t, err)

	st := result.Breakdown.SkillTransferability
	assert.Equal(t, 200, st.Uncapped)
	assert.Equal(t, 100, st.Subtotal)
	assert.Equal(t, 0, st.CertificateOfQualification)
}

func TestEngine_Score_AdditionalPoints(t *testing.T) {
	p := createTestProfile()
	p.JobOffer = &JobOffer{Present: true}
	p.CanadianEducation = &CanadianEducation{Present: true, Tier: CanadianEducationShort}
	p.SiblingInCanada = true

	result, err := NewEngine().Score(p, 470)
	require.NoError(t, err)

	a := result.Breakdown.Additional
	assert.Equal(t, 50, a.JobOffer)
	assert.Equal(t, 15, a.CanadianEducation)
	assert.Equal(t, 15, a.Sibling)
	assert.Equal(t, 80, a.Subtotal)

	p.JobOffer.SeniorManagement = true
	p.CanadianEducation.Tier = CanadianEducationLong
	result, err = NewEngine().Score(p, 470)
	require.NoError(t, err)
	assert.Equal(t, 200, result.Breakdown.Additional.JobOffer)
	assert.Equal(t, 30, result.Breakdown.Additional.CanadianEducation)
}

// ==========================
// Error and Policy Tests
// ==========================

func TestEngine_Score_Errors(t *testing.T) {
	tests := []struct {
		name    string
		engine  *Engine
		profile Profile
		cutoff  int
		wantErr error
	}{
		{
			name:    "negative cutoff",
			engine:  NewEngine(),
			profile: createTestProfile(),
			cutoff:  -1,
			wantErr: ErrInvalidCutoff,
		},
		{
			name:    "empty catalog",
			engine:  NewEngine(WithCatalog(Catalog{})),
			profile: createTestProfile(),
			cutoff:  470,
			wantErr: ErrCatalogUnavailable,
		},
		{
			name:   "negative age",
			engine: NewEngine(),
			profile: func() Profile {
				p := createTestProfile()
				p.Age = -3
				return p
			}(),
			cutoff:  470,
			wantErr: ErrProfileValidation,
		},
		{
			name:   "CLB above 12",
			engine: NewEngine(),
			profile: func() Profile {
				p := createTestProfile()
				p.Languages.First.Speaking = 13
				return p
			}(),
			cutoff:  470,
			wantErr: ErrProfileValidation,
		},
		{
			name:   "unknown marital status",
			engine: NewEngine(),
			profile: func() Profile {
				p := createTestProfile()
				p.MaritalStatus = "engaged"
				return p
			}(),
			cutoff:  470,
			wantErr: ErrProfileValidation,
		},
		{
			name:   "second language same as first",
			engine: NewEngine(),
			profile: func() Profile {
				p := createTestProfile()
				p.Languages.Second = &LanguageProficiency{Language: English, Reading: 5}
				return p
			}(),
			cutoff:  470,
			wantErr: ErrProfileValidation,
		},
		{
			name:   "malformed education tier",
			engine: NewEngine(),
			profile: func() Profile {
				p := createTestProfile()
				p.EducationLevel = "Bachelor's Degree!"
				return p
			}(),
			cutoff:  470,
			wantErr: ErrProfileValidation,
		},
		{
			name:   "unknown education tier rejected by policy",
			engine: NewEngine(WithUnknownValuePolicy(PolicyReject)),
			profile: func() Profile {
				p := createTestProfile()
				p.EducationLevel = "associate-degree"
				return p
			}(),
			cutoff:  470,
			wantErr: ErrUnknownTableValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.engine.Score(tt.profile, tt.cutoff)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestEngine_Score_ValidationErrorDetails(t *testing.T) {
	p := createTestProfile()
	p.CanadianWorkYears = -1
	p.Languages.First.Reading = 20

	_, err := NewEngine().Score(p, 470)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 2)
	assert.Equal(t, "canadianWorkYears", verr.Fields[0].Field)
	assert.Equal(t, "languages.first.reading", verr.Fields[1].Field)
}

func TestEngine_Score_UnknownValueLenient(t *testing.T) {
	p := createTestProfile()
	p.EducationLevel = "associate-degree"

	result, err := NewEngine().Score(p, 470)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Breakdown.CoreHumanCapital.Education)
	require.Len(t, result.UnknownValues, 1)
	assert.Equal(t, UnknownValue{Table: "education", Category: WithoutSpouse, Value: "associate-degree"}, result.UnknownValues[0])
}

func TestEngine_Options(t *testing.T) {
	engine := NewEngine(WithNearMissBand(100), WithTopPrograms(2), WithUnknownValuePolicy("bogus"))
	assert.Equal(t, 100, engine.NearMissBand())

	result, err := engine.Score(createTestProfile(), 300)
	require.NoError(t, err)
	assert.Equal(t, VerdictNearMiss, result.Verdict)
	assert.Len(t, result.ProgramMatches, 2)

	p := createTestProfile()
	p.EducationLevel = "associate-degree"
	_, err = engine.Score(p, 300)
	assert.NoError(t, err, "invalid policy must keep the lenient default")
}

func TestEngine_Score_Concurrent(t *testing.T) {
	engine := NewEngine()
	p := createTestProfile()

	var wg sync.WaitGroup
	results := make([]int, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := engine.Score(p, 470)
			if err == nil {
				results[i] = r.Breakdown.Total
			}
		}(i)
	}
	wg.Wait()

	for _, total := range results {
		assert.Equal(t, 208, total)
	}
}

func BenchmarkEngine_Score(b *testing.B) {
	engine := NewEngine()
	p := Profile{
		Age:                31,
		MaritalStatus:      MaritalMarried,
		SpouseAccompanying: true,
		EducationLevel:     EducationMaster,
		Languages:          Languages{First: english(9, 8, 9, 9), Second: french(7, 7, 7, 7)},
		CanadianWorkYears:  2,
		ForeignWorkYears:   3,
		Spouse:             &SpouseProfile{EducationLevel: EducationBachelor, CanadianWorkYears: 1},
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = engine.Score(p, 480)
	}
}
