// internal/crs/catalog.go
package crs

import "fmt"

type ProgramCategory string

const (
	CategoryExpressEntry      ProgramCategory = "express_entry"
	CategoryProvincialNominee ProgramCategory = "provincial_nominee"
	CategoryOther             ProgramCategory = "other"
)

// Requirement is one eligibility condition. Check names a predicate in
// Predicates; an empty or unknown check is never satisfied.
type Requirement struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Details     string `json:"details,omitempty"`
	Check       string `json:"check,omitempty"`
}

type Program struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Category     ProgramCategory `json:"category"`
	Province     string          `json:"province,omitempty"`
	Stream       string          `json:"stream,omitempty"`
	Description  string          `json:"description"`
	Requirements []Requirement   `json:"requirements"`
	NextSteps    []string        `json:"nextSteps"`
	OfficialLink string          `json:"officialLink"`
}

type Catalog []Program

// Validate checks the catalog is usable by the matcher. It reports program ids
// that repeat, programs without requirements and check keys with no predicate.
func (c Catalog) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("catalog is empty")
	}
	seen := make(map[string]bool, len(c))
	for _, p := range c {
		if p.ID == "" {
			return fmt.Errorf("program %q has no id", p.Name)
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate program id %q", p.ID)
		}
		seen[p.ID] = true
		if len(p.Requirements) == 0 {
			return fmt.Errorf("program %q has no requirements", p.ID)
		}
		for _, r := range p.Requirements {
			if r.Check == "" {
				continue
			}
			if _, ok := Predicates[r.Check]; !ok {
				return fmt.Errorf("program %q requirement %q: unknown check %q", p.ID, r.Name, r.Check)
			}
		}
	}
	return nil
}

const (
	expressEntrySteps = "Create an Express Entry profile"
	ecaDetails        = "Foreign credentials need Educational Credential Assessment (ECA)"
	languageDetails   = "Must take approved language test"
	fundsDetails      = "Amount depends on family size"
)

// DefaultCatalog returns a fresh copy of the built-in program list.
func DefaultCatalog() Catalog {
	return Catalog{
		{
			ID:          "fswp",
			Name:        "Federal Skilled Worker Program",
			Category:    CategoryExpressEntry,
			Description: "The Federal Skilled Worker Program selects immigrants based on their ability to succeed economically in Canada. Points are awarded based on age, education, work experience, language ability, and other factors.",
			Requirements: []Requirement{
				{Name: "Skilled work experience", Description: "At least 1 year of continuous full-time (or equivalent part-time) skilled work experience in the past 10 years", Details: "Work must be in TEER 0, 1, 2, or 3 of the NOC", Check: CheckSkilledWork1Y},
				{Name: "Language ability", Description: "Minimum CLB 7 in all abilities (reading, writing, speaking, listening)", Details: languageDetails, Check: CheckFirstLanguageCLB7},
				{Name: "Education", Description: "Canadian secondary or post-secondary certificate, diploma or degree, or equivalent foreign credential", Details: ecaDetails, Check: CheckEducationSecondary},
				{Name: "Minimum points threshold", Description: "Score at least 67 points out of 100 on the FSW points grid", Details: "Based on six selection factors", Check: CheckFSWPointsGrid},
			},
			NextSteps: []string{
				expressEntrySteps,
				"Wait for an invitation to apply",
				"Submit a complete application within 60 days of invitation",
			},
			OfficialLink: "https://www.canada.ca/en/immigration-refugees-citizenship/services/immigrate-canada/express-entry/eligibility/federal-skilled-workers.html",
		},
		{
			ID:          "cec",
			Name:        "Canadian Experience Class",
			Category:    CategoryExpressEntry,
			Description: "The Canadian Experience Class is for skilled workers who have Canadian work experience and want to become permanent residents.",
			Requirements: []Requirement{
				{Name: "Canadian work experience", Description: "At least 1 year of full-time (or equivalent part-time) skilled work experience in Canada within the last 3 years", Details: "Work must be in TEER 0, 1, 2, or 3 of the NOC", Check: CheckCanadianWork1Y},
				{Name: "Language ability", Description: "Minimum CLB 7 for TEER 0 or 1 jobs, or CLB 5 for TEER 2 or 3 jobs", Details: languageDetails, Check: CheckFirstLanguageCLB7},
				{Name: "Plan to live outside Quebec", Description: "Intend to live outside the province of Quebec", Details: "Quebec has its own immigration programs", Check: CheckAssumed},
			},
			NextSteps: []string{
				expressEntrySteps,
				"Wait for an invitation to apply",
				"Submit a complete application within 60 days of invitation",
			},
			OfficialLink: "https://www.canada.ca/en/immigration-refugees-citizenship/services/immigrate-canada/express-entry/eligibility/canadian-experience-class.html",
		},
		{
			ID:          "fstp",
			Name:        "Federal Skilled Trades Program",
			Category:    CategoryExpressEntry,
			Description: "The Federal Skilled Trades Program is for skilled workers who want to become permanent residents based on being qualified in a skilled trade.",
			Requirements: []Requirement{
				{Name: "Skilled trades work experience", Description: "At least 2 years of full-time (or equivalent part-time) work experience in a skilled trade within the last 5 years", Details: "Work must be in specific skilled trade occupations", Check: CheckSkilledWork2Y},
				{Name: "Language ability", Description: "Minimum CLB 5 for speaking and listening, and CLB 4 for reading and writing", Details: languageDetails, Check: CheckTradesLanguage},
				{Name: "Job offer or certificate", Description: "Have a valid job offer of at least 1 year OR a certificate of qualification in your skilled trade issued by a Canadian provincial/territorial authority", Details: "Job offer must be from up to 2 employers in Canada", Check: CheckJobOffer},
			},
			NextSteps: []string{
				"Verify your trade qualification is eligible",
				"Obtain a valid job offer or provincial/territorial certification",
				expressEntrySteps,
			},
			OfficialLink: "https://www.canada.ca/en/immigration-refugees-citizenship/services/immigrate-canada/express-entry/eligibility/skilled-trades.html",
		},
		{
			ID:          "ontario_hcp",
			Name:        "Ontario Human Capital Priorities Stream",
			Category:    CategoryProvincialNominee,
			Province:    "ON",
			Stream:      "Human Capital Priorities",
			Description: "This stream allows Ontario to select Express Entry candidates who have the required education, work experience, language ability, and other factors to help them successfully establish and integrate into Ontario's labour market.",
			Requirements: []Requirement{
				{Name: "Express Entry profile", Description: "Have an active Express Entry profile", Details: "Must be eligible for either FSWP or CEC", Check: CheckExpressEntryFSWOrCEC},
				{Name: "CRS score", Description: "Have a CRS score of at least 400", Details: "Score may change based on Ontario's needs", Check: CheckCRS400},
				{Name: "Education", Description: "Have a bachelor's degree or higher", Details: ecaDetails, Check: CheckEducationBachelor},
				{Name: "Language ability", Description: "CLB 7 or higher in all language abilities", Details: languageDetails, Check: CheckFirstLanguageCLB7},
				{Name: "Settlement funds", Description: "Have sufficient settlement funds", Details: fundsDetails, Check: CheckAssumed},
			},
			NextSteps: []string{
				expressEntrySteps,
				"Indicate interest in Ontario",
				"Wait for a Notification of Interest from Ontario",
				"Submit a complete application within 45 days of receiving NOI",
			},
			OfficialLink: "https://www.ontario.ca/page/oinp-express-entry-human-capital-priorities-stream",
		},
		{
			ID:          "bc_tech",
			Name:        "British Columbia Tech Stream",
			Category:    CategoryProvincialNominee,
			Province:    "BC",
			Stream:      "Tech",
			Description: "The BC PNP Tech stream is for international tech workers and international students who have the qualifications, experience and tech job offer needed in B.C.",
			Requirements: []Requirement{
				{Name: "Job offer", Description: "Have a job offer in an eligible tech occupation", Details: "Must be a full-time, permanent position", Check: CheckJobOffer},
				{Name: "Wage requirement", Description: "Job offer must meet BC's wage requirements for the occupation", Details: "Wage must be competitive with BC wage rates"},
				{Name: "Education", Description: "Have a degree, diploma or certificate from an eligible post-secondary institution", Details: "Education should be related to the job", Check: CheckEducationPostSecondary},
				{Name: "Work experience", Description: "Have at least 2 years of experience in the tech sector", Details: "Experience must be directly related to the job offer", Check: CheckSkilledWork2Y},
			},
			NextSteps: []string{
				"Secure a job offer in an eligible tech occupation in BC",
				"Apply directly to BC PNP Tech stream",
				"If approved, apply for permanent residence",
			},
			OfficialLink: "https://www.welcomebc.ca/Immigrate-to-B-C/BC-PNP-Tech",
		},
		{
			ID:          "alberta_advantage",
			Name:        "Alberta Advantage Immigration Program",
			Category:    CategoryProvincialNominee,
			Province:    "AB",
			Stream:      "Alberta Express Entry",
			Description: "The Alberta Advantage Immigration Program allows Alberta to nominate individuals for permanent residence who have skills and abilities to fill labour market shortages in the province.",
			Requirements: []Requirement{
				{Name: "Express Entry profile", Description: "Have an active Express Entry profile", Details: "Must be eligible for either FSWP, CEC, or FSTP", Check: CheckExpressEntryAny},
				{Name: "Ties to Alberta", Description: "Have ties to Alberta such as family, previous work or study experience, or a job offer", Details: "Strong ties to Alberta improve chances of selection"},
				{Name: "Occupation", Description: "Work in an occupation that supports Alberta's economic development and diversification", Details: "Occupation should not be on Alberta's ineligible occupations list"},
			},
			NextSteps: []string{
				expressEntrySteps,
				"Indicate interest in Alberta",
				"Demonstrate ties to Alberta if possible",
				"Wait for a Notification of Interest from Alberta",
			},
			OfficialLink: "https://www.alberta.ca/alberta-advantage-immigration-program.aspx",
		},
		{
			ID:          "saskatchewan_eoi",
			Name:        "Saskatchewan Express Entry",
			Category:    CategoryProvincialNominee,
			Province:    "SK",
			Stream:      "Express Entry",
			Description: "The Saskatchewan Express Entry category is for skilled workers who want to live and work in Saskatchewan and are already in the federal Express Entry pool.",
			Requirements: []Requirement{
				{Name: "Express Entry profile", Description: "Have an active Express Entry profile", Details: "Must be eligible for either FSWP, CEC, or FSTP", Check: CheckExpressEntryAny},
				{Name: "Education", Description: "Have completed at least one year of post-secondary education or training", Details: ecaDetails, Check: CheckEducationPostSecondary},
				{Name: "Work experience", Description: "Have at least one year of work experience in a skilled occupation (TEER 0, 1, 2, or 3)", Details: "Experience must be within the past 10 years", Check: CheckSkilledWork1Y},
				{Name: "Language ability", Description: "Have a minimum CLB 7 for TEER 0 or 1 occupations, or CLB 5 for TEER 2 or 3 occupations", Details: languageDetails, Check: CheckFirstLanguageByTEER},
				{Name: "Settlement funds", Description: "Have sufficient settlement funds", Details: fundsDetails},
			},
			NextSteps: []string{
				expressEntrySteps,
				"Create a separate Expression of Interest profile in Saskatchewan's system",
				"Wait to be selected from the Saskatchewan EOI pool",
				"If invited, apply for Saskatchewan nomination within 60 days",
			},
			OfficialLink: "https://www.saskatchewan.ca/residents/moving-to-saskatchewan/live-in-saskatchewan/immigration-and-pathways/saskatchewan-immigrant-nominee-program",
		},
		{
			ID:          "manitoba_skilled_worker",
			Name:        "Manitoba Provincial Nominee Program - Skilled Worker Overseas",
			Category:    CategoryProvincialNominee,
			Province:    "MB",
			Stream:      "Skilled Worker Overseas",
			Description: "The Manitoba Provincial Nominee Program (MPNP) selects skilled workers who have the skills and experience needed in Manitoba's labour market and nominate them for permanent resident status.",
			Requirements: []Requirement{
				{Name: "Connection to Manitoba", Description: "Have a connection to Manitoba through family, previous education or work experience, or an invitation under a Strategic Recruitment Initiative", Details: "Close family members must be Manitoba residents for at least one year"},
				{Name: "Work experience", Description: "Have at least 6 months of work experience in your field", Details: "Experience must be in an in-demand occupation in Manitoba", Check: CheckSkilledWork1Y},
				{Name: "Language ability", Description: "Have a minimum CLB 6 for your occupation", Details: languageDetails, Check: CheckFirstLanguageCLB6},
				{Name: "Education", Description: "Have completed at least a secondary (high school) education", Details: ecaDetails, Check: CheckEducationSecondary},
				{Name: "Settlement funds", Description: "Have sufficient settlement funds", Details: fundsDetails},
			},
			NextSteps: []string{
				"Submit an Expression of Interest to Manitoba",
				"If invited, submit a complete application within 60 days",
				"If nominated, apply for permanent residence",
			},
			OfficialLink: "https://immigratemanitoba.com/immigrate-to-manitoba/skilled-worker-overseas/",
		},
		{
			ID:          "atlantic_immigration",
			Name:        "Atlantic Immigration Program",
			Category:    CategoryOther,
			Description: "The Atlantic Immigration Program helps employers in Atlantic Canada hire qualified candidates for jobs they haven't been able to fill locally. These candidates can be living abroad or be international graduates from a recognized post-secondary institution in Atlantic Canada.",
			Requirements: []Requirement{
				{Name: "Job offer", Description: "Have a job offer from a designated employer in Atlantic Canada", Details: "Must be full-time, non-seasonal, and at least one year in duration", Check: CheckJobOffer},
				{Name: "Work experience", Description: "Have at least 1 year of work experience (or be an international graduate from an Atlantic Canada institution)", Details: "Experience must be within the last 5 years", Check: CheckSkilledWork1Y},
				{Name: "Education", Description: "Have a high school diploma or higher", Details: ecaDetails, Check: CheckEducationSecondary},
				{Name: "Language ability", Description: "Have a minimum CLB 5 in all abilities", Details: languageDetails, Check: CheckFirstLanguageCLB5},
				{Name: "Settlement funds", Description: "Have sufficient settlement funds", Details: fundsDetails},
			},
			NextSteps: []string{
				"Find a designated employer in Atlantic Canada",
				"Receive a job offer",
				"Work with your employer to develop a settlement plan",
				"Apply for permanent residence",
			},
			OfficialLink: "https://www.canada.ca/en/immigration-refugees-citizenship/services/immigrate-canada/atlantic-immigration.html",
		},
		{
			ID:          "rural_northern_immigration",
			Name:        "Rural and Northern Immigration Pilot",
			Category:    CategoryOther,
			Description: "The Rural and Northern Immigration Pilot is a community-driven program that helps smaller communities attract and retain foreign skilled workers who want to work and live in one of the participating communities.",
			Requirements: []Requirement{
				{Name: "Community recommendation", Description: "Have a recommendation from one of the participating communities", Details: "Each community sets its own recommendation criteria"},
				{Name: "Job offer", Description: "Have a genuine full-time, non-seasonal job offer in one of the participating communities", Details: "Wage must meet the community's wage range for the occupation", Check: CheckJobOffer},
				{Name: "Work experience", Description: "Have at least 1 year of continuous work experience in the past 3 years", Details: "Experience may be gained inside or outside Canada", Check: CheckSkilledWork1Y},
				{Name: "Language ability", Description: "Meet the minimum language level for the TEER category of the job offer, from CLB 4 to CLB 6", Details: languageDetails, Check: CheckFirstLanguageCLB4},
				{Name: "Education", Description: "Have a Canadian high school diploma or equivalent foreign credential", Details: ecaDetails, Check: CheckEducationSecondary},
			},
			NextSteps: []string{
				"Find an eligible job with an employer in a participating community",
				"Submit your recommendation application to the community",
				"If recommended, apply for permanent residence",
			},
			OfficialLink: "https://www.canada.ca/en/immigration-refugees-citizenship/services/immigrate-canada/rural-northern-immigration-pilot.html",
		},
	}
}
