package progress

import "github.com/ziadkadry99/scopedoc/internal/facts"

// Section identifiers of the scope document, in document order.
const (
	SectionExecutiveSummary  = "executive_summary"
	SectionClassification    = "classification"
	SectionClientInfo        = "client_info"
	SectionBusinessContext   = "business_context"
	SectionBrandAssets       = "brand_assets"
	SectionContentStrategy   = "content_strategy"
	SectionTechnicalSpecs    = "technical_specs"
	SectionMediaElements     = "media_elements"
	SectionDesignDirection   = "design_direction"
	SectionFeaturesBreakdown = "features_breakdown"
	SectionSupportPlan       = "support_plan"
	SectionTimeline          = "timeline"
	SectionInvestmentSummary = "investment_summary"
	SectionValidation        = "validation"
)

// Section describes which facts feed one document section.
type Section struct {
	ID    string
	Title string
	Keys  []string
}

// Sections lists the fourteen document sections in order. Derived sections
// (summary, classification, support, validation) have no keys of their own.
var Sections = []Section{
	{SectionExecutiveSummary, "Executive Summary", nil},
	{SectionClassification, "Project Classification", nil},
	{SectionClientInfo, "Client Information", []string{
		facts.KeyClientName, facts.KeyContactEmail, facts.KeyContactPhone, facts.KeyCompanyName,
	}},
	{SectionBusinessContext, "Business Context", []string{
		facts.KeyIndustry, facts.KeyBusinessDesc, facts.KeyTargetAudience, facts.KeyPrimaryGoal,
		facts.KeyCompetitors, facts.KeyUniqueValue, facts.KeyProblem, facts.KeySuccessMetrics,
	}},
	{SectionBrandAssets, "Brand Assets", []string{
		facts.KeyLogo, facts.KeyBrandGuidelines, facts.KeyColors, facts.KeyTypography,
	}},
	{SectionContentStrategy, "Content Strategy", []string{
		facts.KeyContentOwner, facts.KeyPageCount, facts.KeySEO, facts.KeyCMS,
	}},
	{SectionTechnicalSpecs, "Technical Specifications", []string{
		facts.KeyHosting, facts.KeyDomain, facts.KeyIntegrations, facts.KeyUserAccounts,
		facts.KeyPayments, facts.KeyCompliance, facts.KeyTechPreferences, facts.KeyAnalytics,
	}},
	{SectionMediaElements, "Media Elements", []string{facts.KeyMediaAssets}},
	{SectionDesignDirection, "Design Direction", []string{
		facts.KeyDesignStyle, facts.KeyInspiration, facts.KeyDesignDislikes,
	}},
	{SectionFeaturesBreakdown, "Features Breakdown", []string{
		facts.KeySelectedFeatures, facts.KeyExtraFeatures,
	}},
	{SectionSupportPlan, "Support Plan", nil},
	{SectionTimeline, "Timeline", []string{facts.KeyTimeline}},
	{SectionInvestmentSummary, "Investment Summary", []string{facts.KeyBudgetRange}},
	{SectionValidation, "Validation", nil},
}

// SectionStatus is how much evidence one section has.
type SectionStatus struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Known    int     `json:"known"`
	Expected int     `json:"expected"`
	Coverage float64 `json:"coverage"`
}

// Snapshot is the progress view handed to the UI.
type Snapshot struct {
	Percent       float64         `json:"percent"`
	QuestionCount int             `json:"question_count"`
	Complete      bool            `json:"complete"`
	Sections      []SectionStatus `json:"sections"`
}

// SectionCoverage counts, for every section with keys, the facts that feed
// it. A fallback fact counts toward the section named by its ScopeSection.
func SectionCoverage(all []facts.Fact) []SectionStatus {
	byKey := make(map[string]bool, len(all))
	fallback := make(map[string]int)
	for _, f := range all {
		byKey[f.Key] = true
		if facts.IsFallback(f.Key) && f.ScopeSection != "" {
			fallback[f.ScopeSection]++
		}
	}
	out := make([]SectionStatus, 0, len(Sections))
	for _, s := range Sections {
		if len(s.Keys) == 0 {
			continue
		}
		st := SectionStatus{ID: s.ID, Title: s.Title, Expected: len(s.Keys)}
		for _, k := range s.Keys {
			if byKey[k] {
				st.Known++
			}
		}
		st.Known += fallback[s.ID]
		if st.Known > st.Expected {
			st.Known = st.Expected
		}
		st.Coverage = round2(float64(st.Known) / float64(st.Expected))
		out = append(out, st)
	}
	return out
}

// Take builds a snapshot from the question count, completion flag and facts.
func Take(questionCount int, complete bool, all []facts.Fact) Snapshot {
	return Snapshot{
		Percent:       FromQuestionCount(questionCount, complete),
		QuestionCount: questionCount,
		Complete:      complete,
		Sections:      SectionCoverage(all),
	}
}

// SectionTitle returns the display title for a section id.
func SectionTitle(id string) string {
	for _, s := range Sections {
		if s.ID == id {
			return s.Title
		}
	}
	return id
}
