package facts

import "time"

// Category classifies what a fact describes.
type Category string

const (
	CategoryBusiness  Category = "business"
	CategoryTechnical Category = "technical"
	CategoryTimeline  Category = "timeline"
	CategoryBudget    Category = "budget"
	CategoryFeature   Category = "feature"
	CategoryDesign    Category = "design"
)

// Question categories understood by the extractor. They describe the
// question that was asked, not the fact that comes out of it.
const (
	QuestionFoundation       = "foundation"
	QuestionFeatureSelection = "feature_selection"
	QuestionBusinessContext  = "business_context"
	QuestionTechnical        = "technical"
	QuestionDesign           = "design"
	QuestionTimeline         = "timeline"
	QuestionBudget           = "budget"
)

// Fact is a single typed datum extracted from one answer.
type Fact struct {
	ID               string    `json:"id"`
	Category         Category  `json:"category"`
	Key              string    `json:"key"` // unique within a conversation
	Value            string    `json:"value"`
	Confidence       float64   `json:"confidence"`
	SourceQuestionID string    `json:"source_question_id"`
	ScopeSection     string    `json:"scope_section,omitempty"`
	ExtractedAt      time.Time `json:"extracted_at"`
}

// Metadata describes the question an answer belongs to.
type Metadata struct {
	Category     string `json:"category"`
	ScopeSection string `json:"scope_section,omitempty"`
}

// Well-known fact keys produced by the category rules.
const (
	KeyClientName       = "client_name"
	KeyContactEmail     = "contact_email"
	KeyContactPhone     = "contact_phone"
	KeyCompanyName      = "company_name"
	KeyWebsiteType      = "website_type"
	KeyExistingWebsite  = "existing_website"
	KeyIndustry         = "industry"
	KeyBusinessDesc     = "business_description"
	KeyTargetAudience   = "target_audience"
	KeyPrimaryGoal      = "primary_goal"
	KeyCompetitors      = "competitors"
	KeyUniqueValue      = "unique_value"
	KeyProblem          = "problem_statement"
	KeySuccessMetrics   = "success_metrics"
	KeyTimeline         = "timeline"
	KeyBudgetRange      = "budget_range"
	KeyHosting          = "hosting_preference"
	KeyDomain           = "domain_status"
	KeyIntegrations     = "integrations"
	KeyCMS              = "cms_needs"
	KeyUserAccounts     = "user_accounts"
	KeyPayments         = "payment_processing"
	KeyCompliance       = "compliance_requirements"
	KeyTechPreferences  = "tech_preferences"
	KeySEO              = "seo_requirements"
	KeyAnalytics        = "analytics"
	KeyEmailMarketing   = "email_marketing"
	KeyPageCount        = "page_count"
	KeyContentOwner     = "content_responsibility"
	KeyMediaAssets      = "media_assets"
	KeyColors           = "color_preferences"
	KeyLogo             = "logo_status"
	KeyBrandGuidelines  = "brand_guidelines"
	KeyTypography       = "typography"
	KeyDesignStyle      = "design_style"
	KeyInspiration      = "inspiration_sites"
	KeyDesignDislikes   = "design_dislikes"
	KeySelectedFeatures = "selected_features"
	KeyExtraFeatures    = "additional_features"
)

// FallbackPrefix marks facts synthesized for answers no rule understood.
const FallbackPrefix = "answer_"
