// Package scope synthesizes the fourteen-section scope document from an
// intelligence record and validates it.
package scope

import (
	"time"

	"github.com/ziadkadry99/scopedoc/internal/features"
)

// Complexity levels.
const (
	ComplexitySimple   = "simple"
	ComplexityStandard = "standard"
	ComplexityComplex  = "complex"
)

// Document is a generated scope document. It is never modified after
// Synthesize returns; regeneration produces a new one.
type Document struct {
	ConversationID    string            `json:"conversation_id"`
	Version           int               `json:"version,omitempty"`
	GeneratedAt       time.Time         `json:"generated_at"`
	ExecutiveSummary  ExecutiveSummary  `json:"executive_summary"`
	Classification    Classification    `json:"classification"`
	ClientInfo        ClientInfo        `json:"client_info"`
	BusinessContext   BusinessContext   `json:"business_context"`
	BrandAssets       BrandAssets       `json:"brand_assets"`
	ContentStrategy   ContentStrategy   `json:"content_strategy"`
	TechnicalSpecs    TechnicalSpecs    `json:"technical_specs"`
	MediaElements     MediaElements     `json:"media_elements"`
	DesignDirection   DesignDirection   `json:"design_direction"`
	FeaturesBreakdown FeaturesBreakdown `json:"features_breakdown"`
	SupportPlan       SupportPlan       `json:"support_plan"`
	Timeline          Timeline          `json:"timeline"`
	InvestmentSummary InvestmentSummary `json:"investment_summary"`
	Validation        Validation        `json:"validation"`
}

type ExecutiveSummary struct {
	ProjectName     string   `json:"project_name"`
	Overview        string   `json:"overview"`
	Objectives      []string `json:"objectives"`
	KeyDeliverables []string `json:"key_deliverables"`
}

// ScoreFactor is one contribution to the complexity score.
type ScoreFactor struct {
	Reason string `json:"reason"`
	Points int    `json:"points"`
}

type Classification struct {
	WebsiteType     string        `json:"website_type"`
	Complexity      string        `json:"complexity"`
	ComplexityScore int           `json:"complexity_score"`
	ScoreFactors    []ScoreFactor `json:"score_factors"`
	PackageTier     string        `json:"package_tier"`
	TierSource      string        `json:"tier_source"` // "budget" or "complexity"
}

type ClientInfo struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	Company         string `json:"company,omitempty"`
	Industry        string `json:"industry,omitempty"`
	ExistingWebsite string `json:"existing_website,omitempty"`
}

// Note is an answer no specific rule understood, kept for the reader.
type Note struct {
	Topic  string `json:"topic"`
	Answer string `json:"answer"`
}

type BusinessContext struct {
	CompanyOverview  string   `json:"company_overview"`
	TargetAudience   string   `json:"target_audience"`
	PrimaryGoal      string   `json:"primary_goal"`
	ProblemStatement string   `json:"problem_statement,omitempty"`
	Competitors      []string `json:"competitors,omitempty"`
	UniqueValue      string   `json:"unique_value,omitempty"`
	SuccessMetrics   []string `json:"success_metrics,omitempty"`
	AdditionalNotes  []Note   `json:"additional_notes,omitempty"`
}

type BrandAssets struct {
	HasLogo          bool     `json:"has_logo"`
	LogoStatus       string   `json:"logo_status"`
	BrandGuidelines  string   `json:"brand_guidelines"`
	ColorPreferences []string `json:"color_preferences,omitempty"`
	Typography       string   `json:"typography,omitempty"`
}

type ContentStrategy struct {
	ContentResponsibility string `json:"content_responsibility"`
	EstimatedPages        int    `json:"estimated_pages"`
	CMSRequired           bool   `json:"cms_required"`
	SEORequirements       string `json:"seo_requirements"`
}

type TechnicalSpecs struct {
	Hosting           string   `json:"hosting"`
	HostingTier       string   `json:"hosting_tier"`
	Domain            string   `json:"domain"`
	Integrations      []string `json:"integrations,omitempty"`
	UserAccounts      bool     `json:"user_accounts"`
	PaymentProcessing bool     `json:"payment_processing"`
	Compliance        []string `json:"compliance,omitempty"`
	TechPreferences   string   `json:"tech_preferences,omitempty"`
	Analytics         string   `json:"analytics"`
}

type MediaElements struct {
	Assets           string `json:"assets"`
	NeedsPhotography bool   `json:"needs_photography"`
	NeedsVideo       bool   `json:"needs_video"`
}

type DesignDirection struct {
	Style       string   `json:"style"`
	Inspiration []string `json:"inspiration,omitempty"`
	Dislikes    []string `json:"dislikes,omitempty"`
}

// FeatureLine is one selected feature with its price under the chosen tier.
type FeatureLine struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Pricing  string  `json:"pricing"` // included, addon or unpriced
	Price    float64 `json:"price"`
}

type FeaturesBreakdown struct {
	Selected            []FeatureLine                `json:"selected"`
	AdditionalRequests  []string                     `json:"additional_requests,omitempty"`
	Conflicts           []features.Conflict          `json:"conflicts,omitempty"`
	MissingDependencies []features.MissingDependency `json:"missing_dependencies,omitempty"`
	Recommended         []string                     `json:"recommended,omitempty"`
}

type SupportPlan struct {
	Plan             string `json:"plan"`
	MaintenanceHours int    `json:"maintenance_hours_per_month"`
	TrainingSessions int    `json:"training_sessions"`
	WarrantyDays     int    `json:"warranty_days"`
}

// Phase is one block of the delivery schedule.
type Phase struct {
	Name  string `json:"name"`
	Weeks int    `json:"weeks"`
}

type Timeline struct {
	Requested      string  `json:"requested"`
	RequestedWeeks int     `json:"requested_weeks,omitempty"`
	EstimatedWeeks int     `json:"estimated_weeks"`
	Phases         []Phase `json:"phases"`
	Feasible       bool    `json:"feasible"`
	Notes          string  `json:"notes,omitempty"`
}

// Milestone is one payment installment.
type Milestone struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
	Amount     float64 `json:"amount"`
}

type InvestmentSummary struct {
	Package         string                     `json:"package"`
	BasePrice       float64                    `json:"base_price"`
	AddonTotal      float64                    `json:"addon_total"`
	Discounts       []features.AppliedDiscount `json:"discounts,omitempty"`
	DiscountTotal   float64                    `json:"discount_total"`
	ProjectTotal    float64                    `json:"project_total"`
	HostingTier     string                     `json:"hosting_tier"`
	HostingMonthly  float64                    `json:"hosting_monthly"`
	HostingAnnual   float64                    `json:"hosting_annual"`
	FirstYearTotal  float64                    `json:"first_year_total"`
	PaymentSchedule []Milestone                `json:"payment_schedule"`
	StatedBudget    string                     `json:"stated_budget,omitempty"`
	BudgetMin       float64                    `json:"budget_min,omitempty"`
	BudgetMax       float64                    `json:"budget_max,omitempty"`
}

type Validation struct {
	Issues   []Issue `json:"issues"`
	Score    int     `json:"score"`
	Complete bool    `json:"complete"`
}
