// Package features holds the catalog of sellable website features and the
// pure functions that recommend, validate and price a selection.
package features

// PricingType says how a feature is charged.
type PricingType string

const (
	PricingIncluded PricingType = "included"
	PricingAddon    PricingType = "addon"
)

// Package tiers.
const (
	TierStarter      = "starter"
	TierProfessional = "professional"
	TierCustom       = "custom"
)

// AllWebsiteTypes is the wildcard entry in Feature.WebsiteTypes.
const AllWebsiteTypes = "all"

// Pricing describes when a feature is included and what it costs otherwise.
type Pricing struct {
	Type       PricingType `yaml:"type" json:"type"`
	Tiers      []string    `yaml:"tiers,omitempty" json:"tiers,omitempty"`
	AddonPrice float64     `yaml:"addon_price,omitempty" json:"addon_price,omitempty"`
}

// IncludedIn reports whether the feature is part of tier at no charge.
func (p Pricing) IncludedIn(tier string) bool {
	if p.Type != PricingIncluded {
		return false
	}
	for _, t := range p.Tiers {
		if t == tier {
			return true
		}
	}
	return false
}

// Feature is one sellable capability.
type Feature struct {
	ID           string   `yaml:"id" json:"id"`
	Name         string   `yaml:"name" json:"name"`
	Description  string   `yaml:"description" json:"description"`
	Category     string   `yaml:"category" json:"category"`
	Pricing      Pricing  `yaml:"pricing" json:"pricing"`
	WebsiteTypes []string `yaml:"website_types" json:"website_types"`
	Dependencies []string `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	Conflicts    []string `yaml:"conflicts,omitempty" json:"conflicts,omitempty"`
	Tags         []string `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// HasTag reports whether f carries tag.
func (f Feature) HasTag(tag string) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AppliesTo reports whether f is offered for websiteType.
func (f Feature) AppliesTo(websiteType string) bool {
	for _, t := range f.WebsiteTypes {
		if t == AllWebsiteTypes || t == websiteType {
			return true
		}
	}
	return false
}

// Resolution says how a conflict should be resolved.
type Resolution string

const (
	ResolutionChooseOne         Resolution = "choose_one"
	ResolutionUpgradeRequired   Resolution = "upgrade_required"
	ResolutionMutuallyExclusive Resolution = "mutually_exclusive"
)

// Conflict is a pair of features that should not be selected together.
type Conflict struct {
	FeatureA   string     `yaml:"feature_a" json:"feature_a"`
	FeatureB   string     `yaml:"feature_b" json:"feature_b"`
	Reason     string     `yaml:"reason" json:"reason"`
	Resolution Resolution `yaml:"resolution" json:"resolution"`
}

// Bundle discounts a set of add-ons bought together.
type Bundle struct {
	ID              string   `yaml:"id" json:"id"`
	Name            string   `yaml:"name" json:"name"`
	Features        []string `yaml:"features" json:"features"`
	DiscountPercent float64  `yaml:"discount_percent" json:"discount_percent"`
}

// Package is a priced tier.
type Package struct {
	Tier        string  `yaml:"tier" json:"tier"`
	Name        string  `yaml:"name" json:"name"`
	BasePrice   float64 `yaml:"base_price" json:"base_price"`
	Description string  `yaml:"description" json:"description"`
}

// HostingTier is a monthly hosting plan.
type HostingTier struct {
	ID      string  `yaml:"id" json:"id"`
	Name    string  `yaml:"name" json:"name"`
	Monthly float64 `yaml:"monthly" json:"monthly"`
}

// Issue records a catalog authoring defect that was excluded at load time.
type Issue struct {
	FeatureID string `json:"feature_id,omitempty"`
	Message   string `json:"message"`
}

// MissingDependency lists the prerequisites one selected feature lacks.
type MissingDependency struct {
	Feature     string   `json:"feature"`
	MissingDeps []string `json:"missing_deps"`
}

// DependencyReport is the result of ValidateDependencies.
type DependencyReport struct {
	Valid               bool                `json:"valid"`
	MissingDependencies []MissingDependency `json:"missing_dependencies"`
}

// LineItem is one priced feature in a quote.
type LineItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// AppliedDiscount is a bundle discount applied to a quote.
type AppliedDiscount struct {
	BundleID string  `json:"bundle_id"`
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
}

// Quote is the result of CalculatePricing.
type Quote struct {
	Tier             string            `json:"tier"`
	Subtotal         float64           `json:"subtotal"`
	Discounts        []AppliedDiscount `json:"discounts,omitempty"`
	DiscountTotal    float64           `json:"discount_total"`
	Total            float64           `json:"total"`
	IncludedFeatures []LineItem        `json:"included_features"`
	AddonFeatures    []LineItem        `json:"addon_features"`
	Unpriced         []string          `json:"unpriced,omitempty"`
	Unknown          []string          `json:"unknown,omitempty"`
}
