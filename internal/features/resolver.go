package features

import "math"

// dedupe drops repeated ids while keeping first-seen order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func toSet(ids []string) map[string]bool {
	s := make(map[string]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ByWebsiteType returns the features offered for websiteType, including
// those marked "all", in catalog order.
func (c *Catalog) ByWebsiteType(websiteType string) []Feature {
	var out []Feature
	for _, f := range c.features {
		if f.AppliesTo(websiteType) {
			out = append(out, f)
		}
	}
	return out
}

// DetectConflicts returns every conflict whose two features are both in
// selected.
func (c *Catalog) DetectConflicts(selected []string) []Conflict {
	set := toSet(selected)
	var out []Conflict
	for _, cf := range c.conflicts {
		if set[cf.FeatureA] && set[cf.FeatureB] {
			out = append(out, cf)
		}
	}
	return out
}

// ValidateDependencies reports, per selected feature, which of its
// dependencies are not selected. Entries follow selection order so a caller
// can offer one remediation per feature.
func (c *Catalog) ValidateDependencies(selected []string) DependencyReport {
	set := toSet(selected)
	report := DependencyReport{Valid: true, MissingDependencies: []MissingDependency{}}
	for _, id := range dedupe(selected) {
		f, ok := c.Feature(id)
		if !ok {
			continue
		}
		var missing []string
		for _, dep := range f.Dependencies {
			if !set[dep] {
				missing = append(missing, dep)
			}
		}
		if len(missing) > 0 {
			report.Valid = false
			report.MissingDependencies = append(report.MissingDependencies,
				MissingDependency{Feature: id, MissingDeps: missing})
		}
	}
	return report
}

// WithDependencies returns selected plus every transitive prerequisite.
// Selected ids keep their order; added prerequisites follow the feature that
// needed them.
func (c *Catalog) WithDependencies(selected []string) []string {
	seen := make(map[string]bool)
	var out []string
	var visit func(id string)
	visit = func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
		if f, ok := c.Feature(id); ok {
			for _, dep := range f.Dependencies {
				visit(dep)
			}
		}
	}
	for _, id := range selected {
		visit(id)
	}
	return out
}

// Recommend suggests features for websiteType that are not selected and do
// not conflict with the selection. Essential features come first, then
// catalog order.
func (c *Catalog) Recommend(websiteType string, selected []string) []Feature {
	set := toSet(selected)
	var essential, rest []Feature
	for _, f := range c.ByWebsiteType(websiteType) {
		if set[f.ID] || c.conflictsWith(f.ID, set) {
			continue
		}
		if f.HasTag("essential") {
			essential = append(essential, f)
		} else {
			rest = append(rest, f)
		}
	}
	return append(essential, rest...)
}

func (c *Catalog) conflictsWith(id string, set map[string]bool) bool {
	for other := range set {
		if _, ok := c.pairs[pairKey(id, other)]; ok {
			return true
		}
	}
	return false
}

// CalculatePricing prices selected under tier. A feature is included only
// when its pricing type is included and tier is one of its tiers. Add-on
// features contribute their add-on price. An included-type feature selected
// outside its tiers is charged its add-on price when it has one; otherwise
// it is unpriced and left out of both buckets. Bundle discounts apply to the
// add-on prices of fully selected bundles. Nothing is cached, so a tier
// change always recomputes from the catalog.
func (c *Catalog) CalculatePricing(selected []string, tier string) Quote {
	q := Quote{
		Tier:             tier,
		IncludedFeatures: []LineItem{},
		AddonFeatures:    []LineItem{},
	}
	addonPrice := make(map[string]float64)
	for _, id := range dedupe(selected) {
		f, ok := c.Feature(id)
		if !ok {
			q.Unknown = append(q.Unknown, id)
			continue
		}
		switch {
		case f.Pricing.IncludedIn(tier):
			q.IncludedFeatures = append(q.IncludedFeatures, LineItem{ID: f.ID, Name: f.Name})
		case f.Pricing.Type == PricingAddon,
			f.Pricing.Type == PricingIncluded && f.Pricing.AddonPrice > 0:
			q.AddonFeatures = append(q.AddonFeatures, LineItem{ID: f.ID, Name: f.Name, Price: f.Pricing.AddonPrice})
			addonPrice[f.ID] = f.Pricing.AddonPrice
			q.Subtotal += f.Pricing.AddonPrice
		default:
			q.Unpriced = append(q.Unpriced, f.ID)
		}
	}

	set := toSet(selected)
	for _, b := range c.bundles {
		complete := true
		base := 0.0
		for _, id := range b.Features {
			if !set[id] {
				complete = false
				break
			}
			base += addonPrice[id]
		}
		if !complete || base == 0 {
			continue
		}
		amt := round2(base * b.DiscountPercent / 100)
		q.Discounts = append(q.Discounts, AppliedDiscount{BundleID: b.ID, Name: b.Name, Amount: amt})
		q.DiscountTotal += amt
	}

	q.Subtotal = round2(q.Subtotal)
	q.DiscountTotal = round2(q.DiscountTotal)
	q.Total = round2(q.Subtotal - q.DiscountTotal)
	return q
}
