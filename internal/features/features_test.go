package features

import (
	"reflect"
	"strings"
	"testing"
)

func mustCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	return c
}

func TestDefaultCatalogIsClean(t *testing.T) {
	c := mustCatalog(t)
	if issues := c.Issues(); len(issues) != 0 {
		t.Errorf("unexpected catalog issues: %+v", issues)
	}
	for _, f := range c.Features() {
		for _, d := range f.Dependencies {
			if !c.Has(d) || d == f.ID {
				t.Errorf("%s: bad dependency %q", f.ID, d)
			}
		}
	}
	for _, tier := range []string{TierStarter, TierProfessional, TierCustom} {
		if _, ok := c.Package(tier); !ok {
			t.Errorf("missing package %s", tier)
		}
	}
}

func TestByWebsiteType(t *testing.T) {
	c := mustCatalog(t)
	got := c.ByWebsiteType("ecommerce")
	ids := make(map[string]bool)
	for _, f := range got {
		ids[f.ID] = true
	}
	for _, want := range []string{"shopping_cart", "responsive_design", "product_catalog"} {
		if !ids[want] {
			t.Errorf("expected %s for ecommerce", want)
		}
	}
	if ids["forum"] {
		t.Error("forum should not be offered for ecommerce")
	}
}

func TestDetectConflictsIffBothPresent(t *testing.T) {
	c := mustCatalog(t)
	for _, cf := range c.Conflicts() {
		if got := c.DetectConflicts([]string{cf.FeatureA}); len(got) != 0 {
			t.Errorf("%s alone reported conflicts %+v", cf.FeatureA, got)
		}
		for _, sel := range [][]string{{cf.FeatureA, cf.FeatureB}, {cf.FeatureB, cf.FeatureA}} {
			got := c.DetectConflicts(sel)
			if len(got) != 1 || got[0] != cf {
				t.Errorf("DetectConflicts(%v) = %+v, want [%+v]", sel, got, cf)
			}
		}
	}
}

func TestDetectConflictsResolutions(t *testing.T) {
	c := mustCatalog(t)
	got := c.DetectConflicts([]string{"live_chat", "blog", "chatbot", "single_page_layout", "cms"})
	if len(got) != 2 {
		t.Fatalf("expected 2 conflicts, got %+v", got)
	}
	if got[0].Resolution != ResolutionChooseOne {
		t.Errorf("live_chat/chatbot resolution = %s", got[0].Resolution)
	}
	if got[1].Resolution != ResolutionMutuallyExclusive {
		t.Errorf("single_page_layout/blog resolution = %s", got[1].Resolution)
	}
}

func TestValidateDependencies(t *testing.T) {
	c := mustCatalog(t)
	report := c.ValidateDependencies([]string{"payment_processing", "subscriptions", "contact_form"})
	if report.Valid {
		t.Fatal("expected invalid selection")
	}
	want := []MissingDependency{
		{Feature: "payment_processing", MissingDeps: []string{"shopping_cart"}},
		{Feature: "subscriptions", MissingDeps: []string{"user_accounts"}},
	}
	if !reflect.DeepEqual(report.MissingDependencies, want) {
		t.Errorf("missing = %+v, want %+v", report.MissingDependencies, want)
	}

	ok := c.ValidateDependencies([]string{"contact_form"})
	if !ok.Valid || len(ok.MissingDependencies) != 0 {
		t.Errorf("expected valid report, got %+v", ok)
	}
}

func TestWithDependencies(t *testing.T) {
	c := mustCatalog(t)
	got := c.WithDependencies([]string{"subscriptions"})
	want := []string{"subscriptions", "payment_processing", "shopping_cart", "product_catalog", "user_accounts"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("WithDependencies = %v, want %v", got, want)
	}
	if r := c.ValidateDependencies(got); !r.Valid {
		t.Errorf("closure still missing deps: %+v", r)
	}
}

func TestEcommerceScenario(t *testing.T) {
	c := mustCatalog(t)
	selected := []string{
		"responsive_design", "product_catalog", "shopping_cart", "payment_processing",
		"user_accounts", "search", "contact_form",
	}
	if r := c.ValidateDependencies(selected); !r.Valid {
		t.Fatalf("expected no missing deps, got %+v", r.MissingDependencies)
	}
	if cf := c.DetectConflicts(selected); len(cf) != 0 {
		t.Errorf("unexpected conflicts %+v", cf)
	}

	q := c.CalculatePricing(selected, TierCustom)
	if q.Subtotal != 4500 {
		t.Errorf("custom subtotal = %v, want 4500", q.Subtotal)
	}
	if len(q.Discounts) != 1 || q.Discounts[0].BundleID != "commerce_essentials" || q.Discounts[0].Amount != 270 {
		t.Errorf("discounts = %+v", q.Discounts)
	}
	if q.Total != 4230 {
		t.Errorf("custom total = %v, want 4230", q.Total)
	}

	q = c.CalculatePricing(selected, TierProfessional)
	if q.Subtotal != 5500 || q.Total != 5130 {
		t.Errorf("professional subtotal/total = %v/%v, want 5500/5130", q.Subtotal, q.Total)
	}
}

func TestPricingSubtotalAndTierConsistency(t *testing.T) {
	c := mustCatalog(t)
	var all []string
	for _, f := range c.Features() {
		all = append(all, f.ID)
	}
	for _, tier := range []string{TierStarter, TierProfessional, TierCustom} {
		q := c.CalculatePricing(all, tier)

		sum := 0.0
		for _, li := range q.AddonFeatures {
			sum += li.Price
		}
		for _, li := range q.IncludedFeatures {
			if li.Price != 0 {
				t.Errorf("%s: included %s priced %v", tier, li.ID, li.Price)
			}
		}
		if round2(sum) != q.Subtotal {
			t.Errorf("%s: add-on sum %v != subtotal %v", tier, sum, q.Subtotal)
		}

		included := make(map[string]bool)
		for _, li := range q.IncludedFeatures {
			included[li.ID] = true
		}
		for _, f := range c.Features() {
			if included[f.ID] != f.Pricing.IncludedIn(tier) {
				t.Errorf("%s: %s included=%v, catalog says %v", tier, f.ID, included[f.ID], f.Pricing.IncludedIn(tier))
			}
		}
	}
}

func TestPricingDeterministic(t *testing.T) {
	c := mustCatalog(t)
	sel := []string{"blog", "cms", "search", "newsletter_signup", "email_marketing_integration", "analytics_dashboard"}
	a := c.CalculatePricing(sel, TierStarter)
	b := c.CalculatePricing(sel, TierStarter)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("pricing not deterministic:\n%+v\n%+v", a, b)
	}
	// Switching tier and back yields the original quote.
	c.CalculatePricing(sel, TierCustom)
	if again := c.CalculatePricing(sel, TierStarter); !reflect.DeepEqual(a, again) {
		t.Error("tier change leaked into later quote")
	}
}

func TestPricingUnknownAndUnpriced(t *testing.T) {
	c, err := ParseCatalog([]byte(`
features:
  - id: gallery
    name: Gallery
    pricing: {type: included, tiers: [custom]}
    website_types: [all]
  - id: widget
    name: Widget
    pricing: {type: addon, addon_price: 99.5}
    website_types: [all]
`))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	q := c.CalculatePricing([]string{"gallery", "widget", "nope", "widget"}, TierStarter)
	if !reflect.DeepEqual(q.Unpriced, []string{"gallery"}) {
		t.Errorf("unpriced = %v", q.Unpriced)
	}
	if !reflect.DeepEqual(q.Unknown, []string{"nope"}) {
		t.Errorf("unknown = %v", q.Unknown)
	}
	if q.Subtotal != 99.5 || len(q.AddonFeatures) != 1 {
		t.Errorf("quote = %+v", q)
	}
}

func TestCatalogIntegrityIssues(t *testing.T) {
	c, err := ParseCatalog([]byte(`
features:
  - id: a
    name: A
    pricing: {type: addon, addon_price: 10}
    website_types: [all]
    dependencies: [a, ghost, b]
    conflicts: [a]
  - id: b
    name: B
    pricing: {type: sometimes}
    website_types: [all]
conflicts:
  - {feature_a: a, feature_b: missing, reason: x, resolution: choose_one}
bundles:
  - {id: broken, name: Broken, features: [a, ghost], discount_percent: 10}
`))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	a, _ := c.Feature("a")
	if !reflect.DeepEqual(a.Dependencies, []string{"b"}) {
		t.Errorf("dependencies = %v, want [b]", a.Dependencies)
	}
	if len(a.Conflicts) != 0 || len(c.Conflicts()) != 0 {
		t.Errorf("self conflict not dropped: %v / %v", a.Conflicts, c.Conflicts())
	}
	if len(c.Bundles()) != 0 {
		t.Error("broken bundle kept")
	}
	if n := len(c.Issues()); n != 6 {
		t.Errorf("issues = %d, want 6: %+v", n, c.Issues())
	}
	// Pricing must not fail because of the bad entries.
	q := c.CalculatePricing([]string{"a", "b"}, TierStarter)
	if q.Subtotal != 10 {
		t.Errorf("subtotal = %v", q.Subtotal)
	}
}

func TestParseCatalogDuplicateID(t *testing.T) {
	_, err := ParseCatalog([]byte(`
features:
  - {id: a, name: A, pricing: {type: addon}, website_types: [all]}
  - {id: a, name: A2, pricing: {type: addon}, website_types: [all]}
`))
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("expected duplicate error, got %v", err)
	}
}

func TestRecommend(t *testing.T) {
	c := mustCatalog(t)
	got := c.Recommend("ecommerce", []string{"chatbot", "responsive_design"})
	if len(got) == 0 {
		t.Fatal("expected recommendations")
	}
	seenNonEssential := false
	for _, f := range got {
		if f.ID == "live_chat" {
			t.Error("live_chat conflicts with the selected chatbot")
		}
		if f.ID == "responsive_design" || f.ID == "chatbot" {
			t.Errorf("%s is already selected", f.ID)
		}
		if !f.HasTag("essential") {
			seenNonEssential = true
		} else if seenNonEssential {
			t.Errorf("essential %s listed after a non-essential feature", f.ID)
		}
	}
}
