package scope

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/ziadkadry99/scopedoc/internal/facts"
	"github.com/ziadkadry99/scopedoc/internal/features"
	"github.com/ziadkadry99/scopedoc/internal/intelligence"
)

func newSynth(t *testing.T) *Synthesizer {
	t.Helper()
	c, err := features.DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	at := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	return NewSynthesizer(c).WithClock(func() time.Time { return at })
}

func ecommerceRecord() *intelligence.Record {
	r := intelligence.New()
	r.SetFoundation(intelligence.Foundation{
		Name:        "Jane Doe",
		Email:       "jane@acme.example",
		Company:     "Acme Bakery",
		WebsiteType: "ecommerce",
	})
	r.SelectFeatures([]string{
		"responsive_design", "product_catalog", "shopping_cart", "payment_processing",
		"user_accounts", "search", "contact_form",
	})
	return r
}

func TestSynthesizeMissingFoundation(t *testing.T) {
	s := newSynth(t)
	r := intelligence.New()
	r.SetFoundation(intelligence.Foundation{Name: "Jane"})

	doc, err := s.Synthesize(r, "conv-1")
	if doc != nil {
		t.Fatal("expected no document")
	}
	var mf *MissingFieldsError
	if !errors.As(err, &mf) {
		t.Fatalf("expected MissingFieldsError, got %v", err)
	}
	if !reflect.DeepEqual(mf.Fields, []string{"email", "website type"}) {
		t.Errorf("fields = %v", mf.Fields)
	}
	if !errors.Is(err, ErrMissingFields) {
		t.Error("expected errors.Is(err, ErrMissingFields)")
	}
}

func TestEcommerceScenarioClassification(t *testing.T) {
	s := newSynth(t)
	doc, err := s.Synthesize(ecommerceRecord(), "conv-ecom")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	c := doc.Classification
	if c.ComplexityScore < 7 {
		t.Errorf("score = %d, want >= 7 (%+v)", c.ComplexityScore, c.ScoreFactors)
	}
	if c.Complexity != ComplexityComplex {
		t.Errorf("complexity = %s", c.Complexity)
	}
	if c.PackageTier != features.TierCustom || c.TierSource != "complexity" {
		t.Errorf("tier = %s from %s", c.PackageTier, c.TierSource)
	}
	if len(doc.FeaturesBreakdown.MissingDependencies) != 0 {
		t.Errorf("unexpected missing deps: %+v", doc.FeaturesBreakdown.MissingDependencies)
	}

	inv := doc.InvestmentSummary
	// custom base 10000 + add-ons 4500 - commerce bundle 270
	if inv.ProjectTotal != 14230 {
		t.Errorf("project total = %v, want 14230", inv.ProjectTotal)
	}
	if inv.HostingTier != "premium" || inv.HostingAnnual != 1200 {
		t.Errorf("hosting = %s / %v", inv.HostingTier, inv.HostingAnnual)
	}
	if inv.FirstYearTotal != 15430 {
		t.Errorf("first year = %v", inv.FirstYearTotal)
	}
	if !doc.Validation.Complete {
		t.Errorf("expected complete document, issues: %+v", doc.Validation.Issues)
	}
}

func TestBudgetOverridesComplexityTier(t *testing.T) {
	s := newSynth(t)
	r := ecommerceRecord()
	r.ApplyFacts([]facts.Fact{{Key: facts.KeyBudgetRange, Value: "$5,000 - $10,000"}})
	doc, err := s.Synthesize(r, "conv-b")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if doc.Classification.PackageTier != features.TierProfessional || doc.Classification.TierSource != "budget" {
		t.Errorf("tier = %s from %s", doc.Classification.PackageTier, doc.Classification.TierSource)
	}
	if doc.Classification.Complexity != ComplexityComplex {
		t.Error("budget must not change the complexity level")
	}
	var overBudget bool
	for _, is := range doc.Validation.Issues {
		if is.Field == "project_total" && is.Severity == SeverityWarning {
			overBudget = true
		}
	}
	if !overBudget {
		t.Errorf("expected an over-budget warning, got %+v", doc.Validation.Issues)
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	s := newSynth(t)
	r := ecommerceRecord()
	r.ApplyFacts([]facts.Fact{
		{Key: facts.KeyTargetAudience, Value: "Local families"},
		{Key: facts.KeyIntegrations, Value: "Stripe, Mailchimp, QuickBooks"},
		{Key: "answer_how_did_you_hear_about_us", Value: "A friend"},
		{Key: "answer_anything_else_", Value: "Dark mode"},
		{Key: facts.KeyColors, Value: "navy, cream"},
	})

	a, err := s.Synthesize(r, "conv-d")
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Synthesize(r.Clone(), "conv-d")
	if err != nil {
		t.Fatal(err)
	}
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	if string(ja) != string(jb) {
		t.Errorf("documents differ:\n%s\n%s", ja, jb)
	}

	// A different clock only changes GeneratedAt.
	later := s.WithClock(func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) })
	c, _ := later.Synthesize(r, "conv-d")
	c.GeneratedAt = a.GeneratedAt
	jc, _ := json.Marshal(c)
	if string(ja) != string(jc) {
		t.Error("documents differ beyond GeneratedAt")
	}

	notes := a.BusinessContext.AdditionalNotes
	if len(notes) != 2 || notes[0].Topic != "anything else" || notes[1].Topic != "how did you hear about us" {
		t.Errorf("notes = %+v", notes)
	}
}

func TestSynthesizeDoesNotMutateRecord(t *testing.T) {
	s := newSynth(t)
	r := ecommerceRecord()
	before := r.Clone()
	if _, err := s.Synthesize(r, "conv-m"); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(before, r) {
		t.Error("record was modified")
	}
}

func TestPaymentScheduleSumsToHundred(t *testing.T) {
	for _, total := range []float64{0, 1, 99.99, 2500, 14230, 3333.33, 10001.01} {
		plan := paymentMilestones(total)
		pct, amt := 0.0, 0.0
		for _, m := range plan {
			pct += m.Percentage
			amt += m.Amount
		}
		if math.Abs(pct-100) > 0.1 {
			t.Errorf("total %v: percentages sum to %v", total, pct)
		}
		if math.Abs(amt-total) > 0.005 {
			t.Errorf("total %v: amounts sum to %v", total, amt)
		}
	}
}

func TestScoreBuckets(t *testing.T) {
	tests := []struct {
		name     string
		typ      string
		features int
		sig      Signals
		want     int
		level    string
	}{
		{"small portfolio", "portfolio", 2, Signals{}, 1, ComplexitySimple},
		{"business with cms", "business", 4, Signals{CMS: true}, 4, ComplexityStandard},
		{"unknown type", "wiki", 0, Signals{}, 2, ComplexitySimple},
		{"integrations threshold", "blog", 0, Signals{Integrations: []string{"a", "b"}}, 1, ComplexitySimple},
		{"everything", "web_app", 9, Signals{
			UserAccounts: true, CMS: true, PaymentProcessing: true,
			Integrations: []string{"a", "b", "c"}, Compliance: []string{"GDPR"},
		}, 10, ComplexityComplex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Score(tt.typ, tt.features, tt.sig)
			if got != tt.want {
				t.Errorf("score = %d, want %d", got, tt.want)
			}
			if lvl := ComplexityFor(got); lvl != tt.level {
				t.Errorf("level = %s, want %s", lvl, tt.level)
			}
		})
	}
}

func TestDeriveSignalsIgnoresHedges(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"Yes, we update it weekly", true},
		{"WordPress", true},
		{"not sure", false},
		{"maybe later", false},
		{"No", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			r := intelligence.New()
			r.ApplyFacts([]facts.Fact{
				{Key: facts.KeyCMS, Value: tt.answer},
				{Key: facts.KeyUserAccounts, Value: tt.answer},
				{Key: facts.KeyPayments, Value: tt.answer},
			})
			sig := DeriveSignals(r, nil)
			if sig.CMS != tt.want || sig.UserAccounts != tt.want || sig.PaymentProcessing != tt.want {
				t.Errorf("signals = %+v, want all %v", sig, tt.want)
			}
		})
	}
}

func TestTierForBudget(t *testing.T) {
	tests := map[float64]string{
		3000:  features.TierStarter,
		5000:  features.TierStarter,
		8000:  features.TierProfessional,
		12000: features.TierProfessional,
		20000: features.TierCustom,
	}
	for max, want := range tests {
		if got := TierForBudget(max); got != want {
			t.Errorf("TierForBudget(%v) = %s, want %s", max, got, want)
		}
	}
}

func TestFeaturesFromFreeText(t *testing.T) {
	s := newSynth(t)
	r := intelligence.New()
	r.SetFoundation(intelligence.Foundation{Name: "Sam", Email: "sam@example.com", WebsiteType: "blog"})
	r.ApplyFacts([]facts.Fact{
		{Key: facts.KeySelectedFeatures, Value: "Blog, contact form and a recipe planner"},
		{Key: facts.KeyExtraFeatures, Value: "no"},
	})
	doc, err := s.Synthesize(r, "conv-f")
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, f := range doc.FeaturesBreakdown.Selected {
		ids = append(ids, f.ID)
	}
	if !reflect.DeepEqual(ids, []string{"blog", "contact_form"}) {
		t.Errorf("selected = %v", ids)
	}
	if !reflect.DeepEqual(doc.FeaturesBreakdown.AdditionalRequests, []string{"a recipe planner"}) {
		t.Errorf("additional = %v", doc.FeaturesBreakdown.AdditionalRequests)
	}
	if doc.Classification.Complexity != ComplexitySimple {
		t.Errorf("complexity = %s", doc.Classification.Complexity)
	}
}

func TestNarrativeFillers(t *testing.T) {
	s := newSynth(t)
	r := intelligence.New()
	r.SetFoundation(intelligence.Foundation{Name: "Sam", Email: "sam@example.com", WebsiteType: "landing"})
	doc, err := s.Synthesize(r, "conv-n")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(doc.ExecutiveSummary.Overview, "a general audience") {
		t.Errorf("overview missing audience filler: %q", doc.ExecutiveSummary.Overview)
	}
	if doc.BusinessContext.CompanyOverview == "" || doc.DesignDirection.Style == "" {
		t.Error("narrative fields left empty")
	}
	if doc.ExecutiveSummary.ProjectName != "Sam Landing Website" {
		t.Errorf("project name = %q", doc.ExecutiveSummary.ProjectName)
	}
}

func TestTimelineFeasibility(t *testing.T) {
	tl := estimateTimeline("2 weeks", ComplexityStandard, 0)
	if tl.Feasible || tl.EstimatedWeeks != 8 || tl.Notes == "" {
		t.Errorf("timeline = %+v", tl)
	}
	tl = estimateTimeline("3-6 months", ComplexityComplex, 6)
	if !tl.Feasible || tl.EstimatedWeeks != 16 {
		t.Errorf("timeline = %+v", tl)
	}
}

func TestValidateCriticalBlocksCompleteness(t *testing.T) {
	s := newSynth(t)
	doc, err := s.Synthesize(ecommerceRecord(), "conv-v")
	if err != nil {
		t.Fatal(err)
	}
	bad := *doc
	bad.InvestmentSummary.PaymentSchedule = []Milestone{
		{Name: "Kickoff", Percentage: 50, Amount: doc.InvestmentSummary.ProjectTotal / 2},
		{Name: "Launch", Percentage: 40, Amount: doc.InvestmentSummary.ProjectTotal / 2},
	}
	v := Validate(&bad)
	if v.Complete || v.Score != 0 {
		t.Errorf("expected incomplete with score 0, got %+v", v)
	}
	var found bool
	for _, is := range v.Issues {
		if is.Severity == SeverityCritical && is.Section == "investment_summary" && is.Field == "payment_schedule" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing critical payment issue: %+v", v.Issues)
	}

	// Errors alone lower the score but keep the document complete.
	withConflict := *doc
	withConflict.FeaturesBreakdown.Conflicts = []features.Conflict{{FeatureA: "live_chat", FeatureB: "chatbot", Resolution: features.ResolutionChooseOne}}
	v = Validate(&withConflict)
	if !v.Complete || v.Score != 85 {
		t.Errorf("expected complete with score 85, got %+v", v)
	}
}

func TestClassifyMatchesSynthesize(t *testing.T) {
	s := newSynth(t)
	r := ecommerceRecord()
	doc, err := s.Synthesize(r, "conv-c")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	got, ids := s.Classify(r)
	if !reflect.DeepEqual(got, doc.Classification) {
		t.Errorf("Classify = %+v, want %+v", got, doc.Classification)
	}
	if len(ids) != 7 {
		t.Errorf("ids = %v", ids)
	}

	partial := intelligence.New()
	partial.SetFoundation(intelligence.Foundation{WebsiteType: "portfolio"})
	if c, _ := s.Classify(partial); c.Complexity != ComplexitySimple {
		t.Errorf("portfolio without features = %s, want simple", c.Complexity)
	}
}
