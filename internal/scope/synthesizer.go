package scope

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ziadkadry99/scopedoc/internal/facts"
	"github.com/ziadkadry99/scopedoc/internal/features"
	"github.com/ziadkadry99/scopedoc/internal/intelligence"
)

// Synthesizer builds scope documents. It holds only the immutable catalog
// and a clock, so concurrent calls are safe.
type Synthesizer struct {
	catalog *features.Catalog
	now     func() time.Time
}

// NewSynthesizer returns a synthesizer pricing against catalog.
func NewSynthesizer(catalog *features.Catalog) *Synthesizer {
	return &Synthesizer{catalog: catalog, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock returns a copy of s using now for GeneratedAt.
func (s *Synthesizer) WithClock(now func() time.Time) *Synthesizer {
	c := *s
	c.now = now
	return &c
}

// Synthesize maps rec onto a complete document. It fails with a
// *MissingFieldsError when the client's name, email or website type is
// unknown. rec is not modified. Apart from GeneratedAt, the output depends
// only on rec and conversationID.
func (s *Synthesizer) Synthesize(rec *intelligence.Record, conversationID string) (*Document, error) {
	if missing := rec.MissingFoundation(); len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}
	r := rec.Clone()

	websiteType := r.WebsiteType()
	ids, extra := s.ResolveFeatureIDs(r)
	sig := DeriveSignals(r, ids)
	class := classify(r, websiteType, ids, sig)
	complexity, tier := class.Complexity, class.PackageTier
	budgetMin, budgetMax, _ := facts.ParseBudgetRange(r.Get(facts.KeyBudgetRange))

	quote := s.catalog.CalculatePricing(ids, tier)
	hosting := s.hostingTier(r.Get(facts.KeyHosting), complexity)
	support := supportPlanFor(tier)
	timeline := estimateTimeline(r.Get(facts.KeyTimeline), complexity, len(quote.AddonFeatures))

	doc := &Document{
		ConversationID: conversationID,
		GeneratedAt:    s.now(),
		Classification: class,
		ClientInfo: ClientInfo{
			Name:            r.Name(),
			Email:           r.Email(),
			Phone:           r.Phone(),
			Company:         r.Company(),
			Industry:        r.Get(facts.KeyIndustry),
			ExistingWebsite: r.Get(facts.KeyExistingWebsite),
		},
		BusinessContext:   businessContext(r),
		BrandAssets:       brandAssets(r),
		ContentStrategy:   contentStrategy(r, websiteType, sig, ids),
		TechnicalSpecs:    technicalSpecs(r, sig, ids, hosting),
		MediaElements:     mediaElements(r),
		DesignDirection:   designDirection(r),
		FeaturesBreakdown: s.featuresBreakdown(websiteType, ids, extra, quote),
		SupportPlan:       support,
		Timeline:          timeline,
	}
	doc.InvestmentSummary = s.investment(tier, quote, hosting, r.Get(facts.KeyBudgetRange), budgetMin, budgetMax)
	doc.ExecutiveSummary = executiveSummary(r, doc, sig, len(ids))
	doc.Validation = Validate(doc)
	return doc, nil
}

// Classify returns the classification Synthesize would produce for rec
// together with the resolved feature ids. It does not require the
// foundation fields.
func (s *Synthesizer) Classify(rec *intelligence.Record) (Classification, []string) {
	r := rec.Clone()
	ids, _ := s.ResolveFeatureIDs(r)
	return classify(r, r.WebsiteType(), ids, DeriveSignals(r, ids)), ids
}

func classify(r *intelligence.Record, websiteType string, ids []string, sig Signals) Classification {
	score, factors := Score(websiteType, len(ids), sig)
	complexity := ComplexityFor(score)
	c := Classification{
		WebsiteType:     websiteType,
		Complexity:      complexity,
		ComplexityScore: score,
		ScoreFactors:    factors,
		PackageTier:     TierForComplexity(complexity),
		TierSource:      "complexity",
	}
	if _, hi, ok := facts.ParseBudgetRange(r.Get(facts.KeyBudgetRange)); ok {
		c.PackageTier, c.TierSource = TierForBudget(hi), "budget"
	}
	return c
}

// ResolveFeatureIDs returns the selected catalog ids and any requests that
// do not match a catalog feature. An explicit selection wins; otherwise the
// free-text selected_features answer is matched against ids and names.
func (s *Synthesizer) ResolveFeatureIDs(r *intelligence.Record) (ids []string, extra []string) {
	if len(r.SelectedFeatures) > 0 {
		ids = append(ids, r.SelectedFeatures...)
	} else {
		seen := make(map[string]bool)
		for _, item := range intelligence.SplitList(r.Get(facts.KeySelectedFeatures)) {
			if id, ok := s.matchFeature(item); ok {
				if !seen[id] {
					seen[id] = true
					ids = append(ids, id)
				}
				continue
			}
			extra = append(extra, item)
		}
	}
	if v := r.Get(facts.KeyExtraFeatures); stated(v) {
		extra = append(extra, intelligence.SplitList(v)...)
	}
	return ids, extra
}

func (s *Synthesizer) matchFeature(text string) (string, bool) {
	slug := facts.Slugify(text)
	if s.catalog.Has(slug) {
		return slug, true
	}
	for _, f := range s.catalog.Features() {
		if strings.EqualFold(f.Name, strings.TrimSpace(text)) || facts.Slugify(f.Name) == slug {
			return f.ID, true
		}
	}
	return "", false
}

func (s *Synthesizer) hostingTier(answer, complexity string) features.HostingTier {
	lower := strings.ToLower(answer)
	for _, h := range s.catalog.HostingTiers() {
		if strings.Contains(lower, h.ID) {
			return h
		}
	}
	id := "standard"
	switch complexity {
	case ComplexitySimple:
		id = "basic"
	case ComplexityComplex:
		id = "premium"
	}
	h, ok := s.catalog.HostingTier(id)
	if !ok {
		return features.HostingTier{ID: id, Name: id}
	}
	return h
}

func orFiller(v, filler string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return filler
}

func clientLabel(r *intelligence.Record) string {
	return orFiller(r.Company(), r.Name())
}

// websiteTypeLabel turns a website type id into reading text.
func websiteTypeLabel(t string) string {
	switch t {
	case "ecommerce":
		return "e-commerce"
	case "web_app":
		return "web application"
	case "nonprofit":
		return "non-profit"
	}
	return strings.ReplaceAll(t, "_", " ")
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func executiveSummary(r *intelligence.Record, doc *Document, sig Signals, featureCount int) ExecutiveSummary {
	label := clientLabel(r)
	typeLabel := websiteTypeLabel(doc.Classification.WebsiteType)
	audience := orFiller(r.Get(facts.KeyTargetAudience), "a general audience")
	goal := orFiller(r.Get(facts.KeyPrimaryGoal), "establish a professional online presence")

	pkg := titleCase(doc.Classification.PackageTier)
	overview := fmt.Sprintf(
		"%s is planning a %s website for %s. Primary goal: %s. The project is classified as %s "+
			"and fits the %s package, with %d selected features and an estimated delivery of %d weeks.",
		label, typeLabel, audience, goal, doc.Classification.Complexity, pkg, featureCount, doc.Timeline.EstimatedWeeks)

	objectives := []string{goal}
	if sig.PaymentProcessing {
		objectives = append(objectives, "Accept payments online")
	}
	if sig.UserAccounts {
		objectives = append(objectives, "Give customers their own accounts")
	}
	if sig.CMS {
		objectives = append(objectives, "Let the team update content without a developer")
	}
	for _, m := range doc.BusinessContext.SuccessMetrics {
		objectives = append(objectives, "Measure success by "+m)
	}

	deliverables := []string{
		fmt.Sprintf("Responsive %s website", typeLabel),
		fmt.Sprintf("%d configured features", featureCount),
	}
	if sig.CMS {
		deliverables = append(deliverables, "Content management training")
	}
	deliverables = append(deliverables,
		fmt.Sprintf("Hosting setup (%s)", doc.InvestmentSummary.HostingTier),
		fmt.Sprintf("Launch support with a %d-day warranty", doc.SupportPlan.WarrantyDays),
	)

	return ExecutiveSummary{
		ProjectName:     fmt.Sprintf("%s %s Website", label, titleCase(typeLabel)),
		Overview:        overview,
		Objectives:      objectives,
		KeyDeliverables: deliverables,
	}
}

func businessContext(r *intelligence.Record) BusinessContext {
	label := clientLabel(r)
	overview := r.Get(facts.KeyBusinessDesc)
	if overview == "" {
		if ind := r.Get(facts.KeyIndustry); ind != "" {
			overview = fmt.Sprintf("%s operates in the %s industry.", label, ind)
		} else {
			overview = fmt.Sprintf("%s is preparing to launch a new web presence.", label)
		}
	}
	bc := BusinessContext{
		CompanyOverview:  overview,
		TargetAudience:   orFiller(r.Get(facts.KeyTargetAudience), "General audience (to be refined during discovery)"),
		PrimaryGoal:      orFiller(r.Get(facts.KeyPrimaryGoal), "Establish a professional online presence"),
		ProblemStatement: r.Get(facts.KeyProblem),
		Competitors:      listFact(r.Get(facts.KeyCompetitors)),
		UniqueValue:      r.Get(facts.KeyUniqueValue),
		SuccessMetrics:   listFact(r.Get(facts.KeySuccessMetrics)),
	}
	for _, k := range r.Keys() {
		if facts.IsFallback(k) {
			topic := strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(k, facts.FallbackPrefix), "_", " "))
			bc.AdditionalNotes = append(bc.AdditionalNotes, Note{Topic: topic, Answer: r.Get(k)})
		}
	}
	return bc
}

func brandAssets(r *intelligence.Record) BrandAssets {
	logo := r.Get(facts.KeyLogo)
	lower := strings.ToLower(logo)
	hasLogo := stated(logo) && !strings.Contains(lower, "need") &&
		!strings.Contains(lower, "don't") && !strings.Contains(lower, "do not")
	return BrandAssets{
		HasLogo:          hasLogo,
		LogoStatus:       orFiller(logo, "Not discussed"),
		BrandGuidelines:  orFiller(r.Get(facts.KeyBrandGuidelines), "No formal brand guidelines provided"),
		ColorPreferences: listFact(r.Get(facts.KeyColors)),
		Typography:       r.Get(facts.KeyTypography),
	}
}

var defaultPages = map[string]int{
	"landing":    1,
	"portfolio":  5,
	"blog":       6,
	"booking":    6,
	"business":   8,
	"nonprofit":  8,
	"membership": 10,
	"community":  10,
	"web_app":    10,
	"ecommerce":  12,
}

var intRe = regexp.MustCompile(`\d+`)

// estimatePages uses the largest number in the answer, or a default for the
// website type.
func estimatePages(answer, websiteType string) int {
	best := 0
	for _, m := range intRe.FindAllString(answer, -1) {
		if n, err := strconv.Atoi(m); err == nil && n > best {
			best = n
		}
	}
	if best > 0 {
		return best
	}
	if n, ok := defaultPages[websiteType]; ok {
		return n
	}
	return 6
}

func contentStrategy(r *intelligence.Record, websiteType string, sig Signals, ids []string) ContentStrategy {
	seo := r.Get(facts.KeySEO)
	if seo == "" {
		seo = "Not discussed"
		if selected(ids, "basic_seo") {
			seo = "Basic on-page SEO"
		}
	}
	return ContentStrategy{
		ContentResponsibility: orFiller(r.Get(facts.KeyContentOwner), "To be confirmed"),
		EstimatedPages:        estimatePages(r.Get(facts.KeyPageCount), websiteType),
		CMSRequired:           sig.CMS,
		SEORequirements:       seo,
	}
}

func technicalSpecs(r *intelligence.Record, sig Signals, ids []string, hosting features.HostingTier) TechnicalSpecs {
	analytics := r.Get(facts.KeyAnalytics)
	if analytics == "" {
		analytics = "Not discussed"
		switch {
		case selected(ids, "analytics_dashboard"):
			analytics = "Analytics dashboard"
		case selected(ids, "basic_analytics"):
			analytics = "Basic analytics"
		}
	}
	return TechnicalSpecs{
		Hosting:           orFiller(r.Get(facts.KeyHosting), "Managed hosting ("+hosting.Name+")"),
		HostingTier:       hosting.ID,
		Domain:            orFiller(r.Get(facts.KeyDomain), "To be confirmed"),
		Integrations:      sig.Integrations,
		UserAccounts:      sig.UserAccounts,
		PaymentProcessing: sig.PaymentProcessing,
		Compliance:        sig.Compliance,
		TechPreferences:   r.Get(facts.KeyTechPreferences),
		Analytics:         analytics,
	}
}

func mediaElements(r *intelligence.Record) MediaElements {
	v := r.Get(facts.KeyMediaAssets)
	lower := strings.ToLower(v)
	needs := strings.Contains(lower, "need") || strings.Contains(lower, "stock")
	return MediaElements{
		Assets:           orFiller(v, "To be confirmed"),
		NeedsPhotography: needs && (strings.Contains(lower, "photo") || strings.Contains(lower, "image")),
		NeedsVideo:       strings.Contains(lower, "video") && !intelligence.IsNegative(v),
	}
}

func designDirection(r *intelligence.Record) DesignDirection {
	return DesignDirection{
		Style:       orFiller(r.Get(facts.KeyDesignStyle), "Clean and modern, consistent with the brand"),
		Inspiration: listFact(r.Get(facts.KeyInspiration)),
		Dislikes:    listFact(r.Get(facts.KeyDesignDislikes)),
	}
}

func (s *Synthesizer) featuresBreakdown(websiteType string, ids, extra []string, q features.Quote) FeaturesBreakdown {
	price := make(map[string]float64, len(q.AddonFeatures))
	status := make(map[string]string, len(ids))
	for _, li := range q.IncludedFeatures {
		status[li.ID] = "included"
	}
	for _, li := range q.AddonFeatures {
		status[li.ID] = "addon"
		price[li.ID] = li.Price
	}
	for _, id := range q.Unpriced {
		status[id] = "unpriced"
	}

	fb := FeaturesBreakdown{Selected: []FeatureLine{}, AdditionalRequests: extra}
	for _, id := range ids {
		f, ok := s.catalog.Feature(id)
		if !ok {
			fb.Selected = append(fb.Selected, FeatureLine{ID: id, Name: id, Pricing: "unknown"})
			continue
		}
		fb.Selected = append(fb.Selected, FeatureLine{
			ID: f.ID, Name: f.Name, Category: f.Category, Pricing: status[id], Price: price[id],
		})
	}
	fb.Conflicts = s.catalog.DetectConflicts(ids)
	if report := s.catalog.ValidateDependencies(ids); !report.Valid {
		fb.MissingDependencies = report.MissingDependencies
	}
	for _, f := range s.catalog.Recommend(websiteType, ids) {
		if len(fb.Recommended) == 3 {
			break
		}
		fb.Recommended = append(fb.Recommended, f.ID)
	}
	return fb
}

func supportPlanFor(tier string) SupportPlan {
	switch tier {
	case features.TierStarter:
		return SupportPlan{Plan: "Basic", MaintenanceHours: 2, TrainingSessions: 1, WarrantyDays: 30}
	case features.TierProfessional:
		return SupportPlan{Plan: "Standard", MaintenanceHours: 5, TrainingSessions: 2, WarrantyDays: 60}
	default:
		return SupportPlan{Plan: "Premium", MaintenanceHours: 10, TrainingSessions: 3, WarrantyDays: 90}
	}
}

var phasePlans = map[string][]Phase{
	ComplexitySimple:   {{"Discovery", 1}, {"Design", 1}, {"Development", 1}, {"Testing and launch", 1}},
	ComplexityStandard: {{"Discovery", 1}, {"Design", 2}, {"Development", 4}, {"Testing and launch", 1}},
	ComplexityComplex:  {{"Discovery", 2}, {"Design", 3}, {"Development", 7}, {"Testing and launch", 2}},
}

// estimateTimeline adds a development week for every three add-ons.
func estimateTimeline(requested, complexity string, addons int) Timeline {
	phases := append([]Phase(nil), phasePlans[complexity]...)
	for i := range phases {
		if phases[i].Name == "Development" {
			phases[i].Weeks += addons / 3
		}
	}
	total := 0
	for _, p := range phases {
		total += p.Weeks
	}
	t := Timeline{
		Requested:      orFiller(requested, "Not specified"),
		EstimatedWeeks: total,
		Phases:         phases,
		Feasible:       true,
	}
	if weeks, ok := facts.ParseTimelineWeeks(requested); ok {
		t.RequestedWeeks = weeks
		if weeks < total {
			t.Feasible = false
			t.Notes = fmt.Sprintf("The requested %s is shorter than the estimated %d weeks; consider a phased launch.", requested, total)
		}
	} else if strings.EqualFold(strings.TrimSpace(requested), "ASAP") {
		t.Notes = fmt.Sprintf("Launch requested as soon as possible; the fastest realistic schedule is %d weeks.", total)
	}
	return t
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// paymentMilestones splits total 50/25/25. The last installment absorbs
// rounding so the amounts always add up to total.
func paymentMilestones(total float64) []Milestone {
	plan := []Milestone{
		{Name: "Project kickoff", Percentage: 50},
		{Name: "Design approval", Percentage: 25},
		{Name: "Launch", Percentage: 25},
	}
	paid := 0.0
	for i := range plan {
		if i == len(plan)-1 {
			plan[i].Amount = round2(total - paid)
			break
		}
		plan[i].Amount = round2(total * plan[i].Percentage / 100)
		paid += plan[i].Amount
	}
	return plan
}

func (s *Synthesizer) investment(tier string, q features.Quote, hosting features.HostingTier, budget string, bmin, bmax float64) InvestmentSummary {
	pkg, _ := s.catalog.Package(tier)
	project := round2(pkg.BasePrice + q.Total)
	annual := round2(hosting.Monthly * 12)
	discounts := append([]features.AppliedDiscount(nil), q.Discounts...)
	sort.SliceStable(discounts, func(i, j int) bool { return discounts[i].BundleID < discounts[j].BundleID })
	return InvestmentSummary{
		Package:         orFiller(pkg.Name, titleCase(tier)),
		BasePrice:       pkg.BasePrice,
		AddonTotal:      q.Subtotal,
		Discounts:       discounts,
		DiscountTotal:   q.DiscountTotal,
		ProjectTotal:    project,
		HostingTier:     hosting.ID,
		HostingMonthly:  hosting.Monthly,
		HostingAnnual:   annual,
		FirstYearTotal:  round2(project + annual),
		PaymentSchedule: paymentMilestones(project),
		StatedBudget:    budget,
		BudgetMin:       bmin,
		BudgetMax:       bmax,
	}
}
