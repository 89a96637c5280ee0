package scope

import (
	"fmt"
	"strings"

	"github.com/ziadkadry99/scopedoc/internal/facts"
	"github.com/ziadkadry99/scopedoc/internal/features"
	"github.com/ziadkadry99/scopedoc/internal/intelligence"
)

// websiteTypeWeights is the base complexity per website type.
var websiteTypeWeights = map[string]int{
	"portfolio":  1,
	"landing":    1,
	"blog":       1,
	"business":   2,
	"nonprofit":  2,
	"booking":    2,
	"membership": 3,
	"community":  3,
	"ecommerce":  3,
	"web_app":    3,
}

const defaultWebsiteTypeWeight = 2

// WebsiteTypeWeight returns the base complexity for websiteType.
func WebsiteTypeWeight(websiteType string) int {
	if w, ok := websiteTypeWeights[websiteType]; ok {
		return w
	}
	return defaultWebsiteTypeWeight
}

// Signals are the yes/no inputs to classification, derived from the
// selection first and the extracted facts second.
type Signals struct {
	UserAccounts      bool
	CMS               bool
	PaymentProcessing bool
	Integrations      []string
	Compliance        []string
}

func selected(ids []string, id string) bool {
	for _, s := range ids {
		if s == id {
			return true
		}
	}
	return false
}

// stated reports whether a fact value says the client wants the thing.
// Anything other than an explicit no counts.
func stated(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !intelligence.IsNegative(v)
}

// wants reports whether the answer to a yes/no question asks for the thing.
// A clear yes counts, as does a concrete answer such as "Stripe"; a no or
// a hedge like "maybe later" does not.
func wants(v string) bool {
	return intelligence.IsAffirmative(v) || (stated(v) && !intelligence.IsUncertain(v))
}

func listFact(v string) []string {
	if !stated(v) {
		return nil
	}
	return intelligence.SplitList(v)
}

// DeriveSignals reads classification inputs from rec and the selection.
func DeriveSignals(rec *intelligence.Record, featureIDs []string) Signals {
	s := Signals{
		UserAccounts:      selected(featureIDs, "user_accounts") || wants(rec.Get(facts.KeyUserAccounts)),
		CMS:               selected(featureIDs, "cms") || wants(rec.Get(facts.KeyCMS)),
		PaymentProcessing: selected(featureIDs, "payment_processing") || wants(rec.Get(facts.KeyPayments)),
		Integrations:      listFact(rec.Get(facts.KeyIntegrations)),
		Compliance:        listFact(rec.Get(facts.KeyCompliance)),
	}
	if selected(featureIDs, "accessibility_compliance") {
		s.Compliance = appendUnique(s.Compliance, "Accessibility (WCAG)")
	}
	if selected(featureIDs, "gdpr_tools") {
		s.Compliance = appendUnique(s.Compliance, "GDPR")
	}
	return s
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if strings.EqualFold(x, v) {
			return list
		}
	}
	return append(list, v)
}

// Score computes the complexity score and the factors behind it.
func Score(websiteType string, featureCount int, sig Signals) (int, []ScoreFactor) {
	factors := []ScoreFactor{{
		Reason: fmt.Sprintf("website type %q", websiteType),
		Points: WebsiteTypeWeight(websiteType),
	}}
	switch {
	case featureCount < 3:
	case featureCount < 6:
		factors = append(factors, ScoreFactor{Reason: fmt.Sprintf("%d features", featureCount), Points: 1})
	default:
		factors = append(factors, ScoreFactor{Reason: fmt.Sprintf("%d features", featureCount), Points: 2})
	}
	if sig.UserAccounts {
		factors = append(factors, ScoreFactor{Reason: "user accounts", Points: 1})
	}
	if sig.CMS {
		factors = append(factors, ScoreFactor{Reason: "content management", Points: 1})
	}
	if sig.PaymentProcessing {
		factors = append(factors, ScoreFactor{Reason: "payment processing", Points: 1})
	}
	if len(sig.Integrations) > 2 {
		factors = append(factors, ScoreFactor{Reason: fmt.Sprintf("%d integrations", len(sig.Integrations)), Points: 1})
	}
	if len(sig.Compliance) > 0 {
		factors = append(factors, ScoreFactor{Reason: "compliance requirements", Points: 1})
	}
	total := 0
	for _, f := range factors {
		total += f.Points
	}
	return total, factors
}

// ComplexityFor maps a score to a complexity level.
func ComplexityFor(score int) string {
	switch {
	case score <= 3:
		return ComplexitySimple
	case score <= 6:
		return ComplexityStandard
	default:
		return ComplexityComplex
	}
}

// TierForComplexity maps complexity one-to-one onto a package tier.
func TierForComplexity(complexity string) string {
	switch complexity {
	case ComplexitySimple:
		return features.TierStarter
	case ComplexityStandard:
		return features.TierProfessional
	default:
		return features.TierCustom
	}
}

// TierForBudget picks the tier a stated budget can afford, using the upper
// end of a range.
func TierForBudget(max float64) string {
	switch {
	case max <= 5000:
		return features.TierStarter
	case max <= 12000:
		return features.TierProfessional
	default:
		return features.TierCustom
	}
}
