package scope

import (
	"fmt"
	"math"
	"net/mail"
)

// Severity of a validation issue. Only SeverityCritical blocks completeness.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Issue is one validation finding, located by section and field.
type Issue struct {
	Section  string   `json:"section"`
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

const (
	percentTolerance = 0.1
	moneyTolerance   = 0.01
)

// Validate checks required fields and cross-field numeric invariants. Any
// critical issue zeroes the score and marks the document incomplete; errors
// and warnings only lower the score.
func Validate(doc *Document) Validation {
	var issues []Issue
	add := func(sev Severity, section, field, format string, args ...any) {
		issues = append(issues, Issue{Section: section, Field: field, Message: fmt.Sprintf(format, args...), Severity: sev})
	}

	ci := doc.ClientInfo
	if ci.Name == "" {
		add(SeverityCritical, "client_info", "name", "client name is required")
	}
	if ci.Email == "" {
		add(SeverityCritical, "client_info", "email", "contact email is required")
	} else if _, err := mail.ParseAddress(ci.Email); err != nil {
		add(SeverityError, "client_info", "email", "contact email %q is not a valid address", ci.Email)
	}
	if doc.Classification.WebsiteType == "" {
		add(SeverityCritical, "classification", "website_type", "website type is required")
	}

	inv := doc.InvestmentSummary
	pct, amt := 0.0, 0.0
	for _, m := range inv.PaymentSchedule {
		pct += m.Percentage
		amt += m.Amount
	}
	if math.Abs(pct-100) > percentTolerance {
		add(SeverityCritical, "investment_summary", "payment_schedule",
			"payment schedule percentages sum to %.2f, expected 100", pct)
	}
	if math.Abs(amt-inv.ProjectTotal) > moneyTolerance {
		add(SeverityError, "investment_summary", "payment_schedule",
			"payment schedule amounts sum to %.2f, expected %.2f", amt, inv.ProjectTotal)
	}
	if want := inv.BasePrice + inv.AddonTotal - inv.DiscountTotal; math.Abs(want-inv.ProjectTotal) > moneyTolerance {
		add(SeverityError, "investment_summary", "project_total",
			"project total %.2f does not equal base + add-ons - discounts (%.2f)", inv.ProjectTotal, want)
	}
	if want := inv.ProjectTotal + inv.HostingAnnual; math.Abs(want-inv.FirstYearTotal) > moneyTolerance {
		add(SeverityError, "investment_summary", "first_year_total",
			"first-year total %.2f does not equal project + hosting (%.2f)", inv.FirstYearTotal, want)
	}
	if inv.BudgetMax > 0 && inv.ProjectTotal > inv.BudgetMax {
		add(SeverityWarning, "investment_summary", "project_total",
			"project total %.2f exceeds the stated budget of %.2f", inv.ProjectTotal, inv.BudgetMax)
	}

	fb := doc.FeaturesBreakdown
	for _, c := range fb.Conflicts {
		add(SeverityError, "features_breakdown", "selected",
			"%s conflicts with %s (%s): %s", c.FeatureA, c.FeatureB, c.Resolution, c.Reason)
	}
	for _, m := range fb.MissingDependencies {
		add(SeverityError, "features_breakdown", "selected",
			"%s requires %v", m.Feature, m.MissingDeps)
	}
	for _, f := range fb.Selected {
		if f.Pricing == "unknown" {
			add(SeverityWarning, "features_breakdown", "selected", "%s is not in the feature catalog", f.ID)
		}
	}

	if !doc.Timeline.Feasible {
		add(SeverityWarning, "timeline", "requested", "%s", doc.Timeline.Notes)
	}

	v := Validation{Issues: issues, Complete: true}
	if v.Issues == nil {
		v.Issues = []Issue{}
	}
	score := 100
	for _, is := range issues {
		switch is.Severity {
		case SeverityCritical:
			v.Complete = false
		case SeverityError:
			score -= 15
		case SeverityWarning:
			score -= 5
		}
	}
	if !v.Complete || score < 0 {
		score = 0
	}
	v.Score = score
	return v
}
