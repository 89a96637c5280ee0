package facts

import (
	"regexp"
	"strconv"
	"strings"
)

// Pattern is one alternative in an ordered regex chain. Format turns the
// submatches into the stored value.
type Pattern struct {
	Name   string
	Re     *regexp.Regexp
	Format func(m []string) string
}

// FirstMatch runs the chain against text and returns the formatted value of
// the first pattern that matches. Later alternatives are never consulted,
// even when they would also match.
func FirstMatch(chain []Pattern, text string) (value string, name string, ok bool) {
	lower := strings.ToLower(text)
	for _, p := range chain {
		if m := p.Re.FindStringSubmatch(lower); m != nil {
			return p.Format(m), p.Name, true
		}
	}
	return "", "", false
}

func plural(n, unit string) string {
	if n == "1" {
		return n + " " + unit
	}
	return n + " " + unit + "s"
}

const monthNames = `january|february|march|april|may|june|july|august|september|october|november|december`

// TimelinePatterns is the ordered chain for launch timelines. "in 3 months"
// matches both in_n_months and n_months; only the first is ever used.
var TimelinePatterns = []Pattern{
	{
		Name:   "in_n_months",
		Re:     regexp.MustCompile(`\bin\s+(\d+)\s+months?\b`),
		Format: func(m []string) string { return plural(m[1], "month") },
	},
	{
		Name:   "within_n_weeks",
		Re:     regexp.MustCompile(`\bwithin\s+(\d+)\s+weeks?\b`),
		Format: func(m []string) string { return plural(m[1], "week") },
	},
	{
		Name:   "month_range",
		Re:     regexp.MustCompile(`\b(\d+)\s*(?:-|to)\s*(\d+)\s+months?\b`),
		Format: func(m []string) string { return m[1] + "-" + m[2] + " months" },
	},
	{
		Name:   "n_months",
		Re:     regexp.MustCompile(`\b(\d+)\s+months?\b`),
		Format: func(m []string) string { return plural(m[1], "month") },
	},
	{
		Name:   "n_weeks",
		Re:     regexp.MustCompile(`\b(\d+)\s+weeks?\b`),
		Format: func(m []string) string { return plural(m[1], "week") },
	},
	{
		Name:   "asap",
		Re:     regexp.MustCompile(`\b(asap|as soon as possible|urgent(?:ly)?|immediately)\b`),
		Format: func([]string) string { return "ASAP" },
	},
	{
		Name: "by_month",
		Re:   regexp.MustCompile(`\bby\s+(` + monthNames + `)\b`),
		Format: func(m []string) string {
			return "by " + strings.ToUpper(m[1][:1]) + m[1][1:]
		},
	},
	{
		Name:   "flexible",
		Re:     regexp.MustCompile(`\b(flexible|no rush|no deadline|whenever)\b`),
		Format: func([]string) string { return "flexible" },
	},
}

const amount = `([\d,]+(?:\.\d+)?k?)`

// BudgetPatterns is the ordered chain for stated budgets.
var BudgetPatterns = []Pattern{
	{
		Name:   "dollar_range",
		Re:     regexp.MustCompile(`\$\s?` + amount + `\s*(?:-|to|–)\s*\$?\s?` + amount),
		Format: func(m []string) string { return "$" + m[1] + " - $" + m[2] },
	},
	{
		Name:   "dollar_amount",
		Re:     regexp.MustCompile(`\$\s?` + amount),
		Format: func(m []string) string { return "$" + m[1] },
	},
	{
		Name:   "amount_in_words",
		Re:     regexp.MustCompile(`\b` + amount + `\s*(?:dollars|usd)\b`),
		Format: func(m []string) string { return "$" + m[1] },
	},
	{
		Name:   "bare_thousands",
		Re:     regexp.MustCompile(`\b(\d+(?:\.\d+)?k)\b`),
		Format: func(m []string) string { return "$" + m[1] },
	},
}

var amountRe = regexp.MustCompile(`([\d,]+(?:\.\d+)?)(k?)`)

// ParseAmount converts "12,500", "8k" or "$2.5k" into dollars.
func ParseAmount(s string) (float64, bool) {
	m := amountRe.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	if m[2] == "k" {
		v *= 1000
	}
	return v, true
}

// ParseBudgetRange reads a stored budget value. A single amount yields
// min == max.
func ParseBudgetRange(value string) (min, max float64, ok bool) {
	parts := amountRe.FindAllString(strings.ToLower(value), -1)
	var nums []float64
	for _, p := range parts {
		if v, ok := ParseAmount(p); ok && v > 0 {
			nums = append(nums, v)
		}
	}
	switch len(nums) {
	case 0:
		return 0, 0, false
	case 1:
		return nums[0], nums[0], true
	default:
		lo, hi := nums[0], nums[1]
		if lo > hi {
			lo, hi = hi, lo
		}
		return lo, hi, true
	}
}

var durationRe = regexp.MustCompile(`(\d+)(?:-(\d+))?\s+(week|month)`)

// ParseTimelineWeeks converts a stored timeline value into weeks. Ranges use
// their upper bound.
func ParseTimelineWeeks(value string) (int, bool) {
	m := durationRe.FindStringSubmatch(strings.ToLower(value))
	if m == nil {
		return 0, false
	}
	n := m[1]
	if m[2] != "" {
		n = m[2]
	}
	v, err := strconv.Atoi(n)
	if err != nil {
		return 0, false
	}
	if m[3] == "month" {
		v = v * 13 / 3 // ~4.33 weeks per month
	}
	return v, true
}
