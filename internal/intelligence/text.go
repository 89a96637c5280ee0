package intelligence

import (
	"strings"

	"github.com/ziadkadry99/scopedoc/internal/facts"
)

var websiteTypeSynonyms = []struct {
	needle string
	typ    string
}{
	{"e-commerce", "ecommerce"},
	{"ecommerce", "ecommerce"},
	{"online store", "ecommerce"},
	{"shop", "ecommerce"},
	{"landing", "landing"},
	{"portfolio", "portfolio"},
	{"blog", "blog"},
	{"non-profit", "nonprofit"},
	{"nonprofit", "nonprofit"},
	{"charity", "nonprofit"},
	{"booking", "booking"},
	{"appointment", "booking"},
	{"membership", "membership"},
	{"community", "community"},
	{"forum", "community"},
	{"web app", "web_app"},
	{"web_app", "web_app"},
	{"web application", "web_app"},
	{"saas", "web_app"},
	{"business", "business"},
	{"corporate", "business"},
	{"company", "business"},
}

// NormalizeWebsiteType maps free text like "Online store" to a catalog
// website type. Unrecognized text is slugified; text with no ASCII letters
// or digits gives "".
func NormalizeWebsiteType(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	if lower == "" {
		return ""
	}
	for _, syn := range websiteTypeSynonyms {
		if strings.Contains(lower, syn.needle) {
			return syn.typ
		}
	}
	return facts.Slugify(lower)
}

var affirmative = []string{"yes", "yeah", "yep", "sure", "definitely", "absolutely", "of course", "correct", "we do", "we will", "i do"}
var negative = []string{"no", "nope", "none", "n/a", "nothing", "don't", "do not", "we don't", "i don't", "not really", "not needed", "not at this time"}

// hasWordPrefix reports whether a starts with p followed by a word boundary.
func hasWordPrefix(a, p string) bool {
	if !strings.HasPrefix(a, p) {
		return false
	}
	if len(a) == len(p) {
		return true
	}
	c := a[len(p)]
	return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9')
}

var uncertain = []string{"not sure", "unsure", "maybe", "perhaps", "possibly", "undecided", "no idea", "not yet", "later", "tbd", "haven't decided"}

// IsUncertain reports whether an answer hedges instead of deciding.
func IsUncertain(answer string) bool {
	a := strings.ToLower(answer)
	for _, p := range uncertain {
		if strings.Contains(a, p) {
			return true
		}
	}
	return false
}

// IsAffirmative reports whether an answer reads as a yes.
func IsAffirmative(answer string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	if a == "" || IsNegative(a) {
		return false
	}
	for _, p := range affirmative {
		if hasWordPrefix(a, p) {
			return true
		}
	}
	return false
}

// IsNegative reports whether an answer reads as a no.
func IsNegative(answer string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	for _, p := range negative {
		if hasWordPrefix(a, p) {
			return true
		}
	}
	return false
}

// SplitList splits an enumerated answer on commas, semicolons, newlines and
// " and ". Blank items and "none" are dropped.
func SplitList(answer string) []string {
	r := strings.NewReplacer(";", ",", "\n", ",", " and ", ",", " & ", ",")
	var out []string
	for _, part := range strings.Split(r.Replace(answer), ",") {
		part = strings.TrimSpace(part)
		if part == "" || strings.EqualFold(part, "none") {
			continue
		}
		out = append(out, part)
	}
	return out
}
