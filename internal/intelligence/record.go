// Package intelligence holds the per-conversation projection of everything
// learned so far: extracted facts, explicitly entered foundation fields and
// the feature selection.
package intelligence

import (
	"sort"
	"strings"

	"github.com/ziadkadry99/scopedoc/internal/facts"
)

// Foundation holds the fields captured by the intake form.
type Foundation struct {
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Company     string `json:"company,omitempty"`
	WebsiteType string `json:"website_type,omitempty"`
}

// Record is the single input to pricing and document synthesis. A session
// owns its record; readers work on a Clone.
type Record struct {
	Values           map[string]string `json:"values"`
	Foundation       Foundation        `json:"foundation"`
	SelectedFeatures []string          `json:"selected_features"`
}

// New returns an empty record.
func New() *Record {
	return &Record{Values: make(map[string]string)}
}

// ApplyFacts projects facts onto the record; a later value for a key wins.
func (r *Record) ApplyFacts(fs []facts.Fact) {
	if r.Values == nil {
		r.Values = make(map[string]string)
	}
	for _, f := range fs {
		r.Values[f.Key] = f.Value
	}
}

// SetFoundation merges the non-empty fields of f into the record.
func (r *Record) SetFoundation(f Foundation) {
	if v := strings.TrimSpace(f.Name); v != "" {
		r.Foundation.Name = v
	}
	if v := strings.TrimSpace(f.Email); v != "" {
		r.Foundation.Email = v
	}
	if v := strings.TrimSpace(f.Phone); v != "" {
		r.Foundation.Phone = v
	}
	if v := strings.TrimSpace(f.Company); v != "" {
		r.Foundation.Company = v
	}
	if v := NormalizeWebsiteType(f.WebsiteType); v != "" {
		r.Foundation.WebsiteType = v
	}
}

// SelectFeatures replaces the feature selection, dropping blanks and repeats.
func (r *Record) SelectFeatures(ids []string) {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	r.SelectedFeatures = out
}

// Get returns the value for a fact key, or "".
func (r *Record) Get(key string) string { return r.Values[key] }

// Has reports whether the record knows key.
func (r *Record) Has(key string) bool {
	_, ok := r.Values[key]
	return ok
}

// Keys returns the known fact keys, sorted.
func (r *Record) Keys() []string {
	keys := make([]string, 0, len(r.Values))
	for k := range r.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func prefer(explicit, extracted string) string {
	if explicit != "" {
		return explicit
	}
	return extracted
}

// Name returns the client's name, preferring the intake form.
func (r *Record) Name() string { return prefer(r.Foundation.Name, r.Get(facts.KeyClientName)) }

// Email returns the contact email.
func (r *Record) Email() string { return prefer(r.Foundation.Email, r.Get(facts.KeyContactEmail)) }

// Phone returns the contact phone.
func (r *Record) Phone() string { return prefer(r.Foundation.Phone, r.Get(facts.KeyContactPhone)) }

// Company returns the company name.
func (r *Record) Company() string { return prefer(r.Foundation.Company, r.Get(facts.KeyCompanyName)) }

// WebsiteType returns the normalized website type.
func (r *Record) WebsiteType() string {
	if r.Foundation.WebsiteType != "" {
		return r.Foundation.WebsiteType
	}
	if v := r.Get(facts.KeyWebsiteType); v != "" {
		return NormalizeWebsiteType(v)
	}
	return ""
}

// MissingFoundation lists the labels of required foundation fields that are
// still unknown. Phone is optional.
func (r *Record) MissingFoundation() []string {
	var missing []string
	if r.Name() == "" {
		missing = append(missing, "name")
	}
	if r.Email() == "" {
		missing = append(missing, "email")
	}
	if r.WebsiteType() == "" {
		missing = append(missing, "website type")
	}
	return missing
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	c := &Record{
		Values:           make(map[string]string, len(r.Values)),
		Foundation:       r.Foundation,
		SelectedFeatures: append([]string(nil), r.SelectedFeatures...),
	}
	for k, v := range r.Values {
		c.Values[k] = v
	}
	return c
}
