package intelligence

import (
	"reflect"
	"testing"

	"github.com/ziadkadry99/scopedoc/internal/facts"
)

func TestApplyFactsLastWriteWins(t *testing.T) {
	r := New()
	r.ApplyFacts([]facts.Fact{
		{Key: facts.KeyClientName, Value: "Jane"},
		{Key: facts.KeyClientName, Value: "Jane Doe"},
	})
	if got := r.Name(); got != "Jane Doe" {
		t.Errorf("Name = %q", got)
	}
}

func TestFoundationPreferredOverFacts(t *testing.T) {
	r := New()
	r.ApplyFacts([]facts.Fact{
		{Key: facts.KeyContactEmail, Value: "old@example.com"},
		{Key: facts.KeyWebsiteType, Value: "An online store"},
	})
	if got := r.WebsiteType(); got != "ecommerce" {
		t.Errorf("WebsiteType from fact = %q", got)
	}
	r.SetFoundation(Foundation{Email: " new@example.com ", WebsiteType: "Portfolio"})
	if got := r.Email(); got != "new@example.com" {
		t.Errorf("Email = %q", got)
	}
	if got := r.WebsiteType(); got != "portfolio" {
		t.Errorf("WebsiteType = %q", got)
	}
	// Empty fields do not clear earlier ones.
	r.SetFoundation(Foundation{Name: "Jane"})
	if r.Foundation.Email != "new@example.com" {
		t.Error("SetFoundation cleared email")
	}
}

func TestMissingFoundation(t *testing.T) {
	r := New()
	if got := r.MissingFoundation(); !reflect.DeepEqual(got, []string{"name", "email", "website type"}) {
		t.Errorf("missing = %v", got)
	}
	r.SetFoundation(Foundation{Name: "Jane", Email: "j@example.com", WebsiteType: "blog"})
	if got := r.MissingFoundation(); len(got) != 0 {
		t.Errorf("missing = %v, phone should be optional", got)
	}
}

func TestUnreadableWebsiteTypeStaysMissing(t *testing.T) {
	r := New()
	r.SetFoundation(Foundation{Name: "Jane", Email: "j@example.com", WebsiteType: "网站"})
	if got := r.WebsiteType(); got != "" {
		t.Errorf("WebsiteType = %q, want empty", got)
	}
	if got := r.MissingFoundation(); !reflect.DeepEqual(got, []string{"website type"}) {
		t.Errorf("missing = %v", got)
	}

	r.SetFoundation(Foundation{WebsiteType: "blog"})
	r.SetFoundation(Foundation{WebsiteType: "网站"})
	if got := r.WebsiteType(); got != "blog" {
		t.Errorf("WebsiteType = %q, an unreadable value replaced a known one", got)
	}

	r.ApplyFacts([]facts.Fact{{Key: facts.KeyWebsiteType, Value: "网站"}})
	r.Foundation.WebsiteType = ""
	if got := r.WebsiteType(); got != "" {
		t.Errorf("WebsiteType from fact = %q, want empty", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	r := New()
	r.ApplyFacts([]facts.Fact{{Key: "a", Value: "1"}})
	r.SelectFeatures([]string{"blog"})
	c := r.Clone()
	c.Values["a"] = "2"
	c.SelectedFeatures[0] = "cms"
	if r.Get("a") != "1" || r.SelectedFeatures[0] != "blog" {
		t.Error("clone shares state with original")
	}
}

func TestSelectFeaturesDedupes(t *testing.T) {
	r := New()
	r.SelectFeatures([]string{"blog", " ", "cms", "blog"})
	if !reflect.DeepEqual(r.SelectedFeatures, []string{"blog", "cms"}) {
		t.Errorf("selected = %v", r.SelectedFeatures)
	}
}

func TestNormalizeWebsiteType(t *testing.T) {
	tests := map[string]string{
		"E-commerce":           "ecommerce",
		"Online shop":          "ecommerce",
		"A landing page":       "landing",
		"Non-profit":           "nonprofit",
		"SaaS web application": "web_app",
		"Corporate site":       "business",
		"Wiki":                 "wiki",
		"":                     "",
	}
	for in, want := range tests {
		if got := NormalizeWebsiteType(in); got != want {
			t.Errorf("NormalizeWebsiteType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsUncertain(t *testing.T) {
	tests := map[string]bool{
		"Not sure":              true,
		"maybe later":           true,
		"We haven't decided":    true,
		"Possibly in phase two": true,
		"Yes":                   false,
		"Stripe and PayPal":     false,
		"No":                    false,
	}
	for in, want := range tests {
		if got := IsUncertain(in); got != want {
			t.Errorf("IsUncertain(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestAffirmativeAndNegative(t *testing.T) {
	yes := []string{"Yes", "yes please", "Yeah, we need that", "Definitely", "We do."}
	no := []string{"No", "no thanks", "None", "Not really", "n/a", "We don't need it"}
	for _, a := range yes {
		if !IsAffirmative(a) {
			t.Errorf("IsAffirmative(%q) = false", a)
		}
	}
	for _, a := range no {
		if IsAffirmative(a) {
			t.Errorf("IsAffirmative(%q) = true", a)
		}
		if !IsNegative(a) {
			t.Errorf("IsNegative(%q) = false", a)
		}
	}
	if IsAffirmative("yesterday we talked") {
		t.Error("word prefix should not match inside a word")
	}
	if IsNegative("notably") {
		t.Error("notably is not a no")
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList("Stripe; Mailchimp, HubSpot and Zapier\nnone")
	want := []string{"Stripe", "Mailchimp", "HubSpot", "Zapier"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitList = %v, want %v", got, want)
	}
	if got := SplitList("  "); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
