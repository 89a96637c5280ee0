package docs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ziadkadry99/scopedoc/internal/features"
	"github.com/ziadkadry99/scopedoc/internal/intelligence"
	"github.com/ziadkadry99/scopedoc/internal/scope"
)

func sampleDoc(t *testing.T) *scope.Document {
	t.Helper()
	c, err := features.DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	s := scope.NewSynthesizer(c).WithClock(func() time.Time {
		return time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	})

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
	doc, err := s.Synthesize(r, "conv-42")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	doc.Version = 2
	return doc
}

func TestRenderMarkdownHasAllSections(t *testing.T) {
	out, err := RenderMarkdown(sampleDoc(t))
	if err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}

	titles := []string{
		"## 1. Executive Summary", "## 2. Project Classification", "## 3. Client Information",
		"## 4. Business Context", "## 5. Brand Assets", "## 6. Content Strategy",
		"## 7. Technical Specifications", "## 8. Media Elements", "## 9. Design Direction",
		"## 10. Features Breakdown", "## 11. Support Plan", "## 12. Timeline",
		"## 13. Investment Summary", "## 14. Validation",
	}
	last := -1
	for _, title := range titles {
		i := strings.Index(out, title)
		if i < 0 {
			t.Errorf("missing %q", title)
			continue
		}
		if i < last {
			t.Errorf("%q out of order", title)
		}
		last = i
	}

	for _, want := range []string{
		"Acme Bakery",
		"jane@acme.example",
		"| **Project total** | **$14,230.00** |",
		"| **First-year total** | **$15,430.00** |",
		"| Project kickoff | 50% | $7,115.00 |",
		"v2 for conversation `conv-42`, generated 2026-05-04",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderHTML(t *testing.T) {
	page, err := RenderHTML(sampleDoc(t))
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	html := string(page)
	for _, want := range []string{"<!DOCTYPE html>", "<table>", "Appendix: Document Data", `conv-42`} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q", want)
		}
	}
	if strings.Contains(html, "```") {
		t.Error("code fence was not converted")
	}
}

func TestRenderHTMLOmitsRawHTML(t *testing.T) {
	doc := sampleDoc(t)
	doc.ExecutiveSummary.ProjectName = `Acme <script>alert(1)</script> Bakery`
	page, err := RenderHTML(doc)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if strings.Contains(string(page), "<script>alert") {
		t.Error("raw HTML from the document reached the page")
	}
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()
	doc := sampleDoc(t)
	paths, err := WriteFiles(doc, dir)
	if err != nil {
		t.Fatalf("WriteFiles: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("wrote %d files, want 3", len(paths))
	}
	for _, ext := range []string{".md", ".html", ".json"} {
		p := filepath.Join(dir, "conv-42", "scope-v2"+ext)
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "conv-42", "scope-v2.json"))
	if err != nil {
		t.Fatal(err)
	}
	var back scope.Document
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("json: %v", err)
	}
	if back.InvestmentSummary.ProjectTotal != doc.InvestmentSummary.ProjectTotal {
		t.Errorf("project total = %v", back.InvestmentSummary.ProjectTotal)
	}
}

func TestMoney(t *testing.T) {
	tests := map[float64]string{
		0:          "$0.00",
		5:          "$5.00",
		999.5:      "$999.50",
		1000:       "$1,000.00",
		14230:      "$14,230.00",
		1234567.89: "$1,234,567.89",
		-270:       "-$270.00",
	}
	for in, want := range tests {
		if got := Money(in); got != want {
			t.Errorf("Money(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestCellEscapes(t *testing.T) {
	if got := cell("a | b\nc"); got != `a \| b c` {
		t.Errorf("cell = %q", got)
	}
}

func TestBaseName(t *testing.T) {
	if got := BaseName(&scope.Document{}); got != "scope" {
		t.Errorf("BaseName = %q", got)
	}
	if got := BaseName(&scope.Document{Version: 3}); got != "scope-v3" {
		t.Errorf("BaseName = %q", got)
	}
}
