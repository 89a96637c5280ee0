// Package docs renders scope documents as markdown, HTML and JSON. The
// renderers are pure formatters; every decision is already in the document.
package docs

import (
	"bytes"
	"encoding/json"
	"fmt"
	htmltemplate "html/template"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"time"
	"unicode"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ziadkadry99/scopedoc/internal/scope"
)

var (
	markdownTmpl = template.Must(template.New("scope").Funcs(templateFuncs).Parse(scopeTemplate))
	pageTmpl     = htmltemplate.Must(htmltemplate.New("page").Parse(pageTemplate))

	md = goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		// Raw HTML in answers is omitted.
		goldmark.WithRendererOptions(
			html.WithXHTML(),
		),
	)
)

var templateFuncs = template.FuncMap{
	"code": func(s string) string {
		if s == "" {
			return ""
		}
		return "`" + s + "`"
	},
	"cell":    cell,
	"date":    func(t time.Time) string { return t.UTC().Format("2006-01-02") },
	"join":    func(items []string) string { return strings.Join(items, ", ") },
	"money":   Money,
	"percent": func(p float64) string { return strconv.FormatFloat(p, 'f', -1, 64) + "%" },
	"title":   title,
	"yesno": func(b bool) string {
		if b {
			return "Yes"
		}
		return "No"
	},
}

// RenderMarkdown renders doc as a markdown scope document.
func RenderMarkdown(doc *scope.Document) (string, error) {
	var buf bytes.Buffer
	if err := markdownTmpl.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}

// RenderJSON renders doc as indented JSON.
func RenderJSON(doc *scope.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return data, nil
}

// RenderHTML renders doc as a standalone HTML page. The document data is
// appended as a highlighted JSON block.
func RenderHTML(doc *scope.Document) ([]byte, error) {
	markdown, err := RenderMarkdown(doc)
	if err != nil {
		return nil, err
	}
	data, err := RenderJSON(doc)
	if err != nil {
		return nil, err
	}

	var src strings.Builder
	src.WriteString(markdown)
	src.WriteString("\n\n## Appendix: Document Data\n\n```json\n")
	src.Write(data)
	src.WriteString("\n```\n")

	var body bytes.Buffer
	if err := md.Convert([]byte(src.String()), &body); err != nil {
		return nil, fmt.Errorf("converting markdown: %w", err)
	}

	var page bytes.Buffer
	err = pageTmpl.Execute(&page, struct {
		Title string
		Body  htmltemplate.HTML
	}{
		Title: doc.ExecutiveSummary.ProjectName,
		Body:  htmltemplate.HTML(body.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering page: %w", err)
	}
	return page.Bytes(), nil
}

// Rendered holds every rendering of one document.
type Rendered struct {
	Markdown string
	HTML     []byte
	JSON     []byte
}

// Render produces all renderings of doc.
func Render(doc *scope.Document) (*Rendered, error) {
	markdown, err := RenderMarkdown(doc)
	if err != nil {
		return nil, err
	}
	page, err := RenderHTML(doc)
	if err != nil {
		return nil, err
	}
	data, err := RenderJSON(doc)
	if err != nil {
		return nil, err
	}
	return &Rendered{Markdown: markdown, HTML: page, JSON: data}, nil
}

// BaseName is the file name stem of a document version, e.g. "scope-v2".
func BaseName(doc *scope.Document) string {
	if doc.Version > 0 {
		return fmt.Sprintf("scope-v%d", doc.Version)
	}
	return "scope"
}

// WriteFiles renders doc into dir/<conversation id>/ as .md, .html and
// .json files and returns the written paths.
func WriteFiles(doc *scope.Document, dir string) ([]string, error) {
	r, err := Render(doc)
	if err != nil {
		return nil, err
	}

	outDir := filepath.Join(dir, doc.ConversationID)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	base := filepath.Join(outDir, BaseName(doc))
	files := []struct {
		path string
		data []byte
	}{
		{base + ".md", []byte(r.Markdown)},
		{base + ".html", r.HTML},
		{base + ".json", r.JSON},
	}
	var written []string
	for _, f := range files {
		if err := os.WriteFile(f.path, f.data, 0o644); err != nil {
			return written, fmt.Errorf("writing %s: %w", f.path, err)
		}
		written = append(written, f.path)
	}
	return written, nil
}

// Money formats an amount as US dollars with thousands separators.
func Money(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := "$" + b.String() + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

// cell makes s safe inside a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

func title(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
