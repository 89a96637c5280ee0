package facts

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

const (
	fallbackConfidence = 0.8
	maxSlugLen         = 50
)

// Extractor turns question/answer pairs into facts using per-category rule
// sets. It holds no per-conversation state and is safe to share.
type Extractor struct {
	rules map[string][]Rule
	now   func() time.Time
	newID func() string
}

// NewExtractor returns an extractor using DefaultRules.
func NewExtractor() *Extractor {
	return &Extractor{
		rules: DefaultRules(),
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.New().String() },
	}
}

// WithClock returns a copy of e that stamps facts using now.
func (e *Extractor) WithClock(now func() time.Time) *Extractor {
	c := *e
	c.now = now
	return &c
}

// Extract converts one answered question into zero or more facts. Only the
// lower-cased question text is matched against the rules; the trimmed answer
// becomes the value. An answer that no rule understands is still kept as a
// fallback fact keyed by the question slug, so a non-empty answer always
// yields at least one fact. A blank answer yields none.
func (e *Extractor) Extract(questionID, questionText, answerText string, meta Metadata) []Fact {
	answer := strings.TrimSpace(answerText)
	if answer == "" {
		return nil
	}
	question := strings.ToLower(questionText)

	var drafts []Draft
	for _, r := range e.rules[meta.Category] {
		if r.Match(question) {
			drafts = r.Build(answer)
			break
		}
	}
	if len(drafts) == 0 {
		drafts = []Draft{{
			Key:        FallbackKey(questionText),
			Category:   fallbackCategory(meta.Category),
			Value:      answer,
			Confidence: fallbackConfidence,
		}}
	}

	now := e.now()
	out := make([]Fact, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, Fact{
			ID:               e.newID(),
			Category:         d.Category,
			Key:              d.Key,
			Value:            d.Value,
			Confidence:       d.Confidence,
			SourceQuestionID: questionID,
			ScopeSection:     meta.ScopeSection,
			ExtractedAt:      now,
		})
	}
	return out
}

// FallbackKey builds the key used for answers no rule understood:
// "answer_" followed by the question lower-cased, with every run of
// non-alphanumerics replaced by one underscore, cut to 50 characters.
// Edge underscores are kept, so "What is your goal?" gives
// "answer_what_is_your_goal_".
func FallbackKey(questionText string) string {
	slug := collapse(questionText)
	if len(slug) > maxSlugLen {
		slug = slug[:maxSlugLen]
	}
	return FallbackPrefix + slug
}

// Slugify is collapse with edge underscores trimmed, truncated to 50
// characters. Text without ASCII letters or digits gives "".
func Slugify(s string) string {
	slug := strings.Trim(collapse(s), "_")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "_")
	}
	return slug
}

// collapse lower-cases s and replaces each run of characters other than
// ASCII letters and digits with a single underscore.
func collapse(s string) string {
	var b strings.Builder
	run := false
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			run = false
			continue
		}
		if !run {
			b.WriteByte('_')
			run = true
		}
	}
	return b.String()
}

// IsFallback reports whether key was produced by the fallback rule.
func IsFallback(key string) bool {
	return strings.HasPrefix(key, FallbackPrefix)
}

func fallbackCategory(questionCategory string) Category {
	switch questionCategory {
	case QuestionTechnical:
		return CategoryTechnical
	case QuestionDesign:
		return CategoryDesign
	case QuestionFeatureSelection:
		return CategoryFeature
	case QuestionTimeline:
		return CategoryTimeline
	case QuestionBudget:
		return CategoryBudget
	default:
		return CategoryBusiness
	}
}
