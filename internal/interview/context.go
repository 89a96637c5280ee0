// Package interview prepares the input of the question-generating model and
// validates what it sends back.
package interview

import (
	"fmt"
	"strings"

	"github.com/ziadkadry99/scopedoc/internal/facts"
	"github.com/ziadkadry99/scopedoc/internal/llm"
)

const (
	// DefaultFactTokenBudget bounds the fact summary.
	DefaultFactTokenBudget = 600
	// RecentTurns is how many Q/A exchanges are quoted back.
	RecentTurns = 3

	maxFactValue   = 120
	maxTurnAnswer  = 300
	omittedFactFmt = "- (%d more facts omitted)"
)

// summaryOrder is the category order of the fact summary.
var summaryOrder = []facts.Category{
	facts.CategoryBusiness,
	facts.CategoryFeature,
	facts.CategoryTechnical,
	facts.CategoryDesign,
	facts.CategoryTimeline,
	facts.CategoryBudget,
}

// Turn is one asked question and its answer.
type Turn struct {
	QuestionID string `json:"question_id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
}

// ContextInput is the session state a Context is built from.
type ContextInput struct {
	Facts             []facts.Fact
	Turns             []Turn
	ClosureContext    string
	Progress          float64
	QuestionCount     int
	MissingFoundation []string
	TokenBudget       int
}

// Context is the prepared input of one question-generation call.
type Context struct {
	FactSummary       string
	RecentExchange    string
	ClosureContext    string
	Progress          float64
	QuestionCount     int
	MissingFoundation []string
}

// BuildContext compresses the session state into prompt sections.
func BuildContext(in ContextInput) Context {
	budget := in.TokenBudget
	if budget <= 0 {
		budget = DefaultFactTokenBudget
	}
	return Context{
		FactSummary:       summarizeFacts(in.Facts, budget),
		RecentExchange:    recentExchange(in.Turns),
		ClosureContext:    in.ClosureContext,
		Progress:          in.Progress,
		QuestionCount:     in.QuestionCount,
		MissingFoundation: append([]string(nil), in.MissingFoundation...),
	}
}

// summarizeFacts groups facts by category and stops adding lines once the
// estimated token count would exceed budget.
func summarizeFacts(all []facts.Fact, budget int) string {
	if len(all) == 0 {
		return "(no facts yet)"
	}
	byCat := make(map[facts.Category][]facts.Fact)
	for _, f := range all {
		byCat[f.Category] = append(byCat[f.Category], f)
	}

	var sb strings.Builder
	used, written := 0, 0
	for _, cat := range summaryOrder {
		group := byCat[cat]
		if len(group) == 0 {
			continue
		}
		header := strings.ToUpper(string(cat)) + ":\n"
		if used+llm.EstimateTokens(header) > budget {
			break
		}
		headerWritten := false
		for _, f := range group {
			line := fmt.Sprintf("- %s: %s\n", f.Key, clip(f.Value, maxFactValue))
			cost := llm.EstimateTokens(line)
			if !headerWritten {
				cost += llm.EstimateTokens(header)
			}
			if used+cost > budget {
				break
			}
			if !headerWritten {
				sb.WriteString(header)
				headerWritten = true
			}
			sb.WriteString(line)
			used += cost
			written++
		}
	}
	if omitted := len(all) - written; omitted > 0 {
		fmt.Fprintf(&sb, omittedFactFmt, omitted)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func recentExchange(turns []Turn) string {
	if len(turns) == 0 {
		return "(no questions asked yet)"
	}
	if len(turns) > RecentTurns {
		turns = turns[len(turns)-RecentTurns:]
	}
	var sb strings.Builder
	for i, t := range turns {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "Q: %s\nA: %s", t.Question, clip(t.Answer, maxTurnAnswer))
	}
	return sb.String()
}

// clip shortens s to at most n runes, marking the cut with "...".
func clip(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// Render formats the context as the user message of the generation call.
func (c Context) Render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PROGRESS: %.2f%% after %d questions\n\n", c.Progress, c.QuestionCount)
	if len(c.MissingFoundation) > 0 {
		fmt.Fprintf(&sb, "STILL MISSING (ask for these first): %s\n\n", strings.Join(c.MissingFoundation, ", "))
	}
	sb.WriteString("KNOWN FACTS:\n")
	sb.WriteString(c.FactSummary)
	sb.WriteString("\n\nRECENT EXCHANGE:\n")
	sb.WriteString(c.RecentExchange)
	if c.ClosureContext != "" {
		sb.WriteString("\n\n")
		sb.WriteString(c.ClosureContext)
	}
	return sb.String()
}

// Messages returns the system and user messages for the context.
func (c Context) Messages() []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: c.Render()},
	}
}
