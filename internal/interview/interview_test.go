package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ziadkadry99/scopedoc/internal/facts"
	"github.com/ziadkadry99/scopedoc/internal/llm"
	"github.com/ziadkadry99/scopedoc/internal/llm/llmtest"
)

func TestParseResponseValid(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		action   Action
		question string
		qType    string
	}{
		{
			name:     "ask question",
			input:    `{"action":"ask_question","question":{"id":"q1","text":" What do you sell? "},"sufficiency_evaluation":{"sufficient":false,"confidence":0.2}}`,
			action:   ActionAskQuestion,
			question: "What do you sell?",
			qType:    TypeText,
		},
		{
			name:   "complete",
			input:  `{"action":"complete","sufficiency_evaluation":{"sufficient":true,"confidence":0.95,"missing_areas":[]}}`,
			action: ActionComplete,
		},
		{
			name:     "code fence",
			input:    "```json\n{\"action\":\"ask_question\",\"question\":{\"text\":\"Pick one\",\"type\":\"choice\",\"options\":[\"a\",\"b\"]},\"sufficiency_evaluation\":{}}\n```",
			action:   ActionAskQuestion,
			question: "Pick one",
			qType:    TypeChoice,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := ParseResponse(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.Action != tt.action {
				t.Errorf("action = %q, want %q", resp.Action, tt.action)
			}
			if tt.question == "" {
				if resp.Question != nil {
					t.Errorf("expected no question, got %+v", resp.Question)
				}
				return
			}
			if resp.Question == nil || resp.Question.Text != tt.question || resp.Question.Type != tt.qType {
				t.Errorf("question = %+v", resp.Question)
			}
		})
	}
}

func TestParseResponseRejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "  ", "empty reply"},
		{"not json", "Sure! Here is your next question.", "not a JSON object"},
		{"array", `[{"action":"complete"}]`, "not a JSON object"},
		{"no action", `{"sufficiency_evaluation":{}}`, "missing action"},
		{"bad action", `{"action":"chat","sufficiency_evaluation":{}}`, "unknown action"},
		{"action not string", `{"action":1,"sufficiency_evaluation":{}}`, "not a string"},
		{"no sufficiency", `{"action":"complete"}`, "missing sufficiency_evaluation"},
		{"sufficiency not object", `{"action":"complete","sufficiency_evaluation":"yes"}`, "not an object"},
		{"ask without question", `{"action":"ask_question","sufficiency_evaluation":{}}`, "without a question"},
		{"blank question", `{"action":"ask_question","question":{"text":"  "},"sufficiency_evaluation":{}}`, "text is empty"},
		{"choice without options", `{"action":"ask_question","question":{"text":"Pick","type":"multi_choice"},"sufficiency_evaluation":{}}`, "without options"},
		{"unknown type", `{"action":"ask_question","question":{"text":"Pick","type":"slider"},"sufficiency_evaluation":{}}`, "unknown question type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResponse(tt.input)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalidUpstreamResponse) {
				t.Errorf("expected ErrInvalidUpstreamResponse, got %v", err)
			}
			var ire *InvalidResponseError
			if !errors.As(err, &ire) || ire.Raw != tt.input {
				t.Errorf("expected *InvalidResponseError carrying the raw reply, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestBuildContextSummarizesByCategory(t *testing.T) {
	c := BuildContext(ContextInput{
		Facts: []facts.Fact{
			{Key: facts.KeyBudgetRange, Category: facts.CategoryBudget, Value: "$5,000 - $8,000"},
			{Key: facts.KeyClientName, Category: facts.CategoryBusiness, Value: "Sam"},
			{Key: facts.KeyIndustry, Category: facts.CategoryBusiness, Value: "bakery"},
		},
		ClosureContext: "CLOSED TOPICS (do not ask again):\n- Budget (budget)",
		Progress:       21.43,
		QuestionCount:  3,
	})

	business := strings.Index(c.FactSummary, "BUSINESS:")
	budget := strings.Index(c.FactSummary, "BUDGET:")
	if business < 0 || budget < 0 || business > budget {
		t.Fatalf("expected BUSINESS before BUDGET:\n%s", c.FactSummary)
	}
	if !strings.Contains(c.FactSummary, "- client_name: Sam") {
		t.Errorf("missing fact line:\n%s", c.FactSummary)
	}

	out := c.Render()
	for _, want := range []string{"PROGRESS: 21.43% after 3 questions", "KNOWN FACTS:", "RECENT EXCHANGE:", "(no questions asked yet)", "CLOSED TOPICS"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered context missing %q:\n%s", want, out)
		}
	}
}

func TestBuildContextRespectsTokenBudget(t *testing.T) {
	var fs []facts.Fact
	for i := 0; i < 50; i++ {
		fs = append(fs, facts.Fact{
			Key:      fmt.Sprintf("answer_q%d", i),
			Category: facts.CategoryBusiness,
			Value:    strings.Repeat("detail ", 40),
		})
	}
	c := BuildContext(ContextInput{Facts: fs, TokenBudget: 100})

	if got := llm.EstimateTokens(c.FactSummary); got > 110 {
		t.Errorf("summary uses ~%d tokens, budget 100", got)
	}
	if !strings.Contains(c.FactSummary, "more facts omitted") {
		t.Errorf("expected an omission marker:\n%s", c.FactSummary)
	}
	// Values are clipped.
	for _, line := range strings.Split(c.FactSummary, "\n") {
		if len([]rune(line)) > maxFactValue+40 {
			t.Errorf("line not clipped: %q", line)
		}
	}
}

func TestBuildContextKeepsLastThreeTurns(t *testing.T) {
	var turns []Turn
	for i := 1; i <= 5; i++ {
		turns = append(turns, Turn{Question: fmt.Sprintf("question %d", i), Answer: fmt.Sprintf("answer %d", i)})
	}
	c := BuildContext(ContextInput{Turns: turns})
	if strings.Contains(c.RecentExchange, "question 2") {
		t.Errorf("older turns should be dropped:\n%s", c.RecentExchange)
	}
	for _, want := range []string{"Q: question 3", "A: answer 5"} {
		if !strings.Contains(c.RecentExchange, want) {
			t.Errorf("missing %q:\n%s", want, c.RecentExchange)
		}
	}
}

func TestGeneratorNext(t *testing.T) {
	p := llmtest.New(`{"action":"ask_question","question":{"text":"What is your timeline?","category":"timeline"},"sufficiency_evaluation":{"sufficient":false}}`)
	g := NewGenerator(p, "model-x", nil)

	resp, err := g.Next(context.Background(), BuildContext(ContextInput{MissingFoundation: []string{"email"}}))
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if resp.Question.ID == "" {
		t.Error("expected a generated question id")
	}

	calls := p.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	req := calls[0]
	if !req.JSONMode || req.Model != "model-x" {
		t.Errorf("request = %+v", req)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != llm.RoleSystem {
		t.Fatalf("messages = %+v", req.Messages)
	}
	if !strings.Contains(req.Messages[1].Content, "STILL MISSING (ask for these first): email") {
		t.Errorf("user message = %s", req.Messages[1].Content)
	}
}

func TestGeneratorNextErrors(t *testing.T) {
	p := llmtest.New("not json")
	g := NewGenerator(p, "", nil)
	if _, err := g.Next(context.Background(), Context{}); !errors.Is(err, ErrInvalidUpstreamResponse) {
		t.Errorf("expected invalid response, got %v", err)
	}

	boom := errors.New("connection reset")
	p = llmtest.New()
	p.Err = boom
	g = NewGenerator(p, "", nil)
	_, err := g.Next(context.Background(), Context{})
	if !errors.Is(err, boom) || errors.Is(err, ErrInvalidUpstreamResponse) {
		t.Errorf("expected wrapped transport error, got %v", err)
	}
	if len(p.Calls()) != 1 {
		t.Errorf("expected no retries, got %d calls", len(p.Calls()))
	}
}
