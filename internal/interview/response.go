package interview

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidUpstreamResponse matches every InvalidResponseError.
var ErrInvalidUpstreamResponse = errors.New("invalid upstream response")

// InvalidResponseError reports a structurally malformed generator reply.
type InvalidResponseError struct {
	Reason string
	Raw    string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidUpstreamResponse, e.Reason)
}

func (e *InvalidResponseError) Unwrap() error { return ErrInvalidUpstreamResponse }

func invalid(raw, format string, args ...any) error {
	return &InvalidResponseError{Reason: fmt.Sprintf(format, args...), Raw: raw}
}

// Action is what the generator wants to do next.
type Action string

const (
	ActionAskQuestion Action = "ask_question"
	ActionComplete    Action = "complete"
)

// Question types.
const (
	TypeText        = "text"
	TypeChoice      = "choice"
	TypeMultiChoice = "multi_choice"
)

// Question is the next question proposed by the generator.
type Question struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	Category     string   `json:"category,omitempty"`
	ScopeSection string   `json:"scope_section,omitempty"`
	Type         string   `json:"type,omitempty"`
	Options      []string `json:"options,omitempty"`
}

// Sufficiency is the generator's judgement of whether enough is known.
type Sufficiency struct {
	Sufficient   bool     `json:"sufficient"`
	Confidence   float64  `json:"confidence"`
	MissingAreas []string `json:"missing_areas,omitempty"`
	Reasoning    string   `json:"reasoning,omitempty"`
}

// Response is a validated generator reply.
type Response struct {
	Action      Action      `json:"action"`
	Question    *Question   `json:"question,omitempty"`
	Sufficiency Sufficiency `json:"sufficiency_evaluation"`
}

// ParseResponse validates a raw generator reply. Markdown code fences around
// the object are tolerated; anything else that is not the expected shape is
// an *InvalidResponseError.
func ParseResponse(content string) (*Response, error) {
	raw := stripFences(content)
	if raw == "" {
		return nil, invalid(content, "empty reply")
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &top); err != nil {
		return nil, invalid(content, "not a JSON object: %v", err)
	}

	actionRaw, ok := top["action"]
	if !ok {
		return nil, invalid(content, "missing action")
	}
	var action Action
	if err := json.Unmarshal(actionRaw, &action); err != nil {
		return nil, invalid(content, "action is not a string")
	}
	if action != ActionAskQuestion && action != ActionComplete {
		return nil, invalid(content, "unknown action %q", action)
	}

	suffRaw, ok := top["sufficiency_evaluation"]
	if !ok {
		return nil, invalid(content, "missing sufficiency_evaluation")
	}
	var suff Sufficiency
	if !isObject(suffRaw) {
		return nil, invalid(content, "sufficiency_evaluation is not an object")
	}
	if err := json.Unmarshal(suffRaw, &suff); err != nil {
		return nil, invalid(content, "sufficiency_evaluation: %v", err)
	}

	resp := &Response{Action: action, Sufficiency: suff}
	if action == ActionComplete {
		return resp, nil
	}

	qRaw, ok := top["question"]
	if !ok || !isObject(qRaw) {
		return nil, invalid(content, "ask_question without a question object")
	}
	var q Question
	if err := json.Unmarshal(qRaw, &q); err != nil {
		return nil, invalid(content, "question: %v", err)
	}
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return nil, invalid(content, "question text is empty")
	}
	switch q.Type {
	case "":
		q.Type = TypeText
	case TypeText:
	case TypeChoice, TypeMultiChoice:
		if len(q.Options) == 0 {
			return nil, invalid(content, "%s question without options", q.Type)
		}
	default:
		return nil, invalid(content, "unknown question type %q", q.Type)
	}
	resp.Question = &q
	return resp, nil
}

func isObject(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return strings.HasPrefix(s, "{")
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) < 2 {
		return ""
	}
	end := len(lines)
	if strings.TrimSpace(lines[end-1]) == "```" {
		end--
	}
	return strings.TrimSpace(strings.Join(lines[1:end], "\n"))
}
