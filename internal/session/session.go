// Package session ties the conversation pieces together: one Session per
// client conversation, an Engine that loads, mutates and persists sessions,
// and the HTTP and WebSocket surfaces on top of it.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/scopedoc/internal/facts"
	"github.com/ziadkadry99/scopedoc/internal/intelligence"
	"github.com/ziadkadry99/scopedoc/internal/interview"
	"github.com/ziadkadry99/scopedoc/internal/progress"
	"github.com/ziadkadry99/scopedoc/internal/topics"
)

var (
	// ErrGenerationInFlight is returned when a question is already being
	// generated for the session.
	ErrGenerationInFlight = errors.New("question generation already in flight")
	// ErrSessionComplete is returned when asking for a question after the
	// interview was judged complete.
	ErrSessionComplete = errors.New("session is complete")
	// ErrNotFound is returned for unknown session ids.
	ErrNotFound = errors.New("session not found")
	// ErrNoGenerator is returned when no question generator is configured.
	ErrNoGenerator = errors.New("no question generator configured")
)

// Keys of the exported state map.
const (
	stateFacts         = "facts"
	stateFoundation    = "foundation"
	stateSelected      = "selected_features"
	stateClosure       = "closure"
	stateTurns         = "turns"
	stateQuestionCount = "question_count"
	stateComplete      = "complete"
	statePending       = "pending"
	stateCreatedAt     = "created_at"
)

// foundationQuestionID is the source of facts entered through the intake form.
const foundationQuestionID = "foundation"

// AnswerInput is one answered question. An empty QuestionID or QuestionText
// is taken from the pending question, as is empty Metadata.
type AnswerInput struct {
	QuestionID   string         `json:"question_id"`
	QuestionText string         `json:"question_text"`
	Answer       string         `json:"answer"`
	Metadata     facts.Metadata `json:"metadata"`
}

// AnswerResult is what one answer changed.
type AnswerResult struct {
	Facts       []facts.Fact      `json:"facts"`
	NewlyClosed []string          `json:"newly_closed"`
	Progress    progress.Snapshot `json:"progress"`
}

// View is a read-only snapshot of a session for clients.
type View struct {
	ID                string                  `json:"id"`
	CreatedAt         time.Time               `json:"created_at"`
	Foundation        intelligence.Foundation `json:"foundation"`
	MissingFoundation []string                `json:"missing_foundation"`
	SelectedFeatures  []string                `json:"selected_features"`
	Facts             []facts.Fact            `json:"facts"`
	Closure           topics.State            `json:"closure"`
	Pending           *interview.Question     `json:"pending,omitempty"`
	Progress          progress.Snapshot       `json:"progress"`
}

// Session is one client conversation. Its methods are safe for concurrent
// use. Guards that span a whole operation, such as the in-flight question
// slot, live on the Engine.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	extractor *facts.Extractor
	facts     *facts.Store
	record    *intelligence.Record
	tracker   *topics.Tracker
	turns     []interview.Turn
	questions int
	complete  bool
	pending   *interview.Question
}

// New returns an empty session tracking closure over catalog.
func New(id string, catalog *topics.Catalog) *Session {
	return &Session{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		extractor: facts.NewExtractor(),
		facts:     facts.NewStore(),
		record:    intelligence.New(),
		tracker:   topics.NewTracker(catalog),
	}
}

// RecordQuestion marks q as the pending question and feeds it to the
// recency queue. It returns the topic the question was classified under.
func (s *Session) RecordQuestion(q interview.Question) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &q
	return s.tracker.RecordAskedQuestion(q.Text)
}

// Answer extracts facts from one answer, applies them and updates closure.
// Every call counts as one answered question, even a blank answer.
func (s *Session) Answer(in AnswerInput) AnswerResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p := s.pending; p != nil {
		if in.QuestionID == "" {
			in.QuestionID = p.ID
		}
		if in.QuestionText == "" {
			in.QuestionText = p.Text
		}
		if in.Metadata.Category == "" {
			in.Metadata.Category = p.Category
		}
		if in.Metadata.ScopeSection == "" {
			in.Metadata.ScopeSection = p.ScopeSection
		}
	}

	extracted := s.extractor.Extract(in.QuestionID, in.QuestionText, in.Answer, in.Metadata)
	s.facts.PutAll(extracted)
	s.record.ApplyFacts(extracted)
	newly := s.tracker.Update(s.facts)

	s.turns = append(s.turns, interview.Turn{
		QuestionID: in.QuestionID,
		Question:   in.QuestionText,
		Answer:     strings.TrimSpace(in.Answer),
	})
	s.questions++
	if s.pending != nil && s.pending.ID == in.QuestionID {
		s.pending = nil
	}

	return AnswerResult{
		Facts:       nonNil(extracted),
		NewlyClosed: nonNil(newly),
		Progress:    progress.Take(s.questions, s.complete, s.facts.All()),
	}
}

// SetFoundation merges intake-form fields. Each non-empty field is also
// stored as a fact so that closure and coverage see it.
func (s *Session) SetFoundation(f intelligence.Foundation) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record.SetFoundation(f)
	websiteType := ""
	if strings.TrimSpace(f.WebsiteType) != "" {
		websiteType = s.record.Foundation.WebsiteType
	}
	now := time.Now().UTC()
	var fs []facts.Fact
	for _, kv := range [][2]string{
		{facts.KeyClientName, f.Name},
		{facts.KeyContactEmail, f.Email},
		{facts.KeyContactPhone, f.Phone},
		{facts.KeyCompanyName, f.Company},
		{facts.KeyWebsiteType, websiteType},
	} {
		if v := strings.TrimSpace(kv[1]); v != "" {
			fs = append(fs, foundationFact(kv[0], v, now))
		}
	}
	s.facts.PutAll(fs)
	s.record.ApplyFacts(fs)
	return nonNil(s.tracker.Update(s.facts))
}

func foundationFact(key, value string, now time.Time) facts.Fact {
	return facts.Fact{
		ID:               uuid.NewString(),
		Category:         facts.CategoryBusiness,
		Key:              key,
		Value:            value,
		Confidence:       1.0,
		SourceQuestionID: foundationQuestionID,
		ScopeSection:     progress.SectionClientInfo,
		ExtractedAt:      now,
	}
}

// SelectFeatures replaces the explicit feature selection and records it as
// the selected_features fact.
func (s *Session) SelectFeatures(ids []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record.SelectFeatures(ids)
	f := facts.Fact{
		ID:               uuid.NewString(),
		Category:         facts.CategoryFeature,
		Key:              facts.KeySelectedFeatures,
		Value:            strings.Join(s.record.SelectedFeatures, ", "),
		Confidence:       1.0,
		SourceQuestionID: "feature_selection",
		ScopeSection:     progress.SectionFeaturesBreakdown,
		ExtractedAt:      time.Now().UTC(),
	}
	if f.Value == "" {
		f.Value = "none"
	}
	s.facts.Put(f)
	s.record.ApplyFacts([]facts.Fact{f})
	return nonNil(s.tracker.Update(s.facts))
}

// ReopenTopic removes topic from the closed set.
func (s *Session) ReopenTopic(topic string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Reopen(topic)
}

// Complete marks the interview as finished.
func (s *Session) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.complete = true
	s.pending = nil
}

// IsComplete reports whether the interview was finished.
func (s *Session) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete
}

// QuestionCount returns the number of answered questions.
func (s *Session) QuestionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questions
}

// Record returns a copy of the intelligence record.
func (s *Session) Record() *intelligence.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Clone()
}

// Progress returns the current progress snapshot.
func (s *Session) Progress() progress.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return progress.Take(s.questions, s.complete, s.facts.All())
}

// ClosureContext renders the closed-topic and recency blocks.
func (s *Session) ClosureContext() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.RenderClosureContext()
}

// ContextInput gathers what the question generator needs.
func (s *Session) ContextInput() interview.ContextInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return interview.ContextInput{
		Facts:             s.facts.All(),
		Turns:             append([]interview.Turn(nil), s.turns...),
		ClosureContext:    s.tracker.RenderClosureContext(),
		Progress:          progress.FromQuestionCount(s.questions, s.complete),
		QuestionCount:     s.questions,
		MissingFoundation: s.record.MissingFoundation(),
	}
}

// View returns a snapshot for clients.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		ID:                s.ID,
		CreatedAt:         s.CreatedAt,
		Foundation:        s.record.Foundation,
		MissingFoundation: nonNil(s.record.MissingFoundation()),
		SelectedFeatures:  nonNil(append([]string(nil), s.record.SelectedFeatures...)),
		Facts:             s.facts.All(),
		Closure:           s.tracker.State(),
		Progress:          progress.Take(s.questions, s.complete, s.facts.All()),
	}
	if s.pending != nil {
		q := *s.pending
		v.Pending = &q
	}
	return v
}

// Reset drops everything learned so far. The id and creation time stay.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facts.Reset()
	s.record = intelligence.New()
	s.tracker.Reset()
	s.turns = nil
	s.questions = 0
	s.complete = false
	s.pending = nil
}

// ExportState serializes the session into string values, one per key, for
// any key/value medium.
func (s *Session) ExportState() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := map[string]string{
		stateFacts:         mustJSON(s.facts.All()),
		stateFoundation:    mustJSON(s.record.Foundation),
		stateSelected:      mustJSON(nonNil(s.record.SelectedFeatures)),
		stateClosure:       mustJSON(s.tracker.State()),
		stateTurns:         mustJSON(nonNil(s.turns)),
		stateQuestionCount: strconv.Itoa(s.questions),
		stateComplete:      strconv.FormatBool(s.complete),
		stateCreatedAt:     s.CreatedAt.Format(time.RFC3339Nano),
	}
	if s.pending != nil {
		state[statePending] = mustJSON(s.pending)
	}
	return state
}

// ImportState replaces the session's contents with a state produced by
// ExportState. Missing keys leave the corresponding part empty. On error the
// session is left unchanged.
func (s *Session) ImportState(state map[string]string) error {
	var (
		fs         []facts.Fact
		foundation intelligence.Foundation
		selected   []string
		closure    topics.State
		turns      []interview.Turn
		pending    *interview.Question
		count      int
		complete   bool
		created    time.Time
	)
	for key, dst := range map[string]any{
		stateFacts:      &fs,
		stateFoundation: &foundation,
		stateSelected:   &selected,
		stateClosure:    &closure,
		stateTurns:      &turns,
		statePending:    &pending,
	} {
		if v, ok := state[key]; ok && v != "" {
			if err := json.Unmarshal([]byte(v), dst); err != nil {
				return fmt.Errorf("decoding %s: %w", key, err)
			}
		}
	}
	if v, ok := state[stateQuestionCount]; ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("decoding %s: invalid count %q", stateQuestionCount, v)
		}
		count = n
	}
	if v, ok := state[stateComplete]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("decoding %s: %w", stateComplete, err)
		}
		complete = b
	}
	if v, ok := state[stateCreatedAt]; ok {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return fmt.Errorf("decoding %s: %w", stateCreatedAt, err)
		}
		created = t
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.facts.Reset()
	s.facts.PutAll(fs)
	s.record = intelligence.New()
	s.record.ApplyFacts(fs)
	s.record.Foundation = foundation
	s.record.SelectFeatures(selected)
	s.tracker.Restore(closure)
	s.turns = turns
	s.questions = count
	s.complete = complete
	s.pending = pending
	if !created.IsZero() {
		s.CreatedAt = created
	}
	return nil
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("session: encoding state: %v", err))
	}
	return string(data)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
