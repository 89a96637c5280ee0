package topics

import (
	"fmt"
	"strings"
)

// MaxRecent bounds the recency queue.
const MaxRecent = 5

// FactSource is anything that can answer whether a fact key is known.
type FactSource interface {
	Has(key string) bool
}

// State is the serializable closure state of one conversation.
type State struct {
	Closed []string `json:"closed_topics"`
	Recent []string `json:"recent_topics"`
}

// Tracker maintains closed topics and the recency queue for one
// conversation. It is not safe for concurrent use.
type Tracker struct {
	catalog *Catalog
	closed  map[string]bool
	order   []string
	recent  []string
}

// NewTracker returns an empty tracker over catalog.
func NewTracker(catalog *Catalog) *Tracker {
	return &Tracker{catalog: catalog, closed: make(map[string]bool)}
}

// Catalog returns the catalog the tracker was built with.
func (t *Tracker) Catalog() *Catalog { return t.catalog }

// Update closes every topic whose required facts present in src reach the
// mapping's threshold and returns the topics closed by this call. Closure is
// monotonic: a topic is never reopened here even if facts disappear.
func (t *Tracker) Update(src FactSource) []string {
	var newly []string
	for _, m := range t.catalog.mappings {
		if t.closed[m.Topic] {
			continue
		}
		n := 0
		for _, key := range m.RequiredFacts {
			if src.Has(key) {
				n++
			}
		}
		if n >= m.MinFactsForClosure {
			t.closed[m.Topic] = true
			t.order = append(t.order, m.Topic)
			newly = append(newly, m.Topic)
		}
	}
	return newly
}

// RecordAskedQuestion classifies question text and pushes its topic onto the
// recency queue, dropping the oldest entry beyond MaxRecent. Duplicates are
// kept here and collapsed only when rendering.
func (t *Tracker) RecordAskedQuestion(text string) string {
	topic := t.catalog.TopicFor(text)
	t.recent = append(t.recent, topic)
	if len(t.recent) > MaxRecent {
		t.recent = append([]string(nil), t.recent[len(t.recent)-MaxRecent:]...)
	}
	return topic
}

// IsClosed reports whether topic is closed.
func (t *Tracker) IsClosed(topic string) bool { return t.closed[topic] }

// Reopen removes topic from the closed set. It is the administrative
// override for closure and reports whether anything changed.
func (t *Tracker) Reopen(topic string) bool {
	if !t.closed[topic] {
		return false
	}
	delete(t.closed, topic)
	for i, c := range t.order {
		if c == topic {
			t.order = append(t.order[:i:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// State returns a copy of the current closure state.
func (t *Tracker) State() State {
	return State{
		Closed: append([]string{}, t.order...),
		Recent: append([]string{}, t.recent...),
	}
}

// Restore replaces the tracker state with s.
func (t *Tracker) Restore(s State) {
	t.closed = make(map[string]bool, len(s.Closed))
	t.order = nil
	for _, c := range s.Closed {
		if !t.closed[c] {
			t.closed[c] = true
			t.order = append(t.order, c)
		}
	}
	t.recent = append([]string(nil), s.Recent...)
	if len(t.recent) > MaxRecent {
		t.recent = t.recent[len(t.recent)-MaxRecent:]
	}
}

// Reset forgets all closure and recency state.
func (t *Tracker) Reset() {
	t.Restore(State{})
}

// RenderClosureContext renders the tracker's current state.
func (t *Tracker) RenderClosureContext() string {
	return RenderClosureContext(t.catalog, t.State())
}

// RenderClosureContext produces the two blocks handed to the question
// generator: a hard list of closed topics and a soft list of recently asked
// topics. Recent topics are deduplicated and General is left out. The two
// lists are not reconciled; a topic may appear in both.
func RenderClosureContext(c *Catalog, s State) string {
	var b strings.Builder

	b.WriteString("CLOSED TOPICS (do not ask again):\n")
	if len(s.Closed) == 0 {
		b.WriteString("(none)\n")
	}
	for _, topic := range s.Closed {
		fmt.Fprintf(&b, "- %s (%s)\n", c.DisplayName(topic), topic)
	}

	b.WriteString("\nRECENTLY ASKED (avoid repeating):\n")
	seen := make(map[string]bool)
	wrote := false
	for _, topic := range s.Recent {
		if topic == General || seen[topic] {
			continue
		}
		seen[topic] = true
		wrote = true
		fmt.Fprintf(&b, "- %s (%s)\n", c.DisplayName(topic), topic)
	}
	if !wrote {
		b.WriteString("(none)\n")
	}
	return b.String()
}
