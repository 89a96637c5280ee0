// Package topics tracks which conversational topics are closed and which were
// touched recently, and renders both as context for the question generator.
package topics

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// General is the topic assigned to questions no keyword recognizes.
const General = "general"

// Mapping ties a topic to the facts that close it and the keywords that
// identify it in question text.
type Mapping struct {
	Topic              string   `yaml:"topic" json:"topic"`
	DisplayName        string   `yaml:"display_name" json:"display_name"`
	RequiredFacts      []string `yaml:"required_facts" json:"required_facts"`
	Keywords           []string `yaml:"keywords" json:"keywords"`
	MinFactsForClosure int      `yaml:"min_facts_for_closure" json:"min_facts_for_closure"`
}

// Catalog is an immutable, validated list of topic mappings.
type Catalog struct {
	mappings []Mapping
	byTopic  map[string]int
}

type catalogFile struct {
	Topics []Mapping `yaml:"topics"`
}

// DefaultCatalog parses the embedded topic catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// ParseCatalog decodes and validates a YAML topic catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing topic catalog: %w", err)
	}
	return NewCatalog(f.Topics)
}

// NewCatalog validates mappings and builds a catalog. Keywords are
// lower-cased so matching is case-insensitive.
func NewCatalog(mappings []Mapping) (*Catalog, error) {
	c := &Catalog{byTopic: make(map[string]int, len(mappings))}
	for i, m := range mappings {
		if m.Topic == "" {
			return nil, fmt.Errorf("topic %d: empty topic name", i)
		}
		if m.Topic == General {
			return nil, fmt.Errorf("topic %q is reserved", General)
		}
		if _, dup := c.byTopic[m.Topic]; dup {
			return nil, fmt.Errorf("topic %q: duplicate entry", m.Topic)
		}
		if len(m.RequiredFacts) == 0 {
			return nil, fmt.Errorf("topic %q: no required facts", m.Topic)
		}
		if m.MinFactsForClosure < 1 || m.MinFactsForClosure > len(m.RequiredFacts) {
			return nil, fmt.Errorf("topic %q: min_facts_for_closure %d out of range 1..%d",
				m.Topic, m.MinFactsForClosure, len(m.RequiredFacts))
		}
		if m.DisplayName == "" {
			m.DisplayName = m.Topic
		}
		kws := make([]string, 0, len(m.Keywords))
		for _, kw := range m.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				kws = append(kws, kw)
			}
		}
		m.Keywords = kws
		m.RequiredFacts = append([]string(nil), m.RequiredFacts...)
		c.byTopic[m.Topic] = len(c.mappings)
		c.mappings = append(c.mappings, m)
	}
	return c, nil
}

// Mappings returns a copy of the catalog entries in declaration order.
func (c *Catalog) Mappings() []Mapping {
	return append([]Mapping(nil), c.mappings...)
}

// Lookup returns the mapping for topic.
func (c *Catalog) Lookup(topic string) (Mapping, bool) {
	i, ok := c.byTopic[topic]
	if !ok {
		return Mapping{}, false
	}
	return c.mappings[i], true
}

// DisplayName returns the human label for topic, or topic itself.
func (c *Catalog) DisplayName(topic string) string {
	if m, ok := c.Lookup(topic); ok {
		return m.DisplayName
	}
	return topic
}

// TopicFor returns the first topic whose keywords occur in the lower-cased
// text, or General.
func (c *Catalog) TopicFor(text string) string {
	lower := strings.ToLower(text)
	for _, m := range c.mappings {
		for _, kw := range m.Keywords {
			if strings.Contains(lower, kw) {
				return m.Topic
			}
		}
	}
	return General
}
