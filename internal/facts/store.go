package facts

// Store holds the facts of one conversation keyed by fact key. A later fact
// with the same key replaces the earlier one. Store is not safe for
// concurrent use; a session owns exactly one.
type Store struct {
	byKey map[string]Fact
	order []string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{byKey: make(map[string]Fact)}
}

// Put upserts f. First insertion position is kept so iteration order stays
// stable across overwrites.
func (s *Store) Put(f Fact) {
	if _, ok := s.byKey[f.Key]; !ok {
		s.order = append(s.order, f.Key)
	}
	s.byKey[f.Key] = f
}

// PutAll upserts every fact in order.
func (s *Store) PutAll(fs []Fact) {
	for _, f := range fs {
		s.Put(f)
	}
}

// Get returns the fact stored under key.
func (s *Store) Get(key string) (Fact, bool) {
	f, ok := s.byKey[key]
	return f, ok
}

// Has reports whether a fact exists for key.
func (s *Store) Has(key string) bool {
	_, ok := s.byKey[key]
	return ok
}

// Value returns the value stored under key, or "".
func (s *Store) Value(key string) string {
	return s.byKey[key].Value
}

// Len returns the number of distinct keys.
func (s *Store) Len() int { return len(s.order) }

// All returns facts in first-insertion order.
func (s *Store) All() []Fact {
	out := make([]Fact, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.byKey[k])
	}
	return out
}

// ByCategory returns facts of the given category in first-insertion order.
func (s *Store) ByCategory(c Category) []Fact {
	var out []Fact
	for _, k := range s.order {
		if f := s.byKey[k]; f.Category == c {
			out = append(out, f)
		}
	}
	return out
}

// Reset drops every fact. Only a full conversation reset calls this.
func (s *Store) Reset() {
	s.byKey = make(map[string]Fact)
	s.order = nil
}
