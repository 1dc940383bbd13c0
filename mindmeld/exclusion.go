package mindmeld

// ExclusionSet is the ordered set of words a single generation attempt may
// not produce. It only grows.
type ExclusionSet struct {
	words []string
	seen  map[string]struct{}
}

func NewExclusionSet(words ...string) *ExclusionSet {
	s := &ExclusionSet{seen: make(map[string]struct{}, len(words))}
	for _, w := range words {
		s.Add(w)
	}
	return s
}

// Add inserts w (normalized) and reports whether it was new.
func (s *ExclusionSet) Add(w string) bool {
	w = normalizeWord(w)
	if w == "" {
		return false
	}
	if _, ok := s.seen[w]; ok {
		return false
	}
	s.seen[w] = struct{}{}
	s.words = append(s.words, w)
	return true
}

func (s *ExclusionSet) Contains(w string) bool {
	_, ok := s.seen[normalizeWord(w)]
	return ok
}

func (s *ExclusionSet) Len() int { return len(s.words) }

// Words returns a copy in insertion order.
func (s *ExclusionSet) Words() []string {
	return append([]string(nil), s.words...)
}
