package queue

// SeenSet is a fixed-capacity set of identity tokens with insertion-ordered
// eviction: once the capacity is exceeded the oldest entries fall out first,
// regardless of how often they show up again later.
type SeenSet struct {
	capacity int
	order    []string
	index    map[string]struct{}
}

// NewSeenSet builds a set preloaded with ids (oldest first). If the preload
// already exceeds the capacity only the most recent entries are kept.
func NewSeenSet(capacity int, ids []string) *SeenSet {
	if capacity <= 0 {
		capacity = 1
	}
	s := &SeenSet{
		capacity: capacity,
		index:    make(map[string]struct{}, capacity),
	}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Contains reports whether id has been registered.
func (s *SeenSet) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Add registers id and returns true, or returns false if it was already
// present. Adding past the capacity evicts the oldest entry.
func (s *SeenSet) Add(id string) bool {
	if _, ok := s.index[id]; ok {
		return false
	}
	s.order = append(s.order, id)
	s.index[id] = struct{}{}
	for len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.index, oldest)
	}
	return true
}

// Len returns the number of retained identities.
func (s *SeenSet) Len() int {
	return len(s.order)
}

// IDs returns the retained identities, oldest first.
func (s *SeenSet) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
