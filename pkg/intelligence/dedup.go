package intelligence

import (
	"sort"

	"github.com/goccy/go-json"

	"github.com/oceanbase/cinedeck-go/pkg/catalog"
)

// KeySet is a set of composite catalog keys. It backs both the persisted
// hidden set and the in-memory "already enqueued" set used while sampling.
//
// A KeySet is not safe for concurrent mutation; owners serialise access.
//
// Example usage:
//
//	hidden := NewKeySet()
//	if hidden.Add(item.Key()) {
//	    // newly hidden, persist
//	}
type KeySet struct {
	keys map[catalog.Key]struct{}

	// unparsed holds decoded entries that are not valid keys. They are never
	// matched but are written back as-is, so a save never drops them.
	unparsed []string
}

// NewKeySet creates a set holding keys.
func NewKeySet(keys ...catalog.Key) *KeySet {
	s := &KeySet{keys: make(map[catalog.Key]struct{}, len(keys))}
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	return s
}

// Add inserts k and reports whether it was absent.
func (s *KeySet) Add(k catalog.Key) bool {
	if s.keys == nil {
		s.keys = make(map[catalog.Key]struct{})
	}
	if _, ok := s.keys[k]; ok {
		return false
	}
	s.keys[k] = struct{}{}
	return true
}

// Remove deletes k and reports whether it was present.
func (s *KeySet) Remove(k catalog.Key) bool {
	if s == nil {
		return false
	}
	if _, ok := s.keys[k]; !ok {
		return false
	}
	delete(s.keys, k)
	return true
}

// Contains reports membership. A nil set contains nothing.
func (s *KeySet) Contains(k catalog.Key) bool {
	if s == nil {
		return false
	}
	_, ok := s.keys[k]
	return ok
}

// Len returns the number of keys.
func (s *KeySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Clone returns an independent copy.
func (s *KeySet) Clone() *KeySet {
	out := NewKeySet()
	if s == nil {
		return out
	}
	for k := range s.keys {
		out.keys[k] = struct{}{}
	}
	out.unparsed = append([]string(nil), s.unparsed...)
	return out
}

// Unparsed returns the decoded entries that could not be read as keys.
func (s *KeySet) Unparsed() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.unparsed...)
}

// Keys returns the keys sorted by type then id.
func (s *KeySet) Keys() []catalog.Key {
	if s == nil {
		return []catalog.Key{}
	}
	out := make([]catalog.Key, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// MarshalJSON encodes the set as a sorted list of "{type}-{id}" strings,
// followed by any unparsed entries.
func (s *KeySet) MarshalJSON() ([]byte, error) {
	keys := s.Keys()
	out := make([]string, 0, len(keys)+len(s.Unparsed()))
	for _, k := range keys {
		out = append(out, k.String())
	}
	return json.Marshal(append(out, s.Unparsed()...))
}

// UnmarshalJSON decodes a list of keys entry by entry. Entries that are not
// valid keys are kept aside (see Unparsed) instead of failing the decode.
func (s *KeySet) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.keys = make(map[catalog.Key]struct{}, len(raw))
	s.unparsed = nil
	seen := make(map[string]struct{})
	for _, entry := range raw {
		k, err := catalog.ParseKey(entry)
		if err == nil {
			s.keys[k] = struct{}{}
			continue
		}
		if _, dup := seen[entry]; !dup {
			seen[entry] = struct{}{}
			s.unparsed = append(s.unparsed, entry)
		}
	}
	return nil
}
