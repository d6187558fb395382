package kv

import (
	"iter"
	"slices"

	"github.com/indigo-web/utils/strcomp"
)

type Pair struct {
	Key, Value string
}

// Storage is an ordered list of (string, string) pairs. It keeps keys exactly as they were
// added and never merges duplicates, so header fields survive a decode-encode round trip
// byte for byte. Lookups are case-insensitive and use linear search, which proves to be more
// efficient on relatively low amount of entries, which often enough is the case.
type Storage struct {
	pairs []Pair
}

func New() *Storage {
	return new(Storage)
}

// NewPrealloc returns an instance of Storage with pre-allocated underlying storage.
func NewPrealloc(n int) *Storage {
	return &Storage{
		pairs: make([]Pair, 0, n),
	}
}

// NewFromPairs returns a storage holding the pairs in the given order.
func NewFromPairs(pairs ...Pair) *Storage {
	return &Storage{pairs: slices.Clone(pairs)}
}

// Add appends a new pair, even if the key is already presented.
func (s *Storage) Add(key, value string) *Storage {
	s.pairs = append(s.pairs, Pair{
		Key:   key,
		Value: value,
	})
	return s
}

// Set replaces all the values of the key by a single one, placed where the first occurrence
// was. If there was none, the pair is appended.
func (s *Storage) Set(key, value string) *Storage {
	matches := func(p Pair) bool {
		return strcomp.EqualFold(p.Key, key)
	}

	i := slices.IndexFunc(s.pairs, matches)
	if i == -1 {
		return s.Add(key, value)
	}

	s.pairs[i] = Pair{Key: key, Value: value}
	tail := slices.DeleteFunc(s.pairs[i+1:], matches)
	s.pairs = s.pairs[:i+1+len(tail)]

	return s
}

// Delete removes every pair with the key.
func (s *Storage) Delete(key string) *Storage {
	s.pairs = slices.DeleteFunc(s.pairs, func(p Pair) bool {
		return strcomp.EqualFold(p.Key, key)
	})

	return s
}

// Value returns the first value, corresponding to the key. Otherwise, empty string is returned
func (s *Storage) Value(key string) string {
	return s.ValueOr(key, "")
}

// ValueOr returns either the first value corresponding to the key or custom value, defined
// via the second parameter.
func (s *Storage) ValueOr(key, or string) string {
	value, found := s.Get(key)
	if !found {
		return or
	}

	return value
}

// Get returns a value and a bool, indicating whether the value was found. If it wasn't, it'll
// be an empty string.
func (s *Storage) Get(key string) (value string, found bool) {
	for _, pair := range s.pairs {
		if strcomp.EqualFold(key, pair.Key) {
			return pair.Value, true
		}
	}

	return "", false
}

// Values iterates over all the values of the key in their original order.
func (s *Storage) Values(key string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, pair := range s.pairs {
			if strcomp.EqualFold(pair.Key, key) && !yield(pair.Value) {
				return
			}
		}
	}
}

// Keys iterates over unique keys. The casing of the first occurrence is kept.
func (s *Storage) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for i, pair := range s.pairs {
			if slices.ContainsFunc(s.pairs[:i], func(p Pair) bool {
				return strcomp.EqualFold(p.Key, pair.Key)
			}) {
				continue
			}

			if !yield(pair.Key) {
				return
			}
		}
	}
}

// Iter iterates over all the pairs in their original order.
func (s *Storage) Iter() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, pair := range s.pairs {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// Has indicates, whether there's an entry of the key.
func (s *Storage) Has(key string) bool {
	_, found := s.Get(key)
	return found
}

// Len returns a number of stored pairs.
func (s *Storage) Len() int {
	return len(s.pairs)
}

func (s *Storage) Empty() bool {
	return s.Len() == 0
}

// Clone creates a deep copy, which may be used later or stored somewhere safely.
func (s *Storage) Clone() *Storage {
	return &Storage{pairs: slices.Clone(s.pairs)}
}

// Expose exposes the underlying pairs slice.
func (s *Storage) Expose() []Pair {
	return s.pairs
}

// Clear all the entries. However, all the allocated space won't be freed.
func (s *Storage) Clear() *Storage {
	s.pairs = s.pairs[:0]
	return s
}
