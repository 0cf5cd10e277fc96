package inline

import (
	"encoding/json"
	"sort"
)

// Counter counts occurrences of strings.
type Counter map[string]int

// Update adds every count of other into the counter.
func (c Counter) Update(other Counter) {
	for key, count := range other {
		c[key] += count
	}
}

// Keys returns the counted strings in ascending order.
func (c Counter) Keys() []string {
	keys := make([]string, 0, len(c))
	for key := range c {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Combined merges two counters into a fresh one.
func Combined(a, b Counter) Counter {
	merged := make(Counter, len(a)+len(b))
	merged.Update(a)
	merged.Update(b)
	return merged
}

// StringSet is a set of strings serialised as a sorted array so persisted
// blobs are byte-stable.
type StringSet map[string]struct{}

// NewStringSet builds a set from its members.
func NewStringSet(members ...string) StringSet {
	set := make(StringSet, len(members))
	for _, member := range members {
		set[member] = struct{}{}
	}
	return set
}

// Add inserts a member.
func (s StringSet) Add(member string) { s[member] = struct{}{} }

// Has reports membership.
func (s StringSet) Has(member string) bool {
	_, ok := s[member]
	return ok
}

// Members returns the set in ascending order.
func (s StringSet) Members() []string {
	members := make([]string, 0, len(s))
	for member := range s {
		members = append(members, member)
	}
	sort.Strings(members)
	return members
}

// Union merges two sets into a fresh one.
func (s StringSet) Union(other StringSet) StringSet {
	merged := make(StringSet, len(s)+len(other))
	for member := range s {
		merged.Add(member)
	}
	for member := range other {
		merged.Add(member)
	}
	return merged
}

// MarshalJSON encodes the set as a sorted array.
func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Members())
}

// UnmarshalJSON decodes the sorted-array form.
func (s *StringSet) UnmarshalJSON(data []byte) error {
	var members []string
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}
	*s = NewStringSet(members...)
	return nil
}

// HashSet is a set of int64 hashes, serialised sorted for the same reason.
type HashSet map[int64]struct{}

// Add inserts a hash.
func (s HashSet) Add(hash int64) { s[hash] = struct{}{} }

// Has reports membership.
func (s HashSet) Has(hash int64) bool {
	_, ok := s[hash]
	return ok
}

// MarshalJSON encodes the set as a sorted array.
func (s HashSet) MarshalJSON() ([]byte, error) {
	hashes := make([]int64, 0, len(s))
	for hash := range s {
		hashes = append(hashes, hash)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
	return json.Marshal(hashes)
}

// UnmarshalJSON decodes the sorted-array form.
func (s *HashSet) UnmarshalJSON(data []byte) error {
	var hashes []int64
	if err := json.Unmarshal(data, &hashes); err != nil {
		return err
	}
	*s = make(HashSet, len(hashes))
	for _, hash := range hashes {
		s.Add(hash)
	}
	return nil
}
