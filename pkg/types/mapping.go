package types

import "sort"

// MappingEntry assigns a user id to one respondent key. A nil UserID is a
// placeholder the operator has not filled in yet.
type MappingEntry struct {
	Key    string // Respondent key, unique within a Mapping.
	UserID *int   // Operator-assigned id; nil until assigned.
	Name   string // Reference value copied from the survey; not used for matching.
}

// Assigned reports whether the entry carries a user id.
func (e MappingEntry) Assigned() bool {
	return e.UserID != nil
}

// Mapping is the set of entries loaded from or written to a mapping file.
// Entries are kept sorted by key.
type Mapping struct {
	Entries []MappingEntry
	index   map[string]int
}

// NewMapping builds a Mapping from entries, sorting them by key. Keys must
// already be unique; the mapping package enforces that when decoding.
func NewMapping(entries []MappingEntry) *Mapping {
	sorted := make([]MappingEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	m := &Mapping{Entries: sorted, index: make(map[string]int, len(sorted))}
	for i, e := range sorted {
		m.index[e.Key] = i
	}
	return m
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	return len(m.Entries)
}

// Entry returns the entry for key.
func (m *Mapping) Entry(key string) (MappingEntry, bool) {
	i, ok := m.index[key]
	if !ok {
		return MappingEntry{}, false
	}
	return m.Entries[i], true
}

// Lookup returns the assigned user id for key. Placeholder entries and
// unknown keys both report false.
func (m *Mapping) Lookup(key string) (int, bool) {
	e, ok := m.Entry(key)
	if !ok || e.UserID == nil {
		return 0, false
	}
	return *e.UserID, true
}

// IntPtr returns a pointer to n. Convenient for building entries.
func IntPtr(n int) *int {
	return &n
}
