package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMappingSortsByKey(t *testing.T) {
	m := NewMapping([]MappingEntry{
		{Key: "s3", UserID: IntPtr(3)},
		{Key: "s1", UserID: IntPtr(1)},
		{Key: "s2"},
	})

	require.Equal(t, 3, m.Len())
	assert.Equal(t, "s1", m.Entries[0].Key)
	assert.Equal(t, "s2", m.Entries[1].Key)
	assert.Equal(t, "s3", m.Entries[2].Key)
}

func TestMappingLookup(t *testing.T) {
	m := NewMapping([]MappingEntry{
		{Key: "2024-01-01_Tanaka", UserID: IntPtr(1)},
		{Key: "2024-01-02_Sato", UserID: IntPtr(2)},
		{Key: "2024-01-03_Suzuki"},
	})

	tests := []struct {
		name   string
		key    string
		wantID int
		wantOK bool
	}{
		{name: "assigned entry", key: "2024-01-01_Tanaka", wantID: 1, wantOK: true},
		{name: "second assigned entry", key: "2024-01-02_Sato", wantID: 2, wantOK: true},
		{name: "placeholder entry", key: "2024-01-03_Suzuki", wantOK: false},
		{name: "unknown key", key: "2024-01-04_Ito", wantOK: false},
		{name: "lookup is exact", key: "2024-01-01_tanaka", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := m.Lookup(tt.key)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantID, id)
			}
		})
	}
}

func TestMappingEntryReturnsPlaceholder(t *testing.T) {
	m := NewMapping([]MappingEntry{{Key: "k", Name: "Tanaka"}})

	e, ok := m.Entry("k")
	require.True(t, ok)
	assert.False(t, e.Assigned())
	assert.Equal(t, "Tanaka", e.Name)
}

func TestNewMappingDoesNotAliasInput(t *testing.T) {
	in := []MappingEntry{{Key: "b"}, {Key: "a"}}
	NewMapping(in)
	assert.Equal(t, "b", in[0].Key)
}
