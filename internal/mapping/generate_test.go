package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/usermap/pkg/types"
)

func surveyTable() *types.Table {
	return &types.Table{
		Header: []string{"timestamp", "name", "student_id", "E1"},
		Rows: []types.SurveyRow{
			{Fields: []string{"2024-01-02", "Sato", "A002", "a"}},
			{Fields: []string{"2024-01-01", "Tanaka", "A001 ", "b"}},
			{Fields: []string{"2024-01-05", "Tanaka (2nd)", "A001", "c"}},
			{Fields: []string{"", "", "", "d"}},
		},
	}
}

func TestGenerate_OneEntryPerDistinctKey(t *testing.T) {
	m, report, err := Generate(surveyTable(), GenerateOptions{
		KeyColumns: []string{"student_id"},
		NameColumn: "name",
	})
	require.NoError(t, err)

	require.Equal(t, 2, m.Len())
	assert.Equal(t, types.MappingEntry{Key: "A001", Name: "Tanaka"}, m.Entries[0])
	assert.Equal(t, types.MappingEntry{Key: "A002", Name: "Sato"}, m.Entries[1])
	assert.Equal(t, GenerateReport{Rows: 4, BlankKeys: 1}, report)
}

func TestGenerate_NoDuplicates(t *testing.T) {
	m, _, err := Generate(surveyTable(), GenerateOptions{KeyColumns: []string{"timestamp", "name"}})
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, e := range m.Entries {
		assert.False(t, seen[e.Key], "duplicate key %s", e.Key)
		seen[e.Key] = true
		assert.Nil(t, e.UserID)
	}
	assert.Len(t, m.Entries, 3)
	assert.True(t, seen["2024-01-01_Tanaka"])
}

func TestGenerate_Prefill(t *testing.T) {
	m, _, err := Generate(surveyTable(), GenerateOptions{
		KeyColumns: []string{"student_id"},
		Prefill:    true,
		FirstID:    10,
	})
	require.NoError(t, err)

	id, ok := m.Lookup("A001")
	require.True(t, ok)
	assert.Equal(t, 10, id)
	id, ok = m.Lookup("A002")
	require.True(t, ok)
	assert.Equal(t, 11, id)
}

func TestGenerate_PrefillDefaultsToOne(t *testing.T) {
	m, _, err := Generate(surveyTable(), GenerateOptions{KeyColumns: []string{"student_id"}, Prefill: true})
	require.NoError(t, err)

	id, _ := m.Lookup("A001")
	assert.Equal(t, 1, id)
}

func TestGenerate_MissingNameColumnIsReported(t *testing.T) {
	m, report, err := Generate(surveyTable(), GenerateOptions{
		KeyColumns: []string{"student_id"},
		NameColumn: "氏名",
	})
	require.NoError(t, err)
	assert.True(t, report.NameMissing)
	assert.Equal(t, "", m.Entries[0].Name)
}

func TestGenerate_MissingKeyColumn(t *testing.T) {
	_, _, err := Generate(surveyTable(), GenerateOptions{KeyColumns: []string{"email"}})
	assert.ErrorIs(t, err, types.ErrSchema)
}
