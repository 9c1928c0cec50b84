package survey

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/usermap/pkg/types"
)

func keyTable() *types.Table {
	return &types.Table{
		Header: []string{"timestamp", "name", "student_id"},
		Rows: []types.SurveyRow{
			{Fields: []string{"2024-01-01", "Tanaka", " A001 "}},
			{Fields: []string{"2024-01-02", "Sato", "Ａ００２"}},
			{Fields: []string{"", "  ", ""}},
		},
	}
}

func TestKeyer_Literal(t *testing.T) {
	tbl := keyTable()

	tests := []struct {
		name    string
		columns []string
		row     int
		want    string
	}{
		{name: "concatenates in column order", columns: []string{"timestamp", "name"}, row: 0, want: "2024-01-01_Tanaka"},
		{name: "single column is trimmed", columns: []string{"student_id"}, row: 0, want: "A001"},
		{name: "full-width is normalized", columns: []string{"student_id"}, row: 1, want: "A002"},
		{name: "blank row gives empty key", columns: []string{"timestamp", "name"}, row: 2, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := NewKeyer(tbl, tt.columns, types.KeyModeLiteral)
			require.NoError(t, err)
			assert.Equal(t, tt.want, k.Key(tbl.Rows[tt.row]))
		})
	}
}

func TestKeyer_Hash(t *testing.T) {
	tbl := keyTable()
	k, err := NewKeyer(tbl, []string{"timestamp", "name"}, types.KeyModeHash)
	require.NoError(t, err)

	first := k.Key(tbl.Rows[0])
	parsed, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), parsed.Version())

	assert.Equal(t, first, k.Key(tbl.Rows[0]), "hash keys must be stable")
	assert.NotEqual(t, first, k.Key(tbl.Rows[1]))
	assert.Equal(t, "", k.Key(tbl.Rows[2]))
}

func TestNewKeyer_Errors(t *testing.T) {
	tbl := keyTable()

	_, err := NewKeyer(tbl, []string{"timestamp", "email"}, "")
	require.ErrorIs(t, err, types.ErrSchema)
	assert.Contains(t, err.Error(), "email")

	_, err = NewKeyer(tbl, nil, "")
	assert.ErrorIs(t, err, types.ErrKeyColumnsEmpty)

	_, err = NewKeyer(tbl, []string{"name"}, "md5")
	assert.ErrorIs(t, err, types.ErrKeyModeUnknown)
}

func TestKeyer_JoinIsNotEscaped(t *testing.T) {
	tbl := &types.Table{
		Header: []string{"first", "second"},
		Rows: []types.SurveyRow{
			{Fields: []string{"a_b", "c"}},
			{Fields: []string{"a", "b_c"}},
		},
	}

	for _, mode := range []string{types.KeyModeLiteral, types.KeyModeHash} {
		t.Run(mode, func(t *testing.T) {
			k, err := NewKeyer(tbl, []string{"first", "second"}, mode)
			require.NoError(t, err)
			assert.Equal(t, k.Key(tbl.Rows[0]), k.Key(tbl.Rows[1]))
		})
	}
}
