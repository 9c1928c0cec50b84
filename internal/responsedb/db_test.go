package responsedb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/usermap/pkg/types"
)

func annotatedTable() *types.Table {
	return &types.Table{
		Header: []string{"user_id", "name", "E1: 良かったところ", "E2", "E3"},
		Rows: []types.SurveyRow{
			{Fields: []string{"2", "Sato", "助言", "", "特になし"}},
			{Fields: []string{"1", "Tanaka", "見やすい", "遅い", "速く"}},
			{Fields: []string{"", "Suzuki", "x", "y", "z"}},
			{Fields: []string{" 1 ", "Tanaka", "二回目", "", ""}},
		},
	}
}

func openTest(t *testing.T, tbl *types.Table) *DB {
	t.Helper()
	db, err := Open(tbl, "user_id")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRowsForUser(t *testing.T) {
	db := openTest(t, annotatedTable())

	recs, err := db.RowsForUser(1)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, 1, recs[0].Position)
	require.NotNil(t, recs[0].UserID)
	assert.Equal(t, 1, *recs[0].UserID)
	assert.Equal(t, []string{"1", "Tanaka", "見やすい", "遅い", "速く"}, recs[0].Fields)
	assert.Equal(t, 3, recs[1].Position)
	assert.Equal(t, "二回目", recs[1].Fields[2])
}

func TestRowsForUser_NoMatch(t *testing.T) {
	db := openTest(t, annotatedTable())

	recs, err := db.RowsForUser(99)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestUserIDs(t *testing.T) {
	db := openTest(t, annotatedTable())

	ids, err := db.UserIDs()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids)

	n, err := db.Count()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestOpen_Errors(t *testing.T) {
	t.Run("missing user id column", func(t *testing.T) {
		_, err := Open(annotatedTable(), "ユーザー番号")
		assert.ErrorIs(t, err, types.ErrSchema)
	})

	t.Run("non-integer user id", func(t *testing.T) {
		tbl := annotatedTable()
		tbl.Rows[2].Fields[0] = "abc"
		_, err := Open(tbl, "user_id")
		require.ErrorIs(t, err, types.ErrParse)
		assert.Contains(t, err.Error(), "line 4")
	})
}

func TestClose(t *testing.T) {
	db, err := Open(annotatedTable(), "user_id")
	require.NoError(t, err)

	require.NoError(t, db.Close())
	require.NoError(t, db.Close(), "second Close should not error")

	_, err = db.RowsForUser(1)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = db.UserIDs()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSchemaSQL(t *testing.T) {
	assert.Equal(t, "INSERT INTO responses (position, user_id, c0, c1) VALUES (?, ?, ?, ?)", insertSQL(2))
	assert.Equal(t, "SELECT position, user_id, c0 FROM responses WHERE user_id = ? ORDER BY position", selectByUserSQL(1))
}
