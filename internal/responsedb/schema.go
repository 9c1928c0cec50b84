package responsedb

import (
	"strconv"
	"strings"
)

// CSV columns are stored positionally as c0..cN so arbitrary header text
// never reaches SQL.

func createTableSQL(n int) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE responses (\n    position INTEGER PRIMARY KEY,\n    user_id INTEGER")
	for i := 0; i < n; i++ {
		b.WriteString(",\n    c")
		b.WriteString(strconv.Itoa(i))
		b.WriteString(" TEXT NOT NULL")
	}
	b.WriteString("\n);")
	return b.String()
}

const createIndexSQL = `CREATE INDEX idx_responses_user_id ON responses(user_id);`

func insertSQL(n int) string {
	return "INSERT INTO responses (position, user_id" + prefixed(n) + ") VALUES (?, ?" + strings.Repeat(", ?", n) + ")"
}

func selectByUserSQL(n int) string {
	return "SELECT position, user_id" + prefixed(n) + " FROM responses WHERE user_id = ? ORDER BY position"
}

const selectUserIDsSQL = `SELECT DISTINCT user_id FROM responses WHERE user_id IS NOT NULL ORDER BY user_id`

func prefixed(n int) string {
	if n == 0 {
		return ""
	}
	return ", " + columnList(n)
}
