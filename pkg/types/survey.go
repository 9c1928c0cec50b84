package types

// SurveyRow is one response: field values in header order.
type SurveyRow struct {
	Fields []string
}

// Table is a CSV table held in memory: a header and its rows. Every row
// has exactly len(Header) fields.
type Table struct {
	Header []string
	Rows   []SurveyRow
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// AnnotatedRow is a SurveyRow joined to its user id. UserID is nil when the
// row's key has no assigned mapping entry.
type AnnotatedRow struct {
	Row    SurveyRow
	Key    string
	UserID *int
}
