// Package annotate joins survey rows to user ids from a mapping and builds
// the annotated output table.
package annotate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/usermap/internal/survey"
	"github.com/mesh-intelligence/usermap/pkg/types"
)

// Options controls a run.
type Options struct {
	KeyColumns   []string
	KeyMode      string
	UserIDColumn string
	// Strict fails the run when any row has no assigned user id.
	Strict bool
	// SortByUserID orders output by user id, unmapped rows last. Rows
	// sharing an id keep their input order.
	SortByUserID bool
}

// Result is the outcome of Annotate. Rows are in output order.
type Result struct {
	Header       []string
	UserIDColumn string
	Rows         []types.AnnotatedRow

	// Mapped counts rows that received a user id.
	Mapped int
	// UnmappedKeys lists the distinct keys of rows without a user id, in
	// first-seen order. Blank keys appear as "".
	UnmappedKeys []string
	// UnusedKeys lists mapping entries no row matched, in key order.
	UnusedKeys []string
}

// Annotate looks up the user id of every row by exact respondent key.
// Rows without an assigned entry keep a nil user id and stay in the
// output unless opts.Strict is set.
func Annotate(tbl *types.Table, m *types.Mapping, opts Options) (*Result, error) {
	col := opts.UserIDColumn
	if col == "" {
		col = types.DefaultUserIDColumn
	}
	if tbl.ColumnIndex(col) >= 0 {
		return nil, fmt.Errorf("%w: input already has a %q column", types.ErrSchema, col)
	}

	keyer, err := survey.NewKeyer(tbl, opts.KeyColumns, opts.KeyMode)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Header:       tbl.Header,
		UserIDColumn: col,
		Rows:         make([]types.AnnotatedRow, 0, len(tbl.Rows)),
	}
	used := make(map[string]bool)
	unmapped := make(map[string]bool)
	for _, row := range tbl.Rows {
		key := keyer.Key(row)
		ar := types.AnnotatedRow{Row: row, Key: key}
		if id, ok := m.Lookup(key); ok && key != "" {
			ar.UserID = types.IntPtr(id)
			res.Mapped++
			used[key] = true
		} else if !unmapped[key] {
			unmapped[key] = true
			res.UnmappedKeys = append(res.UnmappedKeys, key)
		}
		res.Rows = append(res.Rows, ar)
	}

	for _, e := range m.Entries {
		if !used[e.Key] {
			res.UnusedKeys = append(res.UnusedKeys, e.Key)
		}
	}

	if opts.Strict && len(res.UnmappedKeys) > 0 {
		return nil, fmt.Errorf("%w: %d row(s) without a user id, keys: %s",
			types.ErrUnmapped, len(tbl.Rows)-res.Mapped, quoteAll(res.UnmappedKeys))
	}

	if opts.SortByUserID {
		sort.SliceStable(res.Rows, func(i, j int) bool {
			a, b := res.Rows[i].UserID, res.Rows[j].UserID
			if a == nil || b == nil {
				return a != nil && b == nil
			}
			return *a < *b
		})
	}
	return res, nil
}

// Table renders the result with the user id column prepended. A nil user
// id renders as an empty field.
func (r *Result) Table() *types.Table {
	header := make([]string, 0, len(r.Header)+1)
	header = append(header, r.UserIDColumn)
	header = append(header, r.Header...)

	out := &types.Table{Header: header, Rows: make([]types.SurveyRow, len(r.Rows))}
	for i, ar := range r.Rows {
		fields := make([]string, 0, len(ar.Row.Fields)+1)
		id := ""
		if ar.UserID != nil {
			id = strconv.Itoa(*ar.UserID)
		}
		fields = append(fields, id)
		fields = append(fields, ar.Row.Fields...)
		out.Rows[i] = types.SurveyRow{Fields: fields}
	}
	return out
}

func quoteAll(keys []string) string {
	q := make([]string, len(keys))
	for i, k := range keys {
		q[i] = strconv.Quote(k)
	}
	return strings.Join(q, ", ")
}
