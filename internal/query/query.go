// Package query answers "what did user N say" from an annotated survey
// table.
package query

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/usermap/internal/responsedb"
	"github.com/mesh-intelligence/usermap/pkg/types"
)

// Options selects the columns a Response carries.
type Options struct {
	// AnswerColumns are labels such as "E1". A header matches a label when
	// it equals the label or starts with it followed by ':', '：' or a space.
	AnswerColumns []string
	// DisplayColumns identify the respondent (name, student id). Columns
	// the table does not have are skipped.
	DisplayColumns []string
}

// Field is one labeled value.
type Field struct {
	Label  string `json:"label"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

// Response is the answer set of one annotated row.
type Response struct {
	UserID   int     `json:"user_id"`
	Position int     `json:"row"`
	Display  []Field `json:"display,omitempty"`
	Answers  []Field `json:"answers"`
}

// Lookup returns one Response per row carrying userID, in table order. A
// user with no rows yields a *types.NotFoundError listing the ids that do
// exist.
func Lookup(db *responsedb.DB, userID int, opts Options) ([]Response, error) {
	header := db.Header()

	answers, err := resolveAnswerColumns(header, opts.AnswerColumns)
	if err != nil {
		return nil, err
	}
	display := resolveDisplayColumns(header, opts.DisplayColumns)

	recs, err := db.RowsForUser(userID)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		known, err := db.UserIDs()
		if err != nil {
			return nil, err
		}
		return nil, &types.NotFoundError{UserID: userID, Known: known}
	}

	out := make([]Response, 0, len(recs))
	for _, rec := range recs {
		r := Response{UserID: userID, Position: rec.Position}
		for _, c := range display {
			r.Display = append(r.Display, Field{Label: c.label, Column: header[c.index], Value: rec.Fields[c.index]})
		}
		for _, c := range answers {
			r.Answers = append(r.Answers, Field{Label: c.label, Column: header[c.index], Value: rec.Fields[c.index]})
		}
		out = append(out, r)
	}
	return out, nil
}

type column struct {
	label string
	index int
}

func resolveAnswerColumns(header, labels []string) ([]column, error) {
	cols := make([]column, 0, len(labels))
	var missing []string
	for _, label := range labels {
		i := MatchColumn(header, label)
		if i < 0 {
			missing = append(missing, label)
			continue
		}
		cols = append(cols, column{label: label, index: i})
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: no column for answer(s) %s", types.ErrSchema, strings.Join(missing, ", "))
	}
	return cols, nil
}

func resolveDisplayColumns(header, names []string) []column {
	var cols []column
	for _, name := range names {
		if i := MatchColumn(header, name); i >= 0 {
			cols = append(cols, column{label: name, index: i})
		}
	}
	return cols
}

// MatchColumn returns the index of the header matching label, preferring
// an exact match over a prefix match, or -1.
func MatchColumn(header []string, label string) int {
	for i, h := range header {
		if h == label {
			return i
		}
	}
	for i, h := range header {
		rest, ok := strings.CutPrefix(h, label)
		if !ok || rest == "" {
			continue
		}
		switch {
		case strings.HasPrefix(rest, ":"), strings.HasPrefix(rest, "："), strings.HasPrefix(rest, " "):
			return i
		}
	}
	return -1
}
