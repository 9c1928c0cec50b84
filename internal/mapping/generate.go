package mapping

import (
	"github.com/mesh-intelligence/usermap/internal/survey"
	"github.com/mesh-intelligence/usermap/pkg/types"
)

// GenerateOptions controls template generation.
type GenerateOptions struct {
	KeyColumns []string
	KeyMode    string
	// NameColumn is copied into each entry for reference. A column the
	// table does not have is reported, not fatal.
	NameColumn string
	// Prefill assigns FirstID, FirstID+1, ... in key order instead of
	// leaving placeholders.
	Prefill bool
	FirstID int
}

// GenerateReport describes what Generate saw in the table.
type GenerateReport struct {
	Rows        int // rows read
	BlankKeys   int // rows skipped because every key column was blank
	NameMissing bool
}

// Generate builds a mapping template with one entry per distinct
// respondent key in tbl. The first row carrying a key supplies its name.
func Generate(tbl *types.Table, opts GenerateOptions) (*types.Mapping, GenerateReport, error) {
	report := GenerateReport{Rows: len(tbl.Rows)}

	keyer, err := survey.NewKeyer(tbl, opts.KeyColumns, opts.KeyMode)
	if err != nil {
		return nil, report, err
	}

	nameCol := -1
	if opts.NameColumn != "" {
		nameCol = tbl.ColumnIndex(opts.NameColumn)
		report.NameMissing = nameCol < 0
	}

	var entries []types.MappingEntry
	seen := make(map[string]bool)
	for _, row := range tbl.Rows {
		key := keyer.Key(row)
		if key == "" {
			report.BlankKeys++
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		e := types.MappingEntry{Key: key}
		if nameCol >= 0 {
			e.Name = survey.NormalizeField(row.Fields[nameCol])
		}
		entries = append(entries, e)
	}

	m := types.NewMapping(entries)
	if opts.Prefill {
		first := opts.FirstID
		if first <= 0 {
			first = 1
		}
		for i := range m.Entries {
			m.Entries[i].UserID = types.IntPtr(first + i)
		}
	}
	return m, report, nil
}
