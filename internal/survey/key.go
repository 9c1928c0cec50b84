package survey

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/mesh-intelligence/usermap/pkg/types"
)

// keySeparator joins key column values in literal mode.
const keySeparator = "_"

// keyNamespace scopes hash-mode keys. Changing it invalidates every mapping
// file written in hash mode.
var keyNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("usermap/respondent-key"))

// Keyer derives respondent keys from rows of one table.
//
// In literal mode the key is the normalized key column values joined with
// "_". Values are not escaped, so ("a_b", "c") and ("a", "b_c") give the
// same key "a_b_c"; hash mode hashes that joined string and collides the
// same way. Pick key columns whose values cannot be split ambiguously, or a
// single identifying column.
type Keyer struct {
	columns []int
	mode    string
}

// NewKeyer resolves the key columns against the table header. A missing
// column is a schema error.
func NewKeyer(tbl *types.Table, keyColumns []string, mode string) (*Keyer, error) {
	if len(keyColumns) == 0 {
		return nil, types.ErrKeyColumnsEmpty
	}
	if mode == "" {
		mode = types.KeyModeLiteral
	}
	if mode != types.KeyModeLiteral && mode != types.KeyModeHash {
		return nil, fmt.Errorf("%w: %q", types.ErrKeyModeUnknown, mode)
	}

	k := &Keyer{mode: mode}
	var missing []string
	for _, name := range keyColumns {
		i := tbl.ColumnIndex(name)
		if i < 0 {
			missing = append(missing, name)
			continue
		}
		k.columns = append(k.columns, i)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing key column(s) %s", types.ErrSchema, strings.Join(missing, ", "))
	}
	return k, nil
}

// Key returns the respondent key of row. A row whose key columns are all
// blank yields "".
func (k *Keyer) Key(row types.SurveyRow) string {
	parts := make([]string, len(k.columns))
	blank := true
	for i, c := range k.columns {
		parts[i] = NormalizeField(row.Fields[c])
		if parts[i] != "" {
			blank = false
		}
	}
	if blank {
		return ""
	}
	literal := strings.Join(parts, keySeparator)
	if k.mode == types.KeyModeHash {
		return uuid.NewSHA1(keyNamespace, []byte(literal)).String()
	}
	return literal
}

// NormalizeField applies NFKC normalization and trims surrounding
// whitespace, so full-width digits and stray spaces in the survey export
// do not split one respondent into two keys.
func NormalizeField(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}
