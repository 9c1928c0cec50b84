// Package survey reads and writes survey CSV tables and derives the
// respondent key that joins a row to the mapping file.
package survey

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/mesh-intelligence/usermap/internal/fsutil"
	"github.com/mesh-intelligence/usermap/pkg/types"
)

// decoderFor returns the decoder for a configured input encoding. UTF-8
// input has any byte order mark stripped.
func decoderFor(name string) (*encoding.Decoder, error) {
	switch name {
	case "", types.EncodingUTF8:
		return unicode.UTF8BOM.NewDecoder(), nil
	case types.EncodingShiftJIS:
		return japanese.ShiftJIS.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrEncodingUnknown, name)
	}
}

// Read parses a CSV table with a header row from r. Field values are kept
// verbatim. Rows whose field count differs from the header are a parse
// error; a missing header is a schema error.
func Read(r io.Reader, inputEncoding string) (*types.Table, error) {
	dec, err := decoderFor(inputEncoding)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(transform.NewReader(r, dec))
	cr.FieldsPerRecord = 0

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty CSV, header row missing", types.ErrSchema)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", types.ErrParse, err)
	}

	seen := make(map[string]bool, len(header))
	for _, h := range header {
		if seen[h] {
			return nil, fmt.Errorf("%w: duplicate column %q", types.ErrSchema, h)
		}
		seen[h] = true
	}

	tbl := &types.Table{Header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", types.ErrParse, err)
		}
		tbl.Rows = append(tbl.Rows, types.SurveyRow{Fields: rec})
	}
	return tbl, nil
}

// ReadFile opens path and reads it with Read.
func ReadFile(path, inputEncoding string) (*types.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", types.ErrIO, path, err)
	}
	defer f.Close()

	tbl, err := Read(f, inputEncoding)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tbl, nil
}

// Write encodes tbl as UTF-8 CSV with a header row and LF line endings.
func Write(w io.Writer, tbl *types.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tbl.Header); err != nil {
		return err
	}
	for _, row := range tbl.Rows {
		if err := cw.Write(row.Fields); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes tbl to path atomically. A failed write leaves any
// existing file at path untouched.
func WriteFile(path string, tbl *types.Table) error {
	err := fsutil.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		return Write(w, tbl)
	})
	if err != nil {
		return fmt.Errorf("%w: writing %s: %w", types.ErrIO, path, err)
	}
	return nil
}
