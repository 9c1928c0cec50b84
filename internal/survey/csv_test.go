package survey

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"

	"github.com/mesh-intelligence/usermap/pkg/types"
)

const sampleCSV = "timestamp,name,E1: 良かったところ,E2,E3\n" +
	"2024-01-01,Tanaka,画面が見やすい,特になし,もっと速く\n" +
	"2024-01-02,Sato,\"助言が的確, 役に立った\",,\n"

func TestRead(t *testing.T) {
	tbl, err := Read(strings.NewReader(sampleCSV), types.EncodingUTF8)
	require.NoError(t, err)

	assert.Equal(t, []string{"timestamp", "name", "E1: 良かったところ", "E2", "E3"}, tbl.Header)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "助言が的確, 役に立った", tbl.Rows[1].Fields[2])
	assert.Equal(t, "", tbl.Rows[1].Fields[4])
}

func TestRead_StripsUTF8BOM(t *testing.T) {
	in := "\ufeff" + sampleCSV
	tbl, err := Read(strings.NewReader(in), "")
	require.NoError(t, err)
	assert.Equal(t, "timestamp", tbl.Header[0])
}

func TestRead_ShiftJIS(t *testing.T) {
	sjis, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte("学籍番号,氏名\nA001,田中\n"))
	require.NoError(t, err)

	tbl, err := Read(bytes.NewReader(sjis), types.EncodingShiftJIS)
	require.NoError(t, err)
	assert.Equal(t, []string{"学籍番号", "氏名"}, tbl.Header)
	assert.Equal(t, "田中", tbl.Rows[0].Fields[1])
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		enc     string
		wantErr error
	}{
		{name: "empty input", input: "", wantErr: types.ErrSchema},
		{name: "ragged row", input: "a,b\n1,2,3\n", wantErr: types.ErrParse},
		{name: "unterminated quote", input: "a,b\n\"1,2\n", wantErr: types.ErrParse},
		{name: "duplicate column", input: "a,a\n1,2\n", wantErr: types.ErrSchema},
		{name: "unknown encoding", input: "a\n1\n", enc: "latin1", wantErr: types.ErrEncodingUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input), tt.enc)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	tbl, err := Read(strings.NewReader(sampleCSV), "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, tbl))
	assert.Equal(t, sampleCSV, buf.String())
}

func TestWriteFile_And_ReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "output", "annotated.csv")
	tbl := &types.Table{
		Header: []string{"user_id", "氏名"},
		Rows:   []types.SurveyRow{{Fields: []string{"1", "田中"}}},
	}

	require.NoError(t, WriteFile(path, tbl))

	got, err := ReadFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, tbl, got)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"), "")
	require.ErrorIs(t, err, types.ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "nope.csv")
}
