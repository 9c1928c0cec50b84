package types

import "errors"

// Config names every file and column the commands work with. The CLI builds
// it from config.yaml, environment and flags; components receive it
// explicitly.
type Config struct {
	// InputPath is the raw survey CSV.
	InputPath string `json:"input" yaml:"input"`
	// InputEncoding is the character encoding of InputPath.
	InputEncoding string `json:"input_encoding" yaml:"input_encoding"`
	// MappingPath is the respondent key to user id YAML file.
	MappingPath string `json:"mapping_file" yaml:"mapping_file"`
	// OutputPath is the annotated CSV written by process and read by query.
	OutputPath string `json:"output_file" yaml:"output_file"`

	KeyColumns     []string `json:"key_columns" yaml:"key_columns"`
	KeyMode        string   `json:"key_mode" yaml:"key_mode"`
	NameColumn     string   `json:"name_column" yaml:"name_column"`
	UserIDColumn   string   `json:"user_id_column" yaml:"user_id_column"`
	UserIDMin      int      `json:"user_id_min" yaml:"user_id_min"`
	UserIDMax      int      `json:"user_id_max" yaml:"user_id_max"`
	AnswerColumns  []string `json:"answer_columns" yaml:"answer_columns"`
	DisplayColumns []string `json:"display_columns" yaml:"display_columns"`
}

// Key modes.
const (
	// KeyModeLiteral joins the normalized key column values with "_".
	KeyModeLiteral = "literal"
	// KeyModeHash replaces the literal key with its name-based UUID.
	KeyModeHash = "hash"
)

// Supported input encodings.
const (
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift_jis"
)

// Defaults used when config.yaml leaves a key unset.
const (
	DefaultUserIDColumn = "user_id"
	DefaultKeyColumn    = "student_id"
	DefaultNameColumn   = "name"
)

// DefaultAnswerColumns are the answer labels query prints.
var DefaultAnswerColumns = []string{"E1", "E2", "E3"}

// Config validation errors.
var (
	ErrKeyColumnsEmpty   = errors.New("key_columns must not be empty")
	ErrKeyModeUnknown    = errors.New("unknown key_mode")
	ErrEncodingUnknown   = errors.New("unknown input_encoding")
	ErrUserIDColumnEmpty = errors.New("user_id_column must not be empty")
	ErrUserIDRange       = errors.New("user_id_min must not exceed user_id_max")
)

var knownKeyModes = map[string]bool{
	KeyModeLiteral: true,
	KeyModeHash:    true,
}

var knownEncodings = map[string]bool{
	EncodingUTF8:     true,
	EncodingShiftJIS: true,
}

// Validate checks that the Config is well-formed. Empty KeyMode and
// InputEncoding mean the defaults and are accepted.
func (c Config) Validate() error {
	if len(c.KeyColumns) == 0 {
		return ErrKeyColumnsEmpty
	}
	if c.KeyMode != "" && !knownKeyModes[c.KeyMode] {
		return ErrKeyModeUnknown
	}
	if c.InputEncoding != "" && !knownEncodings[c.InputEncoding] {
		return ErrEncodingUnknown
	}
	if c.UserIDColumn == "" {
		return ErrUserIDColumnEmpty
	}
	if c.UserIDMax > 0 && c.UserIDMin > c.UserIDMax {
		return ErrUserIDRange
	}
	return nil
}

// EffectiveKeyMode returns KeyMode or the literal default.
func (c Config) EffectiveKeyMode() string {
	if c.KeyMode == "" {
		return KeyModeLiteral
	}
	return c.KeyMode
}
