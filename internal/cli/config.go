package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/usermap/internal/fsutil"
	"github.com/mesh-intelligence/usermap/internal/paths"
	"github.com/mesh-intelligence/usermap/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "USERMAP"
)

// Config keys in config.yaml.
const (
	cfgKeyInput          = "input"
	cfgKeyInputEncoding  = "input_encoding"
	cfgKeyMappingFile    = "mapping_file"
	cfgKeyOutputDir      = "output_dir"
	cfgKeyOutputFile     = "output_file"
	cfgKeyKeyColumns     = "key_columns"
	cfgKeyKeyMode        = "key_mode"
	cfgKeyNameColumn     = "name_column"
	cfgKeyUserIDColumn   = "user_id_column"
	cfgKeyUserIDMin      = "user_id_min"
	cfgKeyUserIDMax      = "user_id_max"
	cfgKeyAnswerColumns  = "answer_columns"
	cfgKeyDisplayColumns = "display_columns"
)

// Defaults for keys config.yaml leaves unset.
const (
	defaultInput       = "responses.csv"
	defaultMappingFile = "user_mapping.yaml"
	// outputSuffix is appended to the input file stem to name the output.
	outputSuffix = "_with_user_id"
)

// configFile is the structure written to config.yaml.
type configFile struct {
	Input          string   `yaml:"input"`
	InputEncoding  string   `yaml:"input_encoding"`
	MappingFile    string   `yaml:"mapping_file"`
	OutputDir      string   `yaml:"output_dir,omitempty"`
	OutputFile     string   `yaml:"output_file,omitempty"`
	KeyColumns     []string `yaml:"key_columns,flow"`
	KeyMode        string   `yaml:"key_mode"`
	NameColumn     string   `yaml:"name_column"`
	UserIDColumn   string   `yaml:"user_id_column"`
	UserIDMin      int      `yaml:"user_id_min"`
	UserIDMax      int      `yaml:"user_id_max"`
	AnswerColumns  []string `yaml:"answer_columns,flow"`
	DisplayColumns []string `yaml:"display_columns,flow"`
}

func defaultConfigFile() configFile {
	return configFile{
		Input:          defaultInput,
		InputEncoding:  types.EncodingUTF8,
		MappingFile:    defaultMappingFile,
		KeyColumns:     []string{types.DefaultKeyColumn},
		KeyMode:        types.KeyModeLiteral,
		NameColumn:     types.DefaultNameColumn,
		UserIDColumn:   types.DefaultUserIDColumn,
		UserIDMin:      1,
		UserIDMax:      0,
		AnswerColumns:  types.DefaultAnswerColumns,
		DisplayColumns: []string{types.DefaultNameColumn, types.DefaultKeyColumn},
	}
}

// listEnv holds the comma-separated overrides of list keys. Viper's
// AutomaticEnv hands these back as one string split on whitespace.
type listEnv struct {
	KeyColumns     []string `env:"USERMAP_KEY_COLUMNS"`
	AnswerColumns  []string `env:"USERMAP_ANSWER_COLUMNS"`
	DisplayColumns []string `env:"USERMAP_DISPLAY_COLUMNS"`
}

// stringList returns the override when one is set, trimmed and without
// empty items, and the Viper value otherwise.
func stringList(v *viper.Viper, key string, override []string) []string {
	if override == nil {
		return v.GetStringSlice(key)
	}
	out := make([]string, 0, len(override))
	for _, s := range override {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// configHeader precedes the marshaled defaults in a fresh config.yaml.
const configHeader = `# usermap configuration
# Relative input paths resolve against the working directory, mapping_file
# against this directory, output_file against output_dir.
# key_mode: literal (values joined with "_") or hash (UUID of that value).
# input_encoding: utf-8 or shift_jis. user_id_max: 0 means no upper bound.
# Every key can be overridden by a USERMAP_<KEY> environment variable;
# list keys take comma-separated values (USERMAP_KEY_COLUMNS=timestamp,name).

`

// loadConfig reads config.yaml from configDir using Viper. It creates the
// directory and a default config.yaml on first run.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: ensure config dir: %w", types.ErrIO, err)
	}
	if err := writeConfigIfMissing(filepath.Join(configDir, configFileExt)); err != nil {
		return nil, fmt.Errorf("%w: ensure default config: %w", types.ErrIO, err)
	}

	d := defaultConfigFile()
	v := viper.New()
	v.SetDefault(cfgKeyInput, d.Input)
	v.SetDefault(cfgKeyInputEncoding, d.InputEncoding)
	v.SetDefault(cfgKeyMappingFile, d.MappingFile)
	v.SetDefault(cfgKeyOutputDir, "")
	v.SetDefault(cfgKeyOutputFile, "")
	v.SetDefault(cfgKeyKeyColumns, d.KeyColumns)
	v.SetDefault(cfgKeyKeyMode, d.KeyMode)
	v.SetDefault(cfgKeyNameColumn, d.NameColumn)
	v.SetDefault(cfgKeyUserIDColumn, d.UserIDColumn)
	v.SetDefault(cfgKeyUserIDMin, d.UserIDMin)
	v.SetDefault(cfgKeyUserIDMax, d.UserIDMax)
	v.SetDefault(cfgKeyAnswerColumns, d.AnswerColumns)
	v.SetDefault(cfgKeyDisplayColumns, d.DisplayColumns)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("%w: read config: %w", types.ErrParse, err)
	}
	return v, nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. An existing file is left alone.
func writeConfigIfMissing(path string) error {
	exists, err := fsutil.Exists(path)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	cfg := defaultConfigFile()
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, append([]byte(configHeader), data...), 0o644)
}

// resolveConfig combines flags, environment and config.yaml into the
// types.Config the commands run with.
func (a *app) resolveConfig() (types.Config, error) {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return types.Config{}, err
	}

	var lists listEnv
	if err := env.Parse(&lists); err != nil {
		return types.Config{}, fmt.Errorf("%w: read environment: %w", types.ErrUsage, err)
	}

	outputDir, err := paths.ResolveOutputDir(a.flags.outputDir, v.GetString(cfgKeyOutputDir))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve output dir: %w", err)
	}

	input := a.flags.input
	if input == "" {
		input = v.GetString(cfgKeyInput)
	}
	input, err = filepath.Abs(input)
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve input: %w", err)
	}

	outputFile := v.GetString(cfgKeyOutputFile)
	if outputFile == "" {
		outputFile = defaultOutputName(input)
	}

	cfg := types.Config{
		InputPath:      input,
		InputEncoding:  strings.ToLower(v.GetString(cfgKeyInputEncoding)),
		MappingPath:    paths.ResolveFile(configDir, v.GetString(cfgKeyMappingFile)),
		OutputPath:     paths.ResolveFile(outputDir, outputFile),
		KeyColumns:     stringList(v, cfgKeyKeyColumns, lists.KeyColumns),
		KeyMode:        v.GetString(cfgKeyKeyMode),
		NameColumn:     v.GetString(cfgKeyNameColumn),
		UserIDColumn:   v.GetString(cfgKeyUserIDColumn),
		UserIDMin:      v.GetInt(cfgKeyUserIDMin),
		UserIDMax:      v.GetInt(cfgKeyUserIDMax),
		AnswerColumns:  stringList(v, cfgKeyAnswerColumns, lists.AnswerColumns),
		DisplayColumns: stringList(v, cfgKeyDisplayColumns, lists.DisplayColumns),
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("%w: invalid config in %s: %w", types.ErrUsage, configDir, err)
	}
	return cfg, nil
}

// defaultOutputName derives the annotated file name from the input path:
// responses.csv becomes responses_with_user_id.csv.
func defaultOutputName(input string) string {
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	if ext == "" {
		ext = ".csv"
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + outputSuffix + ext
}
