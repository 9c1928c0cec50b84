package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/usermap/pkg/types"
)

// newInitCmd creates the config directory, config.yaml and the output
// directory. Configuration has already been loaded (and config.yaml written
// if missing) by the root command.
func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration and output directories",
		Long:  "Create config.yaml with default settings if it is missing, and the output directory.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputDir := filepath.Dir(a.cfg.OutputPath)
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("%w: create output directory: %w", types.ErrIO, err)
			}
			configDir := filepath.Dir(a.cfg.MappingPath)
			fmt.Fprintf(cmd.OutOrStdout(), "Config:  %s\nMapping: %s\nInput:   %s\nOutput:  %s\n",
				filepath.Join(configDir, configFileExt), a.cfg.MappingPath, a.cfg.InputPath, a.cfg.OutputPath)
			return nil
		},
	}
}
