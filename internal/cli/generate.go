package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/usermap/internal/mapping"
	"github.com/mesh-intelligence/usermap/internal/survey"
)

type generateFlags struct {
	force   bool
	prefill bool
}

func newGenerateCmd(a *app) *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a mapping template from the survey CSV",
		Long: `Generate reads the survey CSV and writes the mapping file with one entry
per distinct respondent key. Fill in user_id for every entry, then run
process.

An existing mapping file is not replaced unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd, f)
		},
	}
	cmd.Flags().BoolVarP(&f.force, "force", "f", false, "overwrite an existing mapping file")
	cmd.Flags().BoolVar(&f.prefill, "prefill", false, "assign user ids sequentially in key order instead of leaving them null")
	return cmd
}

// generateSummary is the --json output of generate.
type generateSummary struct {
	MappingFile string `json:"mapping_file"`
	Entries     int    `json:"entries"`
	Rows        int    `json:"rows"`
	BlankKeys   int    `json:"blank_keys"`
	Prefilled   bool   `json:"prefilled"`
}

func (a *app) runGenerate(cmd *cobra.Command, f generateFlags) error {
	cfg := a.cfg
	a.logger.Info("reading survey", zap.String("path", cfg.InputPath))
	tbl, err := survey.ReadFile(cfg.InputPath, cfg.InputEncoding)
	if err != nil {
		return err
	}

	m, report, err := mapping.Generate(tbl, mapping.GenerateOptions{
		KeyColumns: cfg.KeyColumns,
		KeyMode:    cfg.EffectiveKeyMode(),
		NameColumn: cfg.NameColumn,
		Prefill:    f.prefill,
		FirstID:    cfg.UserIDMin,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.InputPath, err)
	}
	if report.NameMissing {
		a.logger.Warn("name column not found; entries carry no reference name", zap.String("column", cfg.NameColumn))
	}
	if report.BlankKeys > 0 {
		a.logger.Warn("skipped rows with blank respondent key", zap.Int("rows", report.BlankKeys))
	}
	if f.prefill && cfg.UserIDMax > 0 && m.Len() > cfg.UserIDMax-cfg.UserIDMin+1 {
		a.logger.Warn("more respondents than ids in range; edit the mapping before processing",
			zap.Int("respondents", m.Len()), zap.Int("user_id_max", cfg.UserIDMax))
	}

	if err := mapping.Save(cfg.MappingPath, m, f.force); err != nil {
		return err
	}
	a.logger.Info("mapping template written", zap.String("path", cfg.MappingPath), zap.Int("entries", m.Len()))

	if a.flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), generateSummary{
			MappingFile: cfg.MappingPath,
			Entries:     m.Len(),
			Rows:        report.Rows,
			BlankKeys:   report.BlankKeys,
			Prefilled:   f.prefill,
		})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %d entries to %s\n", m.Len(), cfg.MappingPath)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintf(out, "  1. Edit %s and set user_id for every entry\n", cfg.MappingPath)
	fmt.Fprintln(out, "  2. Run: usermap process")
	return nil
}
