package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/usermap/internal/annotate"
	"github.com/mesh-intelligence/usermap/internal/mapping"
	"github.com/mesh-intelligence/usermap/internal/survey"
)

type processFlags struct {
	strict bool
	sort   bool
}

func newProcessCmd(a *app) *cobra.Command {
	var f processFlags
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Write the survey CSV annotated with user ids",
		Long: `Process loads the mapping file, joins every survey row to its user id by
respondent key, and writes the annotated CSV with the user id column first.

Rows without an assigned user id are kept with a blank id unless --strict
is given. The output is replaced atomically; a failed run leaves the
previous output untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runProcess(cmd, f)
		},
	}
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail if any row has no assigned user id")
	cmd.Flags().BoolVar(&f.sort, "sort", false, "order rows by user id, unmapped rows last")
	return cmd
}

// processSummary is the --json output of process.
type processSummary struct {
	OutputFile   string   `json:"output_file"`
	Rows         int      `json:"rows"`
	Mapped       int      `json:"mapped"`
	UnmappedKeys []string `json:"unmapped_keys"`
	UnusedKeys   []string `json:"unused_keys"`
}

func (a *app) runProcess(cmd *cobra.Command, f processFlags) error {
	cfg := a.cfg

	a.logger.Info("loading mapping", zap.String("path", cfg.MappingPath))
	m, err := mapping.Load(cfg.MappingPath)
	if err != nil {
		return err
	}
	report, err := mapping.Validate(m, cfg.UserIDMin, cfg.UserIDMax)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.MappingPath, err)
	}
	if len(report.Placeholders) > 0 {
		a.logger.Warn("mapping entries without user_id", zap.Strings("keys", report.Placeholders))
	}
	if len(report.Unused) > 0 {
		a.logger.Warn("user ids in range not assigned", zap.Ints("ids", report.Unused))
	}

	a.logger.Info("reading survey", zap.String("path", cfg.InputPath))
	tbl, err := survey.ReadFile(cfg.InputPath, cfg.InputEncoding)
	if err != nil {
		return err
	}

	res, err := annotate.Annotate(tbl, m, annotate.Options{
		KeyColumns:   cfg.KeyColumns,
		KeyMode:      cfg.EffectiveKeyMode(),
		UserIDColumn: cfg.UserIDColumn,
		Strict:       f.strict,
		SortByUserID: f.sort,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.InputPath, err)
	}
	if len(res.UnmappedKeys) > 0 {
		a.logger.Warn("rows without user id kept with blank id",
			zap.Int("rows", len(res.Rows)-res.Mapped), zap.Strings("keys", res.UnmappedKeys))
	}
	if len(res.UnusedKeys) > 0 {
		a.logger.Info("mapping entries matched no row", zap.Strings("keys", res.UnusedKeys))
	}

	if err := survey.WriteFile(cfg.OutputPath, res.Table()); err != nil {
		return err
	}
	a.logger.Info("annotated survey written", zap.String("path", cfg.OutputPath), zap.Int("rows", len(res.Rows)))

	if a.flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), processSummary{
			OutputFile:   cfg.OutputPath,
			Rows:         len(res.Rows),
			Mapped:       res.Mapped,
			UnmappedKeys: nonNil(res.UnmappedKeys),
			UnusedKeys:   nonNil(res.UnusedKeys),
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows (%d mapped, %d unmapped) to %s\n",
		len(res.Rows), res.Mapped, len(res.Rows)-res.Mapped, cfg.OutputPath)
	return nil
}
