package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/usermap/internal/query"
	"github.com/mesh-intelligence/usermap/internal/responsedb"
	"github.com/mesh-intelligence/usermap/internal/survey"
	"github.com/mesh-intelligence/usermap/pkg/types"
)

func newQueryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "query <user_id>",
		Short: "Print the answers of one user",
		Long: `Query reads the annotated CSV written by process and prints the configured
answer columns (E1, E2, E3 by default) of every row carrying the user id.

Example:
  usermap query 1
  usermap query 1 --json`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("%w: query takes exactly one <user_id>, got %d argument(s)", types.ErrUsage, len(args))
			}
			return nil
		},
		RunE: a.runQuery,
	}
}

func (a *app) runQuery(cmd *cobra.Command, args []string) error {
	cfg := a.cfg

	userID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: user id must be an integer: %q", types.ErrUsage, args[0])
	}
	if userID < cfg.UserIDMin || (cfg.UserIDMax > 0 && userID > cfg.UserIDMax) {
		upper := ""
		if cfg.UserIDMax > 0 {
			upper = strconv.Itoa(cfg.UserIDMax)
		}
		return fmt.Errorf("%w: user id %d outside configured range %d..%s", types.ErrUsage, userID, cfg.UserIDMin, upper)
	}

	a.logger.Info("reading annotated survey", zap.String("path", cfg.OutputPath))
	tbl, err := survey.ReadFile(cfg.OutputPath, types.EncodingUTF8)
	if err != nil {
		return err
	}

	db, err := responsedb.Open(tbl, cfg.UserIDColumn)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.OutputPath, err)
	}
	defer db.Close()
	if n, err := db.Count(); err == nil {
		a.logger.Debug("loaded annotated rows", zap.Int("rows", n))
	}

	resps, err := query.Lookup(db, userID, query.Options{
		AnswerColumns:  cfg.AnswerColumns,
		DisplayColumns: cfg.DisplayColumns,
	})
	var nf *types.NotFoundError
	if errors.As(err, &nf) {
		return fmt.Errorf("%w (valid user ids: %s)", err, joinInts(nf.Known))
	}
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.OutputPath, err)
	}
	a.logger.Debug("query matched", zap.Int("user_id", userID), zap.Int("rows", len(resps)))

	if a.flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), resps)
	}
	printResponses(cmd.OutOrStdout(), resps)
	return nil
}
