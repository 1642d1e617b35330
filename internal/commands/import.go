package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"club-recon/internal/app"
	"club-recon/internal/domain"
	"club-recon/internal/parser"
	"club-recon/pkg/logger"
)

// ImportSummary is printed by the import command.
type ImportSummary struct {
	Ingest   domain.IngestResult   `json:"ingest"`
	Outcomes []domain.MatchOutcome `json:"outcomes,omitempty"`
}

func newImportCommand() *cobra.Command {
	var clubID int64
	var accountRef string
	var skipMatch bool

	cmd := &cobra.Command{
		Use:   "import <statement.csv>",
		Short: "Ingest a bank statement export and auto-match its deposits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				summary, err := runImport(ctx, a, args[0], clubID, accountRef, skipMatch)
				if err != nil {
					return err
				}
				return printJSON(cmd, summary)
			})
		},
	}

	cmd.Flags().Int64Var(&clubID, "club", 0, "club id (required)")
	_ = cmd.MarkFlagRequired("club")
	cmd.Flags().StringVar(&accountRef, "account", "", "bank account reference (required)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().BoolVar(&skipMatch, "skip-match", false, "ingest only, do not auto-match")

	return cmd
}

func runImport(ctx context.Context, a *app.App, path string, clubID int64, accountRef string, skipMatch bool) (*ImportSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()

	summary := &ImportSummary{}
	p := parser.NewCSVStatementParser(a.Location)

	err = p.Parse(f, a.Config.App.BatchSize, func(batch []domain.RawRecord) error {
		result, err := a.Ingest.IngestWithResult(ctx, clubID, accountRef, batch)
		if err != nil {
			return err
		}
		summary.Ingest.Merge(*result)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", path, err)
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"club_id":     clubID,
		"account_ref": accountRef,
		"new":         len(summary.Ingest.NewIDs),
		"duplicates":  summary.Ingest.Duplicates,
		"unmatched":   len(summary.Ingest.ExistingUnmatchedIDs),
		"rejected":    summary.Ingest.Rejected,
	}).Info("Statement imported")

	candidates := summary.Ingest.MatchCandidates()
	if skipMatch || len(candidates) == 0 {
		return summary, nil
	}

	summary.Outcomes, err = a.Reconciliation.AutoMatch(ctx, clubID, candidates)
	if err != nil {
		return summary, err
	}
	return summary, nil
}
