package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"club-recon/internal/app"
	"club-recon/internal/service"
	"club-recon/pkg/logger"
)

func newSyncCommand() *cobra.Command {
	var clubID int64
	var accountRef string
	var skipMatch bool
	var all bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch, ingest and auto-match bank transactions",
		Long: "Sync one club account (--account), every account of a club, or every\n" +
			"configured club (--all). The window continues from the latest ledger entry.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && clubID == 0 {
				return fmt.Errorf("--club or --all is required")
			}

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				switch {
				case all:
					failed := a.Scheduler.SyncAll(ctx)
					if failed > 0 {
						return fmt.Errorf("%d club(s) failed to sync", failed)
					}
					logger.GetLogger().Info("All clubs synced")
					return nil

				case accountRef != "":
					report, err := a.Sync.Sync(ctx, service.SyncRequest{
						ClubID:     clubID,
						AccountRef: accountRef,
						SkipMatch:  skipMatch,
					})
					if err != nil {
						return err
					}
					return printJSON(cmd, report)

				default:
					reports, err := a.Sync.SyncClub(ctx, clubID, skipMatch)
					if err != nil {
						return err
					}
					return printJSON(cmd, reports)
				}
			})
		},
	}

	cmd.Flags().Int64Var(&clubID, "club", 0, "club id")
	cmd.Flags().StringVar(&accountRef, "account", "", "bank account reference (default: every account of the club)")
	cmd.Flags().BoolVar(&skipMatch, "skip-match", false, "ingest only, do not auto-match")
	cmd.Flags().BoolVar(&all, "all", false, "sync every configured club")

	return cmd
}
