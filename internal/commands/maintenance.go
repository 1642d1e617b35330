package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"club-recon/internal/app"
	"club-recon/pkg/logger"
)

func newSweepCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Expire PENDING payment requests past their deadline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				n, err := a.Expiry.SweepExpired(ctx, time.Now().UTC())
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]int{"expired": n})
			})
		},
	}
}

func newBalanceCommand() *cobra.Command {
	var clubID int64

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Print the ledger balance of a club",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				balance, err := a.Ledger.Balance(ctx, clubID)
				if err != nil {
					return err
				}
				return printJSON(cmd, balance)
			})
		},
	}

	cmd.Flags().Int64Var(&clubID, "club", 0, "club id (required)")
	_ = cmd.MarkFlagRequired("club")

	return cmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if a.DB == nil {
					return fmt.Errorf("migrate needs STORE=postgres")
				}
				if err := a.Migrate(ctx); err != nil {
					return err
				}
				logger.GetLogger().Info("Schema applied")
				return nil
			})
		},
	}
}
