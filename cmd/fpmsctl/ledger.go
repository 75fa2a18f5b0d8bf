package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const ledgerPageSize = 200

func ledgerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Maintain users' running score totals",
	}

	var userID string
	recompute := &cobra.Command{
		Use:   "recompute",
		Short: "Rebuild total_score from accepted submissions",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			ctx := cmd.Context()
			if userID != "" {
				res, err := a.svc.Score.Recompute(ctx, userID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %g (%d accepted)\n", res.UserID, res.TotalScore, res.AcceptedCount)
				return nil
			}

			var done, failed int
			for offset := 0; ; offset += ledgerPageSize {
				users, _, err := a.repo.User.List(ctx, offset, ledgerPageSize)
				if err != nil {
					return err
				}
				for _, u := range users {
					if _, err := a.svc.Score.Recompute(ctx, u.UserID); err != nil {
						a.logger.Warn("recompute failed", zap.String("user_id", u.UserID), zap.Error(err))
						failed++
						continue
					}
					done++
				}
				if len(users) < ledgerPageSize {
					break
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recomputed %d users, %d failed\n", done, failed)
			if failed > 0 {
				return fmt.Errorf("%d users could not be recomputed", failed)
			}
			return nil
		}),
	}
	recompute.Flags().StringVar(&userID, "user", "", "recompute a single user")
	cmd.AddCommand(recompute)

	return cmd
}
