package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func rulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage workflow routing rules",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "import <rules.yaml>",
		Short: "Validate and replace the role registry and routing rules",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			var f rulesFile
			if err := readYAML(args[0], &f); err != nil {
				return err
			}
			if len(f.Rules) == 0 {
				return fmt.Errorf("%s: no rules", args[0])
			}
			if err := a.svc.Rule.ImportRules(cmd.Context(), f.Roles, f.Rules, globalFlags.actor); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d roles, %d rules\n", len(f.Roles), len(f.Rules))
			return nil
		}),
	})
	return cmd
}

func formsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forms",
		Short: "Manage rubric forms",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "import <form.yaml>...",
		Short: "Create or replace rubric forms",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			for _, path := range args {
				var f formFile
				if err := readYAML(path, &f); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				form := f.toModel()
				if err := a.svc.Rule.ImportForm(cmd.Context(), form, globalFlags.actor); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				a.logger.Info("form imported", zap.String("form_id", form.FormID), zap.Int("criteria", len(form.Criteria)))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d forms\n", len(args))
			return nil
		}),
	})
	return cmd
}
