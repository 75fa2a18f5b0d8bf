package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func usersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "seed <users.yaml>",
		Short: "Create users or refresh their profiles; passwords are bcrypt-hashed",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			var f usersFile
			if err := readYAML(args[0], &f); err != nil {
				return err
			}
			n, err := a.svc.Auth.SeedUsers(cmd.Context(), f.Users, globalFlags.actor)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users\n", n)
			return nil
		}),
	})
	return cmd
}
