package main

import (
	"errors"
	"fmt"

	"civic-tracker-be/services"

	"github.com/spf13/cobra"
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every issue in the store",
	Long: `Delete every issue in the configured MongoDB database.

This cannot be undone. Pass --yes to confirm.

EXAMPLES:

  civicctl purge --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return errors.New("refusing to delete all issues without --yes")
		}

		return withIssueService(cmd.Context(), func(svc *services.IssueService) error {
			n, err := svc.Purge(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d issues\n", n)
			return nil
		})
	},
}

func init() {
	purgeCmd.Flags().BoolP("yes", "y", false, "Confirm deletion of all issues")
	rootCmd.AddCommand(purgeCmd)
}
