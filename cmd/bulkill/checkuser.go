package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/libapps/bulkill/internal/illiad"
)

var checkUserCmd = &cobra.Command{
	Use:   "check-user <email>",
	Short: "Verify that a requester account exists and is cleared",
	Long: `Check-user looks up an email address in the loan system and reports
whether the account exists and is cleared to place requests. Useful before
queueing a large batch for someone else.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svcCfg, err := serviceConfig()
		if err != nil {
			return &configError{err}
		}
		client := illiad.NewClient(svcCfg)
		if err := client.CheckUser(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "User %s confirmed.\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkUserCmd)
}
