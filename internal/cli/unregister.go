package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var unregisterCmd = &cobra.Command{
	Use:   "unregister <activity>",
	Short: "Remove a student from an activity roster",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := resolveEmail()
		if err != nil {
			return err
		}
		api, err := apiClient()
		if err != nil {
			return err
		}
		message, err := api.Unregister(cmd.Context(), args[0], email)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(unregisterCmd)
}
