package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var signupCmd = &cobra.Command{
	Use:   "signup <activity>",
	Short: "Sign a student up for an activity",
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
		message, err := api.Signup(cmd.Context(), args[0], email)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(signupCmd)
}
