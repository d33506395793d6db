package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every activity with its schedule, availability and roster",
	RunE: func(cmd *cobra.Command, _ []string) error {
		api, err := apiClient()
		if err != nil {
			return err
		}
		snapshot, err := api.Snapshot(cmd.Context())
		if err != nil {
			return err
		}

		names := make([]string, 0, len(snapshot))
		for name := range snapshot {
			names = append(names, name)
		}
		sort.Strings(names)

		out := cmd.OutOrStdout()
		for _, name := range names {
			activity := snapshot[name]
			fmt.Fprintf(out, "%s\n", name)
			fmt.Fprintf(out, "  %s\n", activity.Description)
			fmt.Fprintf(out, "  Schedule: %s\n", activity.Schedule)
			fmt.Fprintf(out, "  Spots left: %d of %d\n", activity.SpotsLeft(), activity.MaxParticipants)
			if len(activity.Participants) == 0 {
				fmt.Fprintf(out, "  Participants: none yet\n")
			} else {
				fmt.Fprintf(out, "  Participants:\n")
				for _, email := range activity.Participants {
					fmt.Fprintf(out, "    - %s\n", email)
				}
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
