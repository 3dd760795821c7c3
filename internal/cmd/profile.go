package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var profileReset bool

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the learned genre preferences",
	Long: `Show genre scores as of now. Scores decay with a 90 day half-life by
default; the decayed view is computed on the fly and not written back.`,
	RunE: runProfile,
}

func init() {
	rootCmd.AddCommand(profileCmd)

	profileCmd.Flags().BoolVar(&profileReset, "reset", false, "Forget all preferences, hidden titles, filters and lists")
}

func runProfile(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer client.Close()
	ctx := cmd.Context()

	if profileReset {
		if err := client.ResetProfile(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Profile %s reset.\n", client.ProfileID())
		return nil
	}

	snapshot, err := client.Profile(ctx)
	if err != nil {
		return err
	}
	printProfile(cmd.OutOrStdout(), snapshot)
	return nil
}
