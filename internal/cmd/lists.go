package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oceanbase/cinedeck-go/pkg/catalog"
	"github.com/oceanbase/cinedeck-go/pkg/userstate"
)

var (
	listsRemove string
	listsClear  bool
)

var listsCmd = &cobra.Command{
	Use:       "lists [watchlist|liked]",
	Short:     "Show or edit the watchlist and the liked list",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(userstate.Watchlist), string(userstate.Liked)},
	RunE:      runLists,
}

func init() {
	rootCmd.AddCommand(listsCmd)

	listsCmd.Flags().StringVar(&listsRemove, "remove", "", "Remove one entry, given as type:id (e.g. movie:550)")
	listsCmd.Flags().BoolVar(&listsClear, "clear", false, "Remove every entry")
	listsCmd.MarkFlagsMutuallyExclusive("remove", "clear")
}

func runLists(cmd *cobra.Command, args []string) error {
	name, err := userstate.ParseListName(args[0])
	if err != nil {
		return err
	}

	client, err := openClient()
	if err != nil {
		return err
	}
	defer client.Close()
	ctx := cmd.Context()

	switch {
	case listsClear:
		if err := client.ClearList(ctx, name); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s.\n", name)
		return nil
	case listsRemove != "":
		key, err := catalog.ParseKey(listsRemove)
		if err != nil {
			return err
		}
		if err := client.RemoveFromList(ctx, name, key); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from %s.\n", key, name)
		return nil
	}

	entries, err := client.List(ctx, name)
	if err != nil {
		return err
	}
	printEntries(cmd.OutOrStdout(), entries)
	return nil
}
