package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oceanbase/cinedeck-go/pkg/catalog"
	"github.com/oceanbase/cinedeck-go/pkg/intelligence"
	"github.com/oceanbase/cinedeck-go/pkg/logging"
)

var (
	swipeType    string
	swipeID      int64
	swipeAction  string
	swipeVerdict string
)

var swipeCmd = &cobra.Command{
	Use:   "swipe",
	Short: "Record a decision about one title",
	Long: `Apply like, dislike, watch_later, seen, skip or cancel to a title.

A seen decision needs --verdict liked, disliked or cancelled.`,
	RunE: runSwipe,
}

func init() {
	rootCmd.AddCommand(swipeCmd)

	swipeCmd.Flags().StringVarP(&swipeType, "type", "t", "movie", "Content type: movie or tv")
	swipeCmd.Flags().Int64Var(&swipeID, "id", 0, "Catalog id of the title")
	swipeCmd.Flags().StringVarP(&swipeAction, "action", "a", "", "like, dislike, watch_later, seen, skip or cancel")
	swipeCmd.Flags().StringVar(&swipeVerdict, "verdict", "", "Answer of the seen dialog: liked, disliked or cancelled")
	_ = swipeCmd.MarkFlagRequired("id")
	_ = swipeCmd.MarkFlagRequired("action")
}

func runSwipe(cmd *cobra.Command, args []string) error {
	t, err := catalog.ParseContentType(swipeType)
	if err != nil {
		return err
	}
	if !t.Valid() {
		return fmt.Errorf("--type must be movie or tv")
	}
	action, err := intelligence.ParseAction(swipeAction)
	if err != nil {
		return err
	}
	verdict, err := intelligence.ParseVerdict(swipeVerdict)
	if err != nil {
		return err
	}

	client, err := openClient()
	if err != nil {
		return err
	}
	defer client.Close()
	ctx := cmd.Context()

	item := catalog.Item{ID: swipeID, Type: t}
	if details, err := client.Catalog().Details(ctx, t, swipeID); err == nil {
		item = details.Item
		item.Type = t
		item.GenreIDs = details.GenreIDList()
	} else {
		logging.Warn().Err(err).Str("key", item.Key().String()).Msg("title details unavailable")
	}

	result, err := client.Decide(ctx, item, intelligence.Decision{Action: action, Verdict: verdict})
	if result != nil {
		printSwipe(cmd.OutOrStdout(), result)
	}
	return err
}
