package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oceanbase/cinedeck-go/pkg/catalog"
	"github.com/oceanbase/cinedeck-go/pkg/core"
)

var (
	discoverType      string
	discoverGenres    []int
	discoverProviders []int
	discoverPages     int
	discoverMood      string
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Print a freshly sampled deck",
	Long: `Sample random catalog pages and print the deduplicated candidates.

Without --genres the top learned genres are used. --mood turns free text such
as "something light and funny" into a genre filter first.`,
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().StringVarP(&discoverType, "type", "t", "movie", "Content type: movie, tv or all")
	discoverCmd.Flags().IntSliceVarP(&discoverGenres, "genres", "g", nil, "Genre ids to filter by")
	discoverCmd.Flags().IntSliceVar(&discoverProviders, "providers", nil, "Watch provider ids to filter by")
	discoverCmd.Flags().IntVarP(&discoverPages, "pages", "n", 0, "Catalog pages per content type (default from config)")
	discoverCmd.Flags().StringVarP(&discoverMood, "mood", "m", "", "Describe what you feel like watching")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	t, err := catalog.ParseContentType(discoverType)
	if err != nil {
		return err
	}

	client, err := openClient()
	if err != nil {
		return err
	}
	defer client.Close()
	ctx := cmd.Context()

	genres := discoverGenres
	if discoverMood != "" && len(genres) == 0 {
		genres, err = client.InterpretMood(ctx, t, discoverMood)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Mood %q maps to genres %v\n", discoverMood, genres)
	}

	items := client.Sample(ctx, t,
		core.WithGenres(genres...),
		core.WithProviders(discoverProviders...),
		core.WithPages(discoverPages),
	)
	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No titles found.")
		return nil
	}
	printItems(cmd.OutOrStdout(), items)
	return nil
}
