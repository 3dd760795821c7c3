package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/oceanbase/cinedeck-go/pkg/catalog"
)

var (
	catalogType      string
	availabilityType string
	availabilityID   int64
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse catalog genres and watch providers",
}

var catalogGenresCmd = &cobra.Command{
	Use:   "genres",
	Short: "List the genres of a content type",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := concreteType(catalogType)
		if err != nil {
			return err
		}
		client, err := openClient()
		if err != nil {
			return err
		}
		defer client.Close()

		genres, err := client.Genres(cmd.Context(), t)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME")
		for _, g := range genres {
			fmt.Fprintf(tw, "%d\t%s\n", g.ID, g.Name)
		}
		return tw.Flush()
	},
}

var catalogProvidersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the watch providers of the configured region",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := concreteType(catalogType)
		if err != nil {
			return err
		}
		client, err := openClient()
		if err != nil {
			return err
		}
		defer client.Close()

		providers, err := client.WatchProviders(cmd.Context(), t)
		if err != nil {
			return err
		}
		return printProviders(cmd, providers)
	},
}

var availabilityCmd = &cobra.Command{
	Use:   "availability",
	Short: "Show where a title can be watched",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := concreteType(availabilityType)
		if err != nil {
			return err
		}
		client, err := openClient()
		if err != nil {
			return err
		}
		defer client.Close()

		availability, err := client.Availability(cmd.Context(), t, availabilityID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Region %s\n", availability.Region)
		if availability.Link != "" {
			fmt.Fprintln(cmd.OutOrStdout(), availability.Link)
		}
		return printProviders(cmd, availability.Providers)
	},
}

var detailsCmd = &cobra.Command{
	Use:   "details <type> <id>",
	Short: "Show the detail view of a title: credits, trailer and providers",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := concreteType(args[0])
		if err != nil {
			return err
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[1])
		}
		client, err := openClient()
		if err != nil {
			return err
		}
		defer client.Close()

		details, err := client.TitleDetails(cmd.Context(), t, id)
		if err != nil {
			return err
		}
		printDetails(cmd.OutOrStdout(), details)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(availabilityCmd)
	rootCmd.AddCommand(detailsCmd)
	catalogCmd.AddCommand(catalogGenresCmd)
	catalogCmd.AddCommand(catalogProvidersCmd)

	catalogCmd.PersistentFlags().StringVarP(&catalogType, "type", "t", "movie", "Content type: movie or tv")

	availabilityCmd.Flags().StringVarP(&availabilityType, "type", "t", "movie", "Content type: movie or tv")
	availabilityCmd.Flags().Int64Var(&availabilityID, "id", 0, "Catalog id of the title")
	_ = availabilityCmd.MarkFlagRequired("id")
}

func concreteType(s string) (catalog.ContentType, error) {
	t, err := catalog.ParseContentType(s)
	if err != nil {
		return "", err
	}
	if !t.Valid() {
		return "", fmt.Errorf("--type must be movie or tv")
	}
	return t, nil
}

func printProviders(cmd *cobra.Command, providers []catalog.WatchProvider) error {
	if len(providers) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No providers.")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRIORITY")
	for _, p := range providers {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", p.ID, p.Name, p.DisplayPriority)
	}
	return tw.Flush()
}
