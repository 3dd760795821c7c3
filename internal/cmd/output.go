package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/oceanbase/cinedeck-go/pkg/catalog"
	"github.com/oceanbase/cinedeck-go/pkg/core"
	"github.com/oceanbase/cinedeck-go/pkg/userstate"
)

func printItems(w io.Writer, items []catalog.Item) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tTITLE\tYEAR\tRATING")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\n", item.Key(), item.Title, year(item.ReleaseDate), item.VoteAverage)
	}
	_ = tw.Flush()
}

func printEntries(w io.Writer, entries []userstate.ListEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "(empty)")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tTITLE\tADDED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Key(), e.Title, e.AddedAt.Format("2006-01-02"))
	}
	_ = tw.Flush()
}

func printProfile(w io.Writer, p *core.ProfileSnapshot) {
	fmt.Fprintf(w, "Profile %s, %d hidden titles\n", p.ProfileID, p.HiddenCount)
	if len(p.Genres) == 0 {
		fmt.Fprintln(w, "No preferences learned yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GENRE\tNAME\tSCORE")
	for _, g := range p.Genres {
		fmt.Fprintf(tw, "%d\t%s\t%.3f\n", g.GenreID, g.Name, g.Score)
	}
	_ = tw.Flush()
}

func printSwipe(w io.Writer, r *core.SwipeResult) {
	parts := []string{string(r.Action)}
	if r.Recorded {
		parts = append(parts, fmt.Sprintf("recorded for genres %v", r.Genres))
	}
	if r.Hidden {
		parts = append(parts, "hidden")
	}
	if r.List != "" {
		parts = append(parts, "saved to "+string(r.List))
	}
	fmt.Fprintf(w, "%s %q: %s\n", r.Item.Key(), r.Item.Title, strings.Join(parts, ", "))
}

func printDetails(w io.Writer, d *core.TitleDetails) {
	fmt.Fprintf(w, "%s %s (%s)\n", d.Item.Key(), d.Item.Title, year(d.Item.ReleaseDate))
	if names := genreNames(d.Genres); names != "" {
		fmt.Fprintln(w, names)
	}
	if rt := runtimeText(d.Item.Type, d.Runtime); rt != "" {
		fmt.Fprintf(w, "Runtime: %s\n", rt)
	}
	if d.Director != "" {
		fmt.Fprintf(w, "Director: %s\n", d.Director)
	}
	if d.Item.Overview != "" {
		fmt.Fprintf(w, "\n%s\n", d.Item.Overview)
	}
	if len(d.Cast) > 0 {
		fmt.Fprintln(w, "\nCast:")
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, c := range d.Cast {
			fmt.Fprintf(tw, "  %s\t%s\n", c.Name, c.Character)
		}
		_ = tw.Flush()
	}
	if d.TrailerURL != "" {
		fmt.Fprintf(w, "\nTrailer: %s\n", d.TrailerURL)
	}
	if d.Availability != nil && len(d.Availability.Providers) > 0 {
		names := make([]string, 0, len(d.Availability.Providers))
		for _, p := range d.Availability.Providers {
			names = append(names, p.Name)
		}
		fmt.Fprintf(w, "Watch in %s: %s\n", d.Availability.Region, strings.Join(names, ", "))
	}
}

func genreNames(genres []catalog.Genre) string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	return strings.Join(names, " • ")
}

// runtimeText renders "2h 19m" for movies and "60 min/ep" for series.
func runtimeText(t catalog.ContentType, minutes int) string {
	switch {
	case minutes <= 0:
		return ""
	case t == catalog.TV:
		return fmt.Sprintf("%d min/ep", minutes)
	case minutes >= 60:
		return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

func year(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return "-"
}
