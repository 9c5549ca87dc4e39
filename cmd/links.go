package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/glefebvre/cinevo/internal/config"
	"github.com/glefebvre/cinevo/internal/links"
	"github.com/glefebvre/cinevo/internal/models"
	"github.com/spf13/cobra"
)

var linksCmd = &cobra.Command{
	Use:   "links <external-id>",
	Short: "Print the streaming links for a title",
	Long: `Print the embed URL of every enabled streaming source for an external id
such as tt0137523. The "tt" prefix is added when missing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rawKind, _ := cmd.Flags().GetString("kind")
		probe, _ := cmd.Flags().GetBool("probe")

		kind, err := models.ParseMediaKind(rawKind)
		if err != nil {
			return err
		}

		builder := links.NewBuilder(config.Get().EnabledSources())
		sources := builder.Sources(args[0], kind)
		if len(sources) == 0 {
			return fmt.Errorf("no streaming sources for %q", args[0])
		}
		if probe {
			sources = links.NewProber(nil).Available(cmd.Context(), sources)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SOURCE\tQUALITY\tURL")
		for _, s := range sources {
			fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, s.Quality, s.URL)
		}
		return w.Flush()
	},
}

func init() {
	linksCmd.Flags().String("kind", "movie", "media kind: movie or tv")
	linksCmd.Flags().Bool("probe", false, "only list sources that currently answer")
	rootCmd.AddCommand(linksCmd)
}
