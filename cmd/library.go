package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/glefebvre/cinevo/internal/config"
	"github.com/glefebvre/cinevo/internal/database"
	"github.com/glefebvre/cinevo/internal/favorites"
	"github.com/glefebvre/cinevo/internal/history"
	"github.com/glefebvre/cinevo/internal/storage"
	"github.com/spf13/cobra"
)

// openLibrary opens the favorites and history stores on the initialized
// database. A disabled feature yields a nil store.
func openLibrary(ctx context.Context, cfg *config.Config) (*favorites.Store, *history.Store, error) {
	backend := storage.NewGormStore(database.Get())

	var (
		favs *favorites.Store
		hist *history.Store
		err  error
	)
	if cfg.Favorites.Enabled {
		if favs, err = favorites.New(ctx, backend, cfg.Favorites); err != nil {
			return nil, nil, fmt.Errorf("favorites: %w", err)
		}
	}
	if cfg.History.Enabled {
		if hist, err = history.New(ctx, backend, cfg.History); err != nil {
			return nil, nil, fmt.Errorf("history: %w", err)
		}
	}
	return favs, hist, nil
}

func withLibrary(cmd *cobra.Command, fn func(favs *favorites.Store, hist *history.Store) error) error {
	if err := database.Initialize(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer database.Close()

	favs, hist, err := openLibrary(cmd.Context(), config.Get())
	if err != nil {
		return err
	}
	return fn(favs, hist)
}

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "Inspect saved favorites",
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved favorites",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(cmd, func(favs *favorites.Store, _ *history.Store) error {
			if favs == nil {
				return fmt.Errorf("favorites are disabled")
			}

			list := favs.List()
			if len(list) == 0 {
				fmt.Println("No favorites saved.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tTITLE")
			for _, f := range list {
				fmt.Fprintf(w, "%d\t%s\t%s\n", f.ID, f.MediaKind, f.Title)
			}
			return w.Flush()
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect or clear the watch history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recently watched titles",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		return withLibrary(cmd, func(_ *favorites.Store, hist *history.Store) error {
			if hist == nil {
				return fmt.Errorf("history is disabled")
			}

			entries := hist.MostRecent(limit)
			if len(entries) == 0 {
				fmt.Println("Watch history is empty.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "WATCHED AT\tID\tTITLE\tDURATION\tDONE")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%d\t%s\t%.0fs\t%t\n",
					e.Timestamp.Format("2006-01-02 15:04"), e.ContentID, e.Title, e.Duration, e.Watched)
			}
			return w.Flush()
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every watch history entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(cmd, func(_ *favorites.Store, hist *history.Store) error {
			if hist == nil {
				return fmt.Errorf("history is disabled")
			}

			removed := hist.Len()
			if err := hist.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("Removed %d history entries.\n", removed)
			return nil
		})
	},
}

func init() {
	historyListCmd.Flags().Int("limit", 10, "number of entries to show (0 for all)")

	favoritesCmd.AddCommand(favoritesListCmd)
	historyCmd.AddCommand(historyListCmd, historyClearCmd)
	rootCmd.AddCommand(favoritesCmd, historyCmd)
}
