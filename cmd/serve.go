package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/glefebvre/cinevo/internal/api"
	"github.com/glefebvre/cinevo/internal/catalog"
	"github.com/glefebvre/cinevo/internal/config"
	"github.com/glefebvre/cinevo/internal/database"
	"github.com/glefebvre/cinevo/internal/external/subsource"
	"github.com/glefebvre/cinevo/internal/external/tmdb"
	"github.com/glefebvre/cinevo/internal/links"
	"github.com/glefebvre/cinevo/internal/logger"
	"github.com/glefebvre/cinevo/internal/shutdown"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API server. The server stops gracefully on SIGINT or
SIGTERM: in-flight requests finish, then the database connection closes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()

		port, _ := cmd.Flags().GetInt("port")
		if port == 0 {
			port = cfg.API.Port
		}
		timeout, _ := cmd.Flags().GetDuration("shutdown-timeout")

		if cfg.TMDB.APIKey == "" {
			logger.AppLogger().Warn("tmdb.api_key is empty, catalog requests will be rejected upstream")
		}

		if err := database.Initialize(); err != nil {
			return fmt.Errorf("database: %w", err)
		}

		handler := shutdown.New(timeout)
		handler.Register("database", func(ctx context.Context) error {
			return database.Close()
		})

		svc, err := newCatalogService(cmd.Context(), cfg)
		if err != nil {
			handler.Shutdown()
			return err
		}

		deps := api.Deps{
			Catalog: svc,
			Links:   links.NewBuilder(cfg.EnabledSources()),
			Prober:  links.NewProber(nil),
		}
		if cfg.Subtitles.Enabled {
			deps.Subtitles = subsource.NewLoaderFromConfig(cfg.Subtitles)
		}

		server := api.NewServer(cfg, deps)
		handler.Register("http", server.Shutdown)

		errCh := make(chan error, 1)
		go func() {
			err := server.Run(port)
			errCh <- err
			if err != nil {
				handler.TriggerShutdown()
			}
		}()

		waitErr := handler.Wait(cmd.Context())
		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("api server: %w", err)
			}
		default:
		}
		if waitErr != nil {
			fmt.Fprintf(os.Stderr, "Shutdown finished with errors: %v\n", waitErr)
		}
		return nil
	},
}

func newCatalogService(ctx context.Context, cfg *config.Config) (*catalog.Service, error) {
	favs, hist, err := openLibrary(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client := tmdb.NewClient(tmdb.ConfigFrom(cfg.TMDB))
	return catalog.NewService(cfg, catalog.Deps{
		Source:    client,
		Links:     links.NewBuilder(cfg.EnabledSources()),
		Favorites: favs,
		History:   hist,
	}), nil
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (default from api.port)")
	serveCmd.Flags().Duration("shutdown-timeout", 15*time.Second, "time allowed for graceful shutdown")
	rootCmd.AddCommand(serveCmd)
}
