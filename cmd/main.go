package main

import (
	"fmt"
	"os"

	"github.com/glefebvre/cinevo/internal/config"
	"github.com/glefebvre/cinevo/internal/logger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "cinevo",
	Short: "Cinevo serves a movie and TV catalog with streaming links and subtitles",
	Long: `Cinevo browses movies and TV shows from TMDB, builds embed links for the
configured streaming sources, loads subtitles and keeps favorites and watch
history in SQLite or PostgreSQL.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of Cinevo",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Cinevo v%s\n", version)
	},
}

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ./config.yml)")
	cobra.OnInitialize(initConfig)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	// Skip config loading for version command
	if len(os.Args) > 1 && os.Args[1] == "version" {
		return
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	}

	if err := config.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Get()
	logger.InitializeLoggersWithFormat(cfg.GetAppLogLevel(), cfg.GetDatabaseLogLevel(), cfg.Logging.Format)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
