package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/agenthands/flowalign/internal/app"
	"github.com/agenthands/flowalign/internal/config"
	"github.com/agenthands/flowalign/internal/logger"
)

const defaultConfigPath = "config/config.toml"

var (
	configPath  string
	datasetPath string
	dryRun      bool
	jsonOutput  bool
	forceBuild  bool

	rootCmd = &cobra.Command{
		Use:           "flowalign",
		Short:         "Align prompt graphs with the canonical flow of real conversations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	alignCmd = &cobra.Command{
		Use:   "align [project] [collection]",
		Short: "Classify every prompt node of a project against a collection",
		Args:  cobra.ExactArgs(2),
		RunE:  runAlign,
	}

	buildCmd = &cobra.Command{
		Use:   "build [collection]",
		Short: "Build the canonical flow graph of a collection",
		Args:  cobra.ExactArgs(1),
		RunE:  runBuild,
	}

	extractCmd = &cobra.Command{
		Use:   "extract [collection] [transcript-file]",
		Short: "Extract a flow graph from a transcript with the configured LLM and store it",
		Args:  cobra.ExactArgs(2),
		RunE:  runExtract,
	}

	phasesCmd = &cobra.Command{
		Use:   "phases [collection]",
		Short: "Group the canonical graph of a collection into phases",
		Args:  cobra.ExactArgs(1),
		RunE:  runPhases,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the TOML config (default $CONFIG_PATH or "+defaultConfigPath+")")
	rootCmd.PersistentFlags().StringVar(&datasetPath, "dataset", "", "YAML dataset to seed the memory backend")

	rootCmd.AddCommand(serveCmd)

	rootCmd.AddCommand(alignCmd)
	alignCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report without replacing stored alignments")
	alignCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the full report as JSON")

	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().BoolVar(&forceBuild, "force", false, "Rebuild even when a canonical graph is stored")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(phasesCmd)
}

func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	path := configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = defaultConfigPath
	}

	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadOrDefault(path)
	}
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if datasetPath != "" {
		cfg.Store.Dataset = datasetPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openApp loads configuration and wires the application. The caller must
// call the returned cleanup.
func openApp(ctx context.Context) (*app.App, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Observability.LogMode)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a, err := app.New(ctx, cfg, log, cfg.Store.Dataset)
	if err != nil {
		log.Sync()
		return nil, nil, err
	}
	return a, func() {
		a.Close(context.Background())
		log.Sync()
	}, nil
}
