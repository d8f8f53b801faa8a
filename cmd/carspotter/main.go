package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"carspotter/internal/config"
	"carspotter/internal/garage"
	"carspotter/internal/oracle"
	"carspotter/internal/store"
)

var (
	// Global flags
	verbose    bool
	configPath string
	dbPath     string
	apiKey     string
	provider   string
	model      string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "carspotter",
	Short: "carspotter - vehicle identification and comparison assistant",
	Long: `carspotter identifies vehicles from photographs using a generative AI
backend, fetches full specifications, stores them locally in SQLite and
compares any two stored vehicles dimension by dimension.

All model output is sanitized and schema-checked before it reaches you.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "carspotter.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the SQLite database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "oracle API key (overrides config and env)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "oracle provider: gemini or openrouter")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "oracle model name")

	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(specsCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(typesCmd)
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Storage.DatabasePath = dbPath
	}
	if apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
	if provider != "" {
		cfg.LLM.Provider = provider
	}
	if model != "" {
		cfg.LLM.Model = model
	}
	return cfg, nil
}

// newService assembles the full pipeline. The returned cleanup closes the
// record store.
func newService() (*garage.Service, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	client, err := oracle.New(oracle.Config{
		Provider:        oracle.Provider(cfg.LLM.Provider),
		APIKey:          cfg.LLM.APIKey,
		BaseURL:         cfg.LLM.BaseURL,
		Model:           cfg.LLM.Model,
		Timeout:         cfg.GetLLMTimeout(),
		MaxOutputTokens: cfg.LLM.MaxOutputTokens,
		Logger:          logger,
	})
	if err != nil {
		return nil, nil, err
	}

	recordStore, err := store.Open(cfg.Storage.DatabasePath, logger)
	if err != nil {
		return nil, nil, err
	}

	svc := garage.New(client, recordStore, logger)
	cleanup := func() { _ = recordStore.Close() }
	return svc, cleanup, nil
}

func main() {
	// A local .env is a convenience for API keys; its absence is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
