package cli

import (
	"fmt"
	"os"

	"legal-analyzer-be/internal/config"
	"legal-analyzer-be/internal/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	configFile string
	verbose    bool
)

// SetVersion sets the version information from build-time ldflags
func SetVersion(version string) {
	rootCmd.Version = version
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "legalctl",
	Short: "Legal document analyzer tools",
	Long: `legalctl - run the legal document analyzer from the command line

Analyse or classify PDF and DOCX files with the same pipeline the HTTP
service uses, and follow the analysis events it publishes.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "TOML config file (overrides APP_CONFIG_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log pipeline steps to stdout")
}

func loadConfig() (*config.Config, logger.ILogger, error) {
	if configFile != "" {
		if err := os.Setenv("APP_CONFIG_FILE", configFile); err != nil {
			return nil, nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		return cfg, logger.NewZapLogger(cfg.App.LogFilePath, false), nil
	}
	return cfg, logger.NewNopLogger(), nil
}
