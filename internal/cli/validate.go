package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"legal-analyzer-be/internal/bootstrap"
	"legal-analyzer-be/pkg/legal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Only decide whether a document is legal in nature",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	components, err := bootstrap.NewComponents(cfg, log)
	if err != nil {
		return err
	}
	text, err := components.Extractor.Extract(cmd.Context(), content, filepath.Base(args[0]))
	if err != nil {
		return err
	}

	switch components.Validator.Classify(cmd.Context(), text) {
	case legal.Accept:
		color.Green("accept")
	default:
		color.Red("reject")
	}
	return nil
}
