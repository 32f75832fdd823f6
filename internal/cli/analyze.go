package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"legal-analyzer-be/internal/bootstrap"
	"legal-analyzer-be/internal/dto"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Classify and analyse a PDF or DOCX document",
	Long: `Run the full document pipeline on a local file: extract the text,
decide whether it is a legal document, then either summarise it or explain
the rejection.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the API response body instead of formatted text")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	filename := filepath.Base(args[0])

	components, err := bootstrap.NewComponents(cfg, log)
	if err != nil {
		return err
	}
	if _, err := components.Extractor.CheckUpload(filename, int64(len(content))); err != nil {
		return err
	}

	if !analyzeJSON {
		color.Cyan("Analysing %s (%s)\n", filename, humanize.Bytes(uint64(len(content))))
	}
	start := time.Now()
	outcome := components.Document.Run(cmd.Context(), content, filename)
	res := dto.NewAnalyzeDocumentResponse(outcome)
	if res == nil {
		return fmt.Errorf("document processing failed")
	}

	if analyzeJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	if res.Decision == "accept" {
		color.Green("ACCEPTED  %s", res.DocumentType)
		fmt.Printf("\n%s\n\n", res.Summary)
		color.Yellow("Important clauses:")
		for i, clause := range res.ImportantClauses {
			fmt.Printf("  %d. %s\n", i+1, clause)
		}
	} else {
		color.Red("REJECTED")
		fmt.Printf("\n%s\n", res.Reason)
	}
	fmt.Printf("\nDone in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}
