package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scanforge/dmscan/internal/pdf"
)

// pdfCmd scans the images embedded in PDF files.
var pdfCmd = &cobra.Command{
	Use:   "pdf [files...]",
	Short: "Scan images embedded in PDF files",
	Long: `Extract the raster images embedded in one or more PDFs and scan each
for Data Matrix symbols.

Examples:
  dmscan pdf shipment.pdf
  dmscan pdf docs.pdf --pages 1-5
  dmscan pdf docs.pdf --pages 1,3,7 --output results.json`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}
		pages, _ := cmd.Flags().GetString("pages")
		output, _ := cmd.Flags().GetString("output")

		cfg := GetConfig()
		sc := newScanner(cfg)

		type pdfResult struct {
			File  string           `json:"file"`
			Pages []pdf.PageResult `json:"pages"`
		}

		results := make([]pdfResult, 0, len(args))
		for _, file := range args {
			ctx, cancel := scanContext(cfg)
			pageResults, err := pdf.ScanFile(ctx, sc, file, pages)
			cancel()
			if err != nil {
				return fmt.Errorf("failed to scan %s: %w", file, err)
			}
			results = append(results, pdfResult{File: file, Pages: pageResults})
		}

		out, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		return writeOutput(cmd, output, string(out)+"\n")
	},
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(pdfCmd)

	pdfCmd.Flags().String("pages", "", "page range to scan, e.g. \"1-5\" or \"1,3,7\" (default all)")
	pdfCmd.Flags().StringP("output", "o", "", "write results to file instead of stdout")
}
