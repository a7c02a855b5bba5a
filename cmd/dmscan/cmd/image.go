package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	_ "golang.org/x/image/bmp"

	"github.com/scanforge/dmscan/internal/config"
	"github.com/scanforge/dmscan/internal/scanner"
)

const (
	outputFormatJSON = "json"
	outputFormatText = "text"
	outputFormatCSV  = "csv"
)

// fileResult pairs an input file with its scan outcome.
type fileResult struct {
	File       string              `json:"file"`
	Detections []scanner.Detection `json:"-"`
	Data       []string            `json:"data"`
	Reason     string              `json:"reason,omitempty"`
}

// imageCmd scans image files for Data Matrix symbols.
var imageCmd = &cobra.Command{
	Use:   "image [files...]",
	Short: "Scan image files for Data Matrix symbols",
	Long: `Scan one or more image files and print the decoded payloads.

Supported formats: JPEG, PNG, BMP, GIF, TIFF

Examples:
  dmscan image label.png
  dmscan image *.jpg --format csv
  dmscan image scan.png --output results.json`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}

		cfg := GetConfig()
		format := strings.ToLower(cfg.Output.Format)
		if format != outputFormatJSON && format != outputFormatText && format != outputFormatCSV {
			return fmt.Errorf("invalid output format: %s (must be one of: json, text, csv)", format)
		}

		sc := newScanner(cfg)
		results := make([]fileResult, 0, len(args))
		for _, file := range args {
			img, err := imaging.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", file, err)
			}
			ctx, cancel := scanContext(cfg)
			detections, reason := sc.Scan(ctx, img)
			cancel()

			r := fileResult{File: file, Detections: detections, Data: []string{}}
			for _, d := range detections {
				r.Data = append(r.Data, d.Text)
			}
			if reason != scanner.ReasonNone {
				r.Reason = reason.String()
			}
			results = append(results, r)
		}

		out, err := formatResults(results, format)
		if err != nil {
			return err
		}
		return writeOutput(cmd, cfg.Output.File, out)
	},
}

func newScanner(cfg *config.Config) *scanner.Scanner {
	sc := scanner.DefaultConfig()
	sc.Threshold = byte(cfg.Scanner.Threshold)
	sc.TryPure = cfg.Scanner.TryPure
	return scanner.New(sc)
}

func scanContext(cfg *config.Config) (context.Context, context.CancelFunc) {
	if cfg.Scanner.TimeoutMS <= 0 {
		return context.Background(), func() {}
	}
	return context.WithTimeout(context.Background(), time.Duration(cfg.Scanner.TimeoutMS)*time.Millisecond)
}

func formatResults(results []fileResult, format string) (string, error) {
	switch format {
	case outputFormatJSON:
		out, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal results: %w", err)
		}
		return string(out) + "\n", nil
	case outputFormatCSV:
		var b strings.Builder
		b.WriteString("file,data,reason\n")
		for _, r := range results {
			if len(r.Data) == 0 {
				fmt.Fprintf(&b, "%s,,%s\n", r.File, r.Reason)
				continue
			}
			for _, data := range r.Data {
				fmt.Fprintf(&b, "%s,%s,\n", r.File, csvEscape(data))
			}
		}
		return b.String(), nil
	default:
		var b strings.Builder
		for _, r := range results {
			if len(r.Data) == 0 {
				fmt.Fprintf(&b, "%s: no symbol found (%s)\n", r.File, r.Reason)
				continue
			}
			for _, data := range r.Data {
				fmt.Fprintf(&b, "%s: %s\n", r.File, data)
			}
		}
		return b.String(), nil
	}
}

func csvEscape(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

func writeOutput(cmd *cobra.Command, file, out string) error {
	if file == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	}
	return writeFile(file, []byte(out))
}

func init() {
	rootCmd.AddCommand(imageCmd)

	imageCmd.Flags().StringP("format", "f", "json", "output format (json, text, csv)")
	imageCmd.Flags().StringP("output", "o", "", "write results to file instead of stdout")
	imageCmd.Flags().Int("threshold", int(scanner.DefaultConfig().Threshold), "binarization threshold (0-255)")

	_ = viper.BindPFlag("output.format", imageCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("output.file", imageCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("scanner.threshold", imageCmd.Flags().Lookup("threshold"))
}
