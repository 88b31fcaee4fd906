package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bunca/bakery-service/internal/parsers"
	"github.com/bunca/bakery-service/internal/pipeline"
	"github.com/bunca/bakery-service/internal/types"
)

var (
	parseOutput  string
	parseSamples int
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Classify a local workbook without storing anything",
	Long: `Parse a local workbook (XLSX, XLS or CSV) and show which sheets were
recognised as which record type, how many records were extracted and which
sheets could not be matched. Nothing is archived or written to the database.`,
	Example: `  bakery parse ./planung.xlsx
  bakery parse ./lieferungen.csv --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVar(&parseOutput, "output", "table", "Output format: table or json")
	parseCmd.Flags().IntVar(&parseSamples, "samples", 3, "Sample records shown per record type in table output")
}

func runParse(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	format := strings.ToLower(parseOutput)
	if format != "table" && format != "json" {
		return fmt.Errorf("invalid output format: %s (use 'table' or 'json')", parseOutput)
	}

	im, err := pipeline.NewImporter(importerConfig())
	if err != nil {
		return fmt.Errorf("failed to load header schemas: %w", err)
	}
	opts, err := pipeline.NewLoadOptions(importerConfig())
	if err != nil {
		return err
	}

	logger.Info().Str("file", filePath).Msg("Reading file")
	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	wb, err := parsers.LoadWithOptions(content, filepath.Base(filePath), opts)
	if err != nil {
		return fmt.Errorf("failed to load workbook: %w", err)
	}
	logger.Debug().Str("type", string(wb.Type)).Strs("sheets", wb.SheetNames()).Msg("Workbook loaded")

	result := im.Import(cmd.Context(), wb)

	if format == "json" {
		return outputJSON(result)
	}
	outputParseTable(filepath.Base(filePath), result)
	return nil
}

func outputParseTable(filename string, result *types.ImportResult) {
	fmt.Printf("\nParse Results for %s\n", filename)
	fmt.Println(strings.Repeat("-", 60))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Sheet\tRows\tOutcome\tRecord Types\n")
	fmt.Fprintf(w, "-----\t----\t-------\t------------\n")
	for _, s := range result.Sheets {
		emitted := make([]string, len(s.Emitted))
		for i, rt := range s.Emitted {
			emitted[i] = string(rt)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", s.Sheet, s.Rows, s.Outcome, strings.Join(emitted, ", "))
	}
	w.Flush()

	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Record Type\tRecords\n")
	fmt.Fprintf(w, "-----------\t-------\n")
	for _, rt := range types.RecordTypes {
		fmt.Fprintf(w, "%s\t%d\n", rt, len(result.Records(rt)))
	}
	w.Flush()

	if len(result.Errors) > 0 {
		fmt.Println("\nErrors:")
		fmt.Println(strings.Repeat("-", 60))
		for _, e := range result.Errors {
			fmt.Println(e)
		}
	}

	if parseSamples <= 0 {
		return
	}
	for _, rt := range types.RecordTypes {
		records := result.Records(rt)
		if len(records) == 0 {
			continue
		}
		fmt.Printf("\nSample %s (first %d):\n", rt, min(len(records), parseSamples))
		fmt.Println(strings.Repeat("-", 60))
		for i, rec := range records {
			if i >= parseSamples {
				break
			}
			fmt.Printf("%d. %s\n", i+1, formatRecord(rec))
		}
	}
}

// formatRecord renders a record as key=value pairs in sorted key order
func formatRecord(rec types.Record) string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%q", k, rec[k])
	}
	return strings.Join(parts, " ")
}

func outputJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
