package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bunca/bakery-service/internal/database"
	"github.com/bunca/bakery-service/internal/pipeline"
	"github.com/bunca/bakery-service/internal/storage"
	"github.com/bunca/bakery-service/internal/types"
)

var (
	importApply  bool
	importOutput string
	importUser   string
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Annotations: map[string]string{dbAnnotation: dbOnApply},
	Use:   "import <file>",
	Short: "Import a workbook through the full pipeline",
	Long: `Run a local workbook through the same pipeline as the HTTP upload: the file is
archived in storage, classified, validated and, with --apply, written to the
database. Without --apply the run is a dry run and only reports what would be
imported.

An apply is rejected as a whole when any extracted record fails validation.`,
	Example: `  bakery import ./planung.xlsx
  bakery import ./planung.xlsx --apply
  bakery import ./lieferungen.csv --apply --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVar(&importApply, "apply", false, "Write validated records to the database")
	importCmd.Flags().StringVar(&importOutput, "output", "table", "Output format: table or json")
	importCmd.Flags().StringVar(&importUser, "user", "", "Uploader recorded in the archived file metadata (default $USER)")
}

func runImport(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	format := strings.ToLower(importOutput)
	if format != "table" && format != "json" {
		return fmt.Errorf("invalid output format: %s (use 'table' or 'json')", importOutput)
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	deps := pipeline.Deps{}
	deps.Importer, err = pipeline.NewImporter(importerConfig())
	if err != nil {
		return fmt.Errorf("failed to load header schemas: %w", err)
	}
	deps.LoadOptions, err = pipeline.NewLoadOptions(importerConfig())
	if err != nil {
		return err
	}

	if cfg != nil && cfg.Storage.BasePath != "" {
		store, err := storage.New(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		deps.Storage = store
	} else {
		logger.Warn().Msg("No storage configured, the file will not be archived")
	}

	if pool := database.Pool(); pool != nil {
		deps.DB = pool
	}

	user := importUser
	if user == "" {
		user = os.Getenv("USER")
	}

	result, err := pipeline.Run(cmd.Context(), deps, pipeline.Upload{
		Filename:   filepath.Base(filePath),
		Content:    content,
		UploadedBy: user,
	}, pipeline.Options{Apply: importApply})
	if result != nil {
		if outErr := outputImport(format, result); outErr != nil {
			return outErr
		}
	}
	if errors.Is(err, pipeline.ErrValidationFailed) {
		return fmt.Errorf("import rejected: %d validation issues", len(result.Issues))
	}
	return err
}

func outputImport(format string, result *pipeline.RunResult) error {
	if format == "json" {
		return outputJSON(result)
	}

	fmt.Printf("\nImport Results for %s\n", result.Filename)
	fmt.Println(strings.Repeat("-", 60))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Run ID\t%s\n", valueOrDash(result.RunID))
	fmt.Fprintf(w, "Status\t%s\n", result.Status)
	fmt.Fprintf(w, "Applied\t%t\n", result.Applied)
	fmt.Fprintf(w, "File Type\t%s\n", valueOrDash(string(result.FileType)))
	fmt.Fprintf(w, "Checksum\t%s\n", result.Checksum)
	fmt.Fprintf(w, "Storage Key\t%s\n", valueOrDash(result.StorageKey))
	if result.Duplicate {
		fmt.Fprintf(w, "Duplicate Of\t%s\n", result.PreviousRunID)
	}
	for _, rt := range types.RecordTypes {
		fmt.Fprintf(w, "%s\t%d\n", rt, result.Counts[rt])
	}
	fmt.Fprintf(w, "Issues\t%d\n", len(result.Issues))
	w.Flush()

	if result.Stats != nil && len(result.Stats.RegisteredShops) > 0 {
		fmt.Printf("\nRegistered shops: %s\n", strings.Join(result.Stats.RegisteredShops, ", "))
	}

	if result.Import != nil && len(result.Import.Errors) > 0 {
		fmt.Println("\nImport Errors:")
		fmt.Println(strings.Repeat("-", 60))
		for _, e := range result.Import.Errors {
			fmt.Println(e)
		}
	}

	if len(result.Issues) > 0 {
		fmt.Printf("\nFirst %d Issues:\n", min(len(result.Issues), 10))
		fmt.Println(strings.Repeat("-", 60))
		for i, issue := range result.Issues {
			if i >= 10 {
				break
			}
			fmt.Println(issue.String())
		}
		if len(result.Issues) > 10 {
			fmt.Printf("... and %d more issues\n", len(result.Issues)-10)
		}
	}
	return nil
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
