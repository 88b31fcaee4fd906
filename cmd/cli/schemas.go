package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bunca/bakery-service/internal/importer"
	"github.com/bunca/bakery-service/internal/pipeline"
)

var schemasOutput string

// schemasCmd represents the schemas command
var schemasCmd = &cobra.Command{
	Use:   "schemas",
	Short: "Show the header synonym tables used for classification",
	Long: `Print the active header schemas: for every record type the minimum number of
matching columns, the deduplication key and the accepted header labels of each
field. With importer.schema_file set, the file replaces the built-in tables.

The yaml output can be edited and used as a schema file.`,
	Example: `  bakery schemas
  bakery schemas --output yaml > schemas.yaml`,
	Args: cobra.NoArgs,
	RunE: runSchemas,
}

func init() {
	rootCmd.AddCommand(schemasCmd)

	schemasCmd.Flags().StringVar(&schemasOutput, "output", "table", "Output format: table, json or yaml")
}

func runSchemas(cmd *cobra.Command, args []string) error {
	im, err := pipeline.NewImporter(importerConfig())
	if err != nil {
		return fmt.Errorf("failed to load header schemas: %w", err)
	}
	schemas := im.Schemas()

	switch strings.ToLower(schemasOutput) {
	case "json":
		return outputJSON(schemas)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(struct {
			RecordTypes importer.Schemas `yaml:"record_types"`
		}{schemas})
	case "table":
		outputSchemasTable(schemas)
		return nil
	default:
		return fmt.Errorf("invalid output format: %s (use 'table', 'json' or 'yaml')", schemasOutput)
	}
}

func outputSchemasTable(schemas importer.Schemas) {
	for _, s := range schemas {
		fmt.Printf("\n%s (min hits %d, key %s)\n", s.Type, s.MinHits, strings.Join(s.DedupKey, "+"))
		fmt.Println(strings.Repeat("-", 60))

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		for _, f := range s.Fields {
			fmt.Fprintf(w, "%s\t%s\n", f.Name, strings.Join(f.Synonyms, ", "))
		}
		w.Flush()
	}
}
