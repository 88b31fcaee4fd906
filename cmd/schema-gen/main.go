// Schema Generator
//
// Generates JSON Schema files for the import API so that clients (the planning
// frontend, spreadsheet macros) can validate what the service returns.
//
// Usage:
//
//	go run ./cmd/schema-gen [output-dir]
//
// Output (default output-dir is ./schemas):
//
//	import.json
//	runs.json
//	header-schemas.json
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/bunca/bakery-service/internal/database"
	"github.com/bunca/bakery-service/internal/handlers"
	"github.com/bunca/bakery-service/internal/importer"
	"github.com/bunca/bakery-service/internal/pipeline"
	"github.com/bunca/bakery-service/internal/types"
)

// SchemaGroup represents a group of related schemas
type SchemaGroup struct {
	Name   string
	Types  []any
	Output string
}

func main() {
	outputDir := "schemas"
	if len(os.Args) > 1 {
		outputDir = os.Args[1]
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	groups := []SchemaGroup{
		{
			Name: "import",
			Types: []any{
				pipeline.RunResult{},
				pipeline.Issue{},
				types.ImportResult{},
				types.SheetReport{},
				types.TypeMatch{},
				handlers.ErrorResponse{},
				handlers.ValidationFailedResponse{},
				handlers.HealthResponse{},
				handlers.SchemasResponse{},
			},
			Output: "import.json",
		},
		{
			Name: "runs",
			Types: []any{
				// Request types
				handlers.ListRunsRequest{},
				// Response types
				database.ImportRun{},
				handlers.ListRunsResponse{},
			},
			Output: "runs.json",
		},
		{
			Name: "header-schemas",
			Types: []any{
				importer.Schema{},
				importer.Field{},
			},
			Output: "header-schemas.json",
		},
	}

	for _, group := range groups {
		schema := generateGroupSchema(group)
		outputPath := filepath.Join(outputDir, group.Output)

		if err := writeSchema(schema, outputPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", group.Output, err)
			os.Exit(1)
		}

		fmt.Printf("Generated %s\n", outputPath)
	}

	fmt.Println("Schema generation complete!")
}

// generateGroupSchema merges the definitions of every type in a group
func generateGroupSchema(group SchemaGroup) map[string]any {
	reflector := &jsonschema.Reflector{}

	definitions := make(map[string]any)
	for _, t := range group.Types {
		schema := reflector.Reflect(t)
		for name, def := range schema.Definitions {
			definitions[name] = def
		}
	}

	return map[string]any{
		"$schema":     "https://json-schema.org/draft/2020-12/schema",
		"$id":         fmt.Sprintf("https://bunca.de/schemas/%s.json", group.Name),
		"title":       fmt.Sprintf("%s API Types", title(group.Name)),
		"description": fmt.Sprintf("JSON Schema for %s types generated from Go structs", group.Name),
		"$defs":       definitions,
	}
}

func writeSchema(schema map[string]any, path string) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// title turns "header-schemas" into "Header Schemas"
func title(s string) string {
	words := strings.Split(s, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
