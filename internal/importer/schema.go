package importer

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/bunca/bakery-service/internal/types"
)

//go:embed schemas.yaml
var defaultSchemasYAML []byte

// Field is one canonical field and the header labels accepted for it
type Field struct {
	Name     string   `yaml:"name" json:"name"`
	Synonyms []string `yaml:"synonyms" json:"synonyms"`
}

// Schema describes how to recognise and key one record type
type Schema struct {
	Type     types.RecordType `yaml:"name" json:"type"`
	MinHits  int              `yaml:"min_hits" json:"minHits"`
	DedupKey []string         `yaml:"dedup_key" json:"dedupKey"`
	Fields   []Field          `yaml:"fields" json:"fields"`

	// normalized synonyms, parallel to Fields
	normalized [][]string
}

// FieldNames returns the canonical field names in declared order
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

func (s *Schema) compile() {
	s.normalized = make([][]string, len(s.Fields))
	for i, f := range s.Fields {
		s.normalized[i] = normalizeAll(f.Synonyms)
	}
}

// synonyms returns the normalized synonyms of field i. Schemas built by hand
// (not through LoadSchemas) are normalized on the fly.
func (s *Schema) synonyms(i int) []string {
	if s.normalized != nil {
		return s.normalized[i]
	}
	return normalizeAll(s.Fields[i].Synonyms)
}

func normalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, syn := range in {
		if n := Normalize(syn); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func (s *Schema) validate() error {
	if _, err := types.ParseRecordType(string(s.Type)); err != nil {
		return err
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("%s: no fields declared", s.Type)
	}
	if s.MinHits < minOrientationHits {
		// below this a table qualifies but yields no rows
		return fmt.Errorf("%s: min_hits must be at least %d, got %d", s.Type, minOrientationHits, s.MinHits)
	}

	declared := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("%s: field with empty name", s.Type)
		}
		if declared[f.Name] {
			return fmt.Errorf("%s: duplicate field %q", s.Type, f.Name)
		}
		if len(normalizeAll(f.Synonyms)) == 0 {
			return fmt.Errorf("%s: field %q has no usable synonyms", s.Type, f.Name)
		}
		declared[f.Name] = true
	}

	if len(s.DedupKey) == 0 {
		return fmt.Errorf("%s: dedup_key is empty", s.Type)
	}
	for _, k := range s.DedupKey {
		if !declared[k] {
			return fmt.Errorf("%s: dedup_key references undeclared field %q", s.Type, k)
		}
	}
	return nil
}

// Schemas is the set of record type schemas, kept in priority order
type Schemas []*Schema

// Get returns the schema for a record type, or nil
func (ss Schemas) Get(rt types.RecordType) *Schema {
	for _, s := range ss {
		if s.Type == rt {
			return s
		}
	}
	return nil
}

type schemaFile struct {
	RecordTypes []*Schema `yaml:"record_types"`
}

// LoadSchemas decodes and validates a YAML synonym table.
// The result is ordered by record type priority, whatever the file order.
func LoadSchemas(data []byte) (Schemas, error) {
	var file schemaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode schemas: %w", err)
	}
	if len(file.RecordTypes) == 0 {
		return nil, fmt.Errorf("no record types declared")
	}

	seen := make(map[types.RecordType]bool)
	for _, s := range file.RecordTypes {
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("invalid schema: %w", err)
		}
		if seen[s.Type] {
			return nil, fmt.Errorf("invalid schema: record type %q declared twice", s.Type)
		}
		seen[s.Type] = true
		s.compile()
	}

	schemas := Schemas(file.RecordTypes)
	sort.SliceStable(schemas, func(i, j int) bool {
		return priority(schemas[i].Type) < priority(schemas[j].Type)
	})
	return schemas, nil
}

// LoadSchemaFile reads a synonym table from disk
func LoadSchemaFile(path string) (Schemas, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return LoadSchemas(data)
}

// DefaultSchemas returns the built-in German/English synonym tables
func DefaultSchemas() Schemas {
	schemas, err := LoadSchemas(defaultSchemasYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded schemas.yaml is invalid: %v", err))
	}
	return schemas
}

func priority(rt types.RecordType) int {
	for i, t := range types.RecordTypes {
		if t == rt {
			return i
		}
	}
	return len(types.RecordTypes)
}
