package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func readDoc(t *testing.T) map[string]any {
	t.Helper()
	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed), "rendered doc must be valid JSON")
	return parsed
}

func TestSwaggerInfo(t *testing.T) {
	assert.Equal(t, "Bakery Import API", SwaggerInfo.Title)
	assert.Equal(t, "1.0", SwaggerInfo.Version)
	assert.Equal(t, "/api", SwaggerInfo.BasePath)
	assert.Equal(t, "swagger", SwaggerInfo.InstanceName())
}

func TestReadDoc(t *testing.T) {
	parsed := readDoc(t)

	info, ok := parsed["info"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Bakery Import API", info["title"])
	assert.Equal(t, "/api", parsed["basePath"])
	assert.Equal(t, "2.0", parsed["swagger"])
}

func TestDocPaths(t *testing.T) {
	paths, ok := readDoc(t)["paths"].(map[string]any)
	require.True(t, ok)

	tests := []struct {
		path   string
		method string
	}{
		{"/import", "post"},
		{"/import/schemas", "get"},
		{"/import/runs", "get"},
		{"/import/runs/{id}", "get"},
		{"/import/runs/{id}/file", "get"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			ops, ok := paths[tt.path].(map[string]any)
			require.True(t, ok, "path missing")
			assert.Contains(t, ops, tt.method)
		})
	}
}

func TestDocDefinitionsResolve(t *testing.T) {
	parsed := readDoc(t)
	definitions, ok := parsed["definitions"].(map[string]any)
	require.True(t, ok)

	// every $ref in the document names a definition
	var walk func(v any)
	walk = func(v any) {
		switch node := v.(type) {
		case map[string]any:
			if ref, ok := node["$ref"].(string); ok {
				name := ref[len("#/definitions/"):]
				assert.Contains(t, definitions, name)
			}
			for _, child := range node {
				walk(child)
			}
		case []any:
			for _, child := range node {
				walk(child)
			}
		}
	}
	walk(parsed)
}
