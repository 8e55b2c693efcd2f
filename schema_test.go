package jsonschema_test

import (
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/brightloom/jsonschema"
)

func compileAndGet(t *testing.T, docs map[string]any, root string) (*jsonschema.Schemas, int) {
	t.Helper()
	c := jsonschema.NewCompiler()
	for u, d := range docs {
		require.NoError(t, c.AddResource(u, d))
	}
	schemas, idx, err := c.Compile(root)
	require.NoError(t, err)
	return schemas, idx
}

func TestDynamicRefResolvesToOutermostAnchor(t *testing.T) {
	list := map[string]any{
		"$id":             "mem://list.json",
		"$schema":         "https://json-schema.org/draft/2020-12/schema",
		"$dynamicAnchor":  "items",
		"type":            "array",
		"items":           map[string]any{"$dynamicRef": "#items"},
	}
	stringList := map[string]any{
		"$id":            "mem://string-list.json",
		"$schema":        "https://json-schema.org/draft/2020-12/schema",
		"$ref":           "mem://list.json",
		"$defs": map[string]any{
			"items": map[string]any{
				"$dynamicAnchor": "items",
				"type":           "string",
			},
		},
	}
	schemas, idx := compileAndGet(t, map[string]any{
		"mem://list.json":        list,
		"mem://string-list.json": stringList,
	}, "mem://string-list.json")

	require.NoError(t, schemas.Validate([]any{"a", "b"}, idx))
	require.Error(t, schemas.Validate([]any{"a", 1}, idx))
}

func TestContentSchemaValidatesDecodedJSON(t *testing.T) {
	doc := map[string]any{
		"$schema":          "http://json-schema.org/draft-07/schema#",
		"type":             "string",
		"contentMediaType": "application/json",
		"contentSchema": map[string]any{
			"type":     "object",
			"required": []any{"id"},
		},
	}
	c := jsonschema.NewCompiler()
	c.AssertContent(true)
	require.NoError(t, c.AddResource("mem://content.json", doc))
	schemas, idx, err := c.Compile("mem://content.json")
	require.NoError(t, err)

	require.NoError(t, schemas.Validate(`{"id": 1}`, idx))
	require.Error(t, schemas.Validate(`{"name": "x"}`, idx))
}

func TestFormatAssertionOptIn(t *testing.T) {
	doc := map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type":    "string",
		"format":  "email",
	}
	c := jsonschema.NewCompiler()
	require.NoError(t, c.AddResource("mem://fmt.json", doc))
	schemas, idx, err := c.Compile("mem://fmt.json")
	require.NoError(t, err)
	// 2020-12 defaults to annotation-only: a bad email still validates.
	require.NoError(t, schemas.Validate("not-an-email", idx))

	c2 := jsonschema.NewCompiler()
	c2.AssertFormat(true)
	require.NoError(t, c2.AddResource("mem://fmt2.json", doc))
	schemas2, idx2, err := c2.Compile("mem://fmt2.json")
	require.NoError(t, err)
	require.Error(t, schemas2.Validate("not-an-email", idx2))
	require.NoError(t, schemas2.Validate("a@b.com", idx2))
}

func TestDraft4LegacyIDAndFragmentAnchor(t *testing.T) {
	doc := map[string]any{
		"id": "mem://d4.json",
		"definitions": map[string]any{
			"positive": map[string]any{
				"id":      "#positive",
				"type":    "number",
				"minimum": gojson.Number("0"),
			},
		},
		"properties": map[string]any{
			"n": map[string]any{"$ref": "#positive"},
		},
	}
	c := jsonschema.NewCompiler()
	c.SetDefaultDraft(jsonschema.Draft4)
	require.NoError(t, c.AddResource("mem://d4.json", doc))
	schemas, idx, err := c.Compile("mem://d4.json")
	require.NoError(t, err)

	require.NoError(t, schemas.Validate(map[string]any{"n": gojson.Number("5")}, idx))
	require.Error(t, schemas.Validate(map[string]any{"n": gojson.Number("-5")}, idx))
}
