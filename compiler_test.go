package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustCompile(t *testing.T, url string, docs map[string]any) (*Schemas, int) {
	t.Helper()
	c := NewCompiler()
	for u, d := range docs {
		require.NoError(t, c.AddResource(u, d))
	}
	schemas, idx, err := c.Compile(url)
	require.NoError(t, err)
	return schemas, idx
}

func TestCompileSimpleObject(t *testing.T) {
	schemas, idx := mustCompile(t, "mem://root.json", map[string]any{
		"mem://root.json": map[string]any{
			"type":     "object",
			"required": []any{"name"},
			"properties": map[string]any{
				"name": map[string]any{"type": "string", "minLength": jsonNumber("1")},
			},
		},
	})
	sch := schemas.at(schemaIdx(idx))
	require.Equal(t, []string{"object"}, sch.types)
	require.Equal(t, []string{"name"}, sch.required)
	require.Contains(t, sch.properties, "name")
}

func TestEnqueueDedupsSameLocation(t *testing.T) {
	c := NewCompiler()
	require.NoError(t, c.AddResource("mem://a.json", map[string]any{
		"$defs": map[string]any{
			"x": map[string]any{"type": "string"},
		},
		"properties": map[string]any{
			"a": map[string]any{"$ref": "#/$defs/x"},
			"b": map[string]any{"$ref": "#/$defs/x"},
		},
	}))
	schemas, idx, err := c.Compile("mem://a.json")
	require.NoError(t, err)
	root := schemas.at(schemaIdx(idx))
	a := schemas.at(root.properties["a"])
	b := schemas.at(root.properties["b"])
	require.Equal(t, a.ref, b.ref, "both $refs to the same location must resolve to the same arena idx")
}

func TestCompileRefCycleDoesNotHang(t *testing.T) {
	c := NewCompiler()
	require.NoError(t, c.AddResource("mem://cycle.json", map[string]any{
		"$defs": map[string]any{
			"node": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"child": map[string]any{"$ref": "#/$defs/node"},
				},
			},
		},
		"$ref": "#/$defs/node",
	}))
	_, _, err := c.Compile("mem://cycle.json")
	require.NoError(t, err)
}

func TestDraft4ExclusiveMinimumIsBooleanFlag(t *testing.T) {
	c := NewCompiler()
	c.SetDefaultDraft(Draft4)
	require.NoError(t, c.AddResource("mem://d4.json", map[string]any{
		"minimum":          jsonNumber("0"),
		"exclusiveMinimum": true,
	}))
	schemas, idx, err := c.Compile("mem://d4.json")
	require.NoError(t, err)
	sch := schemas.at(schemaIdx(idx))
	require.Nil(t, sch.minimum)
	require.NotNil(t, sch.exclusiveMinimum)
}

func TestDraft2020PrefixItemsAndItems(t *testing.T) {
	c := NewCompiler()
	c.SetDefaultDraft(Draft2020)
	require.NoError(t, c.AddResource("mem://d2020.json", map[string]any{
		"prefixItems": []any{
			map[string]any{"type": "string"},
			map[string]any{"type": "number"},
		},
		"items": map[string]any{"type": "boolean"},
	}))
	schemas, idx, err := c.Compile("mem://d2020.json")
	require.NoError(t, err)
	sch := schemas.at(schemaIdx(idx))
	require.Len(t, sch.prefixItems, 2)
	require.True(t, sch.hasItems)
	require.False(t, sch.itemsIsTuple)
}
