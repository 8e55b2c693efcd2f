package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brightloom/jsonschema/kind"
)

func validate(t *testing.T, schemas *Schemas, idx int, v any) error {
	t.Helper()
	return schemas.Validate(v, idx)
}

func TestValidateTypeAndRequired(t *testing.T) {
	schemas, idx := mustCompile(t, "mem://t.json", map[string]any{
		"mem://t.json": map[string]any{
			"type":     "object",
			"required": []any{"name"},
			"properties": map[string]any{
				"name": map[string]any{"type": "string"},
			},
		},
	})

	require.NoError(t, validate(t, schemas, idx, map[string]any{"name": "ok"}))

	err := validate(t, schemas, idx, map[string]any{})
	require.Error(t, err)
	ve, ok := err.(*ValidationError)
	require.True(t, ok)
	_, isRequired := ve.Kind.(*kind.Required)
	require.True(t, isRequired, "expected a Required kind, got %T", ve.Kind)

	err = validate(t, schemas, idx, "not an object")
	require.Error(t, err)
}

func TestValidateAllOfAnyOfOneOf(t *testing.T) {
	schemas, idx := mustCompile(t, "mem://combo.json", map[string]any{
		"mem://combo.json": map[string]any{
			"allOf": []any{
				map[string]any{"type": "number"},
			},
			"anyOf": []any{
				map[string]any{"multipleOf": jsonNumber("2")},
				map[string]any{"multipleOf": jsonNumber("3")},
			},
			"oneOf": []any{
				map[string]any{"minimum": jsonNumber("0")},
				map[string]any{"maximum": jsonNumber("0")},
			},
		},
	})

	require.NoError(t, validate(t, schemas, idx, jsonNumber("6")))
	require.Error(t, validate(t, schemas, idx, jsonNumber("5")), "5 matches neither anyOf branch")
	require.Error(t, validate(t, schemas, idx, jsonNumber("0")), "0 matches both oneOf branches")
}

func TestValidateUnevaluatedPropertiesThroughRef(t *testing.T) {
	schemas, idx := mustCompile(t, "mem://uneval.json", map[string]any{
		"mem://uneval.json": map[string]any{
			"$defs": map[string]any{
				"base": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"a": map[string]any{"type": "string"},
					},
				},
			},
			"allOf": []any{
				map[string]any{"$ref": "#/$defs/base"},
			},
			"properties": map[string]any{
				"b": map[string]any{"type": "string"},
			},
			"unevaluatedProperties": false,
		},
	})

	require.NoError(t, validate(t, schemas, idx, map[string]any{"a": "x", "b": "y"}))
	require.Error(t, validate(t, schemas, idx, map[string]any{"a": "x", "c": "z"}), "c is unevaluated")
}

func TestValidateMultipleOfExactDecimal(t *testing.T) {
	schemas, idx := mustCompile(t, "mem://mo.json", map[string]any{
		"mem://mo.json": map[string]any{
			"type":       "number",
			"multipleOf": jsonNumber("0.1"),
		},
	})
	require.NoError(t, validate(t, schemas, idx, jsonNumber("0.3")), "0.3 is an exact multiple of 0.1 once compared as rationals")
	require.Error(t, validate(t, schemas, idx, jsonNumber("0.25")))
}

func TestValidateNot(t *testing.T) {
	schemas, idx := mustCompile(t, "mem://not.json", map[string]any{
		"mem://not.json": map[string]any{
			"not": map[string]any{"type": "string"},
		},
	})
	require.NoError(t, validate(t, schemas, idx, jsonNumber("1")))
	require.Error(t, validate(t, schemas, idx, "x"))
}
