package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompileRejectsJsonPointerFragmentAsId(t *testing.T) {
	c := NewCompiler()
	require.NoError(t, c.AddResource("mem://bad-id.json", map[string]any{
		"$defs": map[string]any{
			"x": map[string]any{"type": "string"},
		},
		"$id": "#/$defs/x",
	}))
	_, _, err := c.Compile("mem://bad-id.json")
	require.Error(t, err)
	ce, ok := err.(*CompileError)
	require.True(t, ok, "expected *CompileError, got %T", err)
	_, isInvalidID := ce.Kind.(*InvalidIdError)
	require.True(t, isInvalidID, "expected InvalidIdError, got %T", ce.Kind)
}

func TestCompileDetectsDuplicateId(t *testing.T) {
	c := NewCompiler()
	require.NoError(t, c.AddResource("mem://dup.json", map[string]any{
		"$defs": map[string]any{
			"a": map[string]any{"$id": "mem://dup.json"},
		},
	}))
	_, _, err := c.Compile("mem://dup.json")
	require.Error(t, err)
	ce, ok := err.(*CompileError)
	require.True(t, ok, "expected *CompileError, got %T", err)
	_, isDup := ce.Kind.(*DuplicateIDError)
	require.True(t, isDup, "expected DuplicateIDError, got %T", ce.Kind)
}
