package jsonschema

import (
	"bytes"

	"github.com/brightloom/jsonschema/loader"
)

// ContentMediaType deserializes raw bytes (after any contentEncoding
// decoding) into the generic any-tree representation, so contentSchema can
// validate it.
type ContentMediaType func(b []byte) (any, error)

func defaultMediaTypes() map[string]ContentMediaType {
	return map[string]ContentMediaType{
		"application/json": func(b []byte) (any, error) {
			return loader.UnmarshalJSON(bytes.NewReader(b))
		},
	}
}
