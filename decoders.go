package jsonschema

import "encoding/base64"

// ContentDecoder decodes a contentEncoding-encoded string into raw bytes.
type ContentDecoder func(s string) ([]byte, error)

func defaultDecoders() map[string]ContentDecoder {
	return map[string]ContentDecoder{
		"base64": func(s string) ([]byte, error) {
			return base64.StdEncoding.DecodeString(s)
		},
	}
}
