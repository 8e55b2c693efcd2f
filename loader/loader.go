// Package loader defines the Loader interface used to fetch schema
// documents by scheme, and a small registry that dispatches to one loader
// per scheme. It has no dependency on the compiler so callers can import it
// standalone (e.g. to write a new loader) without pulling in the rest of
// the module.
package loader

import (
	"fmt"
	"io"
	"net/url"
	"os"

	gojson "github.com/goccy/go-json"
)

// Loader loads the document identified by an absolute URL and decodes it
// into the generic any-tree representation (map[string]any / []any /
// json.Number / string / bool / nil) used throughout the compiler.
type Loader interface {
	Load(url string) (any, error)
}

// LoadFunc adapts a plain function to Loader.
type LoadFunc func(url string) (any, error)

func (f LoadFunc) Load(url string) (any, error) { return f(url) }

// UnsupportedSchemeError is returned when no loader is registered for a
// URL's scheme.
type UnsupportedSchemeError struct {
	URL string
}

func (e *UnsupportedSchemeError) Error() string {
	return fmt.Sprintf("unsupported scheme in %q", e.URL)
}

// LoadError wraps a failure from an underlying Loader with the URL that
// triggered it.
type LoadError struct {
	URL string
	Err error
}

func (e *LoadError) Error() string { return fmt.Sprintf("load %q: %v", e.URL, e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }

// Registry dispatches Load calls to a Loader registered for the URL's
// scheme. It is not safe for concurrent Register calls racing with Load;
// register all loaders before first use, matching the teacher's own
// Compiler.RegisterURLLoader contract.
type Registry struct {
	byScheme map[string]Loader
}

func NewRegistry() *Registry {
	r := &Registry{byScheme: map[string]Loader{"file": FileLoader{}}}
	return r
}

func (r *Registry) Register(scheme string, l Loader) {
	r.byScheme[scheme] = l
}

func (r *Registry) Load(rawURL string) (any, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &LoadError{URL: rawURL, Err: err}
	}
	l, ok := r.byScheme[u.Scheme]
	if !ok {
		return nil, &UnsupportedSchemeError{URL: rawURL}
	}
	doc, err := l.Load(rawURL)
	if err != nil {
		return nil, &LoadError{URL: rawURL, Err: err}
	}
	return doc, nil
}

// FileLoader loads schema documents from the local filesystem via file://
// URLs, the way the teacher's loader.go does for offline test fixtures.
type FileLoader struct{}

func (FileLoader) Load(u string) (any, error) {
	parsed, err := url.Parse(u)
	if err != nil {
		return nil, err
	}
	path := parsed.Path
	if path == "" {
		path = parsed.Opaque
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return UnmarshalJSON(f)
}

// UnmarshalJSON decodes r into the generic any-tree representation,
// preserving number precision via UseNumber so the validator can later
// compare minimum/maximum/multipleOf exactly with big.Rat. It rejects any
// trailing non-whitespace content after the first JSON value.
func UnmarshalJSON(r io.Reader) (any, error) {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, fmt.Errorf("invalid character after top-level value")
	}
	return v, nil
}
