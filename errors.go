package jsonschema

import (
	"fmt"
	"strings"

	"github.com/brightloom/jsonschema/kind"
)

// ValidationError is a node in the tree of diagnostics produced by
// Schemas.Validate: every keyword failure, plus however it was reached
// (through $ref, allOf, anyOf, oneOf, if/then/else, ...), is recorded with
// both the instance location that failed and the absolute schema location
// of the keyword that rejected it.
type ValidationError struct {
	// InstanceLocation is a json pointer into the instance being validated.
	InstanceLocation string
	// AbsoluteKeywordLocation is the schema's own URL plus a json-pointer-
	// shaped path to the failing keyword, e.g. "https://x/schema#/properties/a/type".
	AbsoluteKeywordLocation string
	Kind                    kind.Kind
	Causes                  []*ValidationError
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	e.write(&sb, 0)
	return sb.String()
}

func (e *ValidationError) write(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(sb, "at %q: %s\n", e.InstanceLocation, e.Kind.String())
	for _, c := range e.Causes {
		c.write(sb, depth+1)
	}
}

// Flatten returns every leaf (cause-less) error in e's tree, in document
// order, discarding the intermediate Group/Reference wrapper nodes that
// exist only to carry structure.
func (e *ValidationError) Flatten() []*ValidationError {
	if len(e.Causes) == 0 {
		return []*ValidationError{e}
	}
	var out []*ValidationError
	for _, c := range e.Causes {
		out = append(out, c.Flatten()...)
	}
	return out
}

func newError(k kind.Kind, instPtr jsonPointer, schLoc location) *ValidationError {
	return &ValidationError{
		InstanceLocation:        string(instPtr),
		AbsoluteKeywordLocation: keywordLocation(schLoc, k),
		Kind:                    k,
	}
}

func keywordLocation(loc location, k kind.Kind) string {
	path := k.KeywordPath()
	if len(path) == 0 {
		return loc.String()
	}
	var sb strings.Builder
	sb.WriteString(loc.String())
	if loc.ptr == "" {
		sb.WriteByte('#')
	}
	for _, tok := range path {
		sb.WriteByte('/')
		sb.WriteString(escapeToken(tok))
	}
	return sb.String()
}

// group wraps 0, 1, or many causes the way a keyword that recurses into
// multiple subschemas (allOf, properties, ...) must: zero causes means the
// keyword itself passed (group returns nil), one collapses to that single
// cause so the tree doesn't grow an uninformative layer, and two or more
// get a Group parent node.
func group(instPtr jsonPointer, schLoc location, causes []*ValidationError) *ValidationError {
	switch len(causes) {
	case 0:
		return nil
	case 1:
		return causes[0]
	default:
		e := newError(&kind.Group{}, instPtr, schLoc)
		e.Causes = causes
		return e
	}
}
