package jsonschema

import "math/big"

// schemaIdx is a stable position in a Schemas arena. Indices are reserved
// before the Schema they name has been fully lowered (see Compiler.enqueue),
// which is how cyclic and forward $refs are represented without an
// ownership graph: a $ref just carries the idx its target will eventually
// occupy.
type schemaIdx int

// location identifies where a compiled Schema came from, for diagnostics:
// its root URL and the json pointer into that root's document.
type location struct {
	url absURL
	ptr jsonPointer
}

func (l location) String() string {
	if l.ptr == "" {
		return string(l.url)
	}
	return string(l.url) + "#" + string(l.ptr)
}

// refKind distinguishes the three reference keywords; only $ref resolves
// statically at compile time, the other two resolve against the caller's
// dynamic scope at validation time.
type refKind int

const (
	refNone refKind = iota
	refStatic
	refRecursive
	refDynamic
)

// dependency is one entry of the pre-2019-09 "dependencies" keyword, which
// is either a list of required sibling properties or a schema.
type dependency struct {
	required []string
	schema   schemaIdx
	isSchema bool
}

// Schema is one lowered (sub)schema node in a Schemas arena. Only the
// fields relevant to its keywords are populated; a nil slice or map means
// "keyword absent", a single-subschema keyword carries a has* flag beside
// its idx, and an *int pointer distinguishes "absent" from "present with
// zero value".
type Schema struct {
	idx   schemaIdx
	loc   location
	draft *Draft

	// always-boolean schema (true/false, or a non-object schema value)
	boolean    bool
	boolValue  bool // only meaningful when boolean is true

	types []string // "type", normalized to a slice even for a single string
	enum  []any
	hasConst bool
	constVal any

	ref     schemaIdx
	refKind refKind
	refName string // $dynamicAnchor name, only for refKind==refDynamic

	recursiveAnchor bool // this schema's own $recursiveAnchor:true
	dynamicAnchor   string // this schema's own $dynamicAnchor name, if any

	// resourceAnchors maps every $dynamicAnchor name declared anywhere
	// within this schema's enclosing resource (not just on this exact
	// node) to its compiled target. Shared by every schema node of the
	// same resource; nil when that resource declares none. See
	// Compiler.resourceDynamicAnchorIdx and outermostDynamic.
	resourceAnchors map[string]schemaIdx

	allOf []schemaIdx
	anyOf []schemaIdx
	oneOf []schemaIdx
	not   schemaIdx
	hasNot bool

	ifSchema   schemaIdx
	thenSchema schemaIdx
	elseSchema schemaIdx
	hasIf      bool
	hasThen    bool
	hasElse    bool

	// string
	minLength *int
	maxLength *int
	pattern    Regexp
	patternSrc string

	contentEncoding    string
	hasContentEncoding bool
	contentDecoder     ContentDecoder
	contentMediaType    string
	hasContentMediaType bool
	contentMediaTypeFn  ContentMediaType
	contentSchema    schemaIdx
	hasContentSchema bool
	assertContent    bool

	// number, kept as exact rationals so 0.1 and similar decimals compare
	// without binary floating point error.
	minimum          *big.Rat
	exclusiveMinimum *big.Rat
	maximum          *big.Rat
	exclusiveMaximum *big.Rat
	multipleOf       *big.Rat

	// array
	items          schemaIdx
	hasItems       bool
	itemsIsTuple   bool // pre-2020-12: "items" held an array of schemas
	itemsTuple     []schemaIdx
	additionalItems    schemaIdx
	hasAdditionalItems bool
	prefixItems    []schemaIdx // 2020-12 only
	minItems       *int
	maxItems       *int
	uniqueItems    bool
	contains       schemaIdx
	hasContains    bool
	minContains    *int
	maxContains    *int

	// object
	minProperties *int
	maxProperties *int
	required      []string
	properties        map[string]schemaIdx
	patternProperties []patternPropEntry
	propertyNames     schemaIdx
	hasPropertyNames  bool
	additionalProperties    schemaIdx
	hasAdditionalProperties bool
	dependencies      map[string]dependency // pre-2019-09
	dependentRequired map[string][]string   // 2019-09+
	dependentSchemas  map[string]schemaIdx  // 2019-09+

	// unevaluated (2019-09+)
	unevaluatedProperties    schemaIdx
	hasUnevaluatedProperties bool
	unevaluatedItems         schemaIdx
	hasUnevaluatedItems      bool
	// precomputed: true when this node alone evaluates every property/item
	// (see compileObjectKeywords/compileArray), so the validator marks the
	// whole Uneval tracking set evaluated instead of entry by entry.
	allPropsEvaluated bool
	allItemsEvaluated bool

	format     *namedFormat
	assertFormat bool

	// extension vocabulary hooks (see extension.go), keyed by keyword name.
	ext map[string]ExtSchema
}

type namedFormat struct {
	name string
	fn   func(v any) error
}

type patternPropEntry struct {
	re  Regexp
	sch schemaIdx
}

// Schemas is the arena produced by Compiler.Compile. idx values returned by
// Compile and embedded in Schema.ref/items/etc. all index into list; the
// arena is immutable and safe for concurrent Validate calls once Compile
// has returned.
type Schemas struct {
	list []*Schema
}

func (s *Schemas) at(idx schemaIdx) *Schema { return s.list[idx] }

// Get returns the compiled Schema for idx, for callers that want to
// introspect the graph (e.g. a code generator) rather than validate.
func (s *Schemas) Get(idx int) *Schema { return s.list[schemaIdx(idx)] }

func (s *Schemas) len() int { return len(s.list) }
