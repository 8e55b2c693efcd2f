package jsonschema

// Extension lets a caller add support for a vocabulary keyword the core
// compiler does not know about. It is consulted for every schema object
// that contains its Keyword, whether or not the compiler itself also
// lowers that keyword.
type Extension interface {
	// Keyword is the vocabulary keyword this extension handles, e.g.
	// "discriminator".
	Keyword() string
	// Compile lowers the keyword's raw value into an ExtSchema, or returns
	// (nil, nil) if the keyword is absent/irrelevant for this schema object.
	Compile(ctx CompileContext, obj map[string]any) (ExtSchema, error)
}

// CompileContext is handed to an Extension so it can enqueue subschemas it
// finds inside its own keyword's value, the same way core keywords do. base
// is the enclosing root's URL (not the nearest resource's canonical URL),
// matching what Compile passes to Compiler.enqueue for every built-in
// keyword.
type CompileContext struct {
	compiler *Compiler
	base     absURL
	ptr      jsonPointer
}

// Compile enqueues the value found at ptr/kw as a subschema and returns the
// idx it will occupy once compilation finishes.
func (c CompileContext) Compile(kw string, v any) (int, error) {
	idx, err := c.compiler.enqueue(c.base, c.ptr.child(kw), v)
	return int(idx), err
}

// ExtSchema is the compiled form of an extension keyword, consulted during
// validation alongside the core keywords.
type ExtSchema interface {
	// Validate checks v (the instance value at the schema's own location)
	// and reports an error via ValidationContext if the keyword's
	// constraint is violated.
	Validate(ctx ValidationContext, v any) error
}

// ValidationContext is handed to an ExtSchema's Validate method so it can
// recurse into subschemas it compiled via CompileContext.Compile.
type ValidationContext struct {
	schemas *Schemas
	scope   *scope
}

// Validate validates v against the subschema at idx (as returned by
// CompileContext.Compile), returning its validation error tree, if any.
func (c ValidationContext) Validate(idx int, v any) error {
	return validateAt(c.schemas, schemaIdx(idx), v, c.scope)
}
