package jsonschema

import (
	"fmt"
	"math/big"

	gojson "github.com/goccy/go-json"

	"github.com/brightloom/jsonschema/formats"
	"github.com/brightloom/jsonschema/loader"
)

// jsonNumber is the arbitrary-precision number representation produced by
// loader.UnmarshalJSON (via Decoder.UseNumber), preserving the original
// decimal text so big.Rat comparisons stay exact.
type jsonNumber = gojson.Number

// Compiler turns one or more schema documents into a Schemas arena. Its
// zero value via NewCompiler is ready to use; all configuration (draft,
// loaders, format/content assertion, extensions) must happen before the
// first Compile call, since the resulting Schemas value is meant to be
// shared across goroutines afterward.
type Compiler struct {
	roots *roots

	assertFormat  bool
	assertContent bool
	regexpEngine  RegexpEngine
	extensions    map[string]Extension
	decoders      map[string]ContentDecoder
	mediaTypes    map[string]ContentMediaType

	arena   []*Schema
	pending []pendingCompile
	index   map[string]schemaIdx // location.String() -> idx, for dedup

	// resourceAnchors caches, per resource (keyed by root URL + resource
	// ptr), the compiled targets of every $dynamicAnchor it declares. See
	// resourceDynamicAnchorIdx.
	resourceAnchors map[string]map[string]schemaIdx
}

type pendingCompile struct {
	idx      schemaIdx
	rootURL  absURL
	ptr      jsonPointer
}

// NewCompiler returns a Compiler with the default draft (2020-12), the Go
// stdlib regexp engine, file:// loading only, and format/content assertion
// disabled (annotation-only, per the 2019-09+ default).
func NewCompiler() *Compiler {
	return &Compiler{
		roots:      newRoots(),
		extensions: map[string]Extension{},
		decoders:   defaultDecoders(),
		mediaTypes: defaultMediaTypes(),
		index:      map[string]schemaIdx{},
	}
}

// SetDefaultDraft sets the dialect assumed for documents that declare no
// $schema of their own.
func (c *Compiler) SetDefaultDraft(d *Draft) { c.roots.defaultDraft = d }

// RegisterURLLoader registers a loader.Loader for the given URL scheme.
// Nothing is ever fetched over a scheme without one; httploader must be
// wired in explicitly by the caller.
func (c *Compiler) RegisterURLLoader(scheme string, l loader.Loader) {
	c.roots.loaders.Register(scheme, l)
}

// AddResource pre-registers a document's contents under url, so $refs to it
// never trigger a loader call. url need not be fetchable.
func (c *Compiler) AddResource(url string, doc any) error {
	abs, err := parseAbsURL(url)
	if err != nil {
		return err
	}
	c.roots.addResource(abs, doc)
	return nil
}

// AssertFormat enables format-keyword failures as validation errors rather
// than annotations only (the default for 2019-09 and later).
func (c *Compiler) AssertFormat(assert bool) { c.assertFormat = assert }

// AssertContent enables contentEncoding/contentMediaType/contentSchema
// failures as validation errors.
func (c *Compiler) AssertContent(assert bool) { c.assertContent = assert }

// UseRegexpEngine selects the engine used to compile "pattern" and
// "patternProperties" keys.
func (c *Compiler) UseRegexpEngine(e RegexpEngine) { c.regexpEngine = e }

// RegisterExtension wires a vocabulary extension keyword into the
// compiler's keyword lowering step.
func (c *Compiler) RegisterExtension(ext Extension) { c.extensions[ext.Keyword()] = ext }

// RegisterDecoder adds or replaces a contentEncoding decoder.
func (c *Compiler) RegisterDecoder(name string, d ContentDecoder) { c.decoders[name] = d }

// RegisterMediaType adds or replaces a contentMediaType deserializer.
func (c *Compiler) RegisterMediaType(name string, m ContentMediaType) { c.mediaTypes[name] = m }

// Compile loads url (consulting any pre-registered resource first) and
// lowers it, and everything it transitively references, into a Schemas
// arena. The returned idx is the root schema's position in that arena.
func (c *Compiler) Compile(url string) (*Schemas, int, error) {
	abs, err := parseAbsURL(url)
	if err != nil {
		return nil, 0, err
	}
	idx, err := c.enqueue(abs, "", nil)
	if err != nil {
		return nil, 0, err
	}
	if err := c.drain(); err != nil {
		return nil, 0, err
	}
	return &Schemas{list: c.arena}, int(idx), nil
}

// enqueue reserves an arena slot for the schema at rootURL#ptr (loading
// rootURL if it is not yet known) and schedules compileOne to run for it.
// Calling enqueue twice for the same location returns the same idx, which
// is how $refs into already-visited locations (including cycles) resolve
// without recompiling.
func (c *Compiler) enqueue(rootURL absURL, ptr jsonPointer, known any) (schemaIdx, error) {
	r, err := c.roots.orLoad(rootURL)
	if err != nil {
		return 0, err
	}
	key := location{url: r.url, ptr: ptr}.String()
	if idx, ok := c.index[key]; ok {
		return idx, nil
	}
	idx := schemaIdx(len(c.arena))
	c.arena = append(c.arena, nil)
	c.index[key] = idx
	c.pending = append(c.pending, pendingCompile{idx: idx, rootURL: r.url, ptr: ptr})
	return idx, nil
}

// drain runs compileOne for every pending location, breadth-first;
// compileOne itself calls enqueue for nested subschemas, which is how new
// work keeps getting appended to c.pending while drain iterates it.
func (c *Compiler) drain() error {
	for i := 0; i < len(c.pending); i++ {
		p := c.pending[i]
		r, ok := c.roots.get(p.rootURL)
		if !ok {
			return &CompileError{Kind: &BugError{Msg: fmt.Sprintf("root %q vanished mid-compile", p.rootURL)}}
		}
		v, err := r.valueAt(p.ptr)
		if err != nil {
			return err
		}
		sch, err := c.compileOne(r, p.ptr, v)
		if err != nil {
			return err
		}
		sch.idx = p.idx
		c.arena[p.idx] = sch
	}
	return nil
}

func (c *Compiler) engine() RegexpEngine { return c.regexpEngine }

// resourceDynamicAnchorIdx returns the compiled target of every
// $dynamicAnchor declared anywhere within res, enqueueing each one (most
// are never otherwise $ref'd, e.g. a $defs entry that only exists to be
// found dynamically) so outermostDynamic has a schemaIdx to jump to. The
// result is cached per resource and shared by every schema node compiled
// under it.
func (c *Compiler) resourceDynamicAnchorIdx(r *root, res *resource) (map[string]schemaIdx, error) {
	key := string(r.url) + "#" + string(res.ptr)
	if m, ok := c.resourceAnchors[key]; ok {
		return m, nil
	}
	m := make(map[string]schemaIdx, len(res.dynamicAnchors))
	for name := range res.dynamicAnchors {
		idx, err := c.enqueue(r.url, res.anchors[name], nil)
		if err != nil {
			return nil, err
		}
		m[name] = idx
	}
	if c.resourceAnchors == nil {
		c.resourceAnchors = map[string]map[string]schemaIdx{}
	}
	c.resourceAnchors[key] = m
	return m, nil
}

// compileOne lowers the single schema value v (found at ptr within root r)
// into a *Schema, enqueueing every nested subschema it discovers along the
// way. It does not recurse into those subschemas itself; that happens when
// drain later reaches their own pending entry.
func (c *Compiler) compileOne(r *root, ptr jsonPointer, v any) (*Schema, error) {
	sch := &Schema{loc: location{url: r.url, ptr: ptr}, draft: r.draft}

	switch val := v.(type) {
	case bool:
		sch.boolean = true
		sch.boolValue = val
		return sch, nil
	case map[string]any:
		if err := c.compileObject(r, ptr, val, sch); err != nil {
			return nil, err
		}
		return sch, nil
	default:
		// non-object, non-bool schema values (only ever reached via a
		// malformed $ref target) are treated as the always-true schema.
		sch.boolean = true
		sch.boolValue = true
		return sch, nil
	}
}

func (c *Compiler) compileObject(r *root, ptr jsonPointer, obj map[string]any, sch *Schema) error {
	res := r.resourceAt(ptr)
	base := res.canonicalURL
	if len(res.dynamicAnchors) > 0 {
		anchors, err := c.resourceDynamicAnchorIdx(r, res)
		if err != nil {
			return err
		}
		sch.resourceAnchors = anchors
	}
	enq := func(kw string) (schemaIdx, bool, error) {
		v, ok := obj[kw]
		if !ok {
			return 0, false, nil
		}
		idx, err := c.enqueue(r.url, ptr.child(kw), v)
		return idx, true, err
	}

	if refv, ok := obj["$ref"]; ok {
		refStr, _ := refv.(string)
		// draft-04..07 ignore every sibling of $ref; 2019-09+ apply both.
		if sch.draft.Version < 2019 {
			idx, _, ptr2, err := c.resolveRefKeyword(r, ptr, base, refStr)
			_ = ptr2
			if err != nil {
				return err
			}
			sch.ref = idx
			sch.refKind = refStatic
			return nil
		}
		idx, _, _, err := c.resolveRefKeyword(r, ptr, base, refStr)
		if err != nil {
			return err
		}
		sch.ref = idx
		sch.refKind = refStatic
	}

	if sch.draft.Version >= 2019 {
		if rrv, ok := obj["$recursiveRef"]; ok {
			refStr, _ := rrv.(string)
			idx, _, _, err := c.resolveRefKeyword(r, ptr, base, refStr)
			if err != nil {
				return err
			}
			sch.ref = idx
			sch.refKind = refRecursive
		}
		if rav, ok := obj["$recursiveAnchor"]; ok {
			if b, ok := rav.(bool); ok {
				sch.recursiveAnchor = b
			}
		}
	}
	if sch.draft.Version >= 2020 {
		if drv, ok := obj["$dynamicRef"]; ok {
			refStr, _ := drv.(string)
			idx, _, frag, err := c.resolveRefKeyword(r, ptr, base, refStr)
			if err != nil {
				return err
			}
			sch.ref = idx
			sch.refKind = refDynamic
			sch.refName = frag
		}
		if dav, ok := obj["$dynamicAnchor"].(string); ok {
			sch.dynamicAnchor = dav
		}
	}

	if tv, ok := obj["type"]; ok {
		switch t := tv.(type) {
		case string:
			sch.types = []string{t}
		case []any:
			for _, e := range t {
				if s, ok := e.(string); ok {
					sch.types = append(sch.types, s)
				}
			}
		}
	}
	if ev, ok := obj["enum"]; ok {
		if arr, ok := ev.([]any); ok {
			sch.enum = arr
		}
	}
	if cv, ok := obj["const"]; ok {
		sch.hasConst = true
		sch.constVal = cv
	}

	if err := c.compileCombinators(r, ptr, obj, sch, enq); err != nil {
		return err
	}
	if err := c.compileString(obj, sch); err != nil {
		return err
	}
	if err := c.compileNumber(obj, sch); err != nil {
		return err
	}
	if err := c.compileArray(r, ptr, obj, sch, enq); err != nil {
		return err
	}
	if err := c.compileObjectKeywords(r, ptr, obj, sch, enq); err != nil {
		return err
	}
	if err := c.compileContent(r, ptr, obj, sch, enq); err != nil {
		return err
	}
	if err := c.compileExtensions(r, ptr, obj, sch); err != nil {
		return err
	}
	return nil
}

func (c *Compiler) resolveRefKeyword(r *root, ptr jsonPointer, base absURL, ref string) (schemaIdx, *root, string, error) {
	targetRoot, targetPtr, err := c.roots.resolveRef(base, ref)
	if err != nil {
		return 0, nil, "", err
	}
	_, frag, _ := base.resolve(ref)
	idx, err := c.enqueue(targetRoot, targetPtr, nil)
	if err != nil {
		return 0, nil, "", err
	}
	return idx, r, frag, nil
}

func (c *Compiler) compileCombinators(r *root, ptr jsonPointer, obj map[string]any, sch *Schema, enq func(string) (schemaIdx, bool, error)) error {
	if arr, ok := obj["allOf"].([]any); ok {
		for i := range arr {
			idx, err := c.enqueue(r.url, ptr.child("allOf").childIndex(i), nil)
			if err != nil {
				return err
			}
			sch.allOf = append(sch.allOf, idx)
		}
	}
	if arr, ok := obj["anyOf"].([]any); ok {
		for i := range arr {
			idx, err := c.enqueue(r.url, ptr.child("anyOf").childIndex(i), nil)
			if err != nil {
				return err
			}
			sch.anyOf = append(sch.anyOf, idx)
		}
	}
	if arr, ok := obj["oneOf"].([]any); ok {
		for i := range arr {
			idx, err := c.enqueue(r.url, ptr.child("oneOf").childIndex(i), nil)
			if err != nil {
				return err
			}
			sch.oneOf = append(sch.oneOf, idx)
		}
	}
	if idx, ok, err := enq("not"); err != nil {
		return err
	} else if ok {
		sch.not, sch.hasNot = idx, true
	}
	if sch.draft.Version >= 7 {
		if idx, ok, err := enq("if"); err != nil {
			return err
		} else if ok {
			sch.ifSchema, sch.hasIf = idx, true
		}
		if idx, ok, err := enq("then"); err != nil {
			return err
		} else if ok {
			sch.thenSchema, sch.hasThen = idx, true
		}
		if idx, ok, err := enq("else"); err != nil {
			return err
		} else if ok {
			sch.elseSchema, sch.hasElse = idx, true
		}
	}
	return nil
}

func (c *Compiler) compileString(obj map[string]any, sch *Schema) error {
	if n, ok := jsonInt(obj["minLength"]); ok {
		sch.minLength = &n
	}
	if n, ok := jsonInt(obj["maxLength"]); ok {
		sch.maxLength = &n
	}
	if p, ok := obj["pattern"].(string); ok {
		re, err := c.engine().compile(p)
		if err != nil {
			return &CompileError{Kind: &InvalidMetaSchemaError{URL: p, Err: err}}
		}
		sch.pattern = re
		sch.patternSrc = p
	}
	return nil
}

func (c *Compiler) compileNumber(obj map[string]any, sch *Schema) error {
	rat := func(v any) (*big.Rat, bool) {
		return jsonRat(v)
	}
	if v, ok := rat(obj["minimum"]); ok {
		sch.minimum = v
	}
	if v, ok := rat(obj["maximum"]); ok {
		sch.maximum = v
	}
	if v, ok := rat(obj["multipleOf"]); ok {
		sch.multipleOf = v
	}
	// exclusiveMinimum/exclusiveMaximum: draft-04 uses a boolean flag
	// alongside minimum/maximum; draft-06+ uses a standalone numeric value.
	if sch.draft.Version < 6 {
		if b, ok := obj["exclusiveMinimum"].(bool); ok && b && sch.minimum != nil {
			sch.exclusiveMinimum = sch.minimum
			sch.minimum = nil
		}
		if b, ok := obj["exclusiveMaximum"].(bool); ok && b && sch.maximum != nil {
			sch.exclusiveMaximum = sch.maximum
			sch.maximum = nil
		}
	} else {
		if v, ok := rat(obj["exclusiveMinimum"]); ok {
			sch.exclusiveMinimum = v
		}
		if v, ok := rat(obj["exclusiveMaximum"]); ok {
			sch.exclusiveMaximum = v
		}
	}
	return nil
}

func (c *Compiler) compileArray(r *root, ptr jsonPointer, obj map[string]any, sch *Schema, enq func(string) (schemaIdx, bool, error)) error {
	if n, ok := jsonInt(obj["minItems"]); ok {
		sch.minItems = &n
	}
	if n, ok := jsonInt(obj["maxItems"]); ok {
		sch.maxItems = &n
	}
	if b, ok := obj["uniqueItems"].(bool); ok {
		sch.uniqueItems = b
	}

	if sch.draft.Version >= 2020 {
		if arr, ok := obj["prefixItems"].([]any); ok {
			for i := range arr {
				idx, err := c.enqueue(r.url, ptr.child("prefixItems").childIndex(i), nil)
				if err != nil {
					return err
				}
				sch.prefixItems = append(sch.prefixItems, idx)
			}
		}
		if idx, ok, err := enq("items"); err != nil {
			return err
		} else if ok {
			sch.items, sch.hasItems = idx, true
		}
	} else {
		if iv, ok := obj["items"]; ok {
			if arr, ok := iv.([]any); ok {
				sch.itemsIsTuple = true
				for i := range arr {
					idx, err := c.enqueue(r.url, ptr.child("items").childIndex(i), nil)
					if err != nil {
						return err
					}
					sch.itemsTuple = append(sch.itemsTuple, idx)
				}
			} else {
				idx, err := c.enqueue(r.url, ptr.child("items"), nil)
				if err != nil {
					return err
				}
				sch.items, sch.hasItems = idx, true
			}
		}
		if idx, ok, err := enq("additionalItems"); err != nil {
			return err
		} else if ok {
			sch.additionalItems, sch.hasAdditionalItems = idx, true
		}
	}

	if sch.draft.Version >= 6 {
		if idx, ok, err := enq("contains"); err != nil {
			return err
		} else if ok {
			sch.contains, sch.hasContains = idx, true
		}
	}
	if sch.hasContains && sch.draft.Version >= 2019 {
		if n, ok := jsonInt(obj["minContains"]); ok {
			sch.minContains = &n
		}
		if n, ok := jsonInt(obj["maxContains"]); ok {
			sch.maxContains = &n
		}
	}

	if sch.draft.Version >= 2019 {
		if idx, ok, err := enq("unevaluatedItems"); err != nil {
			return err
		} else if ok {
			sch.unevaluatedItems, sch.hasUnevaluatedItems = idx, true
		}
	}
	if ai, ok := obj["additionalItems"].(bool); ok && ai && sch.itemsIsTuple {
		sch.allItemsEvaluated = true
	}
	if it, ok := obj["items"].(bool); ok && it && sch.draft.Version >= 2020 {
		sch.allItemsEvaluated = true
	}
	return nil
}

func (c *Compiler) compileObjectKeywords(r *root, ptr jsonPointer, obj map[string]any, sch *Schema, enq func(string) (schemaIdx, bool, error)) error {
	if n, ok := jsonInt(obj["minProperties"]); ok {
		sch.minProperties = &n
	}
	if n, ok := jsonInt(obj["maxProperties"]); ok {
		sch.maxProperties = &n
	}
	if arr, ok := obj["required"].([]any); ok {
		for _, e := range arr {
			if s, ok := e.(string); ok {
				sch.required = append(sch.required, s)
			}
		}
	}
	if m, ok := obj["properties"].(map[string]any); ok {
		sch.properties = map[string]schemaIdx{}
		for name := range m {
			idx, err := c.enqueue(r.url, ptr.child("properties").child(name), nil)
			if err != nil {
				return err
			}
			sch.properties[name] = idx
		}
	}
	if m, ok := obj["patternProperties"].(map[string]any); ok {
		for _, pat := range sortedKeys(m) {
			idx, err := c.enqueue(r.url, ptr.child("patternProperties").child(pat), nil)
			if err != nil {
				return err
			}
			re, err := c.engine().compile(pat)
			if err != nil {
				return &CompileError{Kind: &InvalidMetaSchemaError{URL: pat, Err: err}}
			}
			sch.patternProperties = append(sch.patternProperties, patternPropEntry{re: re, sch: idx})
		}
	}
	if sch.draft.Version >= 6 {
		if idx, ok, err := enq("propertyNames"); err != nil {
			return err
		} else if ok {
			sch.propertyNames, sch.hasPropertyNames = idx, true
		}
	}
	if idx, ok, err := enq("additionalProperties"); err != nil {
		return err
	} else if ok {
		sch.additionalProperties, sch.hasAdditionalProperties = idx, true
	}

	if sch.draft.Version < 2019 {
		if m, ok := obj["dependencies"].(map[string]any); ok {
			sch.dependencies = map[string]dependency{}
			for name, v := range m {
				switch dv := v.(type) {
				case []any:
					var req []string
					for _, e := range dv {
						if s, ok := e.(string); ok {
							req = append(req, s)
						}
					}
					sch.dependencies[name] = dependency{required: req}
				case map[string]any, bool:
					idx, err := c.enqueue(r.url, ptr.child("dependencies").child(name), nil)
					if err != nil {
						return err
					}
					sch.dependencies[name] = dependency{schema: idx, isSchema: true}
				}
			}
		}
	} else {
		if m, ok := obj["dependentRequired"].(map[string]any); ok {
			sch.dependentRequired = map[string][]string{}
			for name, v := range m {
				if arr, ok := v.([]any); ok {
					var req []string
					for _, e := range arr {
						if s, ok := e.(string); ok {
							req = append(req, s)
						}
					}
					sch.dependentRequired[name] = req
				}
			}
		}
		if m, ok := obj["dependentSchemas"].(map[string]any); ok {
			sch.dependentSchemas = map[string]schemaIdx{}
			for name := range m {
				idx, err := c.enqueue(r.url, ptr.child("dependentSchemas").child(name), nil)
				if err != nil {
					return err
				}
				sch.dependentSchemas[name] = idx
			}
		}
		if idx, ok, err := enq("unevaluatedProperties"); err != nil {
			return err
		} else if ok {
			sch.unevaluatedProperties, sch.hasUnevaluatedProperties = idx, true
		}
	}

	// allPropsEvaluated/allItemsEvaluated are a conservative "this node
	// alone already evaluates everything" shortcut: true only when
	// additionalProperties/additionalItems is the literal `true` schema,
	// which makes every property/item evaluated regardless of what else
	// ran. Anything subtler (e.g. a oneOf branch that happens to cover all
	// properties) falls back to building the full Uneval tracking set.
	if ap, ok := obj["additionalProperties"].(bool); ok && ap {
		sch.allPropsEvaluated = true
	}
	return nil
}

func (c *Compiler) compileContent(r *root, ptr jsonPointer, obj map[string]any, sch *Schema, enq func(string) (schemaIdx, bool, error)) error {
	sch.assertContent = c.assertContent
	if s, ok := obj["contentEncoding"].(string); ok {
		sch.contentEncoding, sch.hasContentEncoding = s, true
		sch.contentDecoder = c.decoders[s]
	}
	if s, ok := obj["contentMediaType"].(string); ok {
		sch.contentMediaType, sch.hasContentMediaType = s, true
		sch.contentMediaTypeFn = c.mediaTypes[s]
	}
	if sch.draft.Version >= 7 {
		if idx, ok, err := enq("contentSchema"); err != nil {
			return err
		} else if ok {
			sch.contentSchema, sch.hasContentSchema = idx, true
		}
	}
	if s, ok := obj["format"].(string); ok {
		if fn, ok := formats.Get(s); ok {
			sch.format = &namedFormat{name: s, fn: fn}
			sch.assertFormat = c.assertFormat || sch.draft.Version < 2019
		}
	}
	return nil
}

func (c *Compiler) compileExtensions(r *root, ptr jsonPointer, obj map[string]any, sch *Schema) error {
	if len(c.extensions) == 0 {
		return nil
	}
	for kw, ext := range c.extensions {
		if _, ok := obj[kw]; !ok {
			continue
		}
		ctx := CompileContext{compiler: c, base: r.url, ptr: ptr}
		extSch, err := ext.Compile(ctx, obj)
		if err != nil {
			return err
		}
		if extSch == nil {
			continue
		}
		if sch.ext == nil {
			sch.ext = map[string]ExtSchema{}
		}
		sch.ext[kw] = extSch
	}
	return nil
}

// jsonInt reads an integer-valued json.Number (as decoded via
// loader.UnmarshalJSON) out of v, ignoring non-integer or absent values.
func jsonInt(v any) (int, bool) {
	r, ok := jsonRat(v)
	if !ok || !r.IsInt() {
		return 0, false
	}
	return int(r.Num().Int64()), true
}

func jsonRat(v any) (*big.Rat, bool) {
	switch n := v.(type) {
	case jsonNumber:
		r, ok := new(big.Rat).SetString(n.String())
		return r, ok
	case float64:
		return new(big.Rat).SetFloat64(n), true
	case int:
		return new(big.Rat).SetInt64(int64(n)), true
	case int64:
		return new(big.Rat).SetInt64(n), true
	case uint64:
		return new(big.Rat).SetUint64(n), true
	}
	return nil, false
}
