package jsonschema

// subschemaSite is one location under a schema object where another
// (sub)schema may appear. kw is the owning keyword, ptr is the location
// relative to the schema object's own pointer, and val is the raw subschema
// value (object, bool, or for tuple-style "items"/"dependencies" entries,
// already split out into one site per element).
type subschemaSite struct {
	kw  string
	ptr jsonPointer
	val any
}

// subschemaSites enumerates every location under obj (the value at ptr)
// where draft allows a (sub)schema, keyword by keyword in a fixed order
// (entries of a map-valued keyword follow map iteration order). It drives
// the resource-discovery walk in roots.go; the compiler's keyword lowering
// in compiler.go enumerates the same keywords on its own.
func subschemaSites(draft *Draft, obj map[string]any) []subschemaSite {
	var sites []subschemaSite
	add := func(kw string, p jsonPointer, v any) {
		sites = append(sites, subschemaSite{kw: kw, ptr: p, val: v})
	}
	single := func(kw string) {
		if v, ok := obj[kw]; ok {
			add(kw, jsonPointer("/"+kw), v)
		}
	}
	arrayOf := func(kw string) {
		if v, ok := obj[kw]; ok {
			if arr, ok := v.([]any); ok {
				for i, sub := range arr {
					add(kw, jsonPointer("/"+kw).childIndex(i), sub)
				}
			}
		}
	}
	mapOf := func(kw string) {
		if v, ok := obj[kw]; ok {
			if m, ok := v.(map[string]any); ok {
				for name, sub := range m {
					add(kw, jsonPointer("/"+kw).child(name), sub)
				}
			}
		}
	}

	single("not")
	arrayOf("allOf")
	arrayOf("anyOf")
	arrayOf("oneOf")
	mapOf("properties")
	mapOf("patternProperties")

	if draft.Version >= 6 {
		single("propertyNames")
		single("contains")
	}
	if draft.Version >= 7 {
		single("if")
		single("then")
		single("else")
		single("contentSchema")
	}
	if draft.Version >= 2019 {
		mapOf("$defs")
		mapOf("dependentSchemas")
		single("unevaluatedProperties")
		single("unevaluatedItems")
	} else {
		mapOf("definitions")
	}

	// additionalProperties/additionalItems/items are schema-or-bool; items
	// is additionally tuple-shaped (array of schemas) before draft 2020-12.
	if v, ok := obj["additionalProperties"]; ok {
		add("additionalProperties", "/additionalProperties", v)
	}
	if draft.Version >= 2020 {
		arrayOf("prefixItems")
		single("items")
	} else {
		if v, ok := obj["items"]; ok {
			if arr, ok := v.([]any); ok {
				for i, sub := range arr {
					add("items", jsonPointer("/items").childIndex(i), sub)
				}
			} else {
				add("items", "/items", v)
			}
		}
		single("additionalItems")
	}

	// dependencies: pre-2019 mixed keyword, only object- or bool-valued
	// entries are schemas (string-array entries are plain dependentRequired lists).
	if draft.Version < 2019 {
		if v, ok := obj["dependencies"]; ok {
			if m, ok := v.(map[string]any); ok {
				for name, sub := range m {
					if _, isSchema := sub.(map[string]any); isSchema {
						add("dependencies", jsonPointer("/dependencies").child(name), sub)
					} else if b, isBool := sub.(bool); isBool {
						_ = b
						add("dependencies", jsonPointer("/dependencies").child(name), sub)
					}
				}
			}
		}
	}

	return sites
}
