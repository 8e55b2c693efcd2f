package jsonschema

// uneval tracks which object properties and array items have not yet been
// claimed by any keyword ("evaluated", in the vocabulary's sense), so that
// unevaluatedProperties/unevaluatedItems can act on exactly what survived
// every other keyword's scrutiny, including subschemas reached only through
// $ref/allOf/anyOf/oneOf/if-then-else.
//
// It is only constructed at a schema node (2019-09 or later) that itself has
// an unevaluatedProperties/unevaluatedItems keyword; the in-place subschemas
// reached from that node share it (see session.validate).
type uneval struct {
	props map[string]bool
	items map[int]bool
}

func newUneval(v any) *uneval {
	u := &uneval{}
	switch val := v.(type) {
	case map[string]any:
		u.props = make(map[string]bool, len(val))
		for k := range val {
			u.props[k] = true
		}
	case []any:
		u.items = make(map[int]bool, len(val))
		for i := range val {
			u.items[i] = true
		}
	}
	return u
}

func (u *uneval) evalProp(name string) { delete(u.props, name) }
func (u *uneval) evalItem(i int)       { delete(u.items, i) }
func (u *uneval) evalAllProps()        { u.props = map[string]bool{} }
func (u *uneval) evalAllItems()        { u.items = map[int]bool{} }
