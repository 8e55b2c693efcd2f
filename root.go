package jsonschema

import "strings"

// root is one loaded document, keyed by the absolute URL it was loaded
// from. It never changes after roots.insert returns it: resources, anchors and
// draft are all discovered in a single pass over doc.
type root struct {
	url       absURL
	doc       any
	draft     *Draft
	resources map[jsonPointer]*resource // keyed by pointer of the $id/id site
}

// resourceAt returns the nearest resource at or enclosing ptr, walking up
// the pointer one token at a time. Every root has at least the "" resource
// for the document itself.
func (r *root) resourceAt(ptr jsonPointer) *resource {
	for {
		if res, ok := r.resources[ptr]; ok {
			return res
		}
		s := string(ptr)
		i := strings.LastIndexByte(s, '/')
		if i < 0 {
			break
		}
		ptr = jsonPointer(s[:i])
	}
	return r.resources[""]
}

// valueAt resolves a json pointer within this root's document.
func (r *root) valueAt(ptr jsonPointer) (any, error) {
	return lookup(r.doc, ptr)
}
