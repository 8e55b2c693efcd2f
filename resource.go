package jsonschema

// resource is a sub-schema within a root document that declared its own
// identifier (via $id/id) or that is the root document itself. It owns the
// plain-name anchors ($anchor, legacy id-fragment, $dynamicAnchor) declared
// anywhere underneath it, up to the next nested resource boundary.
type resource struct {
	ptr          jsonPointer // location of this resource within its root
	canonicalURL absURL
	anchors      map[string]jsonPointer
	dynamicAnchors map[string]bool
}

func newResource(ptr jsonPointer, u absURL) *resource {
	return &resource{
		ptr:            ptr,
		canonicalURL:   u,
		anchors:        map[string]jsonPointer{},
		dynamicAnchors: map[string]bool{},
	}
}
