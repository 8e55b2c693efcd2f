package jsonschema

import "strings"

// resolveRef resolves ref (as it appears in a $ref/$recursiveRef/$dynamicRef
// keyword) against base, the canonical URL of the schema object containing
// that keyword, returning the root URL and json pointer the reference
// ultimately addresses. It loads the target document if necessary.
func (rs *roots) resolveRef(base absURL, ref string) (absURL, jsonPointer, error) {
	resolvedURL, frag, err := base.resolve(ref)
	if err != nil {
		return "", "", err
	}
	r, basePtr, err := rs.rootFor(resolvedURL)
	if err != nil {
		return "", "", err
	}
	if frag == "" {
		return r.url, basePtr, nil
	}
	if strings.HasPrefix(frag, "/") {
		full := basePtr + jsonPointer(frag)
		if _, err := r.valueAt(full); err != nil {
			return "", "", &CompileError{Kind: &UrlFragmentNotFoundError{URL: ref}}
		}
		return r.url, full, nil
	}
	res := r.resourceAt(basePtr)
	if p, ok := res.anchors[frag]; ok {
		return r.url, p, nil
	}
	return "", "", &CompileError{Kind: &AnchorNotFoundError{URL: string(resolvedURL), Anchor: frag}}
}

// rootFor returns the root document that owns u, and the json pointer
// within it that u itself addresses (non-empty when u names an embedded
// resource rather than a root's own load URL).
func (rs *roots) rootFor(u absURL) (*root, jsonPointer, error) {
	if r, ok := rs.byURL[u]; ok {
		return r, "", nil
	}
	if r, ptr, ok := rs.lookupAlias(u); ok {
		return r, ptr, nil
	}
	r, err := rs.orLoad(u)
	if err != nil {
		return nil, "", err
	}
	if r2, ptr, ok := rs.lookupAlias(u); ok {
		return r2, ptr, nil
	}
	return r, "", nil
}
