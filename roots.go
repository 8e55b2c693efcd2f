package jsonschema

import (
	"strings"

	"github.com/brightloom/jsonschema/loader"
)

// alias points at a location inside some already-loaded root, used to
// resolve an embedded resource's own $id (or a plain $anchor/$dynamicAnchor
// name) back to (root url, json pointer) without giving the embedded
// resource a root of its own.
type alias struct {
	rootURL absURL
	ptr     jsonPointer
}

// roots is the catalog of every document the Compiler has loaded, keyed by
// the absolute URL it was loaded from, plus a secondary index of every
// embedded resource's own declared identifier.
type roots struct {
	defaultDraft *Draft
	byURL        map[absURL]*root
	aliases      map[absURL]alias
	docs         map[absURL]any // pre-registered via Compiler.AddResource
	loaders      *loader.Registry
}

func newRoots() *roots {
	return &roots{
		defaultDraft: latestDraft,
		byURL:        map[absURL]*root{},
		aliases:      map[absURL]alias{},
		docs:         map[absURL]any{},
		loaders:      loader.NewRegistry(),
	}
}

func (rs *roots) addResource(u absURL, doc any) {
	rs.docs[u] = doc
}

// get returns the already-loaded root for u, if any (neither loading nor
// alias-resolving).
func (rs *roots) get(u absURL) (*root, bool) {
	r, ok := rs.byURL[u]
	return r, ok
}

// orLoad returns the root for u, loading and parsing it on first access.
func (rs *roots) orLoad(u absURL) (*root, error) {
	if r, ok := rs.byURL[u]; ok {
		return r, nil
	}
	doc, ok := rs.docs[u]
	if !ok {
		var err error
		doc, err = rs.loaders.Load(string(u))
		if err != nil {
			return nil, &CompileError{Kind: &LoadUrlError{URL: string(u), Err: err}}
		}
	}
	return rs.insert(u, doc)
}

func (rs *roots) insert(u absURL, doc any) (*root, error) {
	draft, err := rs.draftOf(doc)
	if err != nil {
		return nil, err
	}
	r := &root{url: u, doc: doc, draft: draft, resources: map[jsonPointer]*resource{}}
	if err := rs.extractResources(r, doc, "", u, ""); err != nil {
		return nil, err
	}
	rs.byURL[u] = r
	return r, nil
}

// draftOf determines doc's dialect from its own $schema, falling back to
// the Compiler's configured default.
func (rs *roots) draftOf(doc any) (*Draft, error) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return rs.defaultDraft, nil
	}
	sv, ok := obj["$schema"]
	if !ok {
		return rs.defaultDraft, nil
	}
	s, ok := sv.(string)
	if !ok {
		return rs.defaultDraft, nil
	}
	return rs.resolveDraft(s, map[string]bool{})
}

// resolveDraft follows a $schema URL to one of the five canonical drafts,
// recursing through custom/vendored meta-schemas that themselves declare a
// $schema, and failing with MetaSchemaCycle if that chain loops.
func (rs *roots) resolveDraft(schemaURL string, visited map[string]bool) (*Draft, error) {
	url, _ := splitFragment(schemaURL)
	if d, ok := draftFromURL(url); ok {
		return d, nil
	}
	if visited[url] {
		return nil, &CompileError{Kind: &MetaSchemaCycleError{URL: url}}
	}
	visited[url] = true
	abs, err := parseAbsURL(url)
	if err != nil {
		return nil, err
	}
	doc, ok := rs.docs[abs]
	if !ok {
		doc, err = rs.loaders.Load(string(abs))
		if err != nil {
			return nil, &CompileError{Kind: &InvalidMetaSchemaError{URL: url, Err: err}}
		}
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return rs.defaultDraft, nil
	}
	sv, ok := obj["$schema"]
	if !ok {
		return rs.defaultDraft, nil
	}
	s, ok := sv.(string)
	if !ok {
		return rs.defaultDraft, nil
	}
	return rs.resolveDraft(s, visited)
}

// extractResources walks v (found at ptr within root r, with base the
// canonical URL in effect at ptr) discovering every nested resource
// boundary ($id/id) and every plain-name anchor ($anchor, legacy
// id-fragment, $dynamicAnchor) declared under it. nearest is the pointer of
// the innermost enclosing resource seen so far.
func (rs *roots) extractResources(r *root, v any, ptr jsonPointer, base absURL, nearest jsonPointer) error {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	if ptr == "" {
		res := newResource("", base)
		r.resources[""] = res
		rs.aliases[base] = alias{rootURL: r.url, ptr: ""}
		nearest = ""
	}

	idKeyword := r.draft.idKeyword
	if idv, ok := obj[idKeyword]; ok {
		if idStr, ok := idv.(string); ok && idStr != "" {
			resolved, frag, err := base.resolve(idStr)
			if err != nil {
				return &CompileError{Kind: &InvalidIdError{Id: idStr, Ptr: string(ptr)}}
			}
			if frag == "" {
				if existing, ok := r.resources[ptr]; !ok || existing.canonicalURL != resolved {
					if a, ok := rs.aliases[resolved]; ok && !(a.rootURL == r.url && a.ptr == ptr) {
						return &CompileError{Kind: &DuplicateIDError{URL: string(resolved), Ptr1: string(a.ptr), Ptr2: string(ptr)}}
					}
					res := newResource(ptr, resolved)
					r.resources[ptr] = res
					rs.aliases[resolved] = alias{rootURL: r.url, ptr: ptr}
					base = resolved
					nearest = ptr
				}
			} else if strings.HasPrefix(frag, "/") {
				// a json-pointer-shaped fragment names a $ref target, never a
				// valid $id/id: "#/a/b" is not a plain-name anchor.
				return &CompileError{Kind: &InvalidIdError{Id: idStr, Ptr: string(ptr)}}
			} else {
				// legacy draft-04..07 plain-name anchor via "#name" fragment
				r.resources[nearest].anchors[frag] = ptr
			}
		}
	}

	if r.draft.hasAnchor() {
		if a, ok := obj[r.draft.anchorKeyword].(string); ok && a != "" {
			r.resources[nearest].anchors[a] = ptr
		}
	}
	if r.draft.dynamicAnchorKeyword != "" {
		if a, ok := obj[r.draft.dynamicAnchorKeyword].(string); ok && a != "" {
			r.resources[nearest].anchors[a] = ptr
			r.resources[nearest].dynamicAnchors[a] = true
		}
	}

	for _, site := range subschemaSites(r.draft, obj) {
		if err := rs.extractResources(r, site.val, ptr+site.ptr, base, nearest); err != nil {
			return err
		}
	}
	return nil
}

// lookupAlias resolves u to (root, pointer) if u names an embedded
// resource's own identifier rather than a root's own load URL.
func (rs *roots) lookupAlias(u absURL) (*root, jsonPointer, bool) {
	a, ok := rs.aliases[u]
	if !ok {
		return nil, "", false
	}
	r, ok := rs.byURL[a.rootURL]
	if !ok {
		return nil, "", false
	}
	return r, a.ptr, true
}
