package jsonschema

import (
	"net/url"
	"strings"
)

// absURL is a normalized, fragment-free absolute URL string, used as the
// map key identifying a loaded root document. Two locations that resolve to
// the same absURL refer to the same document.
type absURL string

// parseAbsURL normalizes raw into an absURL (dropping any fragment). A raw
// value without a scheme is kept as-is, minus its fragment.
func parseAbsURL(raw string) (absURL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", &CompileError{Kind: &ParseUrlError{URL: raw, Err: err}}
	}
	u.Fragment = ""
	if u.Scheme == "" {
		// no scheme: treat as a plain, already-absolute identifier (used by
		// AddResource callers that hand in synthetic ids like "mem://x" or
		// bare names); normalize by stripping any trailing fragment text.
		raw, _ = splitFragment(raw)
		return absURL(raw), nil
	}
	return absURL(u.String()), nil
}

// resolve resolves ref against base per RFC 3986, returning the
// fragment-free absolute URL and the fragment (JSON pointer or plain name)
// separately.
func (base absURL) resolve(ref string) (absURL, string, error) {
	refURL, frag := splitFragment(ref)
	if refURL == "" {
		return base, frag, nil
	}
	rel, err := url.Parse(refURL)
	if err != nil {
		return "", "", &CompileError{Kind: &ParseUrlError{URL: ref, Err: err}}
	}
	if rel.IsAbs() {
		rel.Fragment = ""
		return absURL(rel.String()), frag, nil
	}
	baseURL, err := url.Parse(string(base))
	if err != nil {
		return "", "", &CompileError{Kind: &ParseUrlError{URL: string(base), Err: err}}
	}
	resolved := baseURL.ResolveReference(rel)
	resolved.Fragment = ""
	return absURL(resolved.String()), frag, nil
}

// splitFragment splits "url#fragment" into its two parts; frag is returned
// unescaped from percent-encoding (JSON pointer and plain-name fragments
// alike), or verbatim when it is not valid percent-encoding.
func splitFragment(loc string) (string, string) {
	if i := strings.IndexByte(loc, '#'); i >= 0 {
		frag := loc[i+1:]
		if unescaped, err := url.PathUnescape(frag); err == nil {
			frag = unescaped
		}
		return loc[:i], frag
	}
	return loc, ""
}
