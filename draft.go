package jsonschema

import "strings"

// Draft identifies a json-schema dialect. The set of keywords the compiler
// lowers, and which keyword carries a resource's identifier, both depend on
// it; see compileOne in compiler.go.
type Draft struct {
	// Version is the draft's year/number, used for ordered comparisons
	// ("draft >= 2019") throughout the compiler and validator.
	Version int
	name     string
	idKeyword    string // "id" for draft-04, "$id" from draft-06 on
	anchorKeyword string // "$anchor", empty before draft 2019-09
	dynamicAnchorKeyword string // "$dynamicAnchor", only 2020-12
	metaSchemaURLs []string
}

func (d *Draft) String() string { return d.name }

// hasAnchor reports whether this draft supports the plain-name $anchor
// keyword (as opposed to draft-04..07's id-with-fragment form).
func (d *Draft) hasAnchor() bool { return d.anchorKeyword != "" }

var (
	Draft4 = &Draft{Version: 4, name: "draft-04", idKeyword: "id"}
	Draft6 = &Draft{Version: 6, name: "draft-06", idKeyword: "$id"}
	Draft7 = &Draft{Version: 7, name: "draft-07", idKeyword: "$id"}
	Draft2019 = &Draft{Version: 2019, name: "2019-09", idKeyword: "$id", anchorKeyword: "$anchor"}
	Draft2020 = &Draft{Version: 2020, name: "2020-12", idKeyword: "$id", anchorKeyword: "$anchor", dynamicAnchorKeyword: "$dynamicAnchor"}

	allDrafts = []*Draft{Draft4, Draft6, Draft7, Draft2019, Draft2020}

	// latestDraft is used when a schema document declares no $schema and
	// the Compiler has not been given an explicit default.
	latestDraft = Draft2020
)

func init() {
	Draft4.metaSchemaURLs = []string{
		"http://json-schema.org/draft-04/schema",
	}
	Draft6.metaSchemaURLs = []string{
		"http://json-schema.org/draft-06/schema",
	}
	Draft7.metaSchemaURLs = []string{
		"http://json-schema.org/draft-07/schema",
	}
	Draft2019.metaSchemaURLs = []string{
		"https://json-schema.org/draft/2019-09/schema",
	}
	Draft2020.metaSchemaURLs = []string{
		"https://json-schema.org/draft/2020-12/schema",
	}
}

// draftFromURL recognizes one of the five canonical meta-schema URLs,
// ignoring a trailing "#" and http/https scheme differences.
func draftFromURL(u string) (*Draft, bool) {
	u = strings.TrimSuffix(u, "#")
	for _, d := range allDrafts {
		for _, m := range d.metaSchemaURLs {
			if u == m || u == "http"+strings.TrimPrefix(m, "https") || u == "https"+strings.TrimPrefix(m, "http") {
				return d, true
			}
		}
	}
	return nil, false
}
