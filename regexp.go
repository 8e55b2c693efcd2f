package jsonschema

import (
	"regexp"

	"github.com/dlclark/regexp2"
)

// Regexp is satisfied by a compiled pattern from either regexp engine the
// Compiler supports.
type Regexp interface {
	MatchString(s string) bool
}

// RegexpEngine compiles "pattern"/"patternProperties" source strings. The
// json-schema drafts nominally require ECMA-262 syntax, which Go's
// RE2-based regexp package does not fully implement (no lookaround, no
// backreferences); RegexpGo is the zero-value default for speed and safety
// against catastrophic backtracking, RegexpECMA262 trades that for fidelity
// to patterns written against other implementations.
type RegexpEngine int

const (
	RegexpGo RegexpEngine = iota
	RegexpECMA262
)

func (e RegexpEngine) compile(pattern string) (Regexp, error) {
	switch e {
	case RegexpECMA262:
		re, err := regexp2.Compile(pattern, regexp2.ECMAScript)
		if err != nil {
			return nil, err
		}
		return regexp2Pattern{re}, nil
	default:
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		return re, nil
	}
}

type regexp2Pattern struct {
	re *regexp2.Regexp
}

func (p regexp2Pattern) MatchString(s string) bool {
	ok, err := p.re.MatchString(s)
	return err == nil && ok
}
