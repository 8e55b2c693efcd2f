package jsonschema

import (
	"math/big"
	"sort"

	"github.com/brightloom/jsonschema/kind"
)

// session carries the state shared by every validate call reached while
// checking a single top-level instance: the arena being validated against,
// and a monotonic counter handing out instance identities (vid) so the
// cycle guard in scope.checkCycle can tell "the same value, seen again
// higher up the chain" from "a different value that happens to share a
// schema".
type session struct {
	schemas *Schemas
	lastVid int
}

func (s *session) newVid() int {
	s.lastVid++
	return s.lastVid
}

// Validate checks v against the compiled schema at idx, returning nil if it
// conforms or a *ValidationError describing every way it does not.
func (s *Schemas) Validate(v any, idx int) error {
	sess := &session{}
	sess.schemas = s
	vid := sess.newVid()
	err := sess.validate(schemaIdx(idx), v, "", nil, vid, refNone, false, nil)
	if err == nil {
		return nil
	}
	return err
}

func validateAt(schemas *Schemas, idx schemaIdx, v any, sc *scope) error {
	sess := &session{schemas: schemas}
	vid := sess.newVid()
	err := sess.validate(idx, v, "", sc, vid, refNone, false, nil)
	if err == nil {
		return nil
	}
	return err
}

// validate is the interpreter's single recursive entry point. parentUneval
// is non-nil exactly when v is the same instance value an enclosing
// validate call is already tracking (i.e. this call was reached through
// allOf/anyOf/oneOf/if-then-else/$ref on that same value); in that case
// property/item evaluations this call performs are recorded directly into
// the shared tracker instead of a fresh one.
func (s *session) validate(idx schemaIdx, v any, instPtr jsonPointer, parent *scope, vid int, refKw refKind, boolResult bool, parentUneval *uneval) *ValidationError {
	sch := s.schemas.at(idx)

	if sch.boolean {
		if sch.boolValue {
			return nil
		}
		return newError(&kind.FalseSchema{}, instPtr, sch.loc)
	}

	if parent != nil {
		if cyc, ok := parent.checkCycle(idx, vid); ok {
			return newError(&kind.RefCycle{
				URL:              sch.loc.String(),
				KeywordLocation1: s.schemas.at(cyc.sch).loc.String(),
				KeywordLocation2: sch.loc.String(),
			}, instPtr, sch.loc)
		}
	}
	sc := parent.child(idx, refKw, vid)

	var causes []*ValidationError
	fail := func(e *ValidationError) *ValidationError {
		causes = append(causes, e)
		return e
	}

	if len(sch.types) > 0 {
		ok := false
		for _, t := range sch.types {
			if matchesType(v, t) {
				ok = true
				break
			}
		}
		if !ok {
			e := fail(newError(&kind.Type{Got: jsonType(v), Want: sch.types}, instPtr, sch.loc))
			if boolResult {
				return e
			}
		}
	}
	if len(sch.enum) > 0 {
		ok := false
		for _, want := range sch.enum {
			if jsonEqual(v, want) {
				ok = true
				break
			}
		}
		if !ok {
			e := fail(newError(&kind.Enum{Got: v, Want: sch.enum}, instPtr, sch.loc))
			if boolResult {
				return e
			}
		}
	}
	if sch.hasConst {
		if !jsonEqual(v, sch.constVal) {
			e := fail(newError(&kind.Const{Got: v, Want: sch.constVal}, instPtr, sch.loc))
			if boolResult {
				return e
			}
		}
	}
	if sch.format != nil && sch.assertFormat {
		if err := sch.format.fn(v); err != nil {
			e := fail(newError(&kind.Format{Got: v, Want: sch.format.name, Err: err}, instPtr, sch.loc))
			if boolResult {
				return e
			}
		}
	}

	var ownUneval *uneval
	if parentUneval != nil {
		ownUneval = parentUneval
	} else if sch.draft.Version >= 2019 && (sch.hasUnevaluatedProperties || sch.hasUnevaluatedItems) {
		ownUneval = newUneval(v)
	}

	switch jsonType(v) {
	case "object":
		if e := s.validateObject(sch, v.(map[string]any), instPtr, sc, vid, boolResult, ownUneval); e != nil {
			fail(e)
			if boolResult {
				return e
			}
		}
	case "array":
		if e := s.validateArray(sch, v.([]any), instPtr, sc, vid, boolResult, ownUneval); e != nil {
			fail(e)
			if boolResult {
				return e
			}
		}
	case "string":
		if e := s.validateString(sch, v.(string), instPtr); e != nil {
			fail(e)
			if boolResult {
				return e
			}
		}
	case "number":
		if e := s.validateNumber(sch, v, instPtr); e != nil {
			fail(e)
			if boolResult {
				return e
			}
		}
	}

	if e := s.validateCombinators(sch, v, instPtr, sc, vid, boolResult, ownUneval); e != nil {
		fail(e)
		if boolResult {
			return e
		}
	}

	if sch.refKind != refNone {
		target := sch.ref
		switch sch.refKind {
		case refRecursive:
			if outer, ok := outermostRecursive(sc, s.schemas); ok {
				target = outer
			}
		case refDynamic:
			if outer, ok := outermostDynamic(sc, s.schemas, sch.refName); ok {
				target = outer
			}
		}
		if e := s.validate(target, v, instPtr, sc, vid, sch.refKind, boolResult, ownUneval); e != nil {
			wrapped := newError(&kind.Reference{Keyword: refKeyword(sch.refKind), URL: s.schemas.at(target).loc.String()}, instPtr, sch.loc)
			if g, ok := e.Kind.(*kind.Group); ok {
				_ = g
				wrapped.Causes = e.Causes
			} else {
				wrapped.Causes = []*ValidationError{e}
			}
			fe := fail(wrapped)
			if boolResult {
				return fe
			}
		}
	}

	if ownUneval != nil && parentUneval == nil {
		if e := s.validateUnevaluated(sch, v, instPtr, sc, vid, ownUneval); e != nil {
			fail(e)
			if boolResult {
				return e
			}
		}
	}

	if sch.ext != nil {
		for _, ext := range sch.ext {
			if err := ext.Validate(ValidationContext{schemas: s.schemas, scope: sc}, v); err != nil {
				if ve, ok := err.(*ValidationError); ok {
					fail(ve)
				} else {
					fail(newError(&kind.Schema{Location: sch.loc.String()}, instPtr, sch.loc))
				}
			}
		}
	}

	return group(instPtr, sch.loc, causes)
}

func refKeyword(k refKind) string {
	switch k {
	case refRecursive:
		return "$recursiveRef"
	case refDynamic:
		return "$dynamicRef"
	default:
		return "$ref"
	}
}

func (s *session) validateCombinators(sch *Schema, v any, instPtr jsonPointer, sc *scope, vid int, boolResult bool, ownUneval *uneval) *ValidationError {
	if sch.hasNot {
		probeUneval := cloneUneval(ownUneval)
		if err := s.validate(sch.not, v, instPtr, sc, vid, refNone, true, probeUneval); err == nil {
			return newError(&kind.Not{}, instPtr, sch.loc)
		}
	}
	if len(sch.allOf) > 0 {
		var causes []*ValidationError
		for _, m := range sch.allOf {
			branch := cloneUneval(ownUneval)
			if e := s.validate(m, v, instPtr, sc, vid, refNone, boolResult, branch); e != nil {
				causes = append(causes, e)
				if boolResult {
					return e
				}
			} else {
				mergeInto(ownUneval, branch)
			}
		}
		if len(causes) > 0 {
			e := newError(&kind.AllOf{}, instPtr, sch.loc)
			e.Causes = causes
			return e
		}
	}
	if len(sch.anyOf) > 0 {
		var causes []*ValidationError
		matched := false
		for _, m := range sch.anyOf {
			branch := cloneUneval(ownUneval)
			if e := s.validate(m, v, instPtr, sc, vid, refNone, false, branch); e != nil {
				causes = append(causes, e)
			} else {
				matched = true
				mergeInto(ownUneval, branch)
			}
		}
		if !matched {
			e := newError(&kind.AnyOf{}, instPtr, sch.loc)
			e.Causes = causes
			if boolResult {
				return e
			}
			return e
		}
	}
	if len(sch.oneOf) > 0 {
		var matchIdx []int
		var causes []*ValidationError
		var matchedUneval *uneval
		for i, m := range sch.oneOf {
			branch := cloneUneval(ownUneval)
			if e := s.validate(m, v, instPtr, sc, vid, refNone, false, branch); e != nil {
				causes = append(causes, e)
			} else {
				matchIdx = append(matchIdx, i)
				matchedUneval = branch
			}
		}
		switch len(matchIdx) {
		case 1:
			mergeInto(ownUneval, matchedUneval)
		case 0:
			e := newError(&kind.OneOf{}, instPtr, sch.loc)
			e.Causes = causes
			if boolResult {
				return e
			}
			return e
		default:
			e := newError(&kind.OneOf{Subschemas: matchIdx[:2]}, instPtr, sch.loc)
			if boolResult {
				return e
			}
			return e
		}
	}
	if sch.hasIf {
		ifUneval := cloneUneval(ownUneval)
		ifErr := s.validate(sch.ifSchema, v, instPtr, sc, vid, refNone, false, ifUneval)
		if ifErr == nil {
			mergeInto(ownUneval, ifUneval)
			if sch.hasThen {
				if e := s.validate(sch.thenSchema, v, instPtr, sc, vid, refNone, boolResult, ownUneval); e != nil {
					return e
				}
			}
		} else if sch.hasElse {
			if e := s.validate(sch.elseSchema, v, instPtr, sc, vid, refNone, boolResult, ownUneval); e != nil {
				return e
			}
		}
	}
	return nil
}

func cloneUneval(u *uneval) *uneval {
	if u == nil {
		return nil
	}
	c := &uneval{}
	if u.props != nil {
		c.props = make(map[string]bool, len(u.props))
		for k := range u.props {
			c.props[k] = true
		}
	}
	if u.items != nil {
		c.items = make(map[int]bool, len(u.items))
		for k := range u.items {
			c.items[k] = true
		}
	}
	return c
}

// mergeInto removes from dst anything that src no longer has, i.e. folds a
// branch's evaluations back into the owner once that branch is known to
// have contributed (its subschema matched/applied successfully).
func mergeInto(dst, src *uneval) {
	if dst == nil || src == nil {
		return
	}
	for k := range dst.props {
		if !src.props[k] {
			delete(dst.props, k)
		}
	}
	for k := range dst.items {
		if !src.items[k] {
			delete(dst.items, k)
		}
	}
}

func (s *session) validateUnevaluated(sch *Schema, v any, instPtr jsonPointer, sc *scope, vid int, u *uneval) *ValidationError {
	var causes []*ValidationError
	if sch.hasUnevaluatedProperties {
		if obj, ok := v.(map[string]any); ok {
			var bad []string
			names := make([]string, 0, len(u.props))
			for name := range u.props {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				if e := s.validate(sch.unevaluatedProperties, obj[name], instPtr.child(name), sc, s.newVid(), refNone, false, nil); e != nil {
					bad = append(bad, name)
					causes = append(causes, e)
				}
			}
			if len(bad) > 0 {
				e := newError(&kind.AdditionalProperties{Properties: bad}, instPtr, sch.loc)
				e.Causes = causes
				return e
			}
		}
	}
	if sch.hasUnevaluatedItems {
		if arr, ok := v.([]any); ok {
			idxs := make([]int, 0, len(u.items))
			for i := range u.items {
				idxs = append(idxs, i)
			}
			sort.Ints(idxs)
			var bad []*ValidationError
			for _, i := range idxs {
				if e := s.validate(sch.unevaluatedItems, arr[i], instPtr.childIndex(i), sc, s.newVid(), refNone, false, nil); e != nil {
					bad = append(bad, e)
				}
			}
			if len(bad) > 0 {
				e := newError(&kind.AdditionalItems{Count: len(bad)}, instPtr, sch.loc)
				e.Causes = bad
				return e
			}
		}
	}
	return nil
}

func (s *session) validateString(sch *Schema, str string, instPtr jsonPointer) *ValidationError {
	runes := []rune(str)
	if sch.minLength != nil && len(runes) < *sch.minLength {
		return newError(&kind.MinLength{Got: len(runes), Want: *sch.minLength}, instPtr, sch.loc)
	}
	if sch.maxLength != nil && len(runes) > *sch.maxLength {
		return newError(&kind.MaxLength{Got: len(runes), Want: *sch.maxLength}, instPtr, sch.loc)
	}
	if sch.pattern != nil && !sch.pattern.MatchString(str) {
		return newError(&kind.Pattern{Got: str, Want: sch.patternSrc}, instPtr, sch.loc)
	}
	return s.validateContent(sch, str, instPtr)
}

func (s *session) validateContent(sch *Schema, str string, instPtr jsonPointer) *ValidationError {
	raw := []byte(str)
	if sch.hasContentEncoding && sch.contentDecoder != nil {
		b, err := sch.contentDecoder(str)
		if err != nil {
			if sch.assertContent {
				return newError(&kind.ContentEncoding{Want: sch.contentEncoding, Err: err}, instPtr, sch.loc)
			}
			return nil
		}
		raw = b
	}
	var decoded any
	haveDecoded := false
	if sch.hasContentMediaType && sch.contentMediaTypeFn != nil {
		d, err := sch.contentMediaTypeFn(raw)
		if err != nil {
			if sch.assertContent {
				return newError(&kind.ContentMediaType{Got: raw, Want: sch.contentMediaType, Err: err}, instPtr, sch.loc)
			}
			return nil
		}
		decoded, haveDecoded = d, true
	}
	if sch.hasContentSchema && haveDecoded {
		if err := s.validate(sch.contentSchema, decoded, instPtr, nil, s.newVid(), refNone, false, nil); err != nil {
			if sch.assertContent {
				e := newError(&kind.ContentSchema{}, instPtr, sch.loc)
				e.Causes = []*ValidationError{err}
				return e
			}
		}
	}
	return nil
}

func (s *session) validateNumber(sch *Schema, v any, instPtr jsonPointer) *ValidationError {
	n, ok := jsonRat(v)
	if !ok {
		return nil
	}
	if sch.minimum != nil && n.Cmp(sch.minimum) < 0 {
		return newError(&kind.Minimum{Got: n, Want: sch.minimum}, instPtr, sch.loc)
	}
	if sch.maximum != nil && n.Cmp(sch.maximum) > 0 {
		return newError(&kind.Maximum{Got: n, Want: sch.maximum}, instPtr, sch.loc)
	}
	if sch.exclusiveMinimum != nil && n.Cmp(sch.exclusiveMinimum) <= 0 {
		return newError(&kind.ExclusiveMinimum{Got: n, Want: sch.exclusiveMinimum}, instPtr, sch.loc)
	}
	if sch.exclusiveMaximum != nil && n.Cmp(sch.exclusiveMaximum) >= 0 {
		return newError(&kind.ExclusiveMaximum{Got: n, Want: sch.exclusiveMaximum}, instPtr, sch.loc)
	}
	if sch.multipleOf != nil {
		q := new(big.Rat).Quo(n, sch.multipleOf)
		if !q.IsInt() {
			return newError(&kind.MultipleOf{Got: n, Want: sch.multipleOf}, instPtr, sch.loc)
		}
	}
	return nil
}
