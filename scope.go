package jsonschema

// scope is the dynamic call chain the validator walks while recursing
// through a schema: which schema idx is executing, what reference keyword
// (if any) brought it here, which instance value it is checking (vid, a
// per-call counter used only for cycle detection), and its parent frame.
//
// $recursiveRef/$dynamicRef resolve against this chain rather than against
// the schema graph, which is why it exists as a distinct structure instead
// of being folded into the recursion's Go call stack.
type scope struct {
	sch    schemaIdx
	refKw  refKind
	vid    int
	parent *scope
}

func (s *scope) child(sch schemaIdx, refKw refKind, vid int) *scope {
	return &scope{sch: sch, refKw: refKw, vid: vid, parent: s}
}

// checkCycle reports whether some ancestor frame already validated the same
// instance value (by vid) against the same schema idx, which would
// otherwise recurse forever (e.g. a $ref cycle with no base case reached by
// the instance shape).
func (s *scope) checkCycle(sch schemaIdx, vid int) (*scope, bool) {
	for p := s; p != nil; p = p.parent {
		if p.sch == sch && p.vid == vid {
			return p, true
		}
	}
	return nil, false
}

// outermostRecursive walks from the root of the chain inward, returning the
// idx of the outermost frame whose schema has $recursiveAnchor:true, or ok
// false if none does (in which case the static ref target is used as-is).
func outermostRecursive(s *scope, schemas *Schemas) (schemaIdx, bool) {
	var frames []*scope
	for p := s; p != nil; p = p.parent {
		frames = append(frames, p)
	}
	for i := len(frames) - 1; i >= 0; i-- {
		if schemas.at(frames[i].sch).recursiveAnchor {
			return frames[i].sch, true
		}
	}
	return 0, false
}

// outermostDynamic is outermostRecursive's 2020-12 counterpart: it looks
// for the outermost frame whose enclosing resource declares a
// $dynamicAnchor matching name, rather than any frame with
// $recursiveAnchor:true. The anchor need not sit on the frame's own schema
// object, only somewhere within the same resource (the common case is a
// $defs entry named by $dynamicAnchor inside the resource that $ref'd it
// in), which is why this checks Schema.resourceAnchors rather than
// Schema.dynamicAnchor directly.
func outermostDynamic(s *scope, schemas *Schemas, name string) (schemaIdx, bool) {
	var frames []*scope
	for p := s; p != nil; p = p.parent {
		frames = append(frames, p)
	}
	for i := len(frames) - 1; i >= 0; i-- {
		sch := schemas.at(frames[i].sch)
		if target, ok := sch.resourceAnchors[name]; ok {
			return target, true
		}
	}
	return 0, false
}
