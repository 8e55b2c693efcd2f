package jsonschema

import (
	"sort"

	"github.com/brightloom/jsonschema/kind"
)

func (s *session) validateObject(sch *Schema, obj map[string]any, instPtr jsonPointer, sc *scope, vid int, boolResult bool, u *uneval) *ValidationError {
	var causes []*ValidationError
	fail := func(e *ValidationError) *ValidationError {
		if e != nil {
			causes = append(causes, e)
		}
		return e
	}

	if sch.minProperties != nil && len(obj) < *sch.minProperties {
		if e := fail(newError(&kind.MinProperties{Got: len(obj), Want: *sch.minProperties}, instPtr, sch.loc)); boolResult {
			return e
		}
	}
	if sch.maxProperties != nil && len(obj) > *sch.maxProperties {
		if e := fail(newError(&kind.MaxProperties{Got: len(obj), Want: *sch.maxProperties}, instPtr, sch.loc)); boolResult {
			return e
		}
	}
	if len(sch.required) > 0 {
		var missing []string
		for _, name := range sch.required {
			if _, ok := obj[name]; !ok {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			if e := fail(newError(&kind.Required{Missing: missing}, instPtr, sch.loc)); boolResult {
				return e
			}
		}
	}

	if sch.hasPropertyNames {
		names := sortedKeys(obj)
		for _, name := range names {
			if e := s.validate(sch.propertyNames, name, instPtr, sc, s.newVid(), refNone, false, nil); e != nil {
				fe := fail(newError(&kind.PropertyNames{Property: name}, instPtr, sch.loc))
				fe.Causes = []*ValidationError{e}
				if boolResult {
					return fe
				}
			}
		}
	}

	for name, req := range sch.dependencies {
		if _, present := obj[name]; !present {
			continue
		}
		if req.isSchema {
			if e := s.validate(req.schema, obj, instPtr, sc, vid, refNone, boolResult, u); e != nil {
				if fe := fail(e); boolResult {
					return fe
				}
			}
			continue
		}
		var missing []string
		for _, r := range req.required {
			if _, ok := obj[r]; !ok {
				missing = append(missing, r)
			}
		}
		if len(missing) > 0 {
			if e := fail(newError(&kind.Dependency{Prop: name, Missing: missing}, instPtr, sch.loc)); boolResult {
				return e
			}
		}
	}
	for name, req := range sch.dependentRequired {
		if _, present := obj[name]; !present {
			continue
		}
		var missing []string
		for _, r := range req {
			if _, ok := obj[r]; !ok {
				missing = append(missing, r)
			}
		}
		if len(missing) > 0 {
			if e := fail(newError(&kind.DependentRequired{Prop: name, Missing: missing}, instPtr, sch.loc)); boolResult {
				return e
			}
		}
	}
	for name, depIdx := range sch.dependentSchemas {
		if _, present := obj[name]; !present {
			continue
		}
		if e := s.validate(depIdx, obj, instPtr, sc, vid, refNone, boolResult, u); e != nil {
			if fe := fail(e); boolResult {
				return fe
			}
		}
	}

	claimed := map[string]bool{}
	if sch.properties != nil {
		names := make([]string, 0, len(sch.properties))
		for name := range sch.properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			v, present := obj[name]
			if !present {
				continue
			}
			claimed[name] = true
			if u != nil {
				u.evalProp(name)
			}
			if e := s.validate(sch.properties[name], v, instPtr.child(name), sc, s.newVid(), refNone, false, nil); e != nil {
				if fe := fail(e); boolResult {
					return fe
				}
			}
		}
	}
	if len(sch.patternProperties) > 0 {
		names := sortedKeys(obj)
		for _, name := range names {
			for _, pp := range sch.patternProperties {
				if !pp.re.MatchString(name) {
					continue
				}
				claimed[name] = true
				if u != nil {
					u.evalProp(name)
				}
				if e := s.validate(pp.sch, obj[name], instPtr.child(name), sc, s.newVid(), refNone, false, nil); e != nil {
					if fe := fail(e); boolResult {
						return fe
					}
				}
			}
		}
	}
	if sch.hasAdditionalProperties {
		var bad []string
		names := sortedKeys(obj)
		for _, name := range names {
			if claimed[name] {
				continue
			}
			if u != nil {
				u.evalProp(name)
			}
			if e := s.validate(sch.additionalProperties, obj[name], instPtr.child(name), sc, s.newVid(), refNone, false, nil); e != nil {
				bad = append(bad, name)
			}
		}
		if len(bad) > 0 {
			if e := fail(newError(&kind.AdditionalProperties{Properties: bad}, instPtr, sch.loc)); boolResult {
				return e
			}
		}
	}
	if sch.allPropsEvaluated && u != nil {
		u.evalAllProps()
	}

	return group(instPtr, sch.loc, causes)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
