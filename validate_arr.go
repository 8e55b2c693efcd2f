package jsonschema

import "github.com/brightloom/jsonschema/kind"

func (s *session) validateArray(sch *Schema, arr []any, instPtr jsonPointer, sc *scope, vid int, boolResult bool, u *uneval) *ValidationError {
	var causes []*ValidationError
	fail := func(e *ValidationError) *ValidationError {
		if e != nil {
			causes = append(causes, e)
		}
		return e
	}

	if sch.minItems != nil && len(arr) < *sch.minItems {
		if e := fail(newError(&kind.MinItems{Got: len(arr), Want: *sch.minItems}, instPtr, sch.loc)); boolResult {
			return e
		}
	}
	if sch.maxItems != nil && len(arr) > *sch.maxItems {
		if e := fail(newError(&kind.MaxItems{Got: len(arr), Want: *sch.maxItems}, instPtr, sch.loc)); boolResult {
			return e
		}
	}
	if sch.uniqueItems {
		for i := 0; i < len(arr); i++ {
			for j := i + 1; j < len(arr); j++ {
				if jsonEqual(arr[i], arr[j]) {
					if e := fail(newError(&kind.UniqueItems{Duplicates: [2]int{i, j}}, instPtr, sch.loc)); boolResult {
						return e
					}
				}
			}
		}
	}

	start := 0
	if len(sch.prefixItems) > 0 {
		for i, m := range sch.prefixItems {
			if i >= len(arr) {
				break
			}
			if u != nil {
				u.evalItem(i)
			}
			if e := s.validate(m, arr[i], instPtr.childIndex(i), sc, s.newVid(), refNone, false, nil); e != nil {
				if fe := fail(e); boolResult {
					return fe
				}
			}
			start = i + 1
		}
		if sch.hasItems {
			for i := start; i < len(arr); i++ {
				if u != nil {
					u.evalItem(i)
				}
				if e := s.validate(sch.items, arr[i], instPtr.childIndex(i), sc, s.newVid(), refNone, false, nil); e != nil {
					if fe := fail(e); boolResult {
						return fe
					}
				}
			}
		}
	} else if sch.itemsIsTuple {
		for i, m := range sch.itemsTuple {
			if i >= len(arr) {
				break
			}
			if u != nil {
				u.evalItem(i)
			}
			if e := s.validate(m, arr[i], instPtr.childIndex(i), sc, s.newVid(), refNone, false, nil); e != nil {
				if fe := fail(e); boolResult {
					return fe
				}
			}
			start = i + 1
		}
		if sch.hasAdditionalItems {
			var badCount int
			for i := start; i < len(arr); i++ {
				if u != nil {
					u.evalItem(i)
				}
				if e := s.validate(sch.additionalItems, arr[i], instPtr.childIndex(i), sc, s.newVid(), refNone, false, nil); e != nil {
					badCount++
				}
			}
			if badCount > 0 {
				if e := fail(newError(&kind.AdditionalItems{Count: badCount}, instPtr, sch.loc)); boolResult {
					return e
				}
			}
		}
	} else if sch.hasItems {
		for i, v := range arr {
			if u != nil {
				u.evalItem(i)
			}
			if e := s.validate(sch.items, v, instPtr.childIndex(i), sc, s.newVid(), refNone, false, nil); e != nil {
				if fe := fail(e); boolResult {
					return fe
				}
			}
		}
	}

	if sch.hasContains {
		var matched []int
		for i, v := range arr {
			if e := s.validate(sch.contains, v, instPtr.childIndex(i), sc, s.newVid(), refNone, true, nil); e == nil {
				matched = append(matched, i)
			}
		}
		min := 1
		if sch.minContains != nil {
			min = *sch.minContains
		}
		if len(matched) < min {
			if e := fail(newError(&kind.MinContains{Got: matched, Want: min}, instPtr, sch.loc)); boolResult {
				return e
			}
		}
		if sch.maxContains != nil && len(matched) > *sch.maxContains {
			if e := fail(newError(&kind.MaxContains{Got: matched, Want: *sch.maxContains}, instPtr, sch.loc)); boolResult {
				return e
			}
		}
		if sch.draft.Version >= 2020 && u != nil {
			for _, i := range matched {
				u.evalItem(i)
			}
		}
	}

	if sch.allItemsEvaluated && u != nil {
		u.evalAllItems()
	}

	return group(instPtr, sch.loc, causes)
}
