package expr

import "strings"

// SelfPrefix marks a reference to a field of the value being sized, as seen
// from the scope that holds that value.
const SelfPrefix = "self."

// Lift rewrites e from a nested scope into the scope that encloses it.
// "outer.x" becomes "x". A name owned by the nested scope, or a dotted path
// starting at one, becomes "self.name": it stays parameterized and is
// resolved once the nested value exists. "self." references and any other
// name are kept. ok is false only for nil or foreign expression types.
func Lift(e Int, owned func(name string) bool) (Int, bool) {
	if e == nil {
		return nil, false
	}
	return mapRefs(e, func(name string) string {
		if rest, ok := strings.CutPrefix(name, OuterPrefix); ok {
			return rest
		}
		if strings.HasPrefix(name, SelfPrefix) {
			return name
		}
		head, _, _ := strings.Cut(name, ".")
		if owned != nil && owned(head) {
			return SelfPrefix + name
		}
		return name
	})
}

// Rebase replaces "self." with "field." so a nested value's size can be
// evaluated in the scope that holds it under field.
func Rebase(e Int, field string) Int {
	if e == nil {
		return nil
	}
	out, ok := mapRefs(e, func(name string) string {
		if rest, ok := strings.CutPrefix(name, SelfPrefix); ok {
			return field + "." + rest
		}
		return name
	})
	if !ok {
		return nil
	}
	return out
}

// RefersToSelf reports whether e reads a field of the value being sized.
func RefersToSelf(e Int) bool {
	if e == nil {
		return false
	}
	for _, name := range e.References() {
		if strings.HasPrefix(name, SelfPrefix) {
			return true
		}
	}
	return false
}

func mapRefs(e Int, rename func(string) string) (Int, bool) {
	if !e.IsParameterized() {
		return e, true
	}
	switch n := e.(type) {
	case refInt:
		return refInt(rename(string(n))), true
	case negInt:
		x, ok := mapRefs(n.x, rename)
		if !ok {
			return nil, false
		}
		return Neg(x), true
	case binaryInt:
		l, ok := mapRefs(n.l, rename)
		if !ok {
			return nil, false
		}
		r, ok := mapRefs(n.r, rename)
		if !ok {
			return nil, false
		}
		return Binary(n.op, l, r), true
	}
	return nil, false
}
