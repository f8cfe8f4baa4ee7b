// ignore.go implements the exact-type ignore list consulted before reporting.

package sentryware

import "reflect"

// IgnoreList holds runtime types whose failures are never reported.
// Matching is on the exact dynamic type, so a wrapped error or an
// implementation of the same interface does not match.
type IgnoreList struct {
	types []reflect.Type
}

// NewIgnoreList builds a list from sample values, one entry per distinct type.
func NewIgnoreList(samples ...any) IgnoreList {
	return IgnoreList{}.With(samples...)
}

// With returns a copy of l extended with the types of samples. Nil samples are skipped.
func (l IgnoreList) With(samples ...any) IgnoreList {
	types := append([]reflect.Type(nil), l.types...)
	for _, s := range samples {
		t := reflect.TypeOf(s)
		if t == nil || containsType(types, t) {
			continue
		}
		types = append(types, t)
	}
	return IgnoreList{types: types}
}

// Contains reports whether v's dynamic type is in the list.
func (l IgnoreList) Contains(v any) bool {
	t := reflect.TypeOf(v)
	if t == nil {
		return false
	}
	return containsType(l.types, t)
}

// Len returns the number of ignored types.
func (l IgnoreList) Len() int {
	return len(l.types)
}

func containsType(types []reflect.Type, t reflect.Type) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}
