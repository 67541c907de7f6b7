package objectschema

import (
	"reflect"
	"strings"
)

// Presence describes how a field showed up in the validated data.
type Presence uint8

const (
	PresenceSeen    Presence = 1 << iota // Key appeared in the input.
	PresenceWasNull                      // Value was nil (or a typed nil).
)

// Absent reports whether the value counts as not supplied: a missing key or
// an explicit nil.
func (p Presence) Absent() bool { return p&PresenceSeen == 0 || p&PresenceWasNull != 0 }

// Missing reports whether the key itself was not in the input.
func (p Presence) Missing() bool { return p&PresenceSeen == 0 }

func (p Presence) String() string {
	switch {
	case p&PresenceSeen == 0:
		return "missing"
	case p&PresenceWasNull != 0:
		return "null"
	default:
		return "seen"
	}
}

func presenceOf(v any, found bool) Presence {
	if !found {
		return 0
	}
	if IsNil(v) {
		return PresenceSeen | PresenceWasNull
	}
	return PresenceSeen
}

// IsNil reports whether v is nil or a typed nil pointer, map, slice,
// interface, channel or func.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return rv.IsNil()
	}
	return false
}

// IsBlank reports whether v carries no value: nil, or a string made only of
// whitespace. Empty collections are not blank.
func IsBlank(v any) bool {
	if IsNil(v) {
		return true
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) == ""
	case *string:
		return strings.TrimSpace(*t) == ""
	}
	return false
}
