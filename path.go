package objectschema

import (
	"strconv"
	"strings"
)

// PathRef builds JSON Pointer paths while the engine descends into nested
// documents. The zero value is the document root.
type PathRef struct {
	parts []string
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// RootPath returns the pointer of the document root.
func RootPath() PathRef { return PathRef{} }

// ParsePath splits a JSON Pointer such as "/books/0/title". Escapes are
// decoded per RFC 6901.
func ParsePath(p string) PathRef {
	if p == "" || p == "/" {
		return PathRef{}
	}
	var parts []string
	for _, seg := range strings.Split(strings.TrimPrefix(p, "/"), "/") {
		seg = strings.ReplaceAll(strings.ReplaceAll(seg, "~1", "/"), "~0", "~")
		parts = append(parts, seg)
	}
	return PathRef{parts: parts}
}

// Field returns the child path for an object key.
func (p PathRef) Field(name string) PathRef {
	if name == "" {
		return p
	}
	return PathRef{parts: append(append(make([]string, 0, len(p.parts)+1), p.parts...), name)}
}

// Index returns the child path for a sequence position.
func (p PathRef) Index(i int) PathRef {
	return PathRef{parts: append(append(make([]string, 0, len(p.parts)+1), p.parts...), strconv.Itoa(i))}
}

// Depth is the number of segments below the root.
func (p PathRef) Depth() int { return len(p.parts) }

// Last returns the final segment, or "" at the root.
func (p PathRef) Last() string {
	if len(p.parts) == 0 {
		return ""
	}
	return p.parts[len(p.parts)-1]
}

// Pointer renders the path as an escaped JSON Pointer.
func (p PathRef) Pointer() string {
	if len(p.parts) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, seg := range p.parts {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(seg))
	}
	return b.String()
}

func (p PathRef) String() string { return p.Pointer() }

// Issue creates an Issue located at p.
func (p PathRef) Issue(code, msg string) Issue {
	return Issue{Path: p.Pointer(), Field: p.Last(), Code: code, Message: msg}
}
