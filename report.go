package objectschema

import (
	"bytes"
	"sort"

	j "github.com/goccy/go-json"
)

// Report is the result of validating one document, keyed by field name. It
// has exactly one entry per schema field.
type Report map[string]*FieldResult

// FieldResult holds the outcome for one field.
//
// Related is set for a single nested document whose value was present.
// Items is set for a collection of nested documents whose value was present;
// it is aligned with the input and holds nil where the element was not an
// object. A nil Related or Items means the field was not traversable, which
// says nothing about validity.
type FieldResult struct {
	Messages []string
	Related  Report
	Items    []Report
}

// Valid reports whether the field and everything below it has no messages.
func (fr *FieldResult) Valid() bool {
	if fr == nil {
		return true
	}
	if len(fr.Messages) > 0 {
		return false
	}
	if fr.Related != nil && !fr.Related.Valid() {
		return false
	}
	for _, it := range fr.Items {
		if it != nil && !it.Valid() {
			return false
		}
	}
	return true
}

// Valid folds the whole tree: it is true iff every Messages slice at every
// depth is empty. Nil item slots are skipped.
func (r Report) Valid() bool {
	for _, fr := range r {
		if !fr.Valid() {
			return false
		}
	}
	return true
}

// Field returns the result for name, or nil.
func (r Report) Field(name string) *FieldResult { return r[name] }

// Issues flattens the report into pointer-addressed entries. Fields are
// visited in name order so the output is deterministic.
func (r Report) Issues() Issues {
	var out Issues
	r.collect(RootPath(), &out)
	return out
}

func (r Report) collect(at PathRef, out *Issues) {
	names := make([]string, 0, len(r))
	for n := range r {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fr := r[n]
		if fr == nil {
			continue
		}
		p := at.Field(n)
		for _, m := range fr.Messages {
			*out = AppendIssues(*out, p.Issue(CodeInvalid, m))
		}
		if fr.Related != nil {
			fr.Related.collect(p, out)
		}
		for i, it := range fr.Items {
			if it != nil {
				it.collect(p.Index(i), out)
			}
		}
	}
}

// Count returns the total number of messages in the tree.
func (r Report) Count() int {
	n := 0
	for _, fr := range r {
		if fr == nil {
			continue
		}
		n += len(fr.Messages)
		n += fr.Related.Count()
		for _, it := range fr.Items {
			n += it.Count()
		}
	}
	return n
}

// MarshalJSON renders {"messages":[...],"related":...}. "related" is an
// object for single documents, an array with nulls for skipped slots for
// collections, and omitted when not traversable.
func (fr *FieldResult) MarshalJSON() ([]byte, error) {
	type wire struct {
		Messages []string `json:"messages"`
		Related  any      `json:"related,omitempty"`
	}
	w := wire{Messages: fr.Messages}
	if w.Messages == nil {
		w.Messages = []string{}
	}
	switch {
	case fr.Related != nil:
		w.Related = fr.Related
	case fr.Items != nil:
		w.Related = fr.Items
	}
	return j.Marshal(w)
}

// UnmarshalJSON accepts the form produced by MarshalJSON.
func (fr *FieldResult) UnmarshalJSON(b []byte) error {
	var w struct {
		Messages []string     `json:"messages"`
		Related  j.RawMessage `json:"related"`
	}
	if err := j.Unmarshal(b, &w); err != nil {
		return err
	}
	fr.Messages = w.Messages
	if fr.Messages == nil {
		fr.Messages = []string{}
	}
	fr.Related, fr.Items = nil, nil
	raw := bytes.TrimSpace(w.Related)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '[':
		var items []Report
		if err := j.Unmarshal(raw, &items); err != nil {
			return err
		}
		if items == nil {
			items = []Report{}
		}
		fr.Items = items
	default:
		var rel Report
		if err := j.Unmarshal(raw, &rel); err != nil {
			return err
		}
		fr.Related = rel
	}
	return nil
}

// JSON renders the report with two-space indentation.
func (r Report) JSON() ([]byte, error) {
	return j.MarshalIndent(r, "", "  ")
}
