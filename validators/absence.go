package validators

import (
	objectschema "github.com/reoring/objectschema"
	"github.com/reoring/objectschema/i18n"
)

// Absence is the inverse of presence: the field must be missing, null, a
// blank string or an empty collection.
type Absence struct{}

func (Absence) Check(fc objectschema.FieldContext, v any, opts objectschema.Options) ([]string, error) {
	if fc.Presence.Absent() || objectschema.IsBlank(v) {
		return nil, nil
	}
	if n, ok := size(v); ok && n == 0 {
		return nil, nil
	}
	return []string{opts.Message(i18n.CodeAbsence, nil)}, nil
}
