package record

import (
	"fmt"
	"strings"
)

// SchemaError reports input that cannot form a usable record set: a missing
// required field, a wholly unparseable date column, or an invalid value.
type SchemaError struct {
	Field  string
	Row    int // 1-based source row; 0 when the error is not tied to a row
	Reason string
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("schema error")
	if e.Field != "" {
		fmt.Fprintf(&b, " in field %q", e.Field)
	}
	if e.Row > 0 {
		fmt.Fprintf(&b, " at row %d", e.Row)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

// NewSchemaError builds a SchemaError not tied to a specific row.
func NewSchemaError(field, reason string) *SchemaError {
	return &SchemaError{Field: field, Reason: reason}
}
