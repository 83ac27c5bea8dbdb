// Package typemap converts semantic column types to Redshift column types.
package typemap

import (
	"fmt"

	"github.com/JorgeNachtigall/pandas2redshift/dataset"
)

// DefaultTextWidth is the VARCHAR width used for text columns when the caller
// does not configure one. 65535 is the Redshift maximum, equivalent to
// VARCHAR(MAX).
const DefaultTextWidth = 65535

// UnsupportedTypeError indicates a semantic type with no warehouse mapping.
// The mapper never silently defaults; nested, object or binary data must be
// converted to one of the supported semantic types before loading.
type UnsupportedTypeError struct {
	Type dataset.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("no warehouse type mapping for semantic type %s", e.Type)
}

// Map returns the Redshift column type for a semantic type using the default
// text width.
func Map(t dataset.Type) (string, error) {
	return MapWithWidth(t, DefaultTextWidth)
}

// MapWithWidth is Map with an explicit VARCHAR width for text columns.
// The mapping is fixed:
//
//	integer   -> BIGINT
//	float     -> DOUBLE PRECISION
//	bool      -> BOOLEAN
//	text      -> VARCHAR(width)
//	timestamp -> TIMESTAMP
//	date      -> DATE
func MapWithWidth(t dataset.Type, textWidth int) (string, error) {
	if textWidth <= 0 {
		textWidth = DefaultTextWidth
	}
	switch t {
	case dataset.Integer:
		return "BIGINT", nil
	case dataset.Float:
		return "DOUBLE PRECISION", nil
	case dataset.Bool:
		return "BOOLEAN", nil
	case dataset.Text:
		return fmt.Sprintf("VARCHAR(%d)", textWidth), nil
	case dataset.Timestamp:
		return "TIMESTAMP", nil
	case dataset.Date:
		return "DATE", nil
	}
	return "", &UnsupportedTypeError{Type: t}
}
