// Package dataset defines the in-memory tabular model consumed by the loader.
// A Dataset is an ordered set of named columns, each carrying a semantic type
// decided once at construction time. The semantic type drives both the
// warehouse column type (see package typemap) and the staging encoding.
package dataset

import (
	"fmt"
	"time"
)

// Type is the semantic category of a column's values, independent of any
// source system's runtime types.
type Type int

const (
	Integer Type = iota
	Float
	Bool
	Text
	Timestamp
	Date
)

// String returns the lowercase name of the semantic type.
func (t Type) String() string {
	switch t {
	case Integer:
		return "integer"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Text:
		return "text"
	case Timestamp:
		return "timestamp"
	case Date:
		return "date"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Column is a named, homogeneously typed sequence of values.
// A nil element represents a missing value.
//
// Accepted Go types per semantic type:
//
//	Integer   int, int32, int64
//	Float     float32, float64
//	Bool      bool
//	Text      string
//	Timestamp time.Time
//	Date      time.Time (time-of-day ignored)
type Column struct {
	Name   string
	Type   Type
	Values []any
}

// Dataset is an ordered sequence of columns. Column order is significant:
// DDL generation, staging serialization and the load statement all rely on
// positional correspondence.
type Dataset struct {
	Columns []Column
}

// New builds a Dataset from columns and validates it.
func New(cols ...Column) (*Dataset, error) {
	ds := &Dataset{Columns: cols}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// NumRows returns the row count. Zero for a dataset with no columns.
func (ds *Dataset) NumRows() int {
	if len(ds.Columns) == 0 {
		return 0
	}
	return len(ds.Columns[0].Values)
}

// NumCols returns the column count.
func (ds *Dataset) NumCols() int {
	return len(ds.Columns)
}

// ColumnNames returns the column names in dataset order.
func (ds *Dataset) ColumnNames() []string {
	names := make([]string, len(ds.Columns))
	for i, c := range ds.Columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether a column with the given name exists.
func (ds *Dataset) HasColumn(name string) bool {
	for _, c := range ds.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Validate checks the structural invariants: at least a name per column,
// unique names, equal row counts, and value types consistent with each
// column's semantic type. Zero rows is valid.
func (ds *Dataset) Validate() error {
	seen := make(map[string]bool, len(ds.Columns))
	rows := ds.NumRows()
	for _, c := range ds.Columns {
		if c.Name == "" {
			return fmt.Errorf("column with empty name")
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate column name %q", c.Name)
		}
		seen[c.Name] = true

		if len(c.Values) != rows {
			return fmt.Errorf("column %q has %d rows, expected %d", c.Name, len(c.Values), rows)
		}
		for i, v := range c.Values {
			if v == nil {
				continue
			}
			if err := checkValue(c.Type, v); err != nil {
				return fmt.Errorf("column %q row %d: %w", c.Name, i, err)
			}
		}
	}
	return nil
}

func checkValue(t Type, v any) error {
	switch t {
	case Integer:
		switch v.(type) {
		case int, int32, int64:
			return nil
		}
	case Float:
		switch v.(type) {
		case float32, float64:
			return nil
		}
	case Bool:
		if _, ok := v.(bool); ok {
			return nil
		}
	case Text:
		if _, ok := v.(string); ok {
			return nil
		}
	case Timestamp, Date:
		if _, ok := v.(time.Time); ok {
			return nil
		}
	default:
		return fmt.Errorf("unknown semantic type %v", t)
	}
	return fmt.Errorf("value of type %T does not match semantic type %s", v, t)
}
