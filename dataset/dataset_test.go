package dataset

import (
	"strings"
	"testing"
	"time"
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		typ      Type
		expected string
	}{
		{Integer, "integer"},
		{Float, "float"},
		{Bool, "bool"},
		{Text, "text"},
		{Timestamp, "timestamp"},
		{Date, "date"},
		{Type(42), "Type(42)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cols    []Column
		wantErr string
	}{
		{
			name: "valid two columns",
			cols: []Column{
				{Name: "id", Type: Integer, Values: []any{int64(1), int64(2)}},
				{Name: "label", Type: Text, Values: []any{"a", "b"}},
			},
		},
		{
			name: "valid with nulls",
			cols: []Column{
				{Name: "id", Type: Integer, Values: []any{int64(1), nil}},
			},
		},
		{
			name: "zero rows",
			cols: []Column{
				{Name: "id", Type: Integer},
				{Name: "label", Type: Text},
			},
		},
		{
			name:    "empty column name",
			cols:    []Column{{Name: "", Type: Text, Values: []any{"a"}}},
			wantErr: "empty name",
		},
		{
			name: "duplicate column name",
			cols: []Column{
				{Name: "id", Type: Integer, Values: []any{int64(1)}},
				{Name: "id", Type: Text, Values: []any{"a"}},
			},
			wantErr: "duplicate column name",
		},
		{
			name: "ragged row counts",
			cols: []Column{
				{Name: "id", Type: Integer, Values: []any{int64(1), int64(2)}},
				{Name: "label", Type: Text, Values: []any{"a"}},
			},
			wantErr: "has 1 rows, expected 2",
		},
		{
			name:    "value type mismatch",
			cols:    []Column{{Name: "id", Type: Integer, Values: []any{"oops"}}},
			wantErr: "does not match semantic type integer",
		},
		{
			name:    "timestamp accepts time.Time",
			cols:    []Column{{Name: "ts", Type: Timestamp, Values: []any{time.Now()}}},
		},
		{
			name:    "date rejects string",
			cols:    []Column{{Name: "d", Type: Date, Values: []any{"2024-01-01"}}},
			wantErr: "does not match semantic type date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := &Dataset{Columns: tt.cols}
			err := ds.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestNewRejectsInvalid(t *testing.T) {
	if _, err := New(Column{Name: "", Type: Text}); err == nil {
		t.Fatal("New() accepted a column with an empty name")
	}
}

func TestAccessors(t *testing.T) {
	ds, err := New(
		Column{Name: "id", Type: Integer, Values: []any{int64(1), int64(2), int64(3)}},
		Column{Name: "score", Type: Float, Values: []any{1.5, nil, 2.5}},
	)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if got := ds.NumRows(); got != 3 {
		t.Errorf("NumRows() = %d, want 3", got)
	}
	if got := ds.NumCols(); got != 2 {
		t.Errorf("NumCols() = %d, want 2", got)
	}
	names := ds.ColumnNames()
	if len(names) != 2 || names[0] != "id" || names[1] != "score" {
		t.Errorf("ColumnNames() = %v, want [id score]", names)
	}
	if !ds.HasColumn("score") || ds.HasColumn("missing") {
		t.Errorf("HasColumn() gave wrong answers")
	}
}
