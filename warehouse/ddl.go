package warehouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/JorgeNachtigall/pandas2redshift/dataset"
	"github.com/JorgeNachtigall/pandas2redshift/typemap"
)

// ColumnDef pairs a validated column name with its warehouse type expression.
type ColumnDef struct {
	Name string
	Type string
}

// PlanColumns resolves the DDL column list for a dataset, in dataset column
// order. An explicit entry in typeSpec wins over the semantic-type mapping.
// Every key in typeSpec must name an existing column.
func PlanColumns(cols []dataset.Column, typeSpec map[string]string, textWidth int) ([]ColumnDef, error) {
	names := make(map[string]bool, len(cols))
	for _, c := range cols {
		names[c.Name] = true
	}
	for key := range typeSpec {
		if !names[key] {
			return nil, fmt.Errorf("type spec references unknown column %q", key)
		}
	}

	defs := make([]ColumnDef, 0, len(cols))
	for _, c := range cols {
		typ, ok := typeSpec[c.Name]
		if ok {
			if err := validateTypeExpr(typ); err != nil {
				return nil, fmt.Errorf("type spec for column %q: %w", c.Name, err)
			}
		} else {
			var err error
			typ, err = typemap.MapWithWidth(c.Type, textWidth)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", c.Name, err)
			}
		}
		defs = append(defs, ColumnDef{Name: c.Name, Type: typ})
	}
	return defs, nil
}

// validateTypeExpr bounds what a caller-supplied type expression may contain.
// Type expressions are interpolated into DDL, so they get the same treatment
// as identifiers: a restricted character set instead of parameter binding.
func validateTypeExpr(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return fmt.Errorf("type expression cannot be empty")
	}
	for _, r := range expr {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == ' ' || r == '(' || r == ')' || r == ',' || r == '_':
		default:
			return fmt.Errorf("type expression %q contains invalid character %q", expr, r)
		}
	}
	return nil
}

// BuildCreateSchema returns the idempotent schema DDL.
// The schema name must already have passed ValidateIdentifier.
func BuildCreateSchema(schema string) string {
	return "CREATE SCHEMA IF NOT EXISTS " + QuoteIdentifier(schema)
}

// BuildCreateTable returns the idempotent table DDL with columns in the
// given order.
func BuildCreateTable(target Target, defs []ColumnDef) string {
	parts := make([]string, len(defs))
	for i, d := range defs {
		parts[i] = QuoteIdentifier(d.Name) + " " + d.Type
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", target.QualifiedName(), strings.Join(parts, ", "))
}

// BuildTruncate returns the TRUNCATE statement for the target.
func BuildTruncate(target Target) string {
	return "TRUNCATE TABLE " + target.QualifiedName()
}

// Ensure creates the target schema and table if they do not exist, resolving
// column types through typeSpec first and the semantic-type mapping second.
// When ensureExists is false this is a no-op: the caller asserts the table is
// already there, and a missing table surfaces later as the warehouse's own
// error on the load statement rather than costing an existence round trip.
func Ensure(ctx context.Context, g *Gateway, target Target, cols []dataset.Column, typeSpec map[string]string, textWidth int, ensureExists bool) error {
	if !ensureExists {
		return nil
	}
	if err := target.Validate(); err != nil {
		return err
	}
	for _, c := range cols {
		if err := ValidateIdentifier(c.Name); err != nil {
			return err
		}
	}

	defs, err := PlanColumns(cols, typeSpec, textWidth)
	if err != nil {
		return err
	}
	if err := g.Execute(ctx, BuildCreateSchema(target.Schema)); err != nil {
		return fmt.Errorf("creating schema %s: %w", target.Schema, err)
	}
	if err := g.Execute(ctx, BuildCreateTable(target, defs)); err != nil {
		return fmt.Errorf("creating table %s.%s: %w", target.Schema, target.Table, err)
	}
	return nil
}
