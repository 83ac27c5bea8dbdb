// Package warehouse builds and executes the SQL side of a bulk load:
// identifier validation, schema/table DDL, TRUNCATE, and the COPY statement
// referencing the staged object.
package warehouse

import (
	"fmt"
	"strings"
)

// maxIdentifierLength is the Redshift limit for standard identifiers.
const maxIdentifierLength = 127

// InvalidIdentifierError indicates a schema, table or column name that failed
// the safe-identifier gate. Identifiers cannot be bound as statement
// parameters, so this gate is the pipeline's defense against injection.
type InvalidIdentifierError struct {
	Name   string
	Reason string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid identifier %q: %s", e.Name, e.Reason)
}

// ValidateIdentifier checks that a schema, table or column name is safe to
// interpolate into a statement. Valid identifiers start with a letter or
// underscore and contain only letters, digits and underscores.
func ValidateIdentifier(name string) error {
	if name == "" {
		return &InvalidIdentifierError{Name: name, Reason: "identifier cannot be empty"}
	}
	if len(name) > maxIdentifierLength {
		return &InvalidIdentifierError{
			Name:   name,
			Reason: fmt.Sprintf("identifier is %d characters (max %d)", len(name), maxIdentifierLength),
		}
	}
	if !isIdentStart(rune(name[0])) {
		return &InvalidIdentifierError{Name: name, Reason: "identifier must start with a letter or underscore"}
	}
	for i, r := range name {
		if i == 0 {
			continue
		}
		if !isIdentChar(r) {
			return &InvalidIdentifierError{
				Name:   name,
				Reason: fmt.Sprintf("invalid character %q at position %d", r, i),
			}
		}
	}
	return nil
}

func isIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isIdentChar(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

// QuoteIdentifier quotes an identifier, escaping embedded quotes.
func QuoteIdentifier(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// Target addresses one warehouse relation as schema.table.
type Target struct {
	Schema string
	Table  string
}

// Validate runs both names through the safe-identifier gate.
func (t Target) Validate() error {
	if err := ValidateIdentifier(t.Schema); err != nil {
		return err
	}
	return ValidateIdentifier(t.Table)
}

// QualifiedName returns the quoted schema.table form.
func (t Target) QualifiedName() string {
	return QuoteIdentifier(t.Schema) + "." + QuoteIdentifier(t.Table)
}

// quoteLiteral quotes a string literal, escaping embedded single quotes.
// Used for COPY option values; identifiers never go through here.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
