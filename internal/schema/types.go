// Package schema describes the shape of importable records: the ordered
// columns of a CSV file, the scalar type each column coerces to, and the
// declarative constraints checked once a row has been coerced.
//
// A Schema is injected into the import pipeline. The pipeline never defines
// columns itself, so new record kinds only need a new Schema value (or a YAML
// file loaded with Load).
package schema

import (
	"fmt"
	"strings"
)

// FieldType represents the scalar type a CSV field is coerced to.
type FieldType int

const (
	FieldText FieldType = iota
	FieldInt
	FieldBool
)

// String returns the lowercase name used in schema files and messages.
func (t FieldType) String() string {
	switch t {
	case FieldText:
		return "text"
	case FieldInt:
		return "int"
	case FieldBool:
		return "bool"
	default:
		return "unknown"
	}
}

// ParseFieldType converts a schema-file type name to a FieldType.
func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "string":
		return FieldText, nil
	case "int", "integer":
		return FieldInt, nil
	case "bool", "boolean":
		return FieldBool, nil
	default:
		return FieldText, fmt.Errorf("unknown field type %q", s)
	}
}

// Constraints are the value checks applied to a coerced field.
// Every non-zero constraint is evaluated; none short-circuits another.
type Constraints struct {
	NonEmpty bool     // Text must not be empty
	Literal  *string  // Text must equal this value exactly
	Enum     []string // Text must be one of these values (case-sensitive)
	Min      *int64   // Int lower bound, inclusive
	Max      *int64   // Int upper bound, inclusive
}

// IsZero reports whether no constraint is set.
func (c Constraints) IsZero() bool {
	return !c.NonEmpty && c.Literal == nil && len(c.Enum) == 0 && c.Min == nil && c.Max == nil
}

// FieldSpec defines the type and value rules for a single CSV column.
type FieldSpec struct {
	Name string    // Column header name (must match CSV exactly)
	Type FieldType // Coercion target
	Constraints
}

// Schema is an ordered list of required columns.
type Schema struct {
	Name   string
	Fields []FieldSpec
}

// Columns returns the column names in declaration order.
func (s Schema) Columns() []string {
	cols := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = f.Name
	}
	return cols
}

// Field returns the spec for a column name.
func (s Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Validate checks that the schema itself is usable: names are present and
// unique, and each constraint applies to the field's type.
func (s Schema) Validate() error {
	var errs []string
	if len(s.Fields) == 0 {
		errs = append(errs, "schema has no fields")
	}

	seen := make(map[string]bool, len(s.Fields))
	for i, f := range s.Fields {
		if strings.TrimSpace(f.Name) == "" {
			errs = append(errs, fmt.Sprintf("field %d has no name", i))
			continue
		}
		if seen[f.Name] {
			errs = append(errs, fmt.Sprintf("duplicate field %q", f.Name))
		}
		seen[f.Name] = true

		if f.Type != FieldText && (f.NonEmpty || f.Literal != nil || len(f.Enum) > 0) {
			errs = append(errs, fmt.Sprintf("field %q: text constraints on %s field", f.Name, f.Type))
		}
		if f.Type != FieldInt && (f.Min != nil || f.Max != nil) {
			errs = append(errs, fmt.Sprintf("field %q: bounds on %s field", f.Name, f.Type))
		}
		if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
			errs = append(errs, fmt.Sprintf("field %q: min %d > max %d", f.Name, *f.Min, *f.Max))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid schema %q:\n  - %s", s.Name, strings.Join(errs, "\n  - "))
	}
	return nil
}

// Str returns a pointer to s, for Literal constraints.
func Str(s string) *string { return &s }

// Int returns a pointer to i, for Min and Max constraints.
func Int(i int64) *int64 { return &i }
