package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Filters maps column names to the value a listed row must equal.
type Filters map[string]any

// Patch maps column names to their new value. Columns absent from the
// patch are left untouched.
type Patch map[string]any

type FieldKind int

const (
	KindUUID FieldKind = iota
	KindString
	KindInt
	KindBool
	KindFloat
	KindTime
)

func (k FieldKind) String() string {
	switch k {
	case KindUUID:
		return "uuid"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindFloat:
		return "float"
	case KindTime:
		return "time"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// Field describes one persisted column of an entity.
type Field struct {
	Name       string
	Kind       FieldKind
	Required   bool
	Nullable   bool
	Filterable bool
	Writable   bool
}

// Reference declares that Field holds the id of a row in Table.
type Reference struct {
	Field  string
	Table  string
	Entity string
}

// Schema is the explicit mapping the repository works from. Nothing in
// the persistence layer inspects entity structs directly.
type Schema struct {
	Table      string
	Entity     string
	Fields     []Field
	Preload    []string
	Timestamps bool
	References []Reference
}

func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldError reports a filter or patch key the schema does not allow.
type FieldError struct {
	Table  string
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Table, e.Field, e.Reason)
}

func (s *Schema) CheckFilters(filters Filters) error {
	for name, value := range filters {
		f, ok := s.Field(name)
		if !ok {
			return &FieldError{Table: s.Table, Field: name, Reason: "unknown field"}
		}
		if !f.Filterable {
			return &FieldError{Table: s.Table, Field: name, Reason: "field is not filterable"}
		}
		if err := s.checkValue(f, value); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) CheckPatch(patch Patch) error {
	for name, value := range patch {
		f, ok := s.Field(name)
		if !ok {
			return &FieldError{Table: s.Table, Field: name, Reason: "unknown field"}
		}
		if !f.Writable {
			return &FieldError{Table: s.Table, Field: name, Reason: "field is read-only"}
		}
		if err := s.checkValue(f, value); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) checkValue(f Field, value any) error {
	if value == nil {
		if f.Nullable {
			return nil
		}
		return &FieldError{Table: s.Table, Field: f.Name, Reason: "value must not be null"}
	}

	var ok bool
	switch f.Kind {
	case KindUUID:
		_, ok = value.(uuid.UUID)
	case KindString:
		_, ok = value.(string)
	case KindInt:
		_, ok = value.(int)
	case KindBool:
		_, ok = value.(bool)
	case KindFloat:
		_, ok = value.(float64)
	case KindTime:
		_, ok = value.(time.Time)
	}
	if !ok {
		return &FieldError{
			Table:  s.Table,
			Field:  f.Name,
			Reason: fmt.Sprintf("expected %s value, got %T", f.Kind, value),
		}
	}
	return nil
}
