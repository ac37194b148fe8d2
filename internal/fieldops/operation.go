package fieldops

import (
	"fmt"
	"strings"
)

// Action is the variant tag of a field operation.
type Action string

const (
	ActionAdd    Action = "add"
	ActionUpdate Action = "update"
	ActionRemove Action = "remove"
)

// ValidationRules carries the declarative validation attached to a field.
type ValidationRules struct {
	Required  bool     `json:"required,omitempty"`
	MaxLength int      `json:"maxLength,omitempty"`
	Min       *float64 `json:"min,omitempty"`
}

// Field is the full descriptor carried by an add operation.
type Field struct {
	Name           string           `json:"name"`
	Type           string           `json:"type"`
	JavaType       string           `json:"javaType"`
	Nullable       *bool            `json:"nullable,omitempty"`
	DefaultValue   *string          `json:"default_value,omitempty"`
	PrimaryKey     bool             `json:"primaryKey,omitempty"`
	AutoGenerated  bool             `json:"autoGenerated,omitempty"`
	UpdateOnModify bool             `json:"updateOnModify,omitempty"`
	Description    string           `json:"description,omitempty"`
	Validation     *ValidationRules `json:"validation,omitempty"`
}

// IsNullable reports whether the column allows NULL. Unset means nullable.
func (f Field) IsNullable() bool {
	return f.Nullable == nil || *f.Nullable
}

// HasDefault reports whether a default value was declared.
func (f Field) HasDefault() bool {
	return f.DefaultValue != nil
}

// Rules returns the validation rules, never nil.
func (f Field) Rules() ValidationRules {
	if f.Validation == nil {
		return ValidationRules{}
	}
	return *f.Validation
}

// Changes is the partial attribute set carried by an update operation.
type Changes struct {
	Type       string           `json:"type,omitempty"`
	Nullable   *bool            `json:"nullable,omitempty"`
	Validation *ValidationRules `json:"validation,omitempty"`
}

// IsEmpty reports whether no recognized change attribute is present.
func (c Changes) IsEmpty() bool {
	return c.Type == "" && c.Nullable == nil && c.Validation == nil
}

// Operation is one declared add/update/remove change to a service's field.
// Construct with NewOperation so the variant invariants hold.
type Operation struct {
	Action    Action
	Field     *Field   // add only
	FieldName string   // update and remove
	Changes   *Changes // update only
}

// rawOperation mirrors the JSON shape of one entry in field_operations.
type rawOperation struct {
	Action    string   `json:"action"`
	Field     *Field   `json:"field,omitempty"`
	FieldName string   `json:"field_name,omitempty"`
	Changes   *Changes `json:"changes,omitempty"`
}

// NewOperation builds an Operation from its JSON form, enforcing the
// per-variant required attributes.
func NewOperation(raw rawOperation) (Operation, error) {
	action := Action(strings.ToLower(raw.Action))

	switch action {
	case ActionAdd:
		if raw.Field == nil {
			return Operation{}, &RequestError{Reason: "add operation requires a 'field' descriptor"}
		}
		for _, req := range []struct{ name, value string }{
			{"name", raw.Field.Name},
			{"type", raw.Field.Type},
			{"javaType", raw.Field.JavaType},
		} {
			if req.value == "" {
				return Operation{}, &RequestError{
					Reason: fmt.Sprintf("add operation requires field attribute %q", req.name),
				}
			}
		}
		return Operation{Action: ActionAdd, Field: raw.Field}, nil

	case ActionUpdate:
		if raw.FieldName == "" {
			return Operation{}, &RequestError{Reason: "update operation requires 'field_name'"}
		}
		if raw.Changes == nil || raw.Changes.IsEmpty() {
			return Operation{}, &RequestError{Reason: "update operation requires 'changes'"}
		}
		return Operation{Action: ActionUpdate, FieldName: raw.FieldName, Changes: raw.Changes}, nil

	case ActionRemove:
		if raw.FieldName == "" {
			return Operation{}, &RequestError{Reason: "remove operation requires 'field_name'"}
		}
		return Operation{Action: ActionRemove, FieldName: raw.FieldName}, nil
	}

	return Operation{}, &RequestError{
		Reason: fmt.Sprintf("invalid action %q, must be one of add, update, remove", raw.Action),
	}
}

// HasRemove reports whether any operation in the set is destructive.
func HasRemove(ops []Operation) bool {
	for _, op := range ops {
		if op.Action == ActionRemove {
			return true
		}
	}
	return false
}

// CountByAction returns the number of add, update, and remove operations.
func CountByAction(ops []Operation) (adds, updates, removes int) {
	for _, op := range ops {
		switch op.Action {
		case ActionAdd:
			adds++
		case ActionUpdate:
			updates++
		case ActionRemove:
			removes++
		}
	}
	return adds, updates, removes
}
