package forms

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ErrorKind classifies a validation failure. All kinds are user-correctable.
type ErrorKind int

const (
	KindRequired ErrorKind = iota + 1
	KindLength
	KindFormat
	KindMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case KindRequired:
		return "required"
	case KindLength:
		return "length"
	case KindFormat:
		return "format"
	case KindMismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

// FieldError is the failure recorded against one field.
type FieldError struct {
	Kind    ErrorKind
	Message string
}

// FieldErrors maps fields to their current failure. A missing entry or an
// empty message means the field passes.
type FieldErrors map[Field]FieldError

// HasError reports whether any field carries a non-empty message.
func (e FieldErrors) HasError() bool {
	for _, fe := range e {
		if fe.Message != "" {
			return true
		}
	}
	return false
}

// Message returns the message recorded for field, or "".
func (e FieldErrors) Message(field Field) string {
	return e[field].Message
}

// Messages flattens the map into field name -> message, skipping passes.
func (e FieldErrors) Messages() map[string]string {
	out := make(map[string]string, len(e))
	for field, fe := range e {
		if fe.Message != "" {
			out[string(field)] = fe.Message
		}
	}
	return out
}

// Fields returns the failing fields sorted by name.
func (e FieldErrors) Fields() []Field {
	out := make([]Field, 0, len(e))
	for field, fe := range e {
		if fe.Message != "" {
			out = append(out, field)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (e FieldErrors) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Messages())
}

func (e FieldErrors) clone() FieldErrors {
	out := make(FieldErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// ValidationError is returned by Submit when one or more fields fail.
type ValidationError struct {
	Variant Variant
	Errors  FieldErrors
}

func (e *ValidationError) Error() string {
	fields := e.Errors.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return fmt.Sprintf("forms: %s form has %d invalid field(s): %s", e.Variant, len(names), strings.Join(names, ", "))
}
