package forms

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoSink is returned by Submit when the engine was built without a sink.
var ErrNoSink = errors.New("forms: submission sink unavailable")

// Submission is the validated snapshot handed to a Sink.
type Submission struct {
	Variant       Variant
	Values        Values
	Discriminants Discriminants
}

// Receipt describes what the sink did with an accepted submission.
type Receipt struct {
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
}

// Sink receives submissions that passed validation.
type Sink interface {
	Accept(ctx context.Context, submission Submission) (Receipt, error)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, submission Submission) (Receipt, error)

// Accept calls f.
func (f SinkFunc) Accept(ctx context.Context, submission Submission) (Receipt, error) {
	return f(ctx, submission)
}

// Engine owns the state of one mounted form: current values, the parsed
// discriminants and the visible error map. It is driven from a single event
// loop and is not safe for concurrent use.
type Engine struct {
	variant       Variant
	values        Values
	discriminants Discriminants
	errors        FieldErrors
	sink          Sink
}

// NewEngine mounts an empty form of the given variant.
func NewEngine(variant Variant, sink Sink) *Engine {
	return &Engine{
		variant: variant,
		values:  make(Values),
		errors:  make(FieldErrors),
		sink:    sink,
	}
}

// Variant returns the form variant the engine was built for.
func (e *Engine) Variant() Variant {
	return e.variant
}

// SetValue stores value for field. Discriminant fields are routed through
// SetDiscriminant. The audio upload re-validates immediately; every other
// field waits for the next Submit.
func (e *Engine) SetValue(field Field, value any) error {
	if !e.variant.Accepts(field) {
		return fmt.Errorf("forms: field %q is not part of the %s form", field, e.variant)
	}
	if isDiscriminant(field) {
		raw, ok := value.(string)
		if !ok && value != nil {
			return fmt.Errorf("forms: discriminant %q must be a string, got %T", field, value)
		}
		return e.SetDiscriminant(field, raw)
	}
	checked, err := checkValue(field, value)
	if err != nil {
		return err
	}
	if checked == nil {
		delete(e.values, field)
	} else {
		e.values[field] = checked
	}
	if field == FieldAudioUpload {
		if fe, failed := ValidateField(e.variant, field, e.values, e.discriminants); failed {
			e.errors[field] = fe
		} else {
			delete(e.errors, field)
		}
	}
	return nil
}

// SetDiscriminant records a dropdown selection. Fields that stop being
// required lose their error straight away; everything else keeps its error
// until the next Submit.
func (e *Engine) SetDiscriminant(field Field, raw string) error {
	if !e.variant.hasDiscriminant(field) {
		return fmt.Errorf("forms: %q is not a discriminant of the %s form", field, e.variant)
	}
	if raw == "" {
		delete(e.values, field)
	} else {
		e.values[field] = raw
	}
	switch field {
	case FieldProjectSoftware:
		e.discriminants.Software = ParseSoftware(raw)
	case FieldProjectType:
		e.discriminants.Type = ParseProjectType(raw)
	}
	for _, f := range conditionalFields {
		if !IsRequired(e.variant, f, e.discriminants) {
			delete(e.errors, f)
		}
	}
	return nil
}

// Values returns a copy of the current values.
func (e *Engine) Values() Values {
	return e.values.Clone()
}

// Discriminants returns the parsed dropdown state.
func (e *Engine) Discriminants() Discriminants {
	return e.discriminants
}

// Errors returns a copy of the visible error map.
func (e *Engine) Errors() FieldErrors {
	return e.errors.clone()
}

// VisibleSections returns the sections the form currently renders.
func (e *Engine) VisibleSections() SectionSet {
	return VisibleSectionsFor(e.variant, e.discriminants)
}

// HelperText returns the description hint for the selected software.
func (e *Engine) HelperText() string {
	return HelperText(e.discriminants.Software)
}

// Submit validates every field. On failure the full error map replaces the
// visible errors and a *ValidationError is returned without calling the sink.
// On success the sink receives the untrimmed values exactly once.
func (e *Engine) Submit(ctx context.Context) (Receipt, error) {
	errs := ValidateAll(e.variant, e.values, e.discriminants)
	e.errors = errs
	if errs.HasError() {
		return Receipt{}, &ValidationError{Variant: e.variant, Errors: errs.clone()}
	}
	if e.sink == nil {
		return Receipt{}, ErrNoSink
	}
	receipt, err := e.sink.Accept(ctx, Submission{
		Variant:       e.variant,
		Values:        e.values.Clone(),
		Discriminants: e.discriminants,
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("forms: submit %s: %w", e.variant, err)
	}
	return receipt, nil
}

// Reset clears every value and error, as when the form is re-mounted.
func (e *Engine) Reset() {
	e.values = make(Values)
	e.errors = make(FieldErrors)
	e.discriminants = Discriminants{}
}
