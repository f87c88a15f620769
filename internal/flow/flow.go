package flow

import "fmt"

// Step IDs shared by the flow handlers and their front ends.
const (
	StepUser   = "user"
	StepCode   = "code"
	StepInit   = "init"
	StepCamera = "camera"
	StepVacuum = "vacuum"
)

// Error keys surfaced to front ends. Forms carry keys rather than
// rendered messages so each front end can phrase its own errors.
const (
	// ErrKeyBase is the pseudo-field for flow-level errors.
	ErrKeyBase = "base"

	// ErrAuth means the account service rejected a credential step.
	ErrAuth = "auth"
	// ErrNoDevice means the code login failed or returned no usable session.
	ErrNoDevice = "no_device"
	// ErrRequired means a required field was submitted empty.
	ErrRequired = "required"
	// ErrInvalid means a value failed schema coercion.
	ErrInvalid = "invalid"

	// AbortAlreadyConfigured is the abort reason when the account
	// already has an entry.
	AbortAlreadyConfigured = "already_configured"
)

// ResultKind discriminates what a step handler asks the front end to do next.
type ResultKind int

const (
	// ResultShowForm asks the front end to render a form and submit it
	// back to the same step.
	ResultShowForm ResultKind = iota
	// ResultDone means the flow finished and an entry was created or updated.
	ResultDone
	// ResultAbort means the flow ended without creating an entry.
	ResultAbort
)

// String returns a human-readable name for the result kind
func (k ResultKind) String() string {
	switch k {
	case ResultShowForm:
		return "show_form"
	case ResultDone:
		return "done"
	case ResultAbort:
		return "abort"
	default:
		return fmt.Sprintf("ResultKind(%d)", k)
	}
}

// Result is what every step handler returns. Exactly one of the
// kind-specific field groups is meaningful:
//   - ShowForm: StepID, Form, Errors
//   - Done: Title, UniqueID
//   - Abort: Reason
type Result struct {
	Kind ResultKind

	// StepID identifies the step the form belongs to
	StepID string
	// Form is the schema to render when Kind is ResultShowForm
	Form *Form
	// Errors maps field keys (or ErrKeyBase) to error keys
	Errors map[string]string

	// Title is the entry title when Kind is ResultDone
	Title string
	// UniqueID is the entry's unique ID when Kind is ResultDone
	UniqueID string

	// Reason explains the abort when Kind is ResultAbort
	Reason string
}

// Form is an ordered set of fields a front end renders for one step.
type Form struct {
	Fields []Field
}

// Field describes a single form input and how to validate it.
type Field struct {
	// Key is the submission key. Options flow fields use dotted paths.
	Key string
	// Required fields may not be submitted empty
	Required bool
	// Secret marks fields whose input should be masked
	Secret bool
	// Default is the prefill value, already coerced
	Default any
	// Choices restricts the value to an enumerated set when non-empty
	Choices []string
	// Coerce validates and converts the submitted value.
	// Nil means the raw string is accepted as-is.
	Coerce Coercer
}

// Field returns the field with the given key, or nil if absent.
func (f *Form) Field(key string) *Field {
	for i := range f.Fields {
		if f.Fields[i].Key == key {
			return &f.Fields[i]
		}
	}
	return nil
}

func showForm(stepID string, form *Form, errors map[string]string) Result {
	return Result{
		Kind:   ResultShowForm,
		StepID: stepID,
		Form:   form,
		Errors: errors,
	}
}

func abort(reason string) Result {
	return Result{Kind: ResultAbort, Reason: reason}
}
