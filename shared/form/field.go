// Package form keeps the state of the portal's auth forms: field values,
// touched flags, messages and the forgot-password steps. Front ends feed it
// input/blur/focus events and render whatever View() derives.
package form

type FieldName string

const (
	FirstName       FieldName = "firstName"
	LastName        FieldName = "lastName"
	NationalID      FieldName = "nic"
	Email           FieldName = "email"
	Password        FieldName = "password"
	ConfirmPassword FieldName = "confirmPassword"
)

// RegistrationFields in display order.
var RegistrationFields = []FieldName{FirstName, LastName, NationalID, Email, Password, ConfirmPassword}

// ParseFieldName accepts the JSON/form name of a registration field.
func ParseFieldName(s string) (FieldName, bool) {
	for _, f := range RegistrationFields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Field is one input. Touched flips on the first loss of focus and stays set.
type Field struct {
	Value   string
	Valid   bool
	Touched bool
}

// FieldView is what a front end draws for one input.
type FieldView struct {
	Name    FieldName
	Value   string
	Message string // text for the field's message slot
	// Invalid marks the whole input group as failed.
	Invalid bool
	// Mismatch is the lighter cue used while a confirmation is still being typed:
	// the input border turns red, no message.
	Mismatch bool
}

// Event is a user interaction with a single field.
type Event string

const (
	EventInput Event = "input"
	EventBlur  Event = "blur"
	EventFocus Event = "focus"
)
