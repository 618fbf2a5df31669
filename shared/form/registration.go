package form

import (
	"strings"

	"github.com/tbs-portal/portal/shared/api"
	"github.com/tbs-portal/portal/shared/validation"
)

// RegistrationView is the complete render state of the registration form.
type RegistrationView struct {
	Fields           []FieldView
	Requirements     []validation.Requirement
	ShowRequirements bool
	SubmitEnabled    bool
	Message          string // shared message area, used for whole-form failures
}

// Field returns the view of name; the zero FieldView if name is unknown.
func (v RegistrationView) Field(name FieldName) FieldView {
	for _, f := range v.Fields {
		if f.Name == name {
			return f
		}
	}
	return FieldView{Name: name}
}

// Registration holds the state of one registration form. Every event leaves
// the validity flags consistent with the values, so View and CanSubmit never
// lag behind the input.
type Registration struct {
	rules  validation.Rules
	fields map[FieldName]*Field

	showRequirements bool

	annotations map[FieldName]string // messages reported by the server
	flagged     map[FieldName]bool   // marked invalid by the server without a message
	message     string
}

func NewRegistration(rules validation.Rules) *Registration {
	r := &Registration{rules: rules}
	r.Reset()
	return r
}

// Reset empties the form and forgets every touched flag and annotation.
func (r *Registration) Reset() {
	r.fields = make(map[FieldName]*Field, len(RegistrationFields))
	for _, name := range RegistrationFields {
		r.fields[name] = &Field{}
	}
	r.showRequirements = false
	r.annotations = map[FieldName]string{}
	r.flagged = map[FieldName]bool{}
	r.message = ""
	r.refresh()
}

// Field returns a copy of the state of name.
func (r *Registration) Field(name FieldName) Field {
	if f, ok := r.fields[name]; ok {
		return *f
	}
	return Field{}
}

func (r *Registration) Value(name FieldName) string {
	return r.Field(name).Value
}

// Input handles a keystroke in name. The national ID is filtered as typed.
func (r *Registration) Input(name FieldName, value string) {
	f, ok := r.fields[name]
	if !ok {
		return
	}

	if name == NationalID {
		value = validation.FilterNationalID(value)
	}
	f.Value = value

	delete(r.annotations, name)
	delete(r.flagged, name)

	r.refresh()

	if name == Password && f.Valid {
		r.showRequirements = false
	}
}

// Blur handles name losing focus: the field becomes touched and names are
// normalised.
func (r *Registration) Blur(name FieldName) {
	f, ok := r.fields[name]
	if !ok {
		return
	}

	switch name {
	case FirstName, LastName:
		f.Value = validation.FormatName(f.Value)
	case Password:
		r.showRequirements = false
	}
	f.Touched = true

	r.refresh()
}

// Focus handles name gaining focus. Only the password reacts: its
// requirement checklist opens.
func (r *Registration) Focus(name FieldName) {
	if name == Password {
		r.showRequirements = true
	}
}

// Apply dispatches a single event.
func (r *Registration) Apply(event Event, name FieldName, value string) {
	switch event {
	case EventInput:
		r.Input(name, value)
	case EventBlur:
		r.Blur(name)
	case EventFocus:
		r.Focus(name)
	}
}

// Fill loads a full set of submitted values as if each field had been typed
// into and left, in display order.
func (r *Registration) Fill(values map[FieldName]string) {
	for _, name := range RegistrationFields {
		r.Input(name, values[name])
		r.Blur(name)
	}
}

// Touch marks name touched without the normalisation Blur applies. Front ends
// that rebuild state from a snapshot use it for fields left earlier.
func (r *Registration) Touch(name FieldName) {
	if f, ok := r.fields[name]; ok {
		f.Touched = true
	}
}

// TouchAll marks every field touched so every failing rule shows its message.
func (r *Registration) TouchAll() {
	for _, f := range r.fields {
		f.Touched = true
	}
}

func (r *Registration) refresh() {
	password := r.fields[Password].Value
	for name, f := range r.fields {
		f.Valid = r.isValid(name, f.Value, password)
	}
}

func (r *Registration) isValid(name FieldName, value, password string) bool {
	switch name {
	case FirstName, LastName:
		return validation.IsNameValid(value)
	case NationalID:
		return validation.IsNationalIDValid(value)
	case Email:
		return r.rules.IsEmailValid(value)
	case Password:
		return validation.IsPasswordValid(value)
	case ConfirmPassword:
		return validation.PasswordsMatch(value, password)
	}
	return false
}

func (r *Registration) ruleMessage(name FieldName) string {
	switch name {
	case FirstName, LastName:
		return validation.MsgName
	case NationalID:
		return validation.MsgNationalID
	case Email:
		return r.rules.EmailHint()
	case Password:
		return validation.MsgPassword
	case ConfirmPassword:
		return validation.MsgMismatch
	}
	return ""
}

// CanSubmit is true iff all six fields are non-blank and valid, which
// includes the confirmation matching the password.
func (r *Registration) CanSubmit() bool {
	for _, name := range RegistrationFields {
		f := r.fields[name]
		if strings.TrimSpace(f.Value) == "" || !f.Valid {
			return false
		}
	}
	return true
}

func (r *Registration) View() RegistrationView {
	view := RegistrationView{
		Fields:           make([]FieldView, 0, len(RegistrationFields)),
		Requirements:     validation.CheckPassword(r.fields[Password].Value).Items(),
		ShowRequirements: r.showRequirements,
		SubmitEnabled:    r.CanSubmit(),
		Message:          r.message,
	}
	for _, name := range RegistrationFields {
		view.Fields = append(view.Fields, r.fieldView(name))
	}
	return view
}

func (r *Registration) fieldView(name FieldName) FieldView {
	f := r.fields[name]
	fv := FieldView{Name: name, Value: f.Value}

	if msg, ok := r.annotations[name]; ok {
		fv.Message = msg
		fv.Invalid = true
		return fv
	}
	fv.Invalid = r.flagged[name]

	if f.Valid || strings.TrimSpace(f.Value) == "" {
		return fv
	}

	if name == ConfirmPassword {
		fv.Mismatch = true
		if f.Touched {
			fv.Message = validation.MsgMismatch
		}
		return fv
	}

	if f.Touched {
		fv.Message = r.ruleMessage(name)
		fv.Invalid = true
	}
	return fv
}

// Payload serialises the form for the backend.
func (r *Registration) Payload() api.RegisterRequest {
	return api.RegisterRequest{
		FirstName:       r.Value(FirstName),
		LastName:        r.Value(LastName),
		NIC:             r.Value(NationalID),
		Email:           r.Value(Email),
		Password:        r.Value(Password),
		ConfirmPassword: r.Value(ConfirmPassword),
	}
}

// ClearAnnotations drops every server-side message before a new submission.
func (r *Registration) ClearAnnotations() {
	r.annotations = map[FieldName]string{}
	r.flagged = map[FieldName]bool{}
	r.message = ""
}

// ApplyFieldErrors attaches server-reported messages to their inputs. Keys
// that name no field are skipped. It returns how many fields were annotated.
func (r *Registration) ApplyFieldErrors(errs map[string][]string) int {
	n := 0
	for key, msgs := range errs {
		name, ok := ParseFieldName(key)
		if !ok {
			continue
		}
		r.annotations[name] = strings.Join(msgs, ", ")
		n++
	}
	return n
}

// ApplyFieldHint marks the inputs a server failure refers to: "email", "nic"
// or "both" (email and national ID).
func (r *Registration) ApplyFieldHint(hint string) {
	switch hint {
	case "both":
		r.flagged[Email] = true
		r.flagged[NationalID] = true
	default:
		if name, ok := ParseFieldName(hint); ok {
			r.flagged[name] = true
		}
	}
}

// SetMessage fills the shared message area.
func (r *Registration) SetMessage(msg string) {
	r.message = msg
}
