package api

// ValidateRequest is a snapshot of the registration form sent by the page
// script on every input, blur or focus event.
type ValidateRequest struct {
	Values  map[string]string `json:"values" validate:"required"`
	Touched []string          `json:"touched"`
	Focused string            `json:"focused"`
	Event   string            `json:"event" validate:"omitempty,oneof=input blur focus"`
	Field   string            `json:"field" validate:"required_with=Event"`
}

type FieldState struct {
	Value    string `json:"value"`
	Message  string `json:"message,omitempty"`
	Invalid  bool   `json:"invalid"`
	Mismatch bool   `json:"mismatch"`
}

type RequirementState struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Met   bool   `json:"met"`
}

// ValidateResponse is the derived view of the form after the event.
type ValidateResponse struct {
	Fields           map[string]FieldState `json:"fields"`
	Requirements     []RequirementState    `json:"requirements"`
	ShowRequirements bool                  `json:"showRequirements"`
	SubmitEnabled    bool                  `json:"submitEnabled"`
}
