package api

// Request DTOs sent to the portal backend.

type RegisterRequest struct {
	FirstName       string `json:"firstName" validate:"required,tbs_name"`
	LastName        string `json:"lastName" validate:"required,tbs_name"`
	NIC             string `json:"nic" validate:"required,tbs_nic"`
	Email           string `json:"email" validate:"required,tbs_email"`
	Password        string `json:"password" validate:"required,tbs_password"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type InitiateResetRequest struct {
	Email      string `json:"email" validate:"required"`
	NationalID string `json:"national_id" validate:"required"`
}

type CompleteResetRequest struct {
	Email       string `json:"email" validate:"required"`
	Code        string `json:"code" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// Response DTOs

// RegisterResponse covers every shape /register answers with: an empty body on
// success, a plain message, a per-field error map, or a message with a field hint
// ("email", "nic" or "both").
type RegisterResponse struct {
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Field   string              `json:"field,omitempty"`
}

type LoginResponse struct {
	Success     bool   `json:"success"`
	RedirectURL string `json:"redirect_url,omitempty"`
	Role        string `json:"role,omitempty"`
	Message     string `json:"message,omitempty"`
}

// ResetResponse is shared by both password-reset steps.
type ResetResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
