package handler

import (
	"errors"
	"net/http"

	"github.com/tbs-portal/portal/shared/api"
	"github.com/tbs-portal/portal/shared/form"
	"github.com/tbs-portal/portal/shared/utils"
	"github.com/tbs-portal/portal/shared/validation"
)

// ValidatePostHandler re-derives the registration form from a snapshot sent by
// the page script and returns what every input should show. The same form
// code guards RegisterPostHandler, so the page and the server always agree on
// whether the form may be submitted.
func (h *Handler) ValidatePostHandler(w http.ResponseWriter, r *http.Request) {
	var req api.ValidateRequest
	if err := utils.DecodeValidate(r.Body, &req, h.validator); err != nil {
		var fe validation.FieldErrors
		if errors.As(err, &fe) {
			utils.WriteJSON(w, http.StatusBadRequest, map[string]any{"errors": fe})
			return
		}
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	reg := form.NewRegistration(h.rules)
	for _, name := range form.RegistrationFields {
		reg.Input(name, req.Values[string(name)])
	}
	for _, t := range req.Touched {
		if name, ok := form.ParseFieldName(t); ok {
			reg.Touch(name)
		}
	}
	if req.Focused == string(form.Password) {
		reg.Focus(form.Password)
	}
	if name, ok := form.ParseFieldName(req.Field); ok && req.Event != "" {
		reg.Apply(form.Event(req.Event), name, req.Values[req.Field])
	}

	utils.WriteJSON(w, http.StatusOK, validateResponse(reg.View()))
}

func validateResponse(view form.RegistrationView) api.ValidateResponse {
	resp := api.ValidateResponse{
		Fields:           make(map[string]api.FieldState, len(view.Fields)),
		Requirements:     make([]api.RequirementState, 0, len(view.Requirements)),
		ShowRequirements: view.ShowRequirements,
		SubmitEnabled:    view.SubmitEnabled,
	}
	for _, f := range view.Fields {
		resp.Fields[string(f.Name)] = api.FieldState{
			Value:    f.Value,
			Message:  f.Message,
			Invalid:  f.Invalid,
			Mismatch: f.Mismatch,
		}
	}
	for _, req := range view.Requirements {
		resp.Requirements = append(resp.Requirements, api.RequirementState{Key: req.Key, Label: req.Label, Met: req.Met})
	}
	return resp
}
