package handler

import (
	"context"
	"html/template"
	"sync"

	"github.com/tbs-portal/portal/frontend/internal/service"
	"github.com/tbs-portal/portal/shared/config"
	"github.com/tbs-portal/portal/shared/form"
	"github.com/tbs-portal/portal/shared/jwt"
	"github.com/tbs-portal/portal/shared/validation"
)

type AuthService interface {
	Register(ctx context.Context, key string, r *form.Registration) (service.Result, error)
	Login(ctx context.Context, key string, l *form.Login) (service.Result, error)
	InitiateReset(ctx context.Context, key string, f *form.ForgotPassword, email, nationalID string) (service.Result, error)
	CompleteReset(ctx context.Context, key string, f *form.ForgotPassword, code, newPassword, confirm string) (service.Result, error)
}

type Handler struct {
	Public config.Public

	mu        sync.RWMutex
	templates map[string]*template.Template

	auth      AuthService
	sessions  jwt.ResetSessionService
	validator *validation.Validator
	rules     validation.Rules
	notice    template.HTML
}

func New(templates map[string]*template.Template, publicCfg config.Public, auth AuthService, sessions jwt.ResetSessionService, notice template.HTML) *Handler {
	rules := validation.Rules{EmailDomains: publicCfg.AllowedEmailDomains}
	return &Handler{
		Public:    publicCfg,
		templates: templates,
		auth:      auth,
		sessions:  sessions,
		validator: validation.NewValidator(rules),
		rules:     rules,
		notice:    notice,
	}
}

// SetTemplates swaps the template set, e.g. after a reload from disk.
func (h *Handler) SetTemplates(templates map[string]*template.Template) {
	h.mu.Lock()
	h.templates = templates
	h.mu.Unlock()
}

func (h *Handler) template(name string) (*template.Template, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	t, ok := h.templates[name]
	return t, ok
}
