package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	frontend_domain "github.com/tbs-portal/portal/frontend/internal/domain"
	"github.com/tbs-portal/portal/frontend/internal/middleware"
	"github.com/tbs-portal/portal/shared/logger"
	"github.com/tbs-portal/portal/shared/middleware/metrics"
	"github.com/tbs-portal/portal/shared/utils"
	"github.com/tbs-portal/portal/shared/validation"
)

const (
	portalTemplate = "index.html"
	msgBusy        = "Your previous request is still being processed. Please wait."
)

// TemplateData wraps page-specific data with common template data.
// Templates access page data via .Data and common data via .Common.
type TemplateData struct {
	Data   any
	Common frontend_domain.CommonTemplateData
}

func (h *Handler) initCommonTemplateData(r *http.Request) frontend_domain.CommonTemplateData {
	return frontend_domain.CommonTemplateData{
		CSRFToken: middleware.GetCSRFTokenFromContext(r),
		Notice:    h.notice,
		Validation: frontend_domain.ValidationData{
			NationalIDLength: validation.NationalIDLength,
		},
	}
}

func (h *Handler) notification(text string, kind frontend_domain.NotificationKind) *frontend_domain.Notification {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return &frontend_domain.Notification{Text: text, Kind: kind, TTLMs: h.Public.NotificationTTL.Milliseconds()}
}

func (h *Handler) renderTemplate(w http.ResponseWriter, r *http.Request, status int, name string, data any, note *frontend_domain.Notification) {
	tmpl, ok := h.template(name)
	if !ok {
		http.Error(w, fmt.Sprintf("Template %s not found", name), http.StatusInternalServerError)
		return
	}

	common := h.initCommonTemplateData(r)
	common.Notification = note

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, TemplateData{Data: data, Common: common}); err != nil {
		logger.Log.Error("error executing template", "template", name, "error", err)
		http.Error(w, "Internal Server Error rendering template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) renderPortal(w http.ResponseWriter, r *http.Request, status int, page frontend_domain.PortalPageData, note *frontend_domain.Notification) {
	h.renderTemplate(w, r, status, portalTemplate, page, note)
}

// statusFor maps a submission outcome onto the status of the re-rendered page.
func statusFor(outcome string) int {
	switch outcome {
	case metrics.OutcomeInvalid, metrics.OutcomeRejected:
		return http.StatusUnprocessableEntity
	case metrics.OutcomeUnavailable:
		return http.StatusBadGateway
	case metrics.OutcomeBusy:
		return http.StatusConflict
	default:
		return http.StatusOK
	}
}

// callerKey identifies one browser for the busy guard: its CSRF token, which
// every form post carries, or the client address when there is none.
func callerKey(r *http.Request) string {
	if token := middleware.GetCSRFTokenFromContext(r); token != "" {
		return token
	}
	ip, _ := utils.GetIP(r)
	return ip
}

func ms(d time.Duration) int64 {
	return d.Milliseconds()
}
