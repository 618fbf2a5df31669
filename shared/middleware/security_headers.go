package middleware

import (
	"net/http"
	"strings"
)

// DefaultCSP allows the portal's own scripts and styles only.
const DefaultCSP = "default-src 'self'; script-src 'self'; style-src 'self'; img-src 'self' data:; form-action 'self'; frame-ancestors 'none'"

// CSPWithFormTargets extends DefaultCSP so form posts may also end on the
// given origins, e.g. a backend the login redirects to.
func CSPWithFormTargets(origins ...string) string {
	if len(origins) == 0 {
		return DefaultCSP
	}
	return strings.Replace(DefaultCSP, "form-action 'self'", "form-action 'self' "+strings.Join(origins, " "), 1)
}

// SecurityHeadersWithCSP sets the usual hardening headers. HSTS is sent only
// when the portal is served over HTTPS; an empty csp sends none.
func SecurityHeadersWithCSP(isHTTPS bool, csp string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=(), payment=()")
			// Pages carry form state and messages; never cache them.
			h.Set("Cache-Control", "no-store")

			if csp != "" {
				h.Set("Content-Security-Policy", csp)
			}
			if isHTTPS {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}
