package middleware

import (
	"fmt"
	"net/http"

	"github.com/tbs-portal/portal/shared/logger"
	"github.com/tbs-portal/portal/shared/middleware/ratelimiter"
	"github.com/tbs-portal/portal/shared/utils"
)

const msgRateLimited = "Rate limit exceeded, try again later"

// RateLimit rejects requests whose identity has run out of tokens.
func RateLimit(rl *ratelimiter.UserRateLimiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				logger.Log.Warn("rate limit identity", "path", r.URL.Path, "error", err)
				http.Error(w, "Bad request", http.StatusBadRequest)
				return
			}
			if !rl.Allow(identity) {
				logger.Log.Info("rate limited", "path", r.URL.Path, "key", utils.LogKey(identity))
				http.Error(w, msgRateLimited, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP keys the limiter on the client address.
func RateLimitByIP(rl *ratelimiter.UserRateLimiter) func(http.Handler) http.Handler {
	return RateLimit(rl, utils.GetIP)
}

// GetFieldFromForm keys the limiter on a posted form field, such as the
// email of a login attempt. A missing field falls back to the client IP.
func GetFieldFromForm(field string) func(r *http.Request) (string, error) {
	return func(r *http.Request) (string, error) {
		if err := r.ParseForm(); err != nil {
			return "", fmt.Errorf("parse form: %w", err)
		}
		if v := r.PostFormValue(field); v != "" {
			return field + ":" + v, nil
		}
		return utils.GetIP(r)
	}
}
