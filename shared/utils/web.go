package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	internal_errors "github.com/tbs-portal/portal/shared/errors"
	"github.com/tbs-portal/portal/shared/logger"
)

// MaxJSONBody caps what Decode reads from a request body.
const MaxJSONBody = 64 << 10

// StructValidator is satisfied by validation.Validator.
type StructValidator interface {
	Struct(s any) error
}

func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	var e *internal_errors.ErrorWithStatusCode
	if errors.As(err, &e) {
		http.Error(w, e.Message, e.StatusCode)
		return
	}
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}

func GetIP(r *http.Request) (string, error) {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(ip) != nil {
		return ip, nil
	}

	for _, ip := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		ip = strings.TrimSpace(ip)
		if net.ParseIP(ip) != nil {
			return ip, nil
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "", err
	}
	if net.ParseIP(ip) != nil {
		return ip, nil
	}
	return "", fmt.Errorf("no valid ip found")
}

func Decode(r io.Reader, body any) error {
	if err := json.NewDecoder(io.LimitReader(r, MaxJSONBody)).Decode(body); err != nil {
		logger.Log.Debug("invalid json body", "error", err)
		return internal_errors.BadRequest("Body is invalid json")
	}
	return nil
}

// DecodeValidate decodes body and runs v over it. Validation failures are
// returned unchanged so callers can report them per field.
func DecodeValidate(r io.Reader, body any, v StructValidator) error {
	if err := Decode(r, body); err != nil {
		return err
	}
	return v.Struct(body)
}
