package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// logPepper changes on every start, so log keys only correlate lines of one run.
var logPepper = uuid.NewString() + "-" + uuid.NewString()

// LogKey returns a pseudonymous, stable-per-process key for an email or
// national ID so log lines can be correlated without recording the value.
func LogKey(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(logPepper))
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))[:16]
}
