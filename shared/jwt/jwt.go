// Package jwt signs the short-lived cookie that carries the forgot-password
// flow between requests of the server-rendered front end.
package jwt

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	internal_errors "github.com/tbs-portal/portal/shared/errors"
	"github.com/tbs-portal/portal/shared/logger"
)

const issuer = "tbs-portal"

// ResetSession is the part of the forgot-password state that must survive
// a page load: which step the visitor is on and who asked for the code.
type ResetSession struct {
	Step       int    `json:"step"`
	Email      string `json:"email"`
	NationalID string `json:"national_id"`
}

type resetClaims struct {
	ResetSession
	jwt.RegisteredClaims
}

type ResetSessionService interface {
	Encode(session ResetSession) (string, error)
	Decode(token string) (ResetSession, error)
}

type Jwt struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

func New(secretKey string, ttl time.Duration) *Jwt {
	return &Jwt{secretKey: []byte(secretKey), ttl: ttl, now: time.Now}
}

func (j *Jwt) Encode(session ResetSession) (string, error) {
	now := j.now()
	claims := resetClaims{
		ResetSession: session,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		logger.Log.Error("failed to sign reset session", "error", err)
		return "", errors.New("can't create reset session")
	}
	return signed, nil
}

func (j *Jwt) Decode(tokenStr string) (ResetSession, error) {
	var claims resetClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(j.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		logger.Log.Debug("reset session rejected", "error", err)
		return ResetSession{}, internal_errors.New(http.StatusUnauthorized, "Invalid reset session")
	}
	if !token.Valid {
		return ResetSession{}, internal_errors.New(http.StatusUnauthorized, "Invalid reset session")
	}
	return claims.ResetSession, nil
}
