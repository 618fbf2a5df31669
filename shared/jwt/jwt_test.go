package jwt

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internal_errors "github.com/tbs-portal/portal/shared/errors"
)

const secretKey = "testJwtKey"

var session = ResetSession{Step: 1, Email: "a@gmail.com", NationalID: "12345678"}

func TestDecodeCorrect(t *testing.T) {
	j := New(secretKey, 10*time.Second)
	token, err := j.Encode(session)
	require.NoError(t, err)

	got, err := j.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, session, got)
}

func TestDecodeExpired(t *testing.T) {
	j := New(secretKey, time.Minute)
	token, err := j.Encode(session)
	require.NoError(t, err)

	j.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = j.Decode(token)
	var e *internal_errors.ErrorWithStatusCode
	require.ErrorAs(t, err, &e)
	assert.Equal(t, http.StatusUnauthorized, e.StatusCode)
}

func TestDecodeInvalidSecretKey(t *testing.T) {
	token, err := New(secretKey, time.Minute).Encode(session)
	require.NoError(t, err)

	_, err = New("invalidSecret", time.Minute).Decode(token)
	assert.Error(t, err)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := New(secretKey, time.Minute).Decode("not.a.token")
	assert.Error(t, err)
}

func TestEncodeUniqueIDs(t *testing.T) {
	j := New(secretKey, time.Minute)
	a, err := j.Encode(session)
	require.NoError(t, err)
	b, err := j.Encode(session)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
