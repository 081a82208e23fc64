package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	token, exp, err := iss.Issue("abc")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 2*time.Second)

	id, err := iss.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "abc", id)
}

func TestVerifyRejectsForeignAndExpiredTokens(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	other := NewIssuer("other", time.Hour)
	token, _, err := other.Issue("abc")
	require.NoError(t, err)
	_, err = iss.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewIssuer("secret", -time.Minute)
	token, _, err = expired.Issue("abc")
	require.NoError(t, err)
	_, err = iss.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	claims := SessionClaims{SessionID: "abc"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewIssuer("secret", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
