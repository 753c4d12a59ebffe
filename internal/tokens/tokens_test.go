package tokens

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	accessSecret  = []byte("test-access-secret")
	refreshSecret = []byte("test-refresh-secret")
)

func TestSignAccess_RoundTrip(t *testing.T) {
	t.Parallel()

	id := uuid.NewString()
	exp := time.Now().Add(15 * time.Minute)
	tok, err := SignAccess(AccessClaims{
		Username: "annl",
		Email:    "ann@x.com",
		FullName: "Ann Lee",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}, accessSecret)
	require.NoError(t, err)

	claims, err := AccessClaimsFromToken(tok, accessSecret)
	require.NoError(t, err)
	assert.Equal(t, id, claims.Subject)
	assert.Equal(t, "annl", claims.Username)
	assert.Equal(t, "ann@x.com", claims.Email)
	assert.Equal(t, "Ann Lee", claims.FullName)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestSignRefresh_UniqueJTI(t *testing.T) {
	t.Parallel()

	now := time.Now()
	a, err := SignRefresh("u1", now, now.Add(time.Hour), refreshSecret)
	require.NoError(t, err)
	b, err := SignRefresh("u1", now, now.Add(time.Hour), refreshSecret)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	claims, err := RefreshClaimsFromToken(a, refreshSecret)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestRefreshClaimsFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tok, err := SignRefresh("u1", now, now.Add(time.Hour), refreshSecret)
	require.NoError(t, err)

	_, err = RefreshClaimsFromToken(tok, accessSecret)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenSignatureInvalid))
}

func TestRefreshClaimsFromToken_Expired(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-2 * time.Hour)
	tok, err := SignRefresh("u1", past, past.Add(time.Hour), refreshSecret)
	require.NoError(t, err)

	_, err = RefreshClaimsFromToken(tok, refreshSecret)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestAccessClaimsFromToken_RejectsOtherAlg(t *testing.T) {
	t.Parallel()

	claims := AccessClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(accessSecret)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(tok, accessSecret)
	require.Error(t, err)
}

func TestAccessClaimsFromToken_RequiresExp(t *testing.T) {
	t.Parallel()

	tok, err := SignAccess(AccessClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}}, accessSecret)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(tok, accessSecret)
	require.Error(t, err)
}

func TestDigest(t *testing.T) {
	t.Parallel()

	assert.Len(t, Digest("abc"), 64)
	assert.Equal(t, Digest("abc"), Digest("abc"))
	assert.NotEqual(t, Digest("abc"), Digest("abd"))
}
