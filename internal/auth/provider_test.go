package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mintToken(t *testing.T, secret []byte, userID, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":     userID,
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func TestTokenProvider_AcquireAndIdentity(t *testing.T) {
	secret := []byte("test-secret")
	p := NewTokenProvider(secret)

	token := mintToken(t, secret, "user-42", RoleAdmin)
	require.NoError(t, p.Acquire(token))

	got, err := p.BearerToken()
	require.NoError(t, err)
	assert.Equal(t, token, got)

	ident, err := p.Identity()
	require.NoError(t, err)
	assert.Equal(t, "user-42", ident.UserID)
	assert.Equal(t, RoleAdmin, ident.Role)
}

func TestTokenProvider_RejectsWrongSecret(t *testing.T) {
	p := NewTokenProvider([]byte("right-secret"))

	token := mintToken(t, []byte("wrong-secret"), "user-42", RoleUser)
	err := p.Acquire(token)
	require.Error(t, err)

	_, err = p.BearerToken()
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestTokenProvider_DefaultsRoleToUser(t *testing.T) {
	secret := []byte("test-secret")
	p := NewTokenProvider(secret)

	claims := jwt.MapClaims{"sub": "user-7", "exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	require.NoError(t, p.Acquire(token))
	ident, err := p.Identity()
	require.NoError(t, err)
	assert.Equal(t, RoleUser, ident.Role)
}

func TestTokenProvider_Invalidate(t *testing.T) {
	secret := []byte("test-secret")
	p := NewTokenProvider(secret)
	require.NoError(t, p.Acquire(mintToken(t, secret, "user-42", RoleUser)))

	p.Invalidate()

	_, err := p.BearerToken()
	assert.ErrorIs(t, err, ErrNoCredential)
	_, err = p.Identity()
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestStatic(t *testing.T) {
	s := Static{Token: "opaque", User: Identity{UserID: "u1", Role: RoleUser}}

	token, err := s.BearerToken()
	require.NoError(t, err)
	assert.Equal(t, "opaque", token)

	_, err = Static{}.BearerToken()
	assert.ErrorIs(t, err, ErrNoCredential)
}
