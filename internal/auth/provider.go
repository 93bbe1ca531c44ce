package auth

import (
	"errors"
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity is the authenticated caller as reported by the auth service.
type Identity struct {
	UserID string
	Role   string
}

// CredentialProvider supplies the bearer credential and the identity it
// belongs to. Implementations have an explicit acquire/invalidate
// lifecycle; consumers never read ambient storage.
type CredentialProvider interface {
	BearerToken() (string, error)
	Identity() (Identity, error)
}

var ErrNoCredential = errors.New("no credential acquired")

// tokenClaims is the internal claims type used for JWT parsing.
type tokenClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// TokenProvider holds a bearer token issued by the auth service and
// derives the caller identity from its claims.
type TokenProvider struct {
	mu     sync.Mutex
	secret []byte
	token  string
	ident  Identity
}

func NewTokenProvider(secret []byte) *TokenProvider {
	return &TokenProvider{secret: secret}
}

// Acquire validates the token signature and claims and makes the token
// the active credential.
func (p *TokenProvider) Acquire(token string) error {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return fmt.Errorf("parse bearer token: %w", err)
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return errors.New("bearer token has no user identity")
	}
	role := claims.Role
	if role == "" {
		role = RoleUser
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = token
	p.ident = Identity{UserID: userID, Role: role}
	return nil
}

func (p *TokenProvider) BearerToken() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token == "" {
		return "", ErrNoCredential
	}
	return p.token, nil
}

func (p *TokenProvider) Identity() (Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token == "" {
		return Identity{}, ErrNoCredential
	}
	return p.ident, nil
}

// Invalidate drops the active credential, e.g. on logout or rejection.
func (p *TokenProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = ""
	p.ident = Identity{}
}

// Static is a fixed credential, intended for tests and local tooling.
type Static struct {
	Token string
	User  Identity
}

func (s Static) BearerToken() (string, error) {
	if s.Token == "" {
		return "", ErrNoCredential
	}
	return s.Token, nil
}

func (s Static) Identity() (Identity, error) {
	if s.Token == "" {
		return Identity{}, ErrNoCredential
	}
	return s.User, nil
}
