package claims

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/upb/quiz-client/models"
)

var (
	// ErrEmptyToken is returned when there is nothing to decode
	ErrEmptyToken = errors.New("empty token")

	// ErrMissingClaim is returned when a required claim is missing
	ErrMissingClaim = errors.New("missing required claim")
)

// Claims represents the claims the quiz API embeds in its access tokens
type Claims struct {
	jwt.RegisteredClaims
	Username string         `json:"username"`
	Roles    models.RoleSet `json:"roles"`
}

// ParsedClaims is the decoded, display-oriented view of a token
type ParsedClaims struct {
	Subject   string
	Username  string
	Roles     models.RoleSet
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Identity returns the user identity carried by the claims
func (p *ParsedClaims) Identity() models.Identity {
	return models.Identity{
		Username: p.Username,
		Roles:    p.Roles,
	}
}

// Expired reports whether the exp claim lies in the past. It is a hint for
// display only; the server stays authoritative.
func (p *ParsedClaims) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && now.After(p.ExpiresAt)
}

// Decode extracts claims from a token without verifying its signature or
// time-based claims.
func Decode(tokenString string) (*ParsedClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrEmptyToken
	}

	// Parse without validation
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	return parseClaims(claims)
}

// DecodeIdentity is the fast path used on login
func DecodeIdentity(tokenString string) (models.Identity, error) {
	parsed, err := Decode(tokenString)
	if err != nil {
		return models.Identity{}, err
	}
	return parsed.Identity(), nil
}

// parseClaims converts Claims to ParsedClaims
func parseClaims(claims *Claims) (*ParsedClaims, error) {
	if strings.TrimSpace(claims.Username) == "" {
		return nil, fmt.Errorf("%w: username", ErrMissingClaim)
	}

	parsed := &ParsedClaims{
		Subject:  claims.Subject,
		Username: claims.Username,
		Roles:    claims.Roles,
	}

	// Set time fields if available
	if claims.IssuedAt != nil {
		parsed.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		parsed.ExpiresAt = claims.ExpiresAt.Time
	}

	return parsed, nil
}
