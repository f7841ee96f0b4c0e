package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService issues and validates the HS256 bearer tokens that carry a
// caller's account id in the subject claim.
type AuthService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewAuthService creates an auth service. An empty issuer is neither set nor
// checked.
func NewAuthService(secret []byte, issuer string) (*AuthService, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret cannot be empty")
	}
	return &AuthService{secret: secret, issuer: issuer, now: time.Now}, nil
}

// IssueToken signs a token for subject. A non-positive ttl yields a token
// without expiry, which suits long-running reporter nodes.
func (a *AuthService) IssueToken(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("token subject cannot be empty")
	}

	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:  subject,
		Issuer:   a.issuer,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies signature, expiry and issuer and returns the claims
func (a *AuthService) ValidateToken(tokenString string) (*jwt.RegisteredClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// IssueToken signs a token with secret outside of a running server
func IssueToken(secret []byte, issuer, subject string, ttl time.Duration) (string, error) {
	auth, err := NewAuthService(secret, issuer)
	if err != nil {
		return "", err
	}
	return auth.IssueToken(subject, ttl)
}
