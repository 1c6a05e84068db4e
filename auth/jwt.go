package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields Supabase puts in its access tokens.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenVerifier validates Supabase access tokens with the project's JWT secret.
type TokenVerifier struct {
	secret   []byte
	audience string
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), audience: "authenticated"}
}

func (v *TokenVerifier) Verify(token string) (*User, error) {
	claims, err := v.Parse(token)
	if err != nil {
		return nil, err
	}
	return &User{ID: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}

// Parse validates token and returns its claims.
func (v *TokenVerifier) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("invalid access token: missing subject")
	}
	return claims, nil
}

// Sign issues a token the verifier accepts. Used for local development and tests.
func (v *TokenVerifier) Sign(claims Claims) (string, error) {
	if len(claims.Audience) == 0 {
		claims.Audience = jwt.ClaimStrings{v.audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
