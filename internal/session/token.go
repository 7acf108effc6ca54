package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/benvon/smart-todo-cli/internal/models"
)

// ParseClaims extracts claims from a bearer token without verifying its
// signature. Signature validity is the backend's concern; the client only
// inspects claims for proactive expiry checks and identity bootstrap.
func ParseClaims(tokenString string) (*models.JWTClaims, error) {
	if strings.Count(tokenString, ".") != 2 {
		return nil, fmt.Errorf("token is not a three-part JWT")
	}

	token, err := jwt.Parse([]byte(tokenString), jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims := &models.JWTClaims{Sub: token.Subject()}
	if !token.Expiration().IsZero() {
		claims.Exp = token.Expiration().Unix()
	}
	if !token.IssuedAt().IsZero() {
		claims.Iat = token.IssuedAt().Unix()
	}
	if email, ok := token.Get("email"); ok {
		if emailStr, ok := email.(string); ok {
			claims.Email = emailStr
		}
	}
	if name, ok := token.Get("name"); ok {
		if nameStr, ok := name.(string); ok {
			claims.Name = nameStr
		}
	}
	return claims, nil
}

// IsTokenExpired reports whether a token's exp claim is in the past. A
// malformed token or a missing exp claim counts as expired. This is a
// client-side convenience check only and never substitutes for server-side
// verification.
func IsTokenExpired(tokenString string) bool {
	claims, err := ParseClaims(tokenString)
	if err != nil {
		return true
	}
	if claims.Exp == 0 {
		return true
	}
	return claims.Exp < time.Now().Unix()
}

// UserFromToken derives a minimal user identity from token claims. Returns
// nil if the token is unreadable or carries no subject.
func UserFromToken(tokenString string) *models.User {
	claims, err := ParseClaims(tokenString)
	if err != nil || claims.Sub == "" {
		return nil
	}
	user := &models.User{ID: claims.Sub, Email: claims.Email}
	if claims.Name != "" {
		name := claims.Name
		user.Name = &name
	}
	return user
}
