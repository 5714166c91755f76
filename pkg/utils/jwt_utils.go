package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// jwtSecretKey signs and verifies session tokens. Overridden from the
// JWT_SECRET environment variable at startup.
var jwtSecretKey = []byte("vestiaire-dev-secret-change-me")

// SetJWTSecret installs the signing key loaded from configuration.
func SetJWTSecret(secret string) {
	if secret != "" {
		jwtSecretKey = []byte(secret)
	}
}

// SessionTokenTTL is how long a back-office session cookie stays valid.
const SessionTokenTTL = 12 * time.Hour

// Claims defines the JWT claims structure for a session token.
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateSessionToken creates a signed session token for a user.
func GenerateSessionToken(userID int64, email, name, role string) (string, error) {
	expirationTime := time.Now().Add(SessionTokenTTL)
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Name:   name,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "vestiaire-backend",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtSecretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a session token string.
// It returns the claims if the token is valid, otherwise an error.
func ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecretKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
