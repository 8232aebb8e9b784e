package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionExpiry = 24 * time.Hour

// Claims represents the session token claims
type Claims struct {
	UserID string `json:"sub"`
	jwt.RegisteredClaims
}

// Verifier checks an inbound session token. The real implementation is the
// JWT service below; handlers and middleware only depend on this interface
// so tests can substitute a stub.
type Verifier interface {
	Verify(token string) (*Claims, error)
}

// JWTService handles session token operations
type JWTService struct {
	secret []byte
}

// NewJWTService creates a new session token service
func NewJWTService(secret string) *JWTService {
	return &JWTService{
		secret: []byte(secret),
	}
}

// Sign creates a new session token for a user (24h expiry)
func (s *JWTService) Sign(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// Verify verifies and parses a session token
func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}

	return claims, nil
}
