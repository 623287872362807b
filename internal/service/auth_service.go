package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"formpulse/internal/model"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService verifies owner tokens minted by the external auth provider
type AuthService struct {
	jwtSecret []byte
	issuer    string
}

// NewAuthService creates a new auth service
func NewAuthService(secret, issuer string) *AuthService {
	return &AuthService{
		jwtSecret: []byte(secret),
		issuer:    issuer,
	}
}

// IssueToken signs an owner token for the seed tool and tests. Real tokens
// come from the auth provider. A zero ttl means no expiry.
func (s *AuthService) IssueToken(ownerID, email string, ttl time.Duration) (string, error) {
	if ownerID == "" {
		return "", NewInvalidError("owner id required")
	}
	now := time.Now()
	claims := &model.OwnerClaims{
		OwnerID: ownerID,
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   s.issuer,
			Subject:  ownerID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// VerifyToken validates an owner JWT and returns its claims
func (s *AuthService) VerifyToken(tokenString string) (*model.OwnerClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &model.OwnerClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, opts...)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.OwnerClaims)
	if !ok || !token.Valid || claims.OwnerID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
