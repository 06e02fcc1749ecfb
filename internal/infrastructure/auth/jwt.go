package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/stocklane/backend/internal/infrastructure/config"
)

var (
	// ErrInvalidToken is returned when a token fails signature or structural validation.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a token is past its expiry.
	ErrExpiredToken = errors.New("token expired")
	// ErrInvalidClaims is returned when a token parses but its claims are unusable.
	ErrInvalidClaims = errors.New("invalid token claims")
)

// Claims carries the authenticated person identity inside an access token.
type Claims struct {
	PersonID uuid.UUID `json:"person_id"`
	jwt.RegisteredClaims
}

// JWTService issues and validates access tokens.
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
}

func NewJWTService(cfg *config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.AccessTokenExpiration,
		issuer:     cfg.Issuer,
	}
}

// Generate creates a signed access token for the given person.
func (s *JWTService) Generate(personID uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiration)

	claims := Claims{
		PersonID: personID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   personID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate parses and verifies a token, returning its claims.
func (s *JWTService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.PersonID == uuid.Nil {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}
