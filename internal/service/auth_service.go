package service

import (
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"bankmetrics/internal/config"
	"bankmetrics/internal/domain"
)

// TokenAudience is the audience of API access tokens.
const TokenAudience = "bankmetrics-api"

// Claims are the JWT claims of an API access token.
type Claims struct {
	jwt.RegisteredClaims
}

// AuthService issues and validates bearer tokens for the HTTP API.
type AuthService interface {
	IssueToken(subject string, ttl time.Duration) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	cfg config.AuthConfig
}

// NewAuthService creates a new AuthService implementation.
func NewAuthService(cfg config.AuthConfig) AuthService {
	return &authService{cfg: cfg}
}

// IssueToken signs an HS256 access token for subject, e.g. an operator or a scheduler.
func (s *authService) IssueToken(subject string, ttl time.Duration) (string, error) {
	if s.cfg.JWTSecret == "" {
		return "", fmt.Errorf("%w: no signing secret configured", domain.ErrInvalidArgument)
	}
	if subject == "" {
		return "", fmt.Errorf("%w: token subject is required", domain.ErrInvalidArgument)
	}

	now := time.Now()
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.New().String(),
		Audience:  jwt.ClaimStrings{TokenAudience},
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return token, nil
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: parsing token: %w", domain.ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	aud, _ := claims.GetAudience()
	if !slices.Contains(aud, TokenAudience) {
		return nil, domain.ErrUnauthorized
	}
	if s.cfg.Issuer != "" && claims.Issuer != s.cfg.Issuer {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
