package service_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bankmetrics/internal/config"
	"bankmetrics/internal/domain"
	"bankmetrics/internal/service"
)

func TestAuthService_IssueAndValidate(t *testing.T) {
	svc := service.NewAuthService(config.AuthConfig{JWTSecret: "s3cret", Issuer: "bankmetrics"})

	token, err := svc.IssueToken("scheduler", time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "scheduler", claims.Subject)
	assert.Equal(t, "bankmetrics", claims.Issuer)
}

func TestAuthService_ValidateToken_Expired(t *testing.T) {
	svc := service.NewAuthService(config.AuthConfig{JWTSecret: "s3cret"})

	token, err := svc.IssueToken("scheduler", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_ValidateToken_WrongSecret(t *testing.T) {
	issuer := service.NewAuthService(config.AuthConfig{JWTSecret: "one"})
	verifier := service.NewAuthService(config.AuthConfig{JWTSecret: "two"})

	token, err := issuer.IssueToken("scheduler", time.Hour)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_ValidateToken_WrongAudience(t *testing.T) {
	svc := service.NewAuthService(config.AuthConfig{JWTSecret: "s3cret"})
	claims := jwt.RegisteredClaims{
		Subject:   "x",
		Audience:  jwt.ClaimStrings{"refresh"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_ValidateToken_WrongIssuer(t *testing.T) {
	issuer := service.NewAuthService(config.AuthConfig{JWTSecret: "s3cret", Issuer: "other"})
	verifier := service.NewAuthService(config.AuthConfig{JWTSecret: "s3cret", Issuer: "bankmetrics"})

	token, err := issuer.IssueToken("x", time.Hour)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_IssueToken_NoSecret(t *testing.T) {
	svc := service.NewAuthService(config.AuthConfig{})

	_, err := svc.IssueToken("x", time.Hour)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
