package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropship/backend/internal/infrastructure/config"
)

const testSecret = "test-secret-key-at-least-32-chars"

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{Secret: testSecret, Issuer: "dropship-test"})
}

func signClaims(t *testing.T, method jwt.SigningMethod, key any, claims *Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims(userID uuid.UUID) *Claims {
	now := time.Now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "dropship-test",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:    userID.String(),
		TokenType: TokenTypeAccess,
	}
}

func TestGenerateAndAuthenticate(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(userID, 15*time.Minute)
	require.NoError(t, err)

	got, err := svc.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateAccessToken_Failures(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New()

	expired := validClaims(userID)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	future := validClaims(userID)
	future.NotBefore = jwt.NewNumericDate(time.Now().Add(time.Hour))

	refresh := validClaims(userID)
	refresh.TokenType = "refresh"

	noUser := validClaims(userID)
	noUser.UserID = ""

	otherIssuer := validClaims(userID)
	otherIssuer.Issuer = "someone-else"

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"garbage", "not-a-token", ErrInvalidToken},
		{"expired", signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), expired), ErrExpiredToken},
		{"not yet valid", signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), future), ErrTokenNotYetValid},
		{"wrong secret", signClaims(t, jwt.SigningMethodHS256, []byte("another-secret-another-secret-00"), validClaims(userID)), ErrInvalidToken},
		{"wrong algorithm", signClaims(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims(userID)), ErrInvalidToken},
		{"refresh token", signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), refresh), ErrInvalidTokenType},
		{"missing user", signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), noUser), ErrMissingUserID},
		{"wrong issuer", signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), otherIssuer), ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateAccessToken(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthenticate_MalformedUserID(t *testing.T) {
	svc := newTestJWTService()
	claims := validClaims(uuid.New())
	claims.UserID = "user-42"

	_, err := svc.Authenticate(signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), claims))
	assert.ErrorIs(t, err, ErrInvalidClaims)
}
