package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexfin/nexfin/internal/transport/httpapi/middleware"
)

const testSecret = "test-secret-with-at-least-32-characters"

func signToken(t *testing.T, secret string, userID uuid.UUID, expiry time.Duration) string {
	t.Helper()

	claims := middleware.Claims{
		UserID: userID,
		Email:  "user@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	verifier := middleware.NewTokenVerifier(testSecret)
	userID := uuid.New()

	var gotUserID uuid.UUID
	var found bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, found = middleware.GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, userID, time.Hour))
	rec := httptest.NewRecorder()

	middleware.JWTMiddleware(verifier)(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, found)
	assert.Equal(t, userID, gotUserID)
}

func TestJWTMiddleware_Rejections(t *testing.T) {
	verifier := middleware.NewTokenVerifier(testSecret)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	})
	handler := middleware.JWTMiddleware(verifier)(next)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"malformed header", "Token abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + signToken(t, "another-secret-at-least-32-chars-long", uuid.New(), time.Hour)},
		{"expired token", "Bearer " + signToken(t, testSecret, uuid.New(), -time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestVerify_RejectsUnsignedAlgorithm(t *testing.T) {
	verifier := middleware.NewTokenVerifier(testSecret)

	token := jwt.NewWithClaims(jwt.SigningMethodNone, middleware.Claims{UserID: uuid.New()})
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = verifier.Verify(unsigned)
	assert.Error(t, err)
}
