package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakegate/internal/db"
	"lakegate/internal/db/repository"
	"lakegate/internal/domain"
)

const testSecret = "test-secret"

func signToken(t *testing.T, subject string, secret string, ttl time.Duration) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	})
	signed, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func testAuthenticator(t *testing.T) (*Authenticator, *repository.PrincipalRepo, *repository.APIKeyRepo) {
	t.Helper()
	writeDB, _ := db.OpenTestSQLite(t)
	principalRepo := repository.NewPrincipalRepo(writeDB)
	apiKeyRepo := repository.NewAPIKeyRepo(writeDB)

	validator, err := NewHS256Validator(testSecret)
	require.NoError(t, err)
	return NewAuthenticator(validator, apiKeyRepo, principalRepo), principalRepo, apiKeyRepo
}

// echoPrincipal records the principal the middleware injected.
func echoPrincipal(dst *domain.ContextPrincipal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _ := domain.PrincipalFromContext(r.Context())
		*dst = p
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticator_ValidBearerToken(t *testing.T) {
	auth, principalRepo, _ := testAuthenticator(t)
	_, err := principalRepo.Create(context.Background(), &domain.Principal{Name: "root", IsAdmin: true})
	require.NoError(t, err)

	var got domain.ContextPrincipal
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "root", testSecret, time.Hour))
	rec := httptest.NewRecorder()

	auth.Middleware(echoPrincipal(&got)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "root", got.Name)
	assert.True(t, got.IsAdmin)
}

func TestAuthenticator_UnknownSubjectIsNonAdmin(t *testing.T) {
	auth, _, _ := testAuthenticator(t)

	var got domain.ContextPrincipal
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "stranger", testSecret, time.Hour))
	rec := httptest.NewRecorder()

	auth.Middleware(echoPrincipal(&got)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "stranger", got.Name)
	assert.False(t, got.IsAdmin)
}

func TestAuthenticator_RejectsBadTokens(t *testing.T) {
	auth, _, _ := testAuthenticator(t)
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})

	cases := map[string]string{
		"no header":       "",
		"wrong secret":    "Bearer " + signToken(t, "root", "other-secret", time.Hour),
		"expired":         "Bearer " + signToken(t, "root", testSecret, -time.Hour),
		"garbage":         "Bearer not.a.jwt",
		"missing subject": "Bearer " + signToken(t, "", testSecret, time.Hour),
	}
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		auth.Middleware(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json", name)
	}
}

func TestAuthenticator_APIKey(t *testing.T) {
	auth, principalRepo, apiKeyRepo := testAuthenticator(t)
	ctx := context.Background()
	_, err := principalRepo.Create(ctx, &domain.Principal{Name: "pipeline"})
	require.NoError(t, err)
	require.NoError(t, apiKeyRepo.Create(ctx, "pipeline", "sk-live-123"))

	var got domain.ContextPrincipal
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "sk-live-123")
	rec := httptest.NewRecorder()
	auth.Middleware(echoPrincipal(&got)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pipeline", got.Name)

	// An unknown key is a 401, same as a bad token.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "sk-live-999")
	rec = httptest.NewRecorder()
	auth.Middleware(echoPrincipal(&got)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHS256Validator_RejectsUnsignedAlgorithm(t *testing.T) {
	validator, err := NewHS256Validator(testSecret)
	require.NoError(t, err)

	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "root"})
	signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = validator.Validate(context.Background(), signed)
	require.Error(t, err)
}
