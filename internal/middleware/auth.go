package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"lakegate/internal/db/repository"
	"lakegate/internal/domain"
)

// Authenticator resolves bearer tokens and API keys to a ContextPrincipal.
// The is_admin flag is loaded from the principal store so downstream
// permission checks see the full identity, not just a name.
type Authenticator struct {
	validator  JWTValidator
	apiKeys    *repository.APIKeyRepo
	principals domain.PrincipalRepository
}

// NewAuthenticator creates an Authenticator. apiKeys may be nil to disable
// API key auth.
func NewAuthenticator(validator JWTValidator, apiKeys *repository.APIKeyRepo, principals domain.PrincipalRepository) *Authenticator {
	return &Authenticator{validator: validator, apiKeys: apiKeys, principals: principals}
}

// Middleware tries a JWT bearer token first, then an API key. Requests that
// present neither (or present invalid credentials) get 401.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			tokenStr := strings.TrimPrefix(auth, "Bearer ")
			if claims, err := a.validator.Validate(r.Context(), tokenStr); err == nil && claims.Subject != "" {
				next.ServeHTTP(w, r.WithContext(a.withPrincipal(r.Context(), claims.Subject)))
				return
			}
		}

		if apiKey := r.Header.Get("X-API-Key"); apiKey != "" && a.apiKeys != nil {
			name, err := a.apiKeys.GetPrincipalNameByHash(r.Context(), repository.HashKey(apiKey))
			if err == nil {
				next.ServeHTTP(w, r.WithContext(a.withPrincipal(r.Context(), name)))
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"code":    http.StatusUnauthorized,
			"message": "unauthorized: provide a valid JWT Bearer token or API key",
		})
	})
}

// withPrincipal loads the stored principal so the context carries is_admin.
// Identities that authenticate but have no metastore row are treated as
// ordinary non-admin principals; default-deny covers the rest.
func (a *Authenticator) withPrincipal(ctx context.Context, name string) context.Context {
	cp := domain.ContextPrincipal{Name: name}
	if p, err := a.principals.GetByName(ctx, name); err == nil {
		cp.IsAdmin = p.IsAdmin
	}
	return domain.WithPrincipal(ctx, cp)
}
