// Package api provides the HTTP handlers for the lakegate REST API.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lakegate/internal/domain"
	"lakegate/internal/service"
)

// Handler holds the services behind the HTTP surface.
type Handler struct {
	transactions *service.TransactionService
	metrics      *service.MetricsService
	permissions  *service.PermissionService
	tokens       *service.TokenService
	logger       *slog.Logger
}

// NewHandler creates a new Handler with all required service dependencies.
func NewHandler(
	transactions *service.TransactionService,
	metrics *service.MetricsService,
	permissions *service.PermissionService,
	tokens *service.TokenService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		transactions: transactions,
		metrics:      metrics,
		permissions:  permissions,
		tokens:       tokens,
		logger:       logger,
	}
}

func principal(r *http.Request) domain.ContextPrincipal {
	p, _ := domain.PrincipalFromContext(r.Context())
	return p
}

// ListSources handles GET /api/transactions/.
func (h *Handler) ListSources(w http.ResponseWriter, r *http.Request) {
	refs, err := h.transactions.ListSources(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if refs == nil {
		refs = []service.SourceRef{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sources": refs})
}

// FetchParquet handles GET /api/transactions/parquet/{folder_name}/.
func (h *Handler) FetchParquet(w http.ResponseWriter, r *http.Request) {
	h.fetch(w, r, service.SourceRef{Kind: service.KindParquet, Name: chi.URLParam(r, "folder_name")})
}

// FetchWarehouse handles GET /api/transactions/db/{table_name}/.
func (h *Handler) FetchWarehouse(w http.ResponseWriter, r *http.Request) {
	h.fetch(w, r, service.SourceRef{Kind: service.KindWarehouse, Name: chi.URLParam(r, "table_name")})
}

func (h *Handler) fetch(w http.ResponseWriter, r *http.Request, ref service.SourceRef) {
	records, err := h.transactions.Fetch(r.Context(), principal(r), ref, r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []domain.TransactionRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(records),
		"results": records,
	})
}

// RecentSpending handles GET /api/transactions/metrics/recent-spending/.
func (h *Handler) RecentSpending(w http.ResponseWriter, r *http.Request) {
	minutes, err := intParam(r, "minutes", service.DefaultSpendingWindowMinutes)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := h.metrics.RecentSpending(r.Context(), principal(r), r.URL.Query().Get("source"), minutes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// UserSpending handles GET /api/transactions/metrics/user-spending/.
func (h *Handler) UserSpending(w http.ResponseWriter, r *http.Request) {
	result, err := h.metrics.UserSpending(r.Context(), principal(r), r.URL.Query().Get("source"))
	if err != nil {
		writeError(w, err)
		return
	}
	if result == nil {
		result = []domain.UserSpending{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user_spending": result})
}

// TopProducts handles GET /api/transactions/metrics/top-products/.
func (h *Handler) TopProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", service.DefaultTopProductsLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := h.metrics.TopProducts(r.Context(), principal(r), r.URL.Query().Get("source"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if result == nil {
		result = []domain.ProductCount{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"top_products": result})
}

// Login handles POST /api/transactions/auth/login/.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.ErrValidation("invalid request body: %v", err))
		return
	}
	result, err := h.tokens.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":      result.Token,
		"username":   result.UserName,
		"is_admin":   result.IsAdmin,
		"expires_at": result.ExpiresAt,
	})
}

type permissionRequest struct {
	Username   string `json:"username"`
	SourceName string `json:"source_name"`
}

// GrantPermission handles POST /api/transactions/permissions/grant/.
func (h *Handler) GrantPermission(w http.ResponseWriter, r *http.Request) {
	var body permissionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.ErrValidation("invalid request body: %v", err))
		return
	}
	perm, err := h.permissions.Grant(r.Context(), principal(r), body.Username, body.SourceName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":     "permission granted",
		"username":    perm.UserName,
		"source_name": perm.SourceName,
		"granted_by":  perm.GrantedBy,
		"granted_at":  perm.GrantedAt,
	})
}

// RevokePermission handles POST /api/transactions/permissions/revoke/.
func (h *Handler) RevokePermission(w http.ResponseWriter, r *http.Request) {
	var body permissionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.ErrValidation("invalid request body: %v", err))
		return
	}
	if err := h.permissions.Revoke(r.Context(), principal(r), body.Username, body.SourceName); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "permission revoked"})
}

// ListPermissions handles GET /api/transactions/permissions/list/.
// Admins may pass ?username= to inspect another user's grants.
func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.permissions.List(r.Context(), principal(r), r.URL.Query().Get("username"))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]map[string]interface{}, 0, len(perms))
	for _, p := range perms {
		out = append(out, map[string]interface{}{
			"username":    p.UserName,
			"source_name": p.SourceName,
			"granted_by":  p.GrantedBy,
			"granted_at":  p.GrantedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"permissions": out})
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, domain.ErrValidation("invalid value for %s: %q must be a positive integer", name, raw)
	}
	return v, nil
}
