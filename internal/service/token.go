package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"lakegate/internal/domain"
)

// TokenService authenticates username/password pairs and issues HS256 JWTs
// compatible with the auth middleware's validator.
type TokenService struct {
	principals domain.PrincipalRepository
	audit      domain.AuditRepository
	secret     []byte
	ttl        time.Duration
}

// NewTokenService creates a TokenService signing with the given HS256 secret.
func NewTokenService(principals domain.PrincipalRepository, audit domain.AuditRepository, secret []byte, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{principals: principals, audit: audit, secret: secret, ttl: ttl}
}

// LoginResult is the issued token plus the identity it represents.
type LoginResult struct {
	Token     string
	UserName  string
	IsAdmin   bool
	ExpiresAt time.Time
}

// Login verifies the password against the stored bcrypt hash and returns a
// signed token. Bad credentials fail with an AccessDeniedError that does not
// distinguish unknown users from wrong passwords.
func (s *TokenService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrValidation("username and password are required")
	}

	p, err := s.principals.GetByName(ctx, username)
	if err != nil || p.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		_ = s.audit.Insert(ctx, &domain.AuditEntry{
			PrincipalName: username,
			Action:        domain.AuditActionLogin,
			Status:        domain.AuditStatusDenied,
		})
		return nil, domain.ErrAccessDenied("invalid credentials")
	}

	expiresAt := time.Now().Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": p.Name,
		"iat": time.Now().Unix(),
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		PrincipalName: p.Name,
		Action:        domain.AuditActionLogin,
		Status:        domain.AuditStatusAllowed,
	})
	return &LoginResult{
		Token:     signed,
		UserName:  p.Name,
		IsAdmin:   p.IsAdmin,
		ExpiresAt: expiresAt,
	}, nil
}
