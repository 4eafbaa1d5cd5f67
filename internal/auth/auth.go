package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Principal is the authenticated employee a request acts as.
type Principal struct {
	EmployeeID  int64  `json:"employee_id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	GroupID     *int64 `json:"group_id,omitempty"`
	GroupName   string `json:"group_name,omitempty"`
	IsSuperuser bool   `json:"is_superuser"`
}

// Credentials is what login needs from storage.
type Credentials struct {
	EmployeeID   int64
	Email        string
	PasswordHash string
}

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims represents JWT token claims
type Claims struct {
	EmployeeID int64     `json:"employee_id"`
	Email      string    `json:"email"`
	Type       TokenType `json:"typ"`
	jwt.RegisteredClaims
}

type AuthTokens struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	TokenType    string     `json:"token_type"`
	ExpiresAt    time.Time  `json:"expires_at"`
	Employee     *Principal `json:"employee,omitempty"`
}

// TokenGenerator creates and validates signed tokens.
type TokenGenerator interface {
	GenerateAccessToken(employeeID int64, email string) (token string, expiresAt time.Time, err error)
	GenerateRefreshToken(employeeID int64, email string) (token string, err error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

type ctxKey struct{}

func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(*Principal)
	return p, ok && p != nil
}
