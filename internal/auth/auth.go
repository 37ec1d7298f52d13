package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminUser is the single back-office account. There is no user table; the
// credentials come from configuration.
type AdminUser struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Claims represents JWT token claims
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      AdminUser `json:"user"`
}

type contextKey string

const userContextKey contextKey = "auth_user"

// ContextWithUser stores the authenticated admin on the request context.
func ContextWithUser(ctx context.Context, user *AdminUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext retrieves the authenticated admin from the context.
func UserFromContext(ctx context.Context) (*AdminUser, bool) {
	user, ok := ctx.Value(userContextKey).(*AdminUser)
	return user, ok
}
