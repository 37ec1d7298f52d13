package auth

import (
	"net/http"
	"strings"

	"github.com/sierrasilva/backoffice/internal/transport"
)

// Middleware validates the Bearer token and puts the admin profile on the
// request context. Admin routes are mounted behind it.
func Middleware(service ServiceAPI, base *transport.BaseHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				base.WriteError(w, http.StatusUnauthorized, "missing or malformed authorization header")
				return
			}

			claims, err := service.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				base.HandleServiceError(w, err)
				return
			}

			ctx := ContextWithUser(r.Context(), &AdminUser{
				Email: claims.Email,
				Name:  claims.Name,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
