package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/tewff14/searh-your-moments-webapp/internal/infrastructure/auth"
	"github.com/tewff14/searh-your-moments-webapp/pkg/e"
)

type ctxKey int

const userIDKey ctxKey = iota

// AuthMiddleware проверяет Bearer-токен и кладет id пользователя в контекст.
func AuthMiddleware(verifier auth.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				WriteError(w, e.ErrUnauthorized)
				return
			}

			userID, err := verifier.Verify(r.Context(), token)
			if err != nil {
				WriteError(w, e.ErrUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromCtx возвращает id пользователя, положенный AuthMiddleware.
func UserIDFromCtx(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", e.ErrUnauthorized
	}
	return userID, nil
}
