package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/reloop/portal/internal/backend"
	"github.com/reloop/portal/internal/config"
	customerrors "github.com/reloop/portal/internal/customErrors"
)

// SessionValidator turns a session token into its claims.
type SessionValidator interface {
	Validate(token string) (*config.Claims, error)
}

type sessionKey struct{}

func WithSession(ctx context.Context, claims *config.Claims) context.Context {
	return context.WithValue(ctx, sessionKey{}, claims)
}

func SessionFromContext(ctx context.Context) (*config.Claims, bool) {
	claims, ok := ctx.Value(sessionKey{}).(*config.Claims)
	return claims, ok
}

// RequireSession authenticates the request from the session cookie, or from an
// Authorization Bearer header for non-browser clients, and enforces the user type.
func RequireSession(auth SessionValidator, cookieName string, userType backend.UserType) func(HandlerFunc) HandlerFunc {
	return func(next HandlerFunc) HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) error {
			token := SessionToken(r, cookieName)
			if token == "" {
				return customerrors.ErrUnauthorized
			}

			claims, err := auth.Validate(token)
			if err != nil {
				return err
			}
			if claims.UserType != string(userType) {
				return customerrors.ErrForbidden
			}

			return next(w, r.WithContext(WithSession(r.Context(), claims)))
		}
	}
}

func SessionToken(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
