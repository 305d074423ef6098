package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/vendoria/commerce-service/internal/auth"
	"github.com/vendoria/commerce-service/internal/domain"
	"github.com/vendoria/commerce-service/internal/handlers"
)

// SessionCookieName is the fallback token carrier for browser clients
const SessionCookieName = "session_token"

// AuthGate verifies the caller's token and authorizes the request path
type AuthGate struct {
	tokens *auth.TokenManager
	logger *zap.Logger
}

// NewAuthGate creates the authentication middleware
func NewAuthGate(tokens *auth.TokenManager, logger *zap.Logger) *AuthGate {
	return &AuthGate{
		tokens: tokens,
		logger: logger,
	}
}

// Middleware authenticates the request and checks path authorization. The
// token comes from the Authorization header when present, else the session
// cookie. Missing token → 401; valid token without a matching permission →
// 403.
func (g *AuthGate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				token = cookie.Value
			}
		}
		if token == "" {
			handlers.RespondError(w, http.StatusUnauthorized, domain.ErrAuthMissing)
			return
		}

		claims, err := g.tokens.Verify(token)
		if err != nil {
			g.logger.Debug("Token verification failed", zap.Error(err))
			handlers.RespondError(w, http.StatusUnauthorized, domain.ErrAuthInvalid)
			return
		}

		if !auth.Authorize(claims, r.URL.Path) {
			g.logger.Warn("Request denied by permissions",
				zap.String("subject", claims.Subject),
				zap.String("role", claims.Role),
				zap.String("path", r.URL.Path),
			)
			handlers.RespondError(w, http.StatusForbidden, domain.ErrAuthForbidden)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
