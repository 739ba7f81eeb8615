package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/authz"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/redact"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
)

// AuthMiddleware binds the caller identity from a bearer token.
type AuthMiddleware struct {
	jwtService auth.JWTService
	logger     *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService, logger *slog.Logger) *AuthMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		jwtService: jwtService,
		logger:     logger.With("component", "auth_middleware"),
	}
}

// Authenticate runs once per request. A valid "Authorization: Bearer" token
// binds its identity to the request context; a missing, malformed or
// invalid token leaves the request anonymous and the handlers decide
// whether that is enough.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		log := logger.FromContextOrDefault(r.Context(), m.logger)

		claims, err := m.jwtService.ValidateToken(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				log.Debug("expired bearer token, continuing anonymously")
			case errors.Is(err, auth.ErrInvalidToken):
				log.Debug("invalid bearer token, continuing anonymously")
			default:
				log.Error("failed to validate token", "error", redact.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}

		id := authz.Identity{
			UserID:   claims.UserID,
			Username: claims.Subject,
			Roles:    claims.Roles,
		}
		ctx := shared.WithIdentity(r.Context(), id)
		ctx = logger.WithLogger(ctx, log.With(slog.String("user_id", id.UserID.String())))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
