package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/api/shared"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/phrazzld/kanban-api/internal/redact"
	"github.com/phrazzld/kanban-api/internal/service/auth"
	"github.com/phrazzld/kanban-api/internal/store"
)

// UserGetter resolves the subject of a token.
type UserGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	jwtService  auth.JWTService
	users       UserGetter
	revocations auth.RevocationList
	logger      *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
// A nil revocation list disables revocation checks.
func NewAuthMiddleware(
	jwtService auth.JWTService,
	users UserGetter,
	revocations auth.RevocationList,
	logger *slog.Logger,
) *AuthMiddleware {
	if revocations == nil {
		revocations = auth.NoopRevocationList{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		jwtService:  jwtService,
		users:       users,
		revocations: revocations,
		logger:      logger.With("component", "auth_middleware"),
	}
}

// errAccountDisabled marks an authenticated request from a disabled account.
var errAccountDisabled = errors.New("account disabled")

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", auth.ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", auth.ErrInvalidToken
	}
	return token, nil
}

// resolve validates the request's token and loads its user.
func (m *AuthMiddleware) resolve(r *http.Request) (*domain.User, *auth.Claims, error) {
	ctx := r.Context()

	token, err := bearerToken(r)
	if err != nil {
		return nil, nil, err
	}
	claims, err := m.jwtService.ValidateToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	revoked, err := m.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, err
	}
	if revoked {
		return nil, nil, auth.ErrRevokedToken
	}

	user, err := m.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, nil, auth.ErrInvalidToken
		}
		return nil, nil, err
	}
	if !user.IsActive {
		return user, claims, errAccountDisabled
	}
	return user, claims, nil
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	shared.RespondWithError(w, r, http.StatusUnauthorized, message)
}

// Authenticate requires a valid bearer token for an active user and puts
// the user and the token claims in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContextOrDefault(r.Context(), m.logger)

		user, claims, err := m.resolve(r)
		switch {
		case err == nil:
		case errors.Is(err, errAccountDisabled):
			log.Info("request from disabled account", "user_id", user.ID)
			shared.RespondWithError(w, r, http.StatusForbidden, "Account is disabled")
			return
		case errors.Is(err, auth.ErrMissingToken):
			unauthorized(w, r, "Authorization header required")
			return
		case errors.Is(err, auth.ErrExpiredToken):
			unauthorized(w, r, "Token expired")
			return
		case errors.Is(err, auth.ErrRevokedToken):
			unauthorized(w, r, "Token revoked")
			return
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenNotYetValid):
			unauthorized(w, r, "Could not validate credentials")
			return
		default:
			log.Error("failed to authenticate request", "error", redact.Error(err))
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			return
		}

		ctx := shared.WithClaims(shared.WithUser(r.Context(), user), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuthenticate behaves like Authenticate when the token resolves
// to an active user. Any failure leaves the request anonymous instead of
// rejecting it.
func (m *AuthMiddleware) OptionalAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, claims, err := m.resolve(r)
		if err != nil {
			if !errors.Is(err, auth.ErrMissingToken) {
				logger.FromContextOrDefault(r.Context(), m.logger).Debug("continuing anonymously",
					"reason", redact.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}
		ctx := shared.WithClaims(shared.WithUser(r.Context(), user), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects requests whose user is not an admin with 403. It
// must run after Authenticate; a request without a user gets 401.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := shared.UserFromContext(r.Context())
		if !ok {
			unauthorized(w, r, "Authentication required")
			return
		}
		if !user.IsAdmin() {
			shared.RespondWithError(w, r, http.StatusForbidden, "Admin privileges required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
