package middleware

import (
	"context"
	"net/http"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"

	"github.com/andrewpaige1/eduengage-api/logger"
	"github.com/andrewpaige1/eduengage-api/models"
	"github.com/andrewpaige1/eduengage-api/utils"
)

type contextKey string

const userKey contextKey = "user"

type UserStore interface {
	EnsureUser(ctx context.Context, auth0ID, nickname string) (*models.User, error)
}

// SyncUserMiddleware ensures the Auth0 user exists in the DB and attaches it to context.
func SyncUserMiddleware(users UserStore, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, ok := utils.GetAuth0ID(r)
			if !ok {
				utils.WriteError(w, http.StatusUnauthorized, "unauthorized", "no subject in token")
				return
			}

			nickname := ""
			if claims, ok := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims); ok {
				if custom, ok := claims.CustomClaims.(*CustomClaims); ok && custom != nil {
					nickname = custom.Nickname
				}
			}

			user, err := users.EnsureUser(r.Context(), subject, nickname)
			if err != nil {
				log.Error("failed to sync user", "subject", subject, "error", err)
				utils.WriteError(w, http.StatusInternalServerError, "internal", "failed to sync user")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the user attached by SyncUserMiddleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}
