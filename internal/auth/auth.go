// Package auth resolves the acting user of a request. Identity is asserted by
// the trusted X-User-Id header; guests are identified by X-Cart-Id for their
// cart only.
package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"sobgamecoin/internal/commons"
	"sobgamecoin/internal/domain"
	apperrors "sobgamecoin/internal/errors"
)

const (
	HeaderUserID = "X-User-Id"
	HeaderCartID = "X-Cart-Id"
)

type ctxKey struct{}

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

// UserFromContext returns nil for anonymous requests.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(ctxKey{}).(*domain.User)
	return user
}

// Middleware loads the user named by X-User-Id into the request context.
// Requests without the header pass through anonymously; an unknown id is
// refused with 401.
func Middleware(users UserFinder, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				traceID := commons.NewTraceID()
				if _, ok := apperrors.IsNotFoundError(err); ok {
					logger.Warn("unknown user id", zap.String("traceId", traceID), zap.String("userId", userID))
					commons.WriteError(w, traceID, http.StatusUnauthorized, "UNAUTHORIZED", "unknown user", logger)
					return
				}
				commons.HandleError(w, traceID, err, logger.With(zap.String("traceId", traceID)))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// CartOwner returns the key of the cart the request operates on: the user id
// when signed in, otherwise the guest cart id.
func CartOwner(r *http.Request) string {
	if user := UserFromContext(r.Context()); user != nil {
		return user.ID
	}
	cartID := strings.TrimSpace(r.Header.Get(HeaderCartID))
	if cartID == "" {
		return ""
	}
	return "guest-" + cartID
}
