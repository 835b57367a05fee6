package auth

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

type ctxKey string

const userKey ctxKey = "currentUser"

// WithUser stores the authenticated user on the context.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext retrieves the authenticated user placed by the auth
// middleware. The boolean reports whether a user was present.
func UserFromContext(ctx context.Context) (models.User, bool) {
	if ctx == nil {
		return models.User{}, false
	}
	user, ok := ctx.Value(userKey).(models.User)
	return user, ok
}
