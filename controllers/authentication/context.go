package authentication

import (
	"context"
	"edu-platform-backend/models/users"
	"net/http"
)

type ctxKey string

const userContextKey ctxKey = "edu.auth.user"

func WithUser(ctx context.Context, u *users.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// UserFromContext returns the user resolved by AuthMiddleware.
func UserFromContext(ctx context.Context) (*users.User, bool) {
	u, ok := ctx.Value(userContextKey).(*users.User)
	return u, ok && u != nil
}

// CurrentUser returns the authenticated user or writes a 401 and returns false.
func CurrentUser(w http.ResponseWriter, r *http.Request) (*users.User, bool) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		unauthorized(w)
	}
	return u, ok
}
