package authentication

import (
	"context"
	"edu-platform-backend/controllers/render"
	"edu-platform-backend/models/users"
	"errors"
	"go.uber.org/zap"
	"net/http"
	"strings"
)

// TokenVerifier resolves a bearer token to a live user.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*users.User, error)
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	render.Error(w, http.StatusUnauthorized, "Could not validate credentials")
}

// AuthMiddleware rejects requests without a valid bearer token and puts the
// resolved user into the request context. Every failure looks the same.
func AuthMiddleware(verifier TokenVerifier, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}

			user, err := verifier.Verify(r.Context(), token)
			if err != nil {
				if errors.Is(err, ErrInvalidCredentials) {
					unauthorized(w)
					return
				}
				log.Error("verify access token", zap.Error(err))
				render.Error(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
