package authentication

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"edu-platform-backend/controllers/render"
	"encoding/base64"
	"errors"
	"fmt"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
	"net/http"
	"strings"
	"time"
)

const (
	oauthSessionName = "oauth-state"
	oauthStateKey    = "state"
)

// IDTokenValidator is satisfied by *idtoken.Validator.
type IDTokenValidator interface {
	Validate(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error)
}

// ExternalIdentity is what a verified Google ID token tells us about the user.
type ExternalIdentity struct {
	Email string
	Name  string
}

// ExternalVerifier validates federated identity assertions.
type ExternalVerifier interface {
	VerifyExternalToken(ctx context.Context, token string) (ExternalIdentity, error)
}

// GoogleVerifier checks Google ID tokens against Google's published keys
// with the configured OAuth client ID as audience.
type GoogleVerifier struct {
	validator IDTokenValidator
	clientID  string
	timeout   time.Duration
}

func NewGoogleVerifier(validator IDTokenValidator, clientID string, timeout time.Duration) *GoogleVerifier {
	return &GoogleVerifier{validator: validator, clientID: clientID, timeout: timeout}
}

func (g *GoogleVerifier) VerifyExternalToken(ctx context.Context, token string) (ExternalIdentity, error) {
	if token == "" || g.clientID == "" {
		return ExternalIdentity{}, ErrInvalidExternalToken
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	payload, err := g.validator.Validate(ctx, token, g.clientID)
	if err != nil {
		return ExternalIdentity{}, fmt.Errorf("%w: %v", ErrInvalidExternalToken, err)
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return ExternalIdentity{}, ErrInvalidExternalToken
	}
	name, _ := payload.Claims["name"].(string)
	if name == "" {
		given, _ := payload.Claims["given_name"].(string)
		family, _ := payload.Claims["family_name"].(string)
		name = strings.TrimSpace(given + " " + family)
	}
	return ExternalIdentity{Email: email, Name: name}, nil
}

// GoogleOAuth drives the browser code flow. The state parameter lives in a
// signed cookie between the redirect and the callback; API requests stay
// stateless.
type GoogleOAuth struct {
	config     *oauth2.Config
	store      sessions.Store
	service    *Service
	httpClient *http.Client
	log        *zap.Logger
}

func NewGoogleOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		RedirectURL:  redirectURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       []string{"openid", "https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
		Endpoint:     google.Endpoint,
	}
}

func NewGoogleOAuth(config *oauth2.Config, store sessions.Store, service *Service, timeout time.Duration, log *zap.Logger) *GoogleOAuth {
	return &GoogleOAuth{
		config:     config,
		store:      store,
		service:    service,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// NewCookieStore returns the session store used for the OAuth state.
func NewCookieStore(secret []byte, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/api/auth/google",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// HandleGoogleLogin GET /api/auth/google/login
func (g *GoogleOAuth) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		g.log.Error("generate oauth state", zap.Error(err))
		render.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	session, _ := g.store.Get(r, oauthSessionName)
	session.Values[oauthStateKey] = state
	if err := session.Save(r, w); err != nil {
		g.log.Error("save oauth session", zap.Error(err))
		render.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	http.Redirect(w, r, g.config.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback GET /api/auth/google/callback
func (g *GoogleOAuth) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	session, err := g.store.Get(r, oauthSessionName)
	if err != nil {
		render.Error(w, http.StatusBadRequest, "Invalid OAuth state")
		return
	}
	expected, _ := session.Values[oauthStateKey].(string)
	got := r.URL.Query().Get("state")
	if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(got)) != 1 {
		render.Error(w, http.StatusBadRequest, "Invalid OAuth state")
		return
	}
	delete(session.Values, oauthStateKey)
	session.Options.MaxAge = -1
	_ = session.Save(r, w)

	code := r.URL.Query().Get("code")
	if code == "" {
		render.Error(w, http.StatusBadRequest, "Missing authorization code")
		return
	}

	ctx := context.WithValue(r.Context(), oauth2.HTTPClient, g.httpClient)
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		g.log.Warn("exchange google code", zap.Error(err))
		render.Error(w, http.StatusBadRequest, "Invalid Google token")
		return
	}
	rawIDToken, _ := token.Extra("id_token").(string)

	result, err := g.service.LoginExternal(r.Context(), rawIDToken)
	if err != nil {
		if errors.Is(err, ErrInvalidExternalToken) {
			render.Error(w, http.StatusBadRequest, "Invalid Google token")
			return
		}
		g.log.Error("google callback login", zap.Error(err))
		render.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	render.JSON(w, http.StatusOK, newAuthResponse(result))
}

func randomState() (string, error) {
	var b [24]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}
