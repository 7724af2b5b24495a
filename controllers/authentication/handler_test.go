package authentication

import (
	"bytes"
	"context"
	"edu-platform-backend/models/users"
	"encoding/json"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func newTestRouter(t *testing.T) (http.Handler, *serviceFixture) {
	t.Helper()
	f := newServiceFixture(t, users.NewMemoryStore())
	h := NewHandler(f.svc, zap.NewNop())

	r := chi.NewRouter()
	r.Post("/api/auth/register", h.Register)
	r.Post("/api/auth/login", h.Login)
	r.Post("/api/auth/google", h.GoogleAuth)
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(f.tokens, zap.NewNop()))
		r.Get("/api/user/profile", h.GetProfile)
		r.Put("/api/user/progress", h.UpdateProgress)
		r.Post("/api/user/password", h.ChangePassword)
	})
	return r, f
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHTTP_RegisterThenProfile(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "a@x.com", "password": "secret123", "full_name": "A",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "bearer", body["token_type"])
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	user := body["user"].(map[string]any)
	assert.Equal(t, "a@x.com", user["email"])
	assert.Equal(t, map[string]any{}, user["learning_preferences"])

	rec = doJSON(t, router, http.MethodGet, "/api/user/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	profile := decodeBody(t, rec)
	assert.Equal(t, "A", profile["full_name"])
	assert.Equal(t, user["id"], profile["id"])
	assert.Equal(t, []any{}, profile["badges"])
	assert.Nil(t, profile["last_login"])
	progress := profile["progress"].(map[string]any)
	assert.Equal(t, "beginner", progress["current_level"])
}

func TestHTTP_ProfileRejectsBadCredentialsUniformly(t *testing.T) {
	router, f := newTestRouter(t)

	orphan, _, err := f.tokens.Issue("ghost", 0)
	require.NoError(t, err)

	cases := map[string]func(r *http.Request){
		"missing header": func(r *http.Request) {},
		"empty bearer":   func(r *http.Request) { r.Header.Set("Authorization", "Bearer ") },
		"garbage token":  func(r *http.Request) { r.Header.Set("Authorization", "Bearer garbage") },
		"wrong scheme":   func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") },
		"orphan subject": func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+orphan) },
	}
	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
			setup(req)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			assert.Equal(t, "Could not validate credentials", decodeBody(t, rec)["detail"])
		})
	}
}

func TestHTTP_RegisterDuplicateAndLogin(t *testing.T) {
	router, _ := newTestRouter(t)
	reg := map[string]any{"email": "a@x.com", "password": "secret123", "full_name": "A"}

	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/api/auth/register", "", reg).Code)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", reg)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already registered", decodeBody(t, rec)["detail"])

	rec = doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "a@x.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["access_token"])

	rec = doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "a@x.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Incorrect email or password", decodeBody(t, rec)["detail"])
}

func TestHTTP_RegisterBadInput(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]any{"email": "bad", "password": "p", "full_name": "A"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTP_GoogleAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/google", "", map[string]any{"token": "google-ok"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decodeBody(t, rec)["user"].(map[string]any)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/google", "", map[string]any{"token": "google-ok"})
	require.Equal(t, http.StatusOK, rec.Code)
	second := decodeBody(t, rec)["user"].(map[string]any)
	assert.Equal(t, first["id"], second["id"])

	rec = doJSON(t, router, http.MethodPost, "/api/auth/google", "", map[string]any{"token": "forged"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid Google token", decodeBody(t, rec)["detail"])
}

func TestHTTP_UpdateProgressWritesThroughStore(t *testing.T) {
	router, f := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "p@x.com", "password": "secret123", "full_name": "P",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeBody(t, rec)["access_token"].(string)

	for i := 0; i < 2; i++ {
		rec = doJSON(t, router, http.MethodPut, "/api/user/progress", token, map[string]any{
			"completed_module": "intro", "points": 10,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	u, err := f.tokens.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, 20, u.Progress.TotalPoints)
	assert.Equal(t, []string{"intro"}, []string(u.Progress.CompletedModules))

	rec = doJSON(t, router, http.MethodPut, "/api/user/progress", token, map[string]any{"points": -5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTP_UpdateProgressRejectsPointsOverflow(t *testing.T) {
	router, f := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "o@x.com", "password": "secret123", "full_name": "O",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeBody(t, rec)["access_token"].(string)

	rec = doJSON(t, router, http.MethodPut, "/api/user/progress", token, map[string]any{"points": 10})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPut, "/api/user/progress", token, map[string]any{"points": math.MaxInt})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	u, err := f.tokens.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, 10, u.Progress.TotalPoints)
}

func TestHTTP_UpdateProgressConcurrentReports(t *testing.T) {
	router, f := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "cc@x.com", "password": "secret123", "full_name": "CC",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeBody(t, rec)["access_token"].(string)

	const reports = 25
	var wg sync.WaitGroup
	for i := 0; i < reports; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := doJSON(t, router, http.MethodPut, "/api/user/progress", token, map[string]any{"points": 4})
			assert.Equal(t, http.StatusOK, rec.Code)
		}()
	}
	wg.Wait()

	u, err := f.tokens.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, reports*4, u.Progress.TotalPoints)
}

func TestHTTP_ChangePassword(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "c@x.com", "password": "old-pass", "full_name": "C",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeBody(t, rec)["access_token"].(string)

	rec = doJSON(t, router, http.MethodPost, "/api/user/password", token, map[string]any{
		"current_password": "bad", "new_password": "new-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/user/password", token, map[string]any{
		"current_password": "old-pass", "new_password": "new-pass",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "c@x.com", "password": "new-pass"})
	assert.Equal(t, http.StatusOK, rec.Code)
}
