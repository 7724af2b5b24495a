package learningPaths

import (
	"bytes"
	"context"
	"edu-platform-backend/config"
	"edu-platform-backend/controllers/authentication"
	"edu-platform-backend/models/learning"
	"edu-platform-backend/models/users"
	"encoding/json"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type fakeGenerator struct {
	path      learning.GeneratedPath
	questions []learning.Question
	err       error

	level string
	count int
}

func (f *fakeGenerator) GeneratePath(_ context.Context, _ map[string]any, level string) (learning.GeneratedPath, error) {
	f.level = level
	return f.path, f.err
}

func (f *fakeGenerator) GenerateQuiz(_ context.Context, _, _ string, count int) ([]learning.Question, error) {
	f.count = count
	return f.questions, f.err
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := config.OpenDB(context.Background(), &config.Config{
		DBDriver:    config.DriverSQLite,
		DatabaseURL: "file:" + name + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newHandler(t *testing.T, gen *fakeGenerator) (*Handler, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	h := NewHandler(db, gen, zap.NewNop())
	clock := time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC)
	h.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return h, db
}

func asUser(req *http.Request, u *users.User) *http.Request {
	return req.WithContext(authentication.WithUser(req.Context(), u))
}

func testUser() *users.User {
	u := users.NewUser("u1", "a@x.com", "A", map[string]any{"topic": "go"}, time.Now())
	u.Progress.CurrentLevel = "intermediate"
	return u
}

func TestGeneratePath_StoresWithDefaults(t *testing.T) {
	gen := &fakeGenerator{path: learning.GeneratedPath{
		Description: "learn go",
		Modules:     datatypes.JSON(`[{"title":"basics"}]`),
	}}
	h, db := newHandler(t, gen)

	req := asUser(httptest.NewRequest(http.MethodPost, "/api/learning/generate-path", bytes.NewBufferString(`{"goal":"backend"}`)), testUser())
	rec := httptest.NewRecorder()
	h.GeneratePath(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got learning.LearningPath
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, learning.DefaultPathTitle, got.Title)
	assert.Equal(t, learning.DifficultyDefault, got.Difficulty)
	assert.Equal(t, "u1", got.UserID)
	assert.True(t, got.IsActive)
	assert.Equal(t, "intermediate", gen.level)

	n, err := learning.CountPaths(context.Background(), db, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestGeneratePath_GeneratorFailure(t *testing.T) {
	h, db := newHandler(t, &fakeGenerator{err: errors.New("model unavailable")})

	req := asUser(httptest.NewRequest(http.MethodPost, "/api/learning/generate-path", bytes.NewBufferString(`{}`)), testUser())
	rec := httptest.NewRecorder()
	h.GeneratePath(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error generating learning path: model unavailable")
	n, err := learning.CountPaths(context.Background(), db, "u1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGeneratePath_RequiresUser(t *testing.T) {
	h, _ := newHandler(t, &fakeGenerator{})

	rec := httptest.NewRecorder()
	h.GeneratePath(rec, httptest.NewRequest(http.MethodPost, "/api/learning/generate-path", bytes.NewBufferString(`{}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListPaths_NewestFirst(t *testing.T) {
	gen := &fakeGenerator{}
	h, _ := newHandler(t, gen)
	user := testUser()

	for _, title := range []string{"first", "second"} {
		gen.path = learning.GeneratedPath{Title: title}
		rec := httptest.NewRecorder()
		h.GeneratePath(rec, asUser(httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{}`)), user))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ListPaths(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/learning/paths", nil), user))
	require.Equal(t, http.StatusOK, rec.Code)

	var paths []learning.LearningPath
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &paths))
	require.Len(t, paths, 2)
	assert.Equal(t, "second", paths[0].Title)

	rec = httptest.NewRecorder()
	other := users.NewUser("u2", "b@x.com", "B", nil, time.Now())
	h.ListPaths(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/learning/paths", nil), other))
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGenerateQuiz(t *testing.T) {
	gen := &fakeGenerator{questions: []learning.Question{
		{Question: "What is a goroutine?", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 1, Explanation: "b"},
	}}
	h, _ := newHandler(t, gen)

	req := asUser(httptest.NewRequest(http.MethodPost, "/api/assessment/generate-quiz?topic=go&num_questions=3", nil), testUser())
	rec := httptest.NewRecorder()
	h.GenerateQuiz(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var quiz learning.Quiz
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quiz))
	assert.Equal(t, "go", quiz.Topic)
	assert.Equal(t, learning.DifficultyDefault, quiz.Difficulty)
	assert.Equal(t, learning.PassingScore, quiz.PassingScore)
	assert.Len(t, quiz.Questions, 1)
	assert.Equal(t, 3, gen.count)
}

func TestGenerateQuiz_Validation(t *testing.T) {
	h, _ := newHandler(t, &fakeGenerator{})

	for _, q := range []string{"", "?topic=", "?topic=go&num_questions=0", "?topic=go&num_questions=21", "?topic=go&num_questions=many"} {
		rec := httptest.NewRecorder()
		h.GenerateQuiz(rec, asUser(httptest.NewRequest(http.MethodPost, "/api/assessment/generate-quiz"+q, nil), testUser()))
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestGenerateQuiz_Failures(t *testing.T) {
	h, _ := newHandler(t, &fakeGenerator{err: errors.New("timeout")})
	rec := httptest.NewRecorder()
	h.GenerateQuiz(rec, asUser(httptest.NewRequest(http.MethodPost, "/?topic=go", nil), testUser()))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error generating quiz: timeout")

	h, _ = newHandler(t, &fakeGenerator{questions: []learning.Question{{Question: "broken"}}})
	rec = httptest.NewRecorder()
	h.GenerateQuiz(rec, asUser(httptest.NewRequest(http.MethodPost, "/?topic=go", nil), testUser()))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
