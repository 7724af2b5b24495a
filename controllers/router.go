package controllers

import (
	"edu-platform-backend/controllers/authentication"
	"edu-platform-backend/controllers/dashboard"
	"edu-platform-backend/controllers/discussion"
	"edu-platform-backend/controllers/httpCors"
	"edu-platform-backend/controllers/learningPaths"
	"edu-platform-backend/controllers/mentors"
	"edu-platform-backend/controllers/render"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"net/http"
	"time"
)

const APIVersion = "1.0.0"

// Deps holds everything the HTTP layer is built from. GoogleOAuth may be nil
// when Google sign-in is not configured.
type Deps struct {
	DB          *gorm.DB
	Tokens      authentication.TokenVerifier
	Auth        *authentication.Handler
	GoogleOAuth *authentication.GoogleOAuth
	Learning    *learningPaths.Handler
	Mentors     *mentors.Handler
	Dashboard   *dashboard.Handler
	Discussion  *discussion.Handler
	CORSOrigins []string
	Log         *zap.Logger
}

func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(log))
	r.Use(middleware.Recoverer)
	r.Use(httpCors.CorsSettings(d.CORSOrigins).Handler)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, http.StatusOK, map[string]string{
			"message": "Educational Platform API",
			"version": APIVersion,
		})
	})
	r.Get("/healthz", healthHandler(d.DB))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", d.Auth.Register)
		r.Post("/auth/login", d.Auth.Login)
		r.Post("/auth/google", d.Auth.GoogleAuth)
		if d.GoogleOAuth != nil {
			r.Get("/auth/google/login", d.GoogleOAuth.HandleGoogleLogin)
			r.Get("/auth/google/callback", d.GoogleOAuth.HandleGoogleCallback)
		}
		r.Get("/forum/posts", d.Discussion.ListPosts)

		r.Group(func(r chi.Router) {
			r.Use(authentication.AuthMiddleware(d.Tokens, log))

			r.Get("/user/profile", d.Auth.GetProfile)
			r.Put("/user/progress", d.Auth.UpdateProgress)
			r.Post("/user/password", d.Auth.ChangePassword)

			r.Post("/learning/generate-path", d.Learning.GeneratePath)
			r.Get("/learning/paths", d.Learning.ListPaths)
			r.Post("/assessment/generate-quiz", d.Learning.GenerateQuiz)

			r.Post("/chat/mentor", d.Mentors.Chat)
			r.Get("/dashboard/stats", d.Dashboard.Stats)
			r.Post("/forum/posts", d.Discussion.CreatePost)
		})
	})

	return r
}

func healthHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(r.Context())
		}
		if err != nil {
			render.Error(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		render.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// LoggerMiddleware logs HTTP requests
func LoggerMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
