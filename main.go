package main

import (
	"context"
	"edu-platform-backend/config"
	"edu-platform-backend/controllers"
	"edu-platform-backend/controllers/authentication"
	"edu-platform-backend/controllers/dashboard"
	"edu-platform-backend/controllers/discussion"
	"edu-platform-backend/controllers/learningPaths"
	"edu-platform-backend/controllers/mentors"
	"edu-platform-backend/models/users"
	"edu-platform-backend/services"
	"errors"
	"fmt"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(log *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Инициализируем базу данных
	db, err := config.OpenDB(ctx, cfg)
	if err != nil {
		return err
	}
	if err := config.Migrate(db); err != nil {
		return err
	}
	log.Info("database ready", zap.String("driver", cfg.DBDriver))

	store := users.NewGormStore(db)
	tokens := authentication.NewTokenManager([]byte(cfg.JWTSecret), store)

	validator, err := idtoken.NewValidator(ctx, option.WithHTTPClient(&http.Client{Timeout: cfg.IDPTimeout}))
	if err != nil {
		return fmt.Errorf("google id token validator: %w", err)
	}
	if !cfg.GoogleEnabled() {
		log.Warn("GOOGLE_CLIENT_ID is not set, Google sign-in will reject every token")
	}
	verifier := authentication.NewGoogleVerifier(validator, cfg.GoogleClientID, cfg.IDPTimeout)

	authService := authentication.NewService(
		store,
		authentication.NewPasswordHasher(cfg.BcryptCost),
		tokens,
		verifier,
		log.Named("auth"),
		authentication.WithTokenTTL(cfg.AccessTokenTTL),
	)

	var googleOAuth *authentication.GoogleOAuth
	if cfg.GoogleEnabled() && cfg.GoogleClientSecret != "" {
		secret := []byte(cfg.SessionSecret)
		if len(secret) == 0 {
			secret = securecookie.GenerateRandomKey(32)
			log.Warn("SESSION_SECRET is not set, using a random key for this process")
		}
		googleOAuth = authentication.NewGoogleOAuth(
			authentication.NewGoogleOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL),
			authentication.NewCookieStore(secret, cfg.CookieSecure),
			authService,
			cfg.IDPTimeout,
			log.Named("oauth"),
		)
	}

	tutor := services.NewTutor(services.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.AITimeout))

	router := controllers.NewRouter(controllers.Deps{
		DB:          db,
		Tokens:      tokens,
		Auth:        authentication.NewHandler(authService, log.Named("auth")),
		GoogleOAuth: googleOAuth,
		Learning:    learningPaths.NewHandler(db, tutor, log.Named("learning")),
		Mentors:     mentors.NewHandler(db, tutor, log.Named("mentor")),
		Dashboard:   dashboard.NewHandler(db, log.Named("dashboard")),
		Discussion:  discussion.NewHandler(db, log.Named("forum")),
		CORSOrigins: cfg.CORSOrigins,
		Log:         log.Named("http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.AITimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		// Запускаем сервер
		log.Info("server started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
