package authentication

import (
	"edu-platform-backend/controllers/render"
	"edu-platform-backend/models/users"
	"errors"
	"go.uber.org/zap"
	"net/http"
	"time"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, log: log}
}

type userSummary struct {
	ID                  string         `json:"id"`
	Email               string         `json:"email"`
	FullName            string         `json:"full_name"`
	LearningPreferences map[string]any `json:"learning_preferences"`
}

type authResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        userSummary `json:"user"`
}

func newAuthResponse(res *Result) authResponse {
	prefs := map[string]any(res.User.LearningPreferences)
	if prefs == nil {
		prefs = map[string]any{}
	}
	return authResponse{
		AccessToken: res.AccessToken,
		TokenType:   "bearer",
		ExpiresAt:   res.ExpiresAt,
		User: userSummary{
			ID:                  res.User.ID,
			Email:               res.User.Email,
			FullName:            res.User.FullName,
			LearningPreferences: prefs,
		},
	}
}

// Register POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email               string         `json:"email"`
		Password            string         `json:"password"`
		FullName            string         `json:"full_name"`
		LearningPreferences map[string]any `json:"learning_preferences"`
	}
	if err := render.DecodeJSON(w, r, &in); err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.service.Register(r.Context(), RegisterInput{
		Email:               in.Email,
		Password:            in.Password,
		FullName:            in.FullName,
		LearningPreferences: in.LearningPreferences,
	})
	if err != nil {
		switch {
		case errors.Is(err, users.ErrDuplicateIdentity):
			render.Error(w, http.StatusBadRequest, "Email already registered")
		case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrInvalidPassword),
			errors.Is(err, ErrInvalidName), errors.Is(err, ErrPasswordTooLong):
			render.Error(w, http.StatusBadRequest, err.Error())
		default:
			h.log.Error("register user", zap.Error(err))
			render.Error(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	render.JSON(w, http.StatusOK, newAuthResponse(res))
}

// Login POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := render.DecodeJSON(w, r, &in); err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.service.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			render.Error(w, http.StatusUnauthorized, "Incorrect email or password")
			return
		}
		h.log.Error("login", zap.Error(err))
		render.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	render.JSON(w, http.StatusOK, newAuthResponse(res))
}

// GoogleAuth POST /api/auth/google
func (h *Handler) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Token string `json:"token"`
	}
	if err := render.DecodeJSON(w, r, &in); err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.service.LoginExternal(r.Context(), in.Token)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidExternalToken):
			h.log.Info("google token rejected", zap.Error(err))
			render.Error(w, http.StatusBadRequest, "Invalid Google token")
		case errors.Is(err, ErrInvalidCredentials):
			unauthorized(w)
		default:
			h.log.Error("google login", zap.Error(err))
			render.Error(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	render.JSON(w, http.StatusOK, newAuthResponse(res))
}
