package authentication

import (
	"edu-platform-backend/controllers/render"
	"edu-platform-backend/models/users"
	"errors"
	"go.uber.org/zap"
	"net/http"
	"time"
)

type profileResponse struct {
	ID                  string         `json:"id"`
	Email               string         `json:"email"`
	FullName            string         `json:"full_name"`
	LearningPreferences map[string]any `json:"learning_preferences"`
	Progress            users.Progress `json:"progress"`
	Badges              []string       `json:"badges"`
	CreatedAt           time.Time      `json:"created_at"`
	LastLogin           *time.Time     `json:"last_login"`
	AuthProvider        string         `json:"auth_provider,omitempty"`
}

// GetProfile GET /api/user/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(w, r)
	if !ok {
		return
	}

	prefs := map[string]any(user.LearningPreferences)
	if prefs == nil {
		prefs = map[string]any{}
	}
	progress := user.Progress
	if progress.CompletedModules == nil {
		progress.CompletedModules = []string{}
	}
	badges := []string(user.Badges)
	if badges == nil {
		badges = []string{}
	}

	render.JSON(w, http.StatusOK, profileResponse{
		ID:                  user.ID,
		Email:               user.Email,
		FullName:            user.FullName,
		LearningPreferences: prefs,
		Progress:            progress,
		Badges:              badges,
		CreatedAt:           user.CreatedAt,
		LastLogin:           user.LastLogin,
		AuthProvider:        user.AuthProvider,
	})
}

// UpdateProgress PUT /api/user/progress
//
// Marks a module completed and adds points. The store applies the report to
// the current stored progress, not to the copy loaded by the auth middleware.
func (h *Handler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(w, r)
	if !ok {
		return
	}

	var in struct {
		CompletedModule string `json:"completed_module"`
		Points          int    `json:"points"`
		CurrentLevel    string `json:"current_level"`
	}
	if err := render.DecodeJSON(w, r, &in); err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Points < 0 {
		render.Error(w, http.StatusBadRequest, "points must not be negative")
		return
	}

	progress, err := h.service.users.RecordProgress(r.Context(), user.ID, users.ProgressUpdate{
		CompletedModule: in.CompletedModule,
		Points:          in.Points,
		CurrentLevel:    in.CurrentLevel,
	})
	if err != nil {
		switch {
		case errors.Is(err, users.ErrNotFound):
			unauthorized(w)
		case errors.Is(err, users.ErrPointsOverflow):
			render.Error(w, http.StatusBadRequest, "points total is too large")
		default:
			h.log.Error("update progress", zap.String("user_id", user.ID), zap.Error(err))
			render.Error(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	render.JSON(w, http.StatusOK, progress)
}
