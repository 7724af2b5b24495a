package learningPaths

import (
	"edu-platform-backend/controllers/authentication"
	"edu-platform-backend/controllers/render"
	"edu-platform-backend/models/learning"
	"go.uber.org/zap"
	"net/http"
)

// GeneratePath POST /api/learning/generate-path
//
// The body is an open map of learning preferences.
func (h *Handler) GeneratePath(w http.ResponseWriter, r *http.Request) {
	user, ok := authentication.CurrentUser(w, r)
	if !ok {
		return
	}

	var preferences map[string]any
	if err := render.DecodeJSON(w, r, &preferences); err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	generated, err := h.generator.GeneratePath(r.Context(), preferences, user.Progress.CurrentLevel)
	if err != nil {
		h.log.Error("generate learning path", zap.String("user_id", user.ID), zap.Error(err))
		render.Error(w, http.StatusInternalServerError, "Error generating learning path: "+err.Error())
		return
	}

	path := learning.NewLearningPath(h.newID(), user.ID, generated, h.now())
	if err := learning.CreatePath(r.Context(), h.db, path); err != nil {
		h.log.Error("save learning path", zap.String("user_id", user.ID), zap.Error(err))
		render.Error(w, http.StatusInternalServerError, "Error generating learning path: "+err.Error())
		return
	}

	render.JSON(w, http.StatusOK, path)
}

// ListPaths GET /api/learning/paths
func (h *Handler) ListPaths(w http.ResponseWriter, r *http.Request) {
	user, ok := authentication.CurrentUser(w, r)
	if !ok {
		return
	}

	paths, err := learning.ListPaths(r.Context(), h.db, user.ID, learning.MaxListedPaths)
	if err != nil {
		h.log.Error("list learning paths", zap.String("user_id", user.ID), zap.Error(err))
		render.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	render.JSON(w, http.StatusOK, paths)
}
