package authentication

import (
	"edu-platform-backend/controllers/render"
	"errors"
	"go.uber.org/zap"
	"net/http"
)

// ChangePassword POST /api/user/password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(w, r)
	if !ok {
		return
	}

	var passwordChangeRequest struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := render.DecodeJSON(w, r, &passwordChangeRequest); err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.service.ChangePassword(r.Context(), user, passwordChangeRequest.CurrentPassword, passwordChangeRequest.NewPassword)
	switch {
	case err == nil:
		render.JSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
	case errors.Is(err, ErrInvalidCredentials):
		render.Error(w, http.StatusUnauthorized, "Current password is incorrect")
	case errors.Is(err, ErrInvalidPassword), errors.Is(err, ErrPasswordTooLong):
		render.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error("change password", zap.String("user_id", user.ID), zap.Error(err))
		render.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
