package mentors

import (
	"context"
	"edu-platform-backend/controllers/authentication"
	"edu-platform-backend/controllers/render"
	"edu-platform-backend/models/chat"
	"edu-platform-backend/services"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"net/http"
	"strings"
	"time"
)

// Mentor answers a learner's message given what is known about them.
type Mentor interface {
	MentorReply(ctx context.Context, mc services.MentorContext, message string) (string, error)
}

type Handler struct {
	db     *gorm.DB
	mentor Mentor
	log    *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewHandler(db *gorm.DB, mentor Mentor, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		db:     db,
		mentor: mentor,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

type chatRequest struct {
	Message string  `json:"message"`
	Context *string `json:"context"`
}

type chatResponse struct {
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// Chat POST /api/chat/mentor
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	user, ok := authentication.CurrentUser(w, r)
	if !ok {
		return
	}

	var req chatRequest
	if err := render.DecodeJSON(w, r, &req); err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		render.Error(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := h.mentor.MentorReply(r.Context(), services.MentorContext{
		CurrentLevel:     user.Progress.CurrentLevel,
		CompletedModules: len(user.Progress.CompletedModules),
		TotalPoints:      user.Progress.TotalPoints,
		Preferences:      user.LearningPreferences,
	}, req.Message)
	if err != nil {
		h.log.Error("mentor chat", zap.String("user_id", user.ID), zap.Error(err))
		render.Error(w, http.StatusInternalServerError, "Error with mentor chat: "+err.Error())
		return
	}

	now := h.now()
	entry := &chat.ChatLog{
		ID:        h.newID(),
		UserID:    user.ID,
		Message:   req.Message,
		Response:  reply,
		Context:   req.Context,
		CreatedAt: now,
	}
	if err := chat.Create(r.Context(), h.db, entry); err != nil {
		h.log.Error("save chat log", zap.String("user_id", user.ID), zap.Error(err))
		render.Error(w, http.StatusInternalServerError, "Error with mentor chat: "+err.Error())
		return
	}

	render.JSON(w, http.StatusOK, chatResponse{Response: reply, Timestamp: now})
}
