package dashboard

import (
	"edu-platform-backend/controllers/authentication"
	"edu-platform-backend/controllers/render"
	"edu-platform-backend/models/chat"
	"edu-platform-backend/models/learning"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"net/http"
)

const recentLimit = 5

type Handler struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewHandler(db *gorm.DB, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{db: db, log: log}
}

type userStats struct {
	TotalPoints      int      `json:"total_points"`
	CurrentLevel     string   `json:"current_level"`
	Badges           []string `json:"badges"`
	CompletionRate   float64  `json:"completion_rate"`
	TotalModules     int64    `json:"total_modules"`
	CompletedModules int      `json:"completed_modules"`
}

type recentActivities struct {
	Chats   []chat.ChatLog  `json:"chats"`
	Quizzes []learning.Quiz `json:"quizzes"`
}

type statsResponse struct {
	UserStats        userStats        `json:"user_stats"`
	RecentActivities recentActivities `json:"recent_activities"`
}

// CompletionRate is completed/total*100, or 0 when the user has no paths.
func CompletionRate(completed int, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

// Stats GET /api/dashboard/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	user, ok := authentication.CurrentUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	total, err := learning.CountPaths(ctx, h.db, user.ID)
	if err != nil {
		h.fail(w, user.ID, "count learning paths", err)
		return
	}
	chats, err := chat.Recent(ctx, h.db, user.ID, recentLimit)
	if err != nil {
		h.fail(w, user.ID, "recent chats", err)
		return
	}
	quizzes, err := learning.RecentQuizzes(ctx, h.db, user.ID, recentLimit)
	if err != nil {
		h.fail(w, user.ID, "recent quizzes", err)
		return
	}

	completed := len(user.Progress.CompletedModules)
	badges := []string(user.Badges)
	if badges == nil {
		badges = []string{}
	}
	level := user.Progress.CurrentLevel
	if level == "" {
		level = "beginner"
	}

	render.JSON(w, http.StatusOK, statsResponse{
		UserStats: userStats{
			TotalPoints:      user.Progress.TotalPoints,
			CurrentLevel:     level,
			Badges:           badges,
			CompletionRate:   CompletionRate(completed, total),
			TotalModules:     total,
			CompletedModules: completed,
		},
		RecentActivities: recentActivities{Chats: chats, Quizzes: quizzes},
	})
}

func (h *Handler) fail(w http.ResponseWriter, userID, what string, err error) {
	h.log.Error(what, zap.String("user_id", userID), zap.Error(err))
	render.Error(w, http.StatusInternalServerError, "Internal server error")
}
