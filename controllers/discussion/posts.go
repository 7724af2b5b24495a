package discussion

import (
	"edu-platform-backend/controllers/authentication"
	"edu-platform-backend/controllers/render"
	"edu-platform-backend/models/forum"
	"fmt"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type Handler struct {
	db  *gorm.DB
	log *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewHandler(db *gorm.DB, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		db:    db,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// CreatePost POST /api/forum/posts
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	user, ok := authentication.CurrentUser(w, r)
	if !ok {
		return
	}

	var in struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		Category string `json:"category"`
	}
	if err := render.DecodeJSON(w, r, &in); err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	required := []struct{ name, value string }{
		{"title", in.Title},
		{"content", in.Content},
		{"category", in.Category},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			render.Error(w, http.StatusBadRequest, f.name+" is required")
			return
		}
	}

	post := forum.NewPost(h.newID(), user.ID, user.FullName, in.Title, in.Content, in.Category, h.now())
	if err := forum.Create(r.Context(), h.db, post); err != nil {
		h.log.Error("create forum post", zap.String("user_id", user.ID), zap.Error(err))
		render.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	render.JSON(w, http.StatusOK, post)
}

// ListPosts GET /api/forum/posts?category=&limit=
//
// Public.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := forum.DefaultListLimit
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > forum.MaxListLimit {
			render.Error(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", forum.MaxListLimit))
			return
		}
		limit = n
	}

	posts, err := forum.List(r.Context(), h.db, query.Get("category"), limit)
	if err != nil {
		h.log.Error("list forum posts", zap.Error(err))
		render.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	render.JSON(w, http.StatusOK, posts)
}
