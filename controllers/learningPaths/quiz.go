package learningPaths

import (
	"edu-platform-backend/controllers/authentication"
	"edu-platform-backend/controllers/render"
	"edu-platform-backend/models/learning"
	"fmt"
	"go.uber.org/zap"
	"net/http"
	"strconv"
	"strings"
)

// GenerateQuiz POST /api/assessment/generate-quiz?topic=&difficulty=&num_questions=
func (h *Handler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	user, ok := authentication.CurrentUser(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	topic := strings.TrimSpace(query.Get("topic"))
	if topic == "" {
		render.Error(w, http.StatusBadRequest, "topic is required")
		return
	}
	difficulty := strings.TrimSpace(query.Get("difficulty"))
	if difficulty == "" {
		difficulty = learning.DifficultyDefault
	}
	count := learning.DefaultQuestionCount
	if raw := query.Get("num_questions"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > learning.MaxQuestionCount {
			render.Error(w, http.StatusBadRequest, fmt.Sprintf("num_questions must be between 1 and %d", learning.MaxQuestionCount))
			return
		}
		count = n
	}

	questions, err := h.generator.GenerateQuiz(r.Context(), topic, difficulty, count)
	if err != nil {
		h.log.Error("generate quiz", zap.String("user_id", user.ID), zap.String("topic", topic), zap.Error(err))
		render.Error(w, http.StatusInternalServerError, "Error generating quiz: "+err.Error())
		return
	}

	quiz := learning.NewQuiz(h.newID(), user.ID, topic, difficulty, questions, h.now())
	if len(quiz.Questions) == 0 {
		render.Error(w, http.StatusInternalServerError, "Error generating quiz: no well-formed questions")
		return
	}
	if err := learning.CreateQuiz(r.Context(), h.db, quiz); err != nil {
		h.log.Error("save quiz", zap.String("user_id", user.ID), zap.Error(err))
		render.Error(w, http.StatusInternalServerError, "Error generating quiz: "+err.Error())
		return
	}

	render.JSON(w, http.StatusOK, quiz)
}
