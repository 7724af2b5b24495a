package learningPaths

import (
	"context"
	"edu-platform-backend/models/learning"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"time"
)

// Generator produces learning content with a language model.
type Generator interface {
	GeneratePath(ctx context.Context, preferences map[string]any, level string) (learning.GeneratedPath, error)
	GenerateQuiz(ctx context.Context, topic, difficulty string, count int) ([]learning.Question, error)
}

type Handler struct {
	db        *gorm.DB
	generator Generator
	log       *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewHandler(db *gorm.DB, generator Generator, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		db:        db,
		generator: generator,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}
