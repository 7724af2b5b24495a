package learning

import (
	"context"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"time"
)

const (
	PassingScore = 70

	DefaultQuestionCount = 5
	MaxQuestionCount     = 20
)

type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// Valid reports whether q has four options and a correct index in range.
func (q Question) Valid() bool {
	return q.Question != "" && len(q.Options) == 4 && q.CorrectAnswer >= 0 && q.CorrectAnswer < len(q.Options)
}

type Quiz struct {
	ID           string                        `json:"id" gorm:"primaryKey;size:36"`
	UserID       string                        `json:"user_id" gorm:"index;not null;size:36"`
	Topic        string                        `json:"topic" gorm:"size:255;not null"`
	Difficulty   string                        `json:"difficulty" gorm:"size:32;not null"`
	Questions    datatypes.JSONSlice[Question] `json:"questions" gorm:"not null"`
	PassingScore int                           `json:"passing_score" gorm:"not null"`
	TimeLimit    *int                          `json:"time_limit"` // минуты, nil = без ограничения
	CreatedAt    time.Time                     `json:"created_at" gorm:"index"`
	IsActive     bool                          `json:"is_active" gorm:"not null"`
}

// NewQuiz keeps only well-formed questions.
func NewQuiz(id, userID, topic, difficulty string, questions []Question, now time.Time) *Quiz {
	if difficulty == "" {
		difficulty = DifficultyDefault
	}
	kept := datatypes.JSONSlice[Question]{}
	for _, q := range questions {
		if q.Valid() {
			kept = append(kept, q)
		}
	}
	return &Quiz{
		ID:           id,
		UserID:       userID,
		Topic:        topic,
		Difficulty:   difficulty,
		Questions:    kept,
		PassingScore: PassingScore,
		CreatedAt:    now,
		IsActive:     true,
	}
}

func CreateQuiz(ctx context.Context, db *gorm.DB, q *Quiz) error {
	return db.WithContext(ctx).Create(q).Error
}

// RecentQuizzes returns up to limit quizzes of the user, newest first.
func RecentQuizzes(ctx context.Context, db *gorm.DB, userID string, limit int) ([]Quiz, error) {
	quizzes := []Quiz{}
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&quizzes).Error
	return quizzes, err
}
