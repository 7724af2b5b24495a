package learning

import (
	"context"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"time"
)

const (
	DefaultPathTitle  = "Personalized Learning Path"
	DifficultyDefault = "intermediate"

	// MaxListedPaths caps GET /api/learning/paths.
	MaxListedPaths = 100
)

type LearningPath struct {
	ID                string                      `json:"id" gorm:"primaryKey;size:36"`
	UserID            string                      `json:"user_id" gorm:"index;not null;size:36"`
	Title             string                      `json:"title" gorm:"size:255;not null"`
	Description       string                      `json:"description" gorm:"type:text"`
	Difficulty        string                      `json:"difficulty" gorm:"size:32;not null"`
	Modules           datatypes.JSON              `json:"modules"` // модули в том виде, в каком их вернула модель
	EstimatedDuration int                         `json:"estimated_duration"`
	Prerequisites     datatypes.JSONSlice[string] `json:"prerequisites" gorm:"not null"`
	CreatedAt         time.Time                   `json:"created_at" gorm:"index"`
	IsActive          bool                        `json:"is_active" gorm:"not null"`
}

// GeneratedPath is the shape the language model is asked to return.
// Every field is optional.
type GeneratedPath struct {
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	Difficulty        string         `json:"difficulty"`
	Modules           datatypes.JSON `json:"modules"`
	EstimatedDuration FlexibleInt    `json:"estimated_duration"`
	Prerequisites     []string       `json:"prerequisites"`
}

// NewLearningPath fills defaults for everything the model left out.
func NewLearningPath(id, userID string, g GeneratedPath, now time.Time) *LearningPath {
	p := &LearningPath{
		ID:                id,
		UserID:            userID,
		Title:             g.Title,
		Description:       g.Description,
		Difficulty:        g.Difficulty,
		Modules:           g.Modules,
		EstimatedDuration: int(g.EstimatedDuration),
		Prerequisites:     datatypes.JSONSlice[string](g.Prerequisites),
		CreatedAt:         now,
		IsActive:          true,
	}
	if p.Title == "" {
		p.Title = DefaultPathTitle
	}
	if p.Difficulty == "" {
		p.Difficulty = DifficultyDefault
	}
	if len(p.Modules) == 0 || string(p.Modules) == "null" {
		p.Modules = datatypes.JSON("[]")
	}
	if p.Prerequisites == nil {
		p.Prerequisites = datatypes.JSONSlice[string]{}
	}
	return p
}

func CreatePath(ctx context.Context, db *gorm.DB, p *LearningPath) error {
	return db.WithContext(ctx).Create(p).Error
}

// ListPaths returns the user's paths, newest first.
func ListPaths(ctx context.Context, db *gorm.DB, userID string, limit int) ([]LearningPath, error) {
	if limit <= 0 || limit > MaxListedPaths {
		limit = MaxListedPaths
	}
	paths := []LearningPath{}
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&paths).Error
	return paths, err
}

func CountPaths(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&LearningPath{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
