package forum

import (
	"context"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"time"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

type Reply struct {
	UserID     string    `json:"user_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type ForumPost struct {
	ID         string                     `json:"id" gorm:"primaryKey;size:36"`
	UserID     string                     `json:"user_id" gorm:"index;not null;size:36"`
	AuthorName string                     `json:"author_name" gorm:"size:255"`
	Title      string                     `json:"title" gorm:"size:255;not null"`
	Content    string                     `json:"content" gorm:"type:text;not null"`
	Category   string                     `json:"category" gorm:"index;size:64;not null"`
	Likes      int                        `json:"likes" gorm:"not null;default:0"`
	Replies    datatypes.JSONSlice[Reply] `json:"replies" gorm:"not null"`
	CreatedAt  time.Time                  `json:"created_at" gorm:"index"`
	IsActive   bool                       `json:"is_active" gorm:"not null"`
}

func NewPost(id, userID, authorName, title, content, category string, now time.Time) *ForumPost {
	return &ForumPost{
		ID:         id,
		UserID:     userID,
		AuthorName: authorName,
		Title:      title,
		Content:    content,
		Category:   category,
		Replies:    datatypes.JSONSlice[Reply]{},
		CreatedAt:  now,
		IsActive:   true,
	}
}

func Create(ctx context.Context, db *gorm.DB, p *ForumPost) error {
	return db.WithContext(ctx).Create(p).Error
}

// List returns active posts, newest first, optionally filtered by category.
func List(ctx context.Context, db *gorm.DB, category string, limit int) ([]ForumPost, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	q := db.WithContext(ctx).Where("is_active = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	posts := []ForumPost{}
	err := q.Order("created_at DESC").Limit(limit).Find(&posts).Error
	return posts, err
}
