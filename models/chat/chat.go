package chat

import (
	"context"
	"gorm.io/gorm"
	"time"
)

type ChatLog struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    string    `json:"user_id" gorm:"index;not null;size:36"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	Response  string    `json:"response" gorm:"type:text;not null"`
	Context   *string   `json:"context"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func Create(ctx context.Context, db *gorm.DB, log *ChatLog) error {
	return db.WithContext(ctx).Create(log).Error
}

// Recent returns up to limit chat logs of the user, newest first.
func Recent(ctx context.Context, db *gorm.DB, userID string, limit int) ([]ChatLog, error) {
	logs := []ChatLog{}
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
