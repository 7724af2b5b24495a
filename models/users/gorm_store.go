package users

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"strings"
	"time"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

func (s *GormStore) FindByID(ctx context.Context, id string) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// Insert relies on the unique index on email, so two concurrent inserts of
// the same address cannot both succeed.
func (s *GormStore) Insert(ctx context.Context, user *User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateIdentity
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *GormStore) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return s.updateColumns(ctx, id, map[string]any{"last_login": at})
}

func (s *GormStore) UpdatePassword(ctx context.Context, id string, hash string) error {
	return s.updateColumns(ctx, id, map[string]any{"password": hash})
}

// RecordProgress reads and rewrites the progress columns under a row lock,
// so concurrent reports for one user are applied one after another.
func (s *GormStore) RecordProgress(ctx context.Context, id string, update ProgressUpdate) (Progress, error) {
	var next Progress
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&user).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		next, err = user.Progress.Apply(update)
		if err != nil {
			return err
		}
		return tx.Model(&User{}).Where("id = ?", id).Updates(map[string]any{
			"progress_current_level":     next.CurrentLevel,
			"progress_total_points":      next.TotalPoints,
			"progress_completed_modules": next.CompletedModules,
		}).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrPointsOverflow) {
			return Progress{}, err
		}
		return Progress{}, fmt.Errorf("record progress for %s: %w", id, err)
	}
	return next, nil
}

func (s *GormStore) SetActive(ctx context.Context, id string, active bool) error {
	return s.updateColumns(ctx, id, map[string]any{"is_active": active})
}

func (s *GormStore) updateColumns(ctx context.Context, id string, values map[string]any) error {
	res := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return fmt.Errorf("update user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
