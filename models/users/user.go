package users

import (
	"errors"
	"gorm.io/datatypes"
	"math"
	"slices"
	"time"
)

const (
	LevelBeginner  = "beginner"
	ProviderGoogle = "google"
)

// Progress is embedded into the users table with the progress_ column prefix.
type Progress struct {
	CurrentLevel     string                      `json:"current_level" gorm:"size:32;not null"`
	TotalPoints      int                         `json:"total_points" gorm:"not null"`
	CompletedModules datatypes.JSONSlice[string] `json:"completed_modules" gorm:"not null"`
}

var ErrPointsOverflow = errors.New("points would overflow the total")

// ProgressUpdate is one progress report from the client.
type ProgressUpdate struct {
	CompletedModule string
	Points          int
	CurrentLevel    string
}

// Apply returns p with u added. Points must be non-negative and the total
// stays within int range.
func (p Progress) Apply(u ProgressUpdate) (Progress, error) {
	if u.Points < 0 || u.Points > math.MaxInt-p.TotalPoints {
		return p, ErrPointsOverflow
	}
	next := Progress{
		CurrentLevel:     p.CurrentLevel,
		TotalPoints:      p.TotalPoints + u.Points,
		CompletedModules: append(datatypes.JSONSlice[string]{}, p.CompletedModules...),
	}
	if u.CompletedModule != "" && !slices.Contains(next.CompletedModules, u.CompletedModule) {
		next.CompletedModules = append(next.CompletedModules, u.CompletedModule)
	}
	if u.CurrentLevel != "" {
		next.CurrentLevel = u.CurrentLevel
	}
	return next, nil
}

type User struct {
	ID                  string                      `json:"id" gorm:"primaryKey;size:36"`
	Email               string                      `json:"email" gorm:"uniqueIndex;not null;size:255"` // ключ связывания для Google-аккаунтов
	FullName            string                      `json:"full_name" gorm:"size:255"`
	PasswordHash        *string                     `json:"-" gorm:"column:password"` // NULL для аккаунтов, созданных через Google
	LearningPreferences datatypes.JSONMap           `json:"learning_preferences"`
	Progress            Progress                    `json:"progress" gorm:"embedded;embeddedPrefix:progress_"`
	Badges              datatypes.JSONSlice[string] `json:"badges" gorm:"not null"`
	CreatedAt           time.Time                   `json:"created_at"`
	LastLogin           *time.Time                  `json:"last_login"`
	IsActive            bool                        `json:"is_active" gorm:"not null"`
	AuthProvider        string                      `json:"auth_provider,omitempty" gorm:"size:32"`
}

// NewUser returns an active user with empty progress, ready to be inserted.
func NewUser(id, email, fullName string, preferences map[string]any, now time.Time) *User {
	if preferences == nil {
		preferences = map[string]any{}
	}
	return &User{
		ID:                  id,
		Email:               email,
		FullName:            fullName,
		LearningPreferences: datatypes.JSONMap(preferences),
		Progress: Progress{
			CurrentLevel:     LevelBeginner,
			CompletedModules: datatypes.JSONSlice[string]{},
		},
		Badges:    datatypes.JSONSlice[string]{},
		CreatedAt: now,
		IsActive:  true,
	}
}

// HasPassword reports whether the account can log in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// Clone returns a copy that shares no mutable state with u.
func (u *User) Clone() *User {
	c := *u
	if u.PasswordHash != nil {
		h := *u.PasswordHash
		c.PasswordHash = &h
	}
	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}
	if u.LearningPreferences != nil {
		c.LearningPreferences = make(datatypes.JSONMap, len(u.LearningPreferences))
		for k, v := range u.LearningPreferences {
			c.LearningPreferences[k] = v
		}
	}
	c.Progress.CompletedModules = append(datatypes.JSONSlice[string]{}, u.Progress.CompletedModules...)
	c.Badges = append(datatypes.JSONSlice[string]{}, u.Badges...)
	return &c
}
