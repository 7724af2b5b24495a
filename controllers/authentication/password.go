package authentication

import (
	"errors"
	"fmt"
	"golang.org/x/crypto/bcrypt"
)

var ErrPasswordTooLong = errors.New("password must not exceed 72 bytes")

// PasswordHasher hashes secrets with bcrypt. The salt is embedded in the hash.
type PasswordHasher struct {
	cost    int
	dummy   []byte
	compare func(hash, password []byte) error
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	// сравнение с этим хэшем уравнивает время ответа для неизвестных email
	dummy, _ := bcrypt.GenerateFromPassword([]byte("edu-platform-dummy-password"), cost)
	return &PasswordHasher{cost: cost, dummy: dummy, compare: bcrypt.CompareHashAndPassword}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether password matches hash. A missing hash never
// matches, so Google-only accounts cannot log in with a password. It still
// runs one bcrypt comparison, so callers can pass nil for unknown accounts
// and take the same time as for a wrong password.
func (h *PasswordHasher) Verify(password string, hash *string) bool {
	if hash == nil || *hash == "" {
		_ = h.compare(h.dummy, []byte(password))
		return false
	}
	return h.compare([]byte(*hash), []byte(password)) == nil
}
