package authentication

import (
	"context"
	"edu-platform-backend/models/users"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"net/mail"
	"strings"
	"time"
)

// LoginTokenTTL is the lifetime requested by the register and login flows.
const LoginTokenTTL = 30 * time.Minute

var (
	ErrInvalidEmail    = errors.New("invalid email")
	ErrInvalidPassword = errors.New("password must not be empty")
	ErrInvalidName     = errors.New("full name must not be empty")
)

// Result is returned by every successful authentication flow.
type Result struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *users.User
}

type RegisterInput struct {
	Email               string
	Password            string
	FullName            string
	LearningPreferences map[string]any
}

type Service struct {
	users    users.Store
	hasher   *PasswordHasher
	tokens   *TokenManager
	external ExternalVerifier

	tokenTTL time.Duration
	now      func() time.Time
	newID    func() string
	log      *zap.Logger
}

type ServiceOption func(*Service)

func WithTokenTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func NewService(store users.Store, hasher *PasswordHasher, tokens *TokenManager, external ExternalVerifier, log *zap.Logger, opts ...ServiceOption) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		users:    store,
		hasher:   hasher,
		tokens:   tokens,
		external: external,
		tokenTTL: LoginTokenTTL,
		now:      time.Now,
		newID:    uuid.NewString,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validateEmail(email string) error {
	if email == "" {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}

// Register creates a password account. The existence check only gives a
// fast answer; the store's unique constraint decides concurrent races.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Result, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, ErrInvalidPassword
	}
	if strings.TrimSpace(in.FullName) == "" {
		return nil, ErrInvalidName
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, users.ErrDuplicateIdentity
	} else if !errors.Is(err, users.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := users.NewUser(s.newID(), in.Email, in.FullName, in.LearningPreferences, s.now().UTC())
	user.PasswordHash = &hash
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("user_id", user.ID))

	return s.issue(user)
}

// Login checks email and password. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			s.hasher.Verify(password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := s.touchLogin(ctx, user); err != nil {
		return nil, err
	}
	return s.issue(user)
}

// LoginExternal signs in with a Google ID token, creating the account on the
// first visit. Email is the only linkage key.
func (s *Service) LoginExternal(ctx context.Context, token string) (*Result, error) {
	identity, err := s.external.VerifyExternalToken(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		if !user.IsActive {
			return nil, ErrInvalidCredentials
		}
		if err := s.touchLogin(ctx, user); err != nil {
			return nil, err
		}
	case errors.Is(err, users.ErrNotFound):
		user, err = s.createExternalUser(ctx, identity)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	return s.issue(user)
}

func (s *Service) createExternalUser(ctx context.Context, identity ExternalIdentity) (*users.User, error) {
	now := s.now().UTC()
	user := users.NewUser(s.newID(), identity.Email, identity.Name, nil, now)
	user.AuthProvider = users.ProviderGoogle
	user.LastLogin = &now

	err := s.users.Insert(ctx, user)
	if err == nil {
		s.log.Info("user created from google sign-in", zap.String("user_id", user.ID))
		return user, nil
	}
	if !errors.Is(err, users.ErrDuplicateIdentity) {
		return nil, err
	}

	// Lost the race to a concurrent sign-in for the same email.
	existing, err := s.users.FindByEmail(ctx, identity.Email)
	if err != nil {
		return nil, err
	}
	if err := s.touchLogin(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// ChangePassword replaces the password after checking the current one.
// Accounts without a password cannot use it.
func (s *Service) ChangePassword(ctx context.Context, user *users.User, current, next string) error {
	if next == "" {
		return ErrInvalidPassword
	}
	if !s.hasher.Verify(current, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

func (s *Service) touchLogin(ctx context.Context, user *users.User) error {
	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	user.LastLogin = &now
	return nil
}

func (s *Service) issue(user *users.User) (*Result, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &Result{AccessToken: token, ExpiresAt: expiresAt, User: user}, nil
}
