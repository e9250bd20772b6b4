package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/folio-dev/folio/internal/metrics"
	"github.com/folio-dev/folio/internal/models"
	"github.com/folio-dev/folio/internal/store"
)

// bcrypt ignores input past 72 bytes, so longer passwords are rejected outright
const maxPasswordBytes = 72

// Credentials is the identifier/secret pair submitted on signup and login
type Credentials struct {
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,max=72"`
}

// LoginResult is returned by a successful Login
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// Service validates credentials, issues session tokens and exposes user CRUD
type Service struct {
	users    store.UserStore
	hasher   PasswordHasher
	tokens   *TokenIssuer
	validate *validator.Validate
	logger   zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewService creates a new auth Service
func NewService(users store.UserStore, hasher PasswordHasher, tokens *TokenIssuer, zlog zerolog.Logger) *Service {
	return &Service{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		validate: validator.New(),
		logger:   zlog,
	}
}

// Signup registers a new user. It does not log the user in.
func (s *Service) Signup(ctx context.Context, email, password string) (*models.User, error) {
	creds, err := s.normalize(email, password)
	if err != nil {
		metrics.SignupsTotal.WithLabelValues(metrics.OutcomeMalformed).Inc()
		return nil, err
	}

	if _, err := s.users.UserByEmail(ctx, creds.Email); err == nil {
		metrics.SignupsTotal.WithLabelValues(metrics.OutcomeDuplicate).Inc()
		return nil, ErrDuplicateIdentifier
	} else if !errors.Is(err, store.ErrNotFound) {
		metrics.SignupsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	passwordHash, err := s.hasher.Hash(creds.Password)
	if err != nil {
		metrics.SignupsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	user := &models.User{
		Email:        creds.Email,
		PasswordHash: passwordHash,
	}

	// The unique index settles signups racing past the lookup above
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			metrics.SignupsTotal.WithLabelValues(metrics.OutcomeDuplicate).Inc()
			return nil, ErrDuplicateIdentifier
		}
		metrics.SignupsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	metrics.SignupsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User signed up")

	return user, nil
}

// Login checks the credentials and issues a session token
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	creds, err := s.normalize(email, password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeMalformed).Inc()
		return nil, err
	}

	user, err := s.users.UserByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a comparison so unknown emails cost the same as wrong passwords
			_, _ = s.hasher.Verify(creds.Password, s.dummyPasswordHash())
			metrics.LoginsTotal.WithLabelValues(metrics.OutcomeNotFound).Inc()
			return nil, ErrNotFound
		}
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := s.hasher.Verify(creds.Password, user.PasswordHash)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}
	if !ok {
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeInvalidCredential).Inc()
		return nil, ErrInvalidCredential
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User logged in")

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

// Authenticate validates a bearer token and confirms its user still exists
func (s *Service) Authenticate(ctx context.Context, token string) (*SessionData, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.UserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	return &SessionData{
		UserID: user.ID,
		Email:  user.Email,
	}, nil
}

// GetUser returns a user by id
func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.UserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return user, err
}

// ListUsers returns all users, newest first
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.ListUsers(ctx)
}

// DeleteUser removes a user by id
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	err := s.users.DeleteUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	s.logger.Info().Str("user_id", id).Msg("User deleted")
	return nil
}

func (s *Service) normalize(email, password string) (Credentials, error) {
	creds := Credentials{
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: password,
	}

	if err := s.validate.Struct(creds); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return creds, fmt.Errorf("%w: %s", ErrMalformedInput, describe(verrs[0]))
		}
		return creds, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	// the max tag counts runes
	if len(creds.Password) > maxPasswordBytes {
		return creds, fmt.Errorf("%w: password must be at most %d bytes", ErrMalformedInput, maxPasswordBytes)
	}

	return creds, nil
}

func (s *Service) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("folio-dummy-password")
		if err != nil {
			s.logger.Warn().Err(err).Msg("Failed to build dummy password hash")
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "max":
		if fe.Field() == "Password" {
			return fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes)
		}
		return field + " is too long"
	default:
		return field + " is invalid"
	}
}
