package user

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/debateai/service-api-go/internal/textutil"
	"github.com/debateai/service-api-go/internal/user/entity"
	"github.com/debateai/service-api-go/internal/user/repo"
	"github.com/debateai/service-api-go/pkg/utilities"
)

var (
	ErrMissingFields    = errors.New("all fields are required")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrWeakPassword     = errors.New("password must be 8+ characters, start with a letter, and include alphabets, numbers, and symbols")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrDuplicateEmail   = repo.ErrDuplicateEmail
	ErrNotFound         = errors.New("user not found")
	ErrBadCredentials   = errors.New("invalid email or password")
)

// passwordPattern: 8+ chars, leading letter, then letters/digits/symbols.
var passwordPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9!@#$%^&*]{7,}$`)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Store is the persistence surface the service needs. *repo.UserRepo
// satisfies it; tests substitute fakes.
type Store interface {
	Create(ctx context.Context, u *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	IncrementDebates(ctx context.Context, email string) (int64, error)
	TouchLastLogin(ctx context.Context, email string) error
}

// Service orchestrates account lifecycle flows on top of the store.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Signup validates the registration fields, hashes the password, and
// creates the account. The store's unique email index is the source of
// truth for duplicates.
func (s *Service) Signup(ctx context.Context, name, email, password, confirm string) (entity.Summary, error) {
	name = textutil.Normalize(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" || confirm == "" {
		return entity.Summary{}, ErrMissingFields
	}
	if !emailPattern.MatchString(email) {
		return entity.Summary{}, ErrInvalidEmail
	}
	if password != confirm {
		return entity.Summary{}, ErrPasswordMismatch
	}
	if !passwordPattern.MatchString(password) {
		return entity.Summary{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return entity.Summary{}, err
	}

	u := &entity.User{
		ID:           utilities.NewSnowflakeInt64(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.store.Create(ctx, u); err != nil {
		return entity.Summary{}, err
	}
	return u.Summary(), nil
}

// Authenticate verifies credentials and returns the user summary.
// Not-found and wrong-password collapse into ErrBadCredentials so the
// response does not leak which emails exist.
func (s *Service) Authenticate(ctx context.Context, email, password string) (entity.Summary, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return entity.Summary{}, ErrBadCredentials
	}
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Summary{}, ErrBadCredentials
		}
		return entity.Summary{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return entity.Summary{}, ErrBadCredentials
	}
	// best effort; a failed timestamp update must not fail the login
	_ = s.store.TouchLastLogin(ctx, email)
	return u.Summary(), nil
}

// Profile returns the stored record for an email.
func (s *Service) Profile(ctx context.Context, email string) (entity.Summary, error) {
	email = normalizeEmail(email)
	if email == "" {
		return entity.Summary{}, ErrNotFound
	}
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Summary{}, ErrNotFound
		}
		return entity.Summary{}, err
	}
	return u.Summary(), nil
}

// CompleteDebate increments the debates_attended counter.
func (s *Service) CompleteDebate(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrNotFound
	}
	rows, err := s.store.IncrementDebates(ctx, email)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(textutil.Normalize(email))
}
