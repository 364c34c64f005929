package user

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debateai/service-api-go/internal/user/entity"
	"github.com/debateai/service-api-go/internal/user/repo"
)

// fakeStore keeps users in a map, mirroring the repo's contract.
type fakeStore struct {
	users map[string]*entity.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]*entity.User{}}
}

func (f *fakeStore) Create(_ context.Context, u *entity.User) error {
	if _, ok := f.users[u.Email]; ok {
		return repo.ErrDuplicateEmail
	}
	cp := *u
	f.users[u.Email] = &cp
	return nil
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) IncrementDebates(_ context.Context, email string) (int64, error) {
	u, ok := f.users[email]
	if !ok {
		return 0, nil
	}
	u.DebatesAttended++
	return 1, nil
}

func (f *fakeStore) TouchLastLogin(_ context.Context, _ string) error { return nil }

func TestSignupAndDuplicate(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	summary, err := svc.Signup(ctx, "A", "a@x.com", "Abcd1234!", "Abcd1234!")
	require.NoError(t, err)
	assert.Equal(t, "A", summary.Name)
	assert.Equal(t, "a@x.com", summary.Email)
	assert.Equal(t, 0, summary.DebatesAttended)

	_, err = svc.Signup(ctx, "A", "a@x.com", "Abcd1234!", "Abcd1234!")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestSignupValidation(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		confirm  string
		wantErr  error
	}{
		{"missing name", "", "a@x.com", "Abcd1234!", "Abcd1234!", ErrMissingFields},
		{"missing email", "A", "", "Abcd1234!", "Abcd1234!", ErrMissingFields},
		{"missing password", "A", "a@x.com", "", "", ErrMissingFields},
		{"bad email", "A", "not-an-email", "Abcd1234!", "Abcd1234!", ErrInvalidEmail},
		{"mismatch", "A", "a@x.com", "Abcd1234!", "Other1234!", ErrPasswordMismatch},
		{"too short", "A", "a@x.com", "Ab1!", "Ab1!", ErrWeakPassword},
		{"leading digit", "A", "a@x.com", "1bcd1234!", "1bcd1234!", ErrWeakPassword},
		{"disallowed char", "A", "a@x.com", "Abcd 1234", "Abcd 1234", ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tt.userName, tt.email, tt.password, tt.confirm)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	_, err := svc.Signup(ctx, "A", "a@x.com", "Abcd1234!", "Abcd1234!")
	require.NoError(t, err)

	summary, err := svc.Authenticate(ctx, "a@x.com", "Abcd1234!")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", summary.Email)

	_, err = svc.Authenticate(ctx, "a@x.com", "WrongPass1!")
	assert.ErrorIs(t, err, ErrBadCredentials)

	// unknown user maps to the same error to avoid enumeration
	_, err = svc.Authenticate(ctx, "ghost@x.com", "Abcd1234!")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestAuthenticateEmailCaseInsensitive(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	_, err := svc.Signup(ctx, "A", "A@X.com", "Abcd1234!", "Abcd1234!")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "a@x.com", "Abcd1234!")
	assert.NoError(t, err)
}

func TestProfileAndCompleteDebate(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "A", "a@x.com", "Abcd1234!", "Abcd1234!")
	require.NoError(t, err)

	require.NoError(t, svc.CompleteDebate(ctx, "a@x.com"))

	summary, err := svc.Profile(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.DebatesAttended)

	assert.ErrorIs(t, svc.CompleteDebate(ctx, "ghost@x.com"), ErrNotFound)
	_, err = svc.Profile(ctx, "ghost@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
