package repo

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/debateai/service-api-go/internal/user/entity"
)

// ErrDuplicateEmail is returned when an insert violates the unique
// email constraint.
var ErrDuplicateEmail = errors.New("email already registered")

const pqUniqueViolation = "23505"

// UserRepo provides data access for the users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// EnsureSchema creates the users table and its indexes if missing (idempotent).
func (r *UserRepo) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
  id BIGINT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  debates_attended INT NOT NULL DEFAULT 0,
  profile_picture TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  last_login TIMESTAMPTZ
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Create inserts a new user row. Returns ErrDuplicateEmail when the
// email is already present.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	const q = `INSERT INTO users (id, name, email, password_hash, debates_attended, profile_picture)
		VALUES (:id, :name, :email, :password_hash, :debates_attended, :profile_picture)`
	_, err := r.db.NamedExecContext(ctx, q, u)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// GetByEmail returns the user matched by email or sql.ErrNoRows.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	const q = `SELECT id, name, email, password_hash, debates_attended, profile_picture, created_at, last_login
		FROM users WHERE email=$1`
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, email); err != nil {
		return nil, err
	}
	return &u, nil
}

// IncrementDebates bumps the debates_attended counter. Returns the
// number of rows affected so callers can distinguish missing users.
func (r *UserRepo) IncrementDebates(ctx context.Context, email string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET debates_attended = debates_attended + 1 WHERE email=$1`, email)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// TouchLastLogin records a successful login.
func (r *UserRepo) TouchLastLogin(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login = NOW() WHERE email=$1`, email)
	return err
}
