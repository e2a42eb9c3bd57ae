package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

// UserRepo persists registered accounts.
type UserRepo struct {
	sql infra.SQLExecutor
}

func NewUserRepo(sql infra.SQLExecutor) *UserRepo {
	return &UserRepo{sql: sql}
}

// Create inserts a new user. Email uniqueness is enforced by the database;
// callers check for duplicates first to return the friendlier error.
func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertUser, user.Name, user.Email, user.PasswordHash, user.Country)
	if err := row.Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// ByEmail fetches a user by email address.
func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectUserByEmail, email)
	return scanUser(row.Scan)
}

// ByID fetches a user by id.
func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectUserByID, id)
	return scanUser(row.Scan)
}

func scanUser(scan func(dest ...any) error) (*domain.User, error) {
	var user domain.User
	if err := scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Country,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// 23505 is the Postgres unique_violation code.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
