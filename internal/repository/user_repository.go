package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/contacts-service/internal/domain"
)

// UserRepository defines persistence access for account owners.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateRefreshToken(ctx context.Context, id int64, token *string) error
	SwapRefreshToken(ctx context.Context, id int64, current, next string) (bool, error)
	ConfirmEmail(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	UpdateAvatar(ctx context.Context, email, url string) (*domain.User, error)
}

type userRepository struct {
	db DB
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, email, password, avatar, refresh_token, confirmed, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (username, email, password, avatar)
        VALUES ($1, $2, $3, $4)
        RETURNING id, confirmed, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Avatar,
	).Scan(&user.ID, &user.Confirmed, &user.CreatedAt, &user.UpdatedAt)
	return mapWriteError(err)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, query, arg))
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Avatar,
		&user.RefreshToken,
		&user.Confirmed,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateRefreshToken overwrites the stored refresh token; nil revokes it.
func (r *userRepository) UpdateRefreshToken(ctx context.Context, id int64, token *string) error {
	const query = `UPDATE users SET refresh_token=$1, updated_at=NOW() WHERE id=$2`

	cmd, err := r.db.Exec(ctx, query, token, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SwapRefreshToken replaces current with next only if current is still the
// token on record. It reports false when another rotation won the race.
func (r *userRepository) SwapRefreshToken(ctx context.Context, id int64, current, next string) (bool, error) {
	const query = `UPDATE users SET refresh_token=$1, updated_at=NOW() WHERE id=$2 AND refresh_token=$3`

	cmd, err := r.db.Exec(ctx, query, next, id, current)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *userRepository) ConfirmEmail(ctx context.Context, email string) error {
	const query = `UPDATE users SET confirmed=TRUE, updated_at=NOW() WHERE email=$1`

	cmd, err := r.db.Exec(ctx, query, email)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	const query = `UPDATE users SET password=$1, updated_at=NOW() WHERE email=$2`

	cmd, err := r.db.Exec(ctx, query, passwordHash, email)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) UpdateAvatar(ctx context.Context, email, url string) (*domain.User, error) {
	const query = `UPDATE users SET avatar=$1, updated_at=NOW() WHERE email=$2 RETURNING ` + userColumns

	return scanUser(r.db.QueryRow(ctx, query, url, email))
}
