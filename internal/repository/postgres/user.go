package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/abdoir/affinity-server/internal/domain"
)

// UserRepository implements domain.UserRepository on PostgreSQL.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db.Sqlx}
}

type userRow struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Bio          string    `db:"bio"`
	ProfileImage *string   `db:"profile_image"`
	IsAdmin      bool      `db:"is_admin"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Bio:          r.Bio,
		ProfileImage: r.ProfileImage,
		IsAdmin:      r.IsAdmin,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

const userColumns = "id, username, email, password_hash, bio, profile_image, is_admin, created_at, updated_at"

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO users (username, email, password_hash, bio, profile_image, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		user.Username, user.Email, user.PasswordHash, user.Bio, user.ProfileImage,
		user.IsAdmin, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		if mapped := duplicateError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return row.toDomain(), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row,
		"SELECT "+userColumns+" FROM users WHERE email = $1", email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return row.toDomain(), nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	err := r.db.SelectContext(ctx, &rows,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]domain.User, len(rows))
	for i, row := range rows {
		users[i] = *row.toDomain()
	}
	return users, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, update domain.ProfileUpdate) error {
	sets := []string{}
	args := []any{}

	appendSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Username != nil {
		appendSet("username", *update.Username)
	}
	if update.Email != nil {
		appendSet("email", *update.Email)
	}
	if update.Bio != nil {
		appendSet("bio", *update.Bio)
	}
	if len(sets) == 0 {
		return fmt.Errorf("%w: no fields to update", domain.ErrInvalidInput)
	}

	appendSet("updated_at", time.Now().UTC())
	args = append(args, id)

	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args)),
		args...)
	if err != nil {
		if mapped := duplicateError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("update profile: %w", err)
	}
	return checkAffected(res)
}

func (r *UserRepository) SetProfileImage(ctx context.Context, id int64, filename *string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET profile_image = $1, updated_at = $2 WHERE id = $3",
		filename, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set profile image: %w", err)
	}
	return checkAffected(res)
}

func (r *UserRepository) SetAdmin(ctx context.Context, id int64, isAdmin bool) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET is_admin = $1, updated_at = $2 WHERE id = $3",
		isAdmin, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set admin: %w", err)
	}
	return checkAffected(res)
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return checkAffected(res)
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// duplicateError maps unique_violation errors (class 23505) to domain
// errors by constraint name.
func duplicateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return nil
	}
	switch pqErr.Constraint {
	case "users_email_key":
		return domain.ErrDuplicateEmail
	case "users_username_key":
		return domain.ErrDuplicateUsername
	}
	return fmt.Errorf("%w: duplicate value", domain.ErrInvalidInput)
}
