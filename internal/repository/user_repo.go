package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"portfolio-api/internal/model"
)

const userColumns = `id, name, email, password_hash, role, avatar_url, avatar_key,
	refresh_token_hash, refresh_token_expiry, reset_token_hash, reset_token_expiry,
	created_at, updated_at, deleted_at`

// UserRepository is the Postgres credential store. Every write is a single
// UPDATE so a token digest and its expiry always change together.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.AvatarURL, &u.AvatarKey,
		&u.RefreshTokenHash, &u.RefreshTokenExpiry, &u.ResetTokenHash, &u.ResetTokenExpiry,
		&u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	return u, err
}

func (r *UserRepository) findOne(ctx context.Context, op string, where string, args ...any) (model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL AND `+where, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	return r.findOne(ctx, "find user by id", `id = $1`, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	return r.findOne(ctx, "find user by email", `email = $1`, strings.TrimSpace(email))
}

func (r *UserRepository) FindByRefreshTokenHash(ctx context.Context, hash string, now time.Time) (model.User, error) {
	return r.findOne(ctx, "find user by refresh token",
		`refresh_token_hash = $1 AND refresh_token_expiry > $2`, hash, now)
}

func (r *UserRepository) FindByResetTokenHash(ctx context.Context, hash string, now time.Time) (model.User, error) {
	return r.findOne(ctx, "find user by reset token",
		`reset_token_hash = $1 AND reset_token_expiry > $2`, hash, now)
}

func (r *UserRepository) Create(ctx context.Context, u model.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return model.ErrUserAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// exec runs a single-row UPDATE and reports missing when nothing matched.
func (r *UserRepository) exec(ctx context.Context, op string, missing error, sql string, args ...any) error {
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return missing
	}
	return nil
}

func (r *UserRepository) SetRefreshToken(ctx context.Context, userID string, hash string, expiry time.Time) error {
	return r.exec(ctx, "set refresh token", model.ErrUserNotFound,
		`UPDATE users SET refresh_token_hash = $2, refresh_token_expiry = $3, updated_at = now()
		 WHERE id = $1 AND deleted_at IS NULL`,
		userID, hash, expiry)
}

// RotateRefreshToken replaces the stored digest only if it still equals
// oldHash. A concurrent refresh that lost the race gets ErrTokenInvalid.
func (r *UserRepository) RotateRefreshToken(ctx context.Context, userID string, oldHash string, newHash string, expiry time.Time) error {
	return r.exec(ctx, "rotate refresh token", model.ErrTokenInvalid,
		`UPDATE users SET refresh_token_hash = $3, refresh_token_expiry = $4, updated_at = now()
		 WHERE id = $1 AND refresh_token_hash = $2 AND deleted_at IS NULL`,
		userID, oldHash, newHash, expiry)
}

func (r *UserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	return r.exec(ctx, "clear refresh token", model.ErrUserNotFound,
		`UPDATE users SET refresh_token_hash = NULL, refresh_token_expiry = NULL, updated_at = now()
		 WHERE id = $1`,
		userID)
}

func (r *UserRepository) SetResetToken(ctx context.Context, userID string, hash string, expiry time.Time) error {
	return r.exec(ctx, "set reset token", model.ErrUserNotFound,
		`UPDATE users SET reset_token_hash = $2, reset_token_expiry = $3, updated_at = now()
		 WHERE id = $1 AND deleted_at IS NULL`,
		userID, hash, expiry)
}

// ClearResetToken withdraws tokenHash only while it is still the stored
// digest, so a newer request's token survives.
func (r *UserRepository) ClearResetToken(ctx context.Context, userID string, tokenHash string) error {
	return r.exec(ctx, "clear reset token", model.ErrTokenInvalid,
		`UPDATE users SET reset_token_hash = NULL, reset_token_expiry = NULL, updated_at = now()
		 WHERE id = $1 AND reset_token_hash = $2`,
		userID, tokenHash)
}

// ResetPassword consumes the reset token and writes the new hash in one
// statement. Live refresh tokens are revoked with it.
func (r *UserRepository) ResetPassword(ctx context.Context, userID string, tokenHash string, passwordHash string, now time.Time) error {
	return r.exec(ctx, "reset password", model.ErrTokenInvalid,
		`UPDATE users
		 SET password_hash = $3,
		     reset_token_hash = NULL, reset_token_expiry = NULL,
		     refresh_token_hash = NULL, refresh_token_expiry = NULL,
		     updated_at = $4
		 WHERE id = $1 AND reset_token_hash = $2 AND reset_token_expiry > $4 AND deleted_at IS NULL`,
		userID, tokenHash, passwordHash, now)
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, userID string, url string, key string) error {
	return r.exec(ctx, "update avatar", model.ErrUserNotFound,
		`UPDATE users SET avatar_url = $2, avatar_key = $3, updated_at = now()
		 WHERE id = $1 AND deleted_at IS NULL`,
		userID, url, key)
}

func (r *UserRepository) ClearAvatar(ctx context.Context, userID string) error {
	return r.exec(ctx, "clear avatar", model.ErrUserNotFound,
		`UPDATE users SET avatar_url = NULL, avatar_key = NULL, updated_at = now()
		 WHERE id = $1 AND deleted_at IS NULL`,
		userID)
}

func (r *UserRepository) UpdateRole(ctx context.Context, userID string, role string) error {
	return r.exec(ctx, "update role", model.ErrUserNotFound,
		`UPDATE users SET role = $2, updated_at = now() WHERE id = $1 AND deleted_at IS NULL`,
		userID, role)
}

func (r *UserRepository) SoftDelete(ctx context.Context, userID string, at time.Time) error {
	return r.exec(ctx, "soft delete user", model.ErrUserNotFound,
		`UPDATE users
		 SET deleted_at = $2, refresh_token_hash = NULL, refresh_token_expiry = NULL, updated_at = $2
		 WHERE id = $1 AND deleted_at IS NULL`,
		userID, at)
}

// UpsertAdmin creates the seeded administrator or resets its password and
// role if the email already exists.
func (r *UserRepository) UpsertAdmin(ctx context.Context, u model.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, 'ADMIN', $5, $5)
		 ON CONFLICT (email) DO UPDATE
		 SET password_hash = EXCLUDED.password_hash, role = 'ADMIN', deleted_at = NULL, updated_at = EXCLUDED.updated_at`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert admin: %w", err)
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, query model.UserQuery) ([]model.User, int, error) {
	where := "WHERE deleted_at IS NULL"
	args := make([]any, 0, 3)
	argIdx := 1

	if search := strings.TrimSpace(query.Search); search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+escapeLike(search)+"%")
		argIdx++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	offset := (query.Page - 1) * query.Limit
	dataQuery := fmt.Sprintf(`SELECT %s FROM users %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, where, argIdx, argIdx+1)
	args = append(args, query.Limit, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern, using the
// default backslash escape.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
