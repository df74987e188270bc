package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/eggspire/monitor/internal/domain/models"
)

const userColumns = `user_id, name, email, password_hash, role, phone, bio, avatar_url,
	is_active, created_at, updated_at, created_by, last_login_at`

// UserRepository persists dashboard accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository wires a user repository over the shared pool.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByEmail returns an active user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? AND is_active = TRUE`
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

// GetByID returns an active user by id.
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = ? AND is_active = TRUE`
	if err := r.db.GetContext(ctx, &user, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &user, nil
}

// List returns active users, newest first, with optional name/email search.
func (r *UserRepository) List(ctx context.Context, search string, limit, offset int) ([]models.User, int, error) {
	users := []models.User{}
	args := []any{}
	where := `WHERE is_active = TRUE`
	if search != "" {
		where += ` AND (name LIKE ? OR email LIKE ?)`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := `SELECT ` + userColumns + ` FROM users ` + where + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// EmailExists reports whether any account (active or not) uses the email.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE email = ?`, email); err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new account and returns its id.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (int64, error) {
	query := `
		INSERT INTO users (name, email, password_hash, role, phone, bio, created_by, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, TRUE, NOW(), NOW())`
	res, err := r.db.ExecContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.Role, user.Phone, user.Bio, user.CreatedBy)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert user id: %w", err)
	}
	return id, nil
}

// UpdateProfile applies the non-nil fields of the update to a user.
func (r *UserRepository) UpdateProfile(ctx context.Context, userID int64, upd models.UserUpdate) error {
	query := `
		UPDATE users
		SET name = COALESCE(?, name),
		    phone = COALESCE(?, phone),
		    bio = COALESCE(?, bio),
		    avatar_url = COALESCE(?, avatar_url),
		    updated_at = NOW()
		WHERE user_id = ? AND is_active = TRUE`
	res, err := r.db.ExecContext(ctx, query, upd.Name, upd.Phone, upd.Bio, upd.AvatarURL, userID)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePassword replaces a user's password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	query := `UPDATE users SET password_hash = ?, updated_at = NOW() WHERE user_id = ? AND is_active = TRUE`
	if _, err := r.db.ExecContext(ctx, query, passwordHash, userID); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// Deactivate soft-deletes an account.
func (r *UserRepository) Deactivate(ctx context.Context, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE user_id = ? AND is_active = TRUE`, userID)
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchLogin records a successful login.
func (r *UserRepository) TouchLogin(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = NOW(), updated_at = NOW() WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("touch login: %w", err)
	}
	return nil
}
