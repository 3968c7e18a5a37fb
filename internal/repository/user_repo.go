package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"drivehub/internal/apperr"
	"drivehub/internal/db"
)

type UserRepository interface {
	Create(ctx context.Context, u *db.User) error
	GetByEmail(ctx context.Context, email string) (*db.User, error)
	GetByID(ctx context.Context, id int) (*db.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(database *sql.DB) UserRepository {
	return &userRepository{db: database}
}

func (r *userRepository) Create(ctx context.Context, u *db.User) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, phone, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at`,
		u.Name, u.Email, u.Phone, u.PasswordHash, u.Role,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	var u db.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, COALESCE(phone, ''), password_hash, role, created_at
		FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user", email)
		}
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int) (*db.User, error) {
	var u db.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, COALESCE(phone, ''), password_hash, role, created_at
		FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user", id)
		}
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return &u, nil
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = $1`, email).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count users by email: %w", err)
	}
	return count > 0, nil
}
