package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"drivehub/internal/apperr"
	"drivehub/internal/auth"
	"drivehub/internal/db"
	"drivehub/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     db.Role
}

type AuthResult struct {
	Token string
	User  db.User
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

type authService struct {
	users     repository.UserRepository
	jwtSecret string
}

func NewAuthService(users repository.UserRepository, jwtSecret string) AuthService {
	return &authService{users: users, jwtSecret: jwtSecret}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, apperr.Validation("email and password are required")
	}
	if len(in.Password) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}
	role := in.Role
	if role == "" {
		role = db.RoleCustomer
	}
	if role != db.RoleCustomer && role != db.RoleAdmin {
		return nil, apperr.Validation("unknown role %q", role)
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("email %s is already registered", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &db.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := auth.MintToken(s.jwtSecret, user)
	if err != nil {
		return nil, err
	}

	log.Printf("user %d registered as %s", user.ID, user.Role)
	return &AuthResult{Token: token, User: *user}, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		var notFound *apperr.NotFoundError
		if errors.As(err, &notFound) {
			// Do not leak whether the account exists.
			return nil, apperr.Authorization("invalid credentials")
		}
		return nil, fmt.Errorf("look up user by email: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Authorization("invalid credentials")
	}

	token, err := auth.MintToken(s.jwtSecret, user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: *user}, nil
}
