package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/pdralston/puttingLeague/models"
	"github.com/pdralston/puttingLeague/repositories"
)

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateUserInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*models.User, error)
	CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error)
}

type authService struct {
	db       *sql.DB
	userRepo repositories.UserRepository
}

func NewAuthService(db *sql.DB, userRepo repositories.UserRepository) AuthService {
	return &authService{db: db, userRepo: userRepo}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	if input.Username == "" || len(input.Password) < 8 {
		return nil, fmt.Errorf("%w: username and a password of at least 8 characters are required", ErrValidationFailed)
	}
	role := input.Role
	if role == "" {
		role = models.RoleAdmin
	}
	if role != models.RoleAdmin && role != models.RoleViewer {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidationFailed, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Username: input.Username, PasswordHash: string(hash), Role: role}
	if err := s.userRepo.Create(ctx, s.db, user); err != nil {
		if errors.Is(err, repositories.ErrUserUsernameTaken) {
			return nil, ErrUsernameConflict
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}
