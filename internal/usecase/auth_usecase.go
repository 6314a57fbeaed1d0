package usecase

import (
	"context"

	"coderr/internal/domain/entity"
)

// AuthUsecase defines registration, login and token resolution.
type AuthUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*AuthOutput, error)
	Login(ctx context.Context, input *LoginInput) (*AuthOutput, error)
	// Authenticate resolves a bearer token to the current state of its user.
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

// --- Input DTOs ---

// RegisterInput defines the data required to register an account.
type RegisterInput struct {
	Username         string
	Email            string
	Password         string
	RepeatedPassword string
	Type             entity.ProfileType // Empty means customer.
}

// LoginInput defines the credentials for a login.
type LoginInput struct {
	Username string
	Password string
}

// --- Output DTOs ---

// AuthOutput is returned by registration and login.
type AuthOutput struct {
	Token string
	User  *entity.User
}
