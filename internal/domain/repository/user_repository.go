// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"coderr/internal/domain/entity"
)

// Domain-specific errors for identity persistence.
var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUsername is returned when the username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrDuplicateEmail is returned when the email is already registered, compared case-insensitively.
	ErrDuplicateEmail = errors.New("email already exists")
)

// UserRepository defines the standard operations for identity and profile persistence.
// Every returned user carries its profile.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id int64) (*entity.User, error)

	// FindByUsername retrieves a single user by their exact username.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// ExistsByUsername reports whether the username is taken.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail reports whether another user owns the email. excludeID skips the caller's own row; 0 skips nothing.
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)

	// Create persists a new user together with its profile.
	Create(ctx context.Context, user *entity.User) error

	// Update modifies the user's names, email and profile fields.
	Update(ctx context.Context, user *entity.User) error

	// ListByType returns users whose profile has the given type, oldest first, and the total count.
	ListByType(ctx context.Context, profileType entity.ProfileType, page PageRequest) ([]*entity.User, int64, error)

	// CountByType counts profiles of the given type.
	CountByType(ctx context.Context, profileType entity.ProfileType) (int64, error)
}
