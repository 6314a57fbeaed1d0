package usecase

import (
	"context"

	"coderr/internal/domain/entity"
	"coderr/internal/domain/policy"
	"coderr/internal/domain/repository"
	"coderr/internal/domain/service"
)

// ProfileUsecase defines the interface for profile-related business operations.
type ProfileUsecase interface {
	GetProfile(ctx context.Context, caller *policy.Caller, userID int64) (*entity.User, error)
	UpdateProfile(ctx context.Context, caller *policy.Caller, userID int64, input *UpdateProfileInput) (*entity.User, error)
	AuthorizeProfileUpdate(ctx context.Context, caller *policy.Caller, userID int64) error
	ListProfiles(ctx context.Context, caller *policy.Caller, profileType entity.ProfileType, page repository.PageRequest) (*PageResult[*entity.User], error)
}

// UpdateProfileInput is a partial profile update. Nil fields are left unchanged.
type UpdateProfileInput struct {
	FirstName    *string
	LastName     *string
	Email        *string
	Location     *string
	Tel          *string
	Description  *string
	WorkingHours *string
	File         *service.Upload // New file to attach.
	ClearFile    bool            // Remove the current file.
}
