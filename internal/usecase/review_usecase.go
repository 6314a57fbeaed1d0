package usecase

import (
	"context"

	"coderr/internal/domain/entity"
	"coderr/internal/domain/policy"
	"coderr/internal/domain/repository"
)

// ReviewUsecase defines the review ledger.
type ReviewUsecase interface {
	CreateReview(ctx context.Context, caller *policy.Caller, input *CreateReviewInput) (*entity.Review, error)
	UpdateReview(ctx context.Context, caller *policy.Caller, reviewID int64, input *UpdateReviewInput) (*entity.Review, error)
	AuthorizeReviewUpdate(ctx context.Context, caller *policy.Caller, reviewID int64) error
	DeleteReview(ctx context.Context, caller *policy.Caller, reviewID int64) error
	ListReviews(ctx context.Context, caller *policy.Caller, filter repository.ReviewFilter, page repository.PageRequest) (*PageResult[*entity.Review], error)
	GetReview(ctx context.Context, caller *policy.Caller, reviewID int64) (*entity.Review, error)
}

// CreateReviewInput defines a new review.
type CreateReviewInput struct {
	BusinessUserID int64
	Rating         int
	Description    string
}

// UpdateReviewInput is a partial review update. ForbiddenFields lists read-only keys present in the payload.
type UpdateReviewInput struct {
	Rating          *int
	Description     *string
	ForbiddenFields []string
}
