package repository

import (
	"context"

	"coderr/internal/domain/entity"

	"github.com/pkg/errors"
)

// Domain-specific errors for review persistence.
var (
	// ErrReviewNotFound is returned when a review is not found.
	ErrReviewNotFound = errors.New("review not found")
	// ErrDuplicateReview is returned when the reviewer already reviewed the business user.
	ErrDuplicateReview = errors.New("review already exists")
)

// ReviewOrdering is a sort key for review lists. A leading '-' sorts descending.
type ReviewOrdering string

const (
	ReviewOrderUpdatedAt     ReviewOrdering = "updated_at"
	ReviewOrderUpdatedAtDesc ReviewOrdering = "-updated_at"
	ReviewOrderRating        ReviewOrdering = "rating"
	ReviewOrderRatingDesc    ReviewOrdering = "-rating"
)

// IsValid checks if the ordering is supported.
func (o ReviewOrdering) IsValid() bool {
	switch o {
	case ReviewOrderUpdatedAt, ReviewOrderUpdatedAtDesc, ReviewOrderRating, ReviewOrderRatingDesc:
		return true
	default:
		return false
	}
}

// ReviewFilter narrows review lists. Nil values do not filter.
type ReviewFilter struct {
	BusinessUserID *int64
	ReviewerID     *int64
	Ordering       ReviewOrdering
}

// ReviewRepository defines the persistence operations for reviews.
type ReviewRepository interface {
	// Create persists a new review. Returns ErrDuplicateReview when the pair already has one.
	Create(ctx context.Context, review *entity.Review) error

	// FindByID retrieves a single review.
	FindByID(ctx context.Context, id int64) (*entity.Review, error)

	// ExistsForPair reports whether the reviewer already reviewed the business user.
	ExistsForPair(ctx context.Context, reviewerID, businessUserID int64) (bool, error)

	// Update saves rating and description and advances updated_at.
	Update(ctx context.Context, review *entity.Review) error

	// Delete removes a review.
	Delete(ctx context.Context, id int64) error

	// List returns a filtered, ordered page of reviews and the total count.
	List(ctx context.Context, filter ReviewFilter, page PageRequest) ([]*entity.Review, int64, error)

	// Count counts all reviews.
	Count(ctx context.Context) (int64, error)

	// AverageRating returns the mean rating over all reviews, 0 when there are none.
	AverageRating(ctx context.Context) (float64, error)
}
