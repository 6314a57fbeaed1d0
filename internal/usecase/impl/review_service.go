package impl

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	deliverycontext "coderr/internal/delivery/context"
	"coderr/internal/domain/entity"
	domainerrors "coderr/internal/domain/errors"
	"coderr/internal/domain/policy"
	"coderr/internal/domain/repository"
	"coderr/internal/domain/service"
	"coderr/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	msgDuplicateReview = "You have already reviewed this business user."
	msgRatingRange     = "Ensure this value is between 1 and 5."
)

// reviewService implements the ReviewUsecase interface.
type reviewService struct {
	txManager  repository.TransactionManager
	reviewRepo repository.ReviewRepository
	sanitizer  service.TextSanitizer
	publisher  service.EventPublisher
	logger     *slog.Logger
}

// ReviewServiceParams holds dependencies for ReviewService, injected by Fx.
type ReviewServiceParams struct {
	fx.In

	TxManager  repository.TransactionManager
	ReviewRepo repository.ReviewRepository
	Sanitizer  service.TextSanitizer
	Publisher  service.EventPublisher
	Logger     *slog.Logger
}

// NewReviewService is the constructor for reviewService.
func NewReviewService(params ReviewServiceParams) usecase.ReviewUsecase {
	return &reviewService{
		txManager:  params.TxManager,
		reviewRepo: params.ReviewRepo,
		sanitizer:  params.Sanitizer,
		publisher:  params.Publisher,
		logger:     params.Logger,
	}
}

func (srv *reviewService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateReview records the caller's single review of a business user.
func (srv *reviewService) CreateReview(ctx context.Context, caller *policy.Caller, input *usecase.CreateReviewInput) (*entity.Review, error) {
	if err := policy.Check(policy.ReviewCreate, caller, nil); err != nil {
		return nil, err
	}

	description := srv.sanitizer.Sanitize(input.Description)
	errs := domainerrors.FieldErrors{}
	if input.BusinessUserID <= 0 {
		errs.Add("business_user", domainerrors.MsgRequired)
	}
	if !entity.RatingInRange(input.Rating) {
		errs.Add("rating", msgRatingRange)
	}
	if description == "" {
		errs.Add("description", domainerrors.MsgRequired)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	review := &entity.Review{
		BusinessUserID: input.BusinessUserID,
		ReviewerID:     caller.UserID,
		Rating:         input.Rating,
		Description:    description,
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		business, err := repoFactory.NewUserRepository().FindByID(ctx, input.BusinessUserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.NewValidationError("business_user", "Invalid pk - object does not exist.")
			}

			return errors.Wrap(err, "failed to find business user")
		}
		if business.Type() != entity.ProfileTypeBusiness {
			return domainerrors.NewValidationError("business_user", "The selected user is not a business user.")
		}

		reviewRepo := repoFactory.NewReviewRepository()
		exists, err := reviewRepo.ExistsForPair(ctx, caller.UserID, input.BusinessUserID)
		if err != nil {
			return errors.Wrap(err, "failed to check existing review")
		}
		if exists {
			return domainerrors.NewNonFieldError(msgDuplicateReview)
		}

		if err := reviewRepo.Create(ctx, review); err != nil {
			if errors.Is(err, repository.ErrDuplicateReview) {
				return domainerrors.NewNonFieldError(msgDuplicateReview)
			}

			return errors.Wrap(err, "failed to save review")
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create review")
	}

	srv.log(ctx).Info("Review created", slog.Int64("reviewID", review.ID), slog.Int64("businessUserID", review.BusinessUserID))
	publishAfterCommit(ctx, srv.publisher, srv.log(ctx), service.EventReviewCreated, map[string]any{
		"review_id":        review.ID,
		"business_user_id": review.BusinessUserID,
		"reviewer_id":      review.ReviewerID,
		"rating":           review.Rating,
	})

	return review, nil
}

// UpdateReview changes rating or description of the caller's own review.
func (srv *reviewService) UpdateReview(ctx context.Context, caller *policy.Caller, reviewID int64, input *usecase.UpdateReviewInput) (*entity.Review, error) {
	if err := policy.Check(policy.ReviewUpdate, caller, nil); err != nil {
		return nil, err
	}

	var review *entity.Review
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		reviewRepo := repoFactory.NewReviewRepository()

		found, err := reviewRepo.FindByID(ctx, reviewID)
		if err != nil {
			return notFound(err, repository.ErrReviewNotFound, "review not found")
		}
		if err := policy.Check(policy.ReviewUpdate, caller, policy.TargetOwnedBy(found.ReviewerID)); err != nil {
			return err
		}

		if err := srv.applyUpdate(found, input); err != nil {
			return err
		}
		if err := reviewRepo.Update(ctx, found); err != nil {
			return notFound(err, repository.ErrReviewNotFound, "review not found")
		}
		review = found

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update review")
	}

	return review, nil
}

// AuthorizeReviewUpdate checks that the caller wrote an existing review.
func (srv *reviewService) AuthorizeReviewUpdate(ctx context.Context, caller *policy.Caller, reviewID int64) error {
	if err := policy.Check(policy.ReviewUpdate, caller, nil); err != nil {
		return err
	}

	review, err := srv.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return notFound(err, repository.ErrReviewNotFound, "review not found")
	}

	return policy.Check(policy.ReviewUpdate, caller, policy.TargetOwnedBy(review.ReviewerID))
}

func (srv *reviewService) applyUpdate(review *entity.Review, input *usecase.UpdateReviewInput) error {
	if len(input.ForbiddenFields) > 0 {
		fields := append([]string(nil), input.ForbiddenFields...)
		sort.Strings(fields)

		return domainerrors.NewNonFieldError("These fields cannot be changed: " + strings.Join(fields, ", ") + ".")
	}

	errs := domainerrors.FieldErrors{}
	if input.Rating != nil {
		if entity.RatingInRange(*input.Rating) {
			review.Rating = *input.Rating
		} else {
			errs.Add("rating", msgRatingRange)
		}
	}
	if input.Description != nil {
		description := srv.sanitizer.Sanitize(*input.Description)
		if description == "" {
			errs.Add("description", "This field may not be blank.")
		} else {
			review.Description = description
		}
	}

	return errs.Err()
}

// DeleteReview removes the caller's own review.
func (srv *reviewService) DeleteReview(ctx context.Context, caller *policy.Caller, reviewID int64) error {
	if err := policy.Check(policy.ReviewDelete, caller, nil); err != nil {
		return err
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		reviewRepo := repoFactory.NewReviewRepository()

		found, err := reviewRepo.FindByID(ctx, reviewID)
		if err != nil {
			return notFound(err, repository.ErrReviewNotFound, "review not found")
		}
		if err := policy.Check(policy.ReviewDelete, caller, policy.TargetOwnedBy(found.ReviewerID)); err != nil {
			return err
		}

		return notFound(reviewRepo.Delete(ctx, reviewID), repository.ErrReviewNotFound, "review not found")
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete review")
	}

	srv.log(ctx).Info("Review deleted", slog.Int64("reviewID", reviewID))

	return nil
}

// ListReviews lists reviews with optional business and reviewer filters.
func (srv *reviewService) ListReviews(ctx context.Context, caller *policy.Caller, filter repository.ReviewFilter, page repository.PageRequest) (*usecase.PageResult[*entity.Review], error) {
	if err := policy.Check(policy.ReviewList, caller, nil); err != nil {
		return nil, err
	}
	if filter.Ordering != "" && !filter.Ordering.IsValid() {
		filter.Ordering = repository.ReviewOrderUpdatedAtDesc
	}

	reviews, total, err := srv.reviewRepo.List(ctx, filter, page)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list reviews")
	}

	return &usecase.PageResult[*entity.Review]{Items: reviews, Total: total}, nil
}

// GetReview retrieves a single review.
func (srv *reviewService) GetReview(ctx context.Context, caller *policy.Caller, reviewID int64) (*entity.Review, error) {
	if err := policy.Check(policy.ReviewRetrieve, caller, nil); err != nil {
		return nil, err
	}

	review, err := srv.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, notFound(err, repository.ErrReviewNotFound, "review not found")
	}

	return review, nil
}
