package postgres

import (
	"context"
	"time"

	"coderr/internal/domain/entity"
	domainerrors "coderr/internal/domain/errors"
	"coderr/internal/domain/repository"
	"coderr/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// reviewRepository implements repository.ReviewRepository using GORM.
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository is the constructor for reviewRepository.
func NewReviewRepository(db *gorm.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

// Create inserts a review. The unique pair index turns a concurrent duplicate into ErrDuplicateReview.
func (repo *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	reviewM := fromReviewDomain(review)

	if err := repo.db.WithContext(ctx).Create(reviewM).Error; err != nil {
		return mapReviewWriteError(err, "failed to create review")
	}

	review.ID = reviewM.ID
	review.CreatedAt = reviewM.CreatedAt
	review.UpdatedAt = reviewM.UpdatedAt

	return nil
}

// FindByID retrieves a single review.
func (repo *reviewRepository) FindByID(ctx context.Context, id int64) (*entity.Review, error) {
	var reviewM model.ReviewModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&reviewM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrReviewNotFound
		}

		return nil, errors.Wrap(err, "failed to find review by id")
	}

	return toReviewDomain(&reviewM), nil
}

// ExistsForPair reads from the primary so a review committed a moment ago is seen.
func (repo *reviewRepository) ExistsForPair(ctx context.Context, reviewerID, businessUserID int64) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Model(&model.ReviewModel{}).
		Where("reviewer_id = ? AND business_user_id = ?", reviewerID, businessUserID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check review pair")
	}

	return count > 0, nil
}

// Update saves rating and description.
func (repo *reviewRepository) Update(ctx context.Context, review *entity.Review) error {
	now := time.Now()
	result := repo.db.WithContext(ctx).
		Model(&model.ReviewModel{}).
		Where("id = ?", review.ID).
		Updates(map[string]any{
			"rating":      review.Rating,
			"description": review.Description,
			"updated_at":  now,
		})
	if result.Error != nil {
		return mapReviewWriteError(result.Error, "failed to update review")
	}
	if result.RowsAffected == 0 {
		return repository.ErrReviewNotFound
	}

	review.UpdatedAt = now

	return nil
}

// Delete removes a review.
func (repo *reviewRepository) Delete(ctx context.Context, id int64) error {
	result := repo.db.WithContext(ctx).Delete(&model.ReviewModel{}, id)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete review")
	}
	if result.RowsAffected == 0 {
		return repository.ErrReviewNotFound
	}

	return nil
}

// List pages through reviews matching the filter.
func (repo *reviewRepository) List(ctx context.Context, filter repository.ReviewFilter, page repository.PageRequest) ([]*entity.Review, int64, error) {
	base := repo.db.WithContext(ctx).Model(&model.ReviewModel{})
	if filter.BusinessUserID != nil {
		base = base.Where("business_user_id = ?", *filter.BusinessUserID)
	}
	if filter.ReviewerID != nil {
		base = base.Where("reviewer_id = ?", *filter.ReviewerID)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count reviews")
	}

	query := base.Session(&gorm.Session{})
	for _, o := range reviewOrderClauses(filter.Ordering) {
		query = query.Order(o)
	}

	var reviewsM []*model.ReviewModel
	if err := paginate(query, page).Find(&reviewsM).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to list reviews")
	}

	reviews := make([]*entity.Review, 0, len(reviewsM))
	for _, r := range reviewsM {
		reviews = append(reviews, toReviewDomain(r))
	}

	return reviews, total, nil
}

func reviewOrderClauses(ordering repository.ReviewOrdering) []string {
	switch ordering {
	case repository.ReviewOrderUpdatedAt:
		return []string{"updated_at ASC", "id ASC"}
	case repository.ReviewOrderRating:
		return []string{"rating ASC", "id ASC"}
	case repository.ReviewOrderRatingDesc:
		return []string{"rating DESC", "id DESC"}
	default:
		return []string{"updated_at DESC", "id DESC"}
	}
}

// Count counts all reviews.
func (repo *reviewRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := repo.db.WithContext(ctx).Model(&model.ReviewModel{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count reviews")
	}

	return count, nil
}

// AverageRating returns the mean rating, 0 when there are no reviews.
func (repo *reviewRepository) AverageRating(ctx context.Context) (float64, error) {
	var avg float64
	err := repo.db.WithContext(ctx).
		Model(&model.ReviewModel{}).
		Select("COALESCE(AVG(rating), 0)::float8").
		Scan(&avg).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to average ratings")
	}

	return avg, nil
}

func mapReviewWriteError(err error, message string) error {
	if isUniqueConstraintViolation(err) {
		if c := violatedConstraint(err); c == "" || c == constraintReviewerPerBiz {
			return repository.ErrDuplicateReview
		}
	}
	if isForeignKeyConstraintViolation(err) {
		return repository.ErrUserNotFound
	}
	if isCheckConstraintViolation(err) {
		return domainerrors.ErrValidationFailed.WrapMessage(message)
	}

	return domainerrors.NewDatabaseExecuteError(err, message)
}

// --- Mapper Functions ---

func toReviewDomain(data *model.ReviewModel) *entity.Review {
	return &entity.Review{
		ID:             data.ID,
		BusinessUserID: data.BusinessUserID,
		ReviewerID:     data.ReviewerID,
		Rating:         data.Rating,
		Description:    data.Description,
		CreatedAt:      data.CreatedAt,
		UpdatedAt:      data.UpdatedAt,
	}
}

func fromReviewDomain(data *entity.Review) *model.ReviewModel {
	return &model.ReviewModel{
		ID:             data.ID,
		BusinessUserID: data.BusinessUserID,
		ReviewerID:     data.ReviewerID,
		Rating:         data.Rating,
		Description:    data.Description,
	}
}
