package repository

import (
	"context"
	"sort"

	"coderr/internal/domain/entity"
	"coderr/internal/domain/repository"
)

type reviewRepository struct {
	store *Store
}

// NewReviewRepository returns a review repository over the store.
func NewReviewRepository(store *Store) repository.ReviewRepository {
	return &reviewRepository{store: store}
}

func (r *reviewRepository) Create(_ context.Context, review *entity.Review) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.takeFailure("ReviewRepository.Create"); err != nil {
		return err
	}
	if r.store.pairReviewed(review.ReviewerID, review.BusinessUserID) {
		return repository.ErrDuplicateReview
	}

	r.store.nextReviewID++
	now := r.store.now()
	review.ID = r.store.nextReviewID
	review.CreatedAt = now
	review.UpdatedAt = now
	r.store.reviews[review.ID] = cloneReview(review)

	return nil
}

func (r *reviewRepository) FindByID(_ context.Context, id int64) (*entity.Review, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rv, ok := r.store.reviews[id]
	if !ok {
		return nil, repository.ErrReviewNotFound
	}

	return cloneReview(rv), nil
}

func (r *reviewRepository) ExistsForPair(_ context.Context, reviewerID, businessUserID int64) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.pairReviewed(reviewerID, businessUserID), nil
}

func (r *reviewRepository) Update(_ context.Context, review *entity.Review) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.reviews[review.ID]
	if !ok {
		return repository.ErrReviewNotFound
	}
	stored.Rating = review.Rating
	stored.Description = review.Description
	stored.UpdatedAt = r.store.now()
	review.UpdatedAt = stored.UpdatedAt

	return nil
}

func (r *reviewRepository) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.reviews[id]; !ok {
		return repository.ErrReviewNotFound
	}
	delete(r.store.reviews, id)

	return nil
}

func (r *reviewRepository) List(_ context.Context, filter repository.ReviewFilter, page repository.PageRequest) ([]*entity.Review, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	matched := make([]*entity.Review, 0)
	for _, rv := range r.store.reviews {
		if filter.BusinessUserID != nil && rv.BusinessUserID != *filter.BusinessUserID {
			continue
		}
		if filter.ReviewerID != nil && rv.ReviewerID != *filter.ReviewerID {
			continue
		}
		matched = append(matched, rv)
	}
	sort.Slice(matched, reviewLess(matched, filter.Ordering))

	paged := applyPage(matched, page)
	reviews := make([]*entity.Review, len(paged))
	for i, rv := range paged {
		reviews[i] = cloneReview(rv)
	}

	return reviews, int64(len(matched)), nil
}

func reviewLess(reviews []*entity.Review, ordering repository.ReviewOrdering) func(i, j int) bool {
	return func(i, j int) bool {
		a, b := reviews[i], reviews[j]
		switch ordering {
		case repository.ReviewOrderUpdatedAt:
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.Before(b.UpdatedAt)
			}

			return a.ID < b.ID
		case repository.ReviewOrderRating:
			if a.Rating != b.Rating {
				return a.Rating < b.Rating
			}

			return a.ID < b.ID
		case repository.ReviewOrderRatingDesc:
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}

			return a.ID > b.ID
		default:
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.After(b.UpdatedAt)
			}

			return a.ID > b.ID
		}
	}
}

func (r *reviewRepository) Count(_ context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return int64(len(r.store.reviews)), nil
}

func (r *reviewRepository) AverageRating(_ context.Context) (float64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if len(r.store.reviews) == 0 {
		return 0, nil
	}

	total := 0
	for _, rv := range r.store.reviews {
		total += rv.Rating
	}

	return float64(total) / float64(len(r.store.reviews)), nil
}

func (s *Store) pairReviewed(reviewerID, businessUserID int64) bool {
	for _, rv := range s.reviews {
		if rv.ReviewerID == reviewerID && rv.BusinessUserID == businessUserID {
			return true
		}
	}

	return false
}
