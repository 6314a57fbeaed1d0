package repository

import (
	"context"
	"sort"
	"strings"

	"coderr/internal/domain/entity"
	"coderr/internal/domain/repository"
)

type offerRepository struct {
	store *Store
}

// NewOfferRepository returns an offer repository over the store.
func NewOfferRepository(store *Store) repository.OfferRepository {
	return &offerRepository{store: store}
}

func (r *offerRepository) Create(_ context.Context, offer *entity.Offer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.takeFailure("OfferRepository.Create"); err != nil {
		return err
	}
	if _, ok := r.store.users[offer.UserID]; !ok {
		return repository.ErrUserNotFound
	}

	seen := make(map[entity.OfferType]bool, len(offer.Details))
	for _, d := range offer.Details {
		if seen[d.OfferType] {
			return repository.ErrDuplicateOfferType
		}
		seen[d.OfferType] = true
	}

	r.store.nextOfferID++
	now := r.store.now()
	offer.ID = r.store.nextOfferID
	offer.CreatedAt = now
	offer.UpdatedAt = now
	for _, d := range offer.Details {
		r.store.nextDetailID++
		d.ID = r.store.nextDetailID
		d.OfferID = offer.ID
	}
	r.store.offers[offer.ID] = cloneOffer(offer)

	return nil
}

func (r *offerRepository) FindByID(_ context.Context, id int64) (*entity.Offer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	o, ok := r.store.offers[id]
	if !ok {
		return nil, repository.ErrOfferNotFound
	}

	return cloneOffer(o), nil
}

func (r *offerRepository) Update(_ context.Context, offer *entity.Offer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.takeFailure("OfferRepository.Update"); err != nil {
		return err
	}

	stored, ok := r.store.offers[offer.ID]
	if !ok {
		return repository.ErrOfferNotFound
	}

	stored.Title = offer.Title
	stored.Description = offer.Description
	stored.Image = cloneStringPtr(offer.Image)
	for _, d := range offer.Details {
		target := stored.DetailByID(d.ID)
		if target == nil {
			continue
		}
		target.Title = d.Title
		target.Revisions = d.Revisions
		target.DeliveryTimeInDays = d.DeliveryTimeInDays
		target.Price = d.Price
		target.Features = append([]string(nil), d.Features...)
	}
	stored.UpdatedAt = r.store.now()
	offer.UpdatedAt = stored.UpdatedAt

	return nil
}

func (r *offerRepository) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	o, ok := r.store.offers[id]
	if !ok {
		return repository.ErrOfferNotFound
	}

	detailIDs := make(map[int64]bool, len(o.Details))
	for _, d := range o.Details {
		detailIDs[d.ID] = true
	}
	for orderID, order := range r.store.orders {
		if detailIDs[order.OfferDetailID] {
			delete(r.store.orders, orderID)
		}
	}
	delete(r.store.offers, id)

	return nil
}

func (r *offerRepository) List(_ context.Context, filter repository.OfferFilter, page repository.PageRequest) ([]*entity.Offer, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]*entity.Offer, 0)
	for _, o := range r.store.offers {
		if filter.CreatorID != nil && o.UserID != *filter.CreatorID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(o.Title), search) &&
			!strings.Contains(strings.ToLower(o.Description), search) {
			continue
		}
		if filter.MinPrice != nil {
			if p := o.MinPrice(); p == nil || *p < *filter.MinPrice {
				continue
			}
		}
		if filter.MaxDeliveryTime != nil {
			if d := o.MinDeliveryTime(); d == nil || *d > *filter.MaxDeliveryTime {
				continue
			}
		}
		matched = append(matched, o)
	}

	sort.Slice(matched, offerLess(matched, filter.Ordering))

	paged := applyPage(matched, page)
	offers := make([]*entity.Offer, len(paged))
	for i, o := range paged {
		offers[i] = cloneOffer(o)
		offers[i].Owner = cloneUser(r.store.users[o.UserID])
	}

	return offers, int64(len(matched)), nil
}

func offerLess(offers []*entity.Offer, ordering repository.OfferOrdering) func(i, j int) bool {
	minPrice := func(o *entity.Offer) int {
		if p := o.MinPrice(); p != nil {
			return *p
		}

		return 0
	}

	return func(i, j int) bool {
		a, b := offers[i], offers[j]
		switch ordering {
		case repository.OfferOrderUpdatedAt:
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.Before(b.UpdatedAt)
			}

			return a.ID < b.ID
		case repository.OfferOrderMinPrice:
			if minPrice(a) != minPrice(b) {
				return minPrice(a) < minPrice(b)
			}

			return a.ID < b.ID
		case repository.OfferOrderMinPriceDesc:
			if minPrice(a) != minPrice(b) {
				return minPrice(a) > minPrice(b)
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

func (r *offerRepository) FindDetailByID(_ context.Context, id int64) (*entity.OfferDetail, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, o := range r.store.offers {
		if d := o.DetailByID(id); d != nil {
			detail := cloneDetail(d)
			detail.Offer = cloneOffer(o)

			return detail, nil
		}
	}

	return nil, repository.ErrOfferDetailNotFound
}

func (r *offerRepository) Count(_ context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return int64(len(r.store.offers)), nil
}

// findDetail looks a tier up without locking; callers hold the store mutex.
func (s *Store) findDetail(id int64) *entity.OfferDetail {
	for _, o := range s.offers {
		if d := o.DetailByID(id); d != nil {
			return d
		}
	}

	return nil
}
