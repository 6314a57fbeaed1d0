package repository

import (
	"context"
	"sort"

	"coderr/internal/domain/entity"
	"coderr/internal/domain/repository"
)

type orderRepository struct {
	store *Store
}

// NewOrderRepository returns an order repository over the store.
func NewOrderRepository(store *Store) repository.OrderRepository {
	return &orderRepository{store: store}
}

func (r *orderRepository) Create(_ context.Context, order *entity.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.takeFailure("OrderRepository.Create"); err != nil {
		return err
	}
	if r.store.findDetail(order.OfferDetailID) == nil {
		return repository.ErrOfferDetailNotFound
	}

	r.store.nextOrderID++
	now := r.store.now()
	order.ID = r.store.nextOrderID
	order.CreatedAt = now
	order.UpdatedAt = now
	r.store.orders[order.ID] = cloneOrder(order)

	return nil
}

func (r *orderRepository) FindByID(_ context.Context, id int64) (*entity.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	o, ok := r.store.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}

	return r.withDetail(o), nil
}

func (r *orderRepository) UpdateStatus(_ context.Context, order *entity.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.orders[order.ID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	stored.Status = order.Status
	stored.UpdatedAt = r.store.now()
	order.UpdatedAt = stored.UpdatedAt

	return nil
}

func (r *orderRepository) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.orders[id]; !ok {
		return repository.ErrOrderNotFound
	}
	delete(r.store.orders, id)

	return nil
}

func (r *orderRepository) ListByUser(_ context.Context, userID int64, scope repository.OrderScope, page repository.PageRequest) ([]*entity.Order, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	matched := make([]*entity.Order, 0)
	for _, o := range r.store.orders {
		switch {
		case scope == repository.OrderScopeCustomer && o.CustomerUserID == userID,
			scope == repository.OrderScopeBusiness && o.BusinessUserID == userID:
			matched = append(matched, o)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}

		return matched[i].ID > matched[j].ID
	})

	paged := applyPage(matched, page)
	orders := make([]*entity.Order, len(paged))
	for i, o := range paged {
		orders[i] = r.withDetail(o)
	}

	return orders, int64(len(matched)), nil
}

func (r *orderRepository) CountByBusinessAndStatus(_ context.Context, businessUserID int64, status entity.OrderStatus) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var n int64
	for _, o := range r.store.orders {
		if o.BusinessUserID == businessUserID && o.Status == status {
			n++
		}
	}

	return n, nil
}

func (r *orderRepository) withDetail(o *entity.Order) *entity.Order {
	order := cloneOrder(o)
	if d := r.store.findDetail(o.OfferDetailID); d != nil {
		order.Detail = cloneDetail(d)
	}

	return order
}
