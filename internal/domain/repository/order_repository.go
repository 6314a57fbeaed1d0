package repository

import (
	"context"

	"coderr/internal/domain/entity"

	"github.com/pkg/errors"
)

// ErrOrderNotFound is returned when an order is not found.
var ErrOrderNotFound = errors.New("order not found")

// OrderScope selects whose orders a list returns.
type OrderScope int

const (
	// OrderScopeCustomer lists orders placed by the user.
	OrderScopeCustomer OrderScope = iota + 1
	// OrderScopeBusiness lists orders received by the user.
	OrderScopeBusiness
)

// OrderRepository defines the persistence operations for orders.
// Orders are always returned with their tier loaded.
type OrderRepository interface {
	// Create persists a new order, filling in the generated id and timestamps.
	Create(ctx context.Context, order *entity.Order) error

	// FindByID retrieves a single order.
	FindByID(ctx context.Context, id int64) (*entity.Order, error)

	// UpdateStatus changes the order status and advances updated_at.
	UpdateStatus(ctx context.Context, order *entity.Order) error

	// Delete removes an order.
	Delete(ctx context.Context, id int64) error

	// ListByUser returns the user's orders in the given scope, newest first, and the total count.
	ListByUser(ctx context.Context, userID int64, scope OrderScope, page PageRequest) ([]*entity.Order, int64, error)

	// CountByBusinessAndStatus counts orders a business user received with the given status.
	CountByBusinessAndStatus(ctx context.Context, businessUserID int64, status entity.OrderStatus) (int64, error)
}
