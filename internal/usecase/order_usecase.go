package usecase

import (
	"context"

	"coderr/internal/domain/entity"
	"coderr/internal/domain/policy"
	"coderr/internal/domain/repository"
)

// OrderUsecase defines the order workflow.
type OrderUsecase interface {
	CreateOrder(ctx context.Context, caller *policy.Caller, offerDetailID int64) (*entity.Order, error)
	UpdateOrder(ctx context.Context, caller *policy.Caller, orderID int64, input *UpdateOrderInput) (*entity.Order, error)
	AuthorizeOrderUpdate(ctx context.Context, caller *policy.Caller, orderID int64) error
	DeleteOrder(ctx context.Context, caller *policy.Caller, orderID int64) error
	ListOrders(ctx context.Context, caller *policy.Caller, page repository.PageRequest) (*PageResult[*entity.Order], error)
	GetOrder(ctx context.Context, caller *policy.Caller, orderID int64) (*entity.Order, error)
	CountOrders(ctx context.Context, caller *policy.Caller, businessUserID int64, status entity.OrderStatus) (int64, error)
}

// UpdateOrderInput carries a status change. UnknownFields lists any other payload keys.
type UpdateOrderInput struct {
	Status        *string
	UnknownFields []string
}
