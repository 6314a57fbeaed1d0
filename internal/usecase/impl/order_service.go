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

// orderService implements the OrderUsecase interface.
type orderService struct {
	txManager repository.TransactionManager
	orderRepo repository.OrderRepository
	offerRepo repository.OfferRepository
	userRepo  repository.UserRepository
	publisher service.EventPublisher
	logger    *slog.Logger
}

// OrderServiceParams holds dependencies for OrderService, injected by Fx.
type OrderServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	OrderRepo repository.OrderRepository
	OfferRepo repository.OfferRepository
	UserRepo  repository.UserRepository
	Publisher service.EventPublisher
	Logger    *slog.Logger
}

// NewOrderService is the constructor for orderService.
func NewOrderService(params OrderServiceParams) usecase.OrderUsecase {
	return &orderService{
		txManager: params.TxManager,
		orderRepo: params.OrderRepo,
		offerRepo: params.OfferRepo,
		userRepo:  params.UserRepo,
		publisher: params.Publisher,
		logger:    params.Logger,
	}
}

func (srv *orderService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateOrder places an order on a tier for the calling customer.
func (srv *orderService) CreateOrder(ctx context.Context, caller *policy.Caller, offerDetailID int64) (*entity.Order, error) {
	if err := policy.Check(policy.OrderCreate, caller, nil); err != nil {
		return nil, err
	}
	if offerDetailID <= 0 {
		return nil, domainerrors.NewValidationError("offer_detail_id", domainerrors.MsgRequired)
	}

	var order *entity.Order
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		detail, err := repoFactory.NewOfferRepository().FindDetailByID(ctx, offerDetailID)
		if err != nil {
			return notFound(err, repository.ErrOfferDetailNotFound, "offer detail not found")
		}

		order = &entity.Order{
			CustomerUserID: caller.UserID,
			BusinessUserID: detail.Offer.UserID,
			OfferDetailID:  detail.ID,
			Status:         entity.OrderStatusInProgress,
		}
		if err := repoFactory.NewOrderRepository().Create(ctx, order); err != nil {
			return notFound(err, repository.ErrOfferDetailNotFound, "offer detail not found")
		}

		detail.Offer = nil
		order.Detail = detail

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create order")
	}

	srv.log(ctx).Info("Order created", slog.Int64("orderID", order.ID), slog.Int64("customerID", order.CustomerUserID))
	publishAfterCommit(ctx, srv.publisher, srv.log(ctx), service.EventOrderCreated, map[string]any{
		"order_id":         order.ID,
		"customer_user_id": order.CustomerUserID,
		"business_user_id": order.BusinessUserID,
		"offer_detail_id":  order.OfferDetailID,
	})

	return order, nil
}

// UpdateOrder changes the status of an order received by the calling business user.
func (srv *orderService) UpdateOrder(ctx context.Context, caller *policy.Caller, orderID int64, input *usecase.UpdateOrderInput) (*entity.Order, error) {
	if err := policy.Check(policy.OrderUpdate, caller, nil); err != nil {
		return nil, err
	}

	var (
		order    *entity.Order
		previous entity.OrderStatus
	)
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		orderRepo := repoFactory.NewOrderRepository()

		found, err := orderRepo.FindByID(ctx, orderID)
		if err != nil {
			return notFound(err, repository.ErrOrderNotFound, "order not found")
		}
		if err := policy.Check(policy.OrderUpdate, caller, policy.TargetOwnedBy(found.BusinessUserID)); err != nil {
			return err
		}

		status, err := validateStatusUpdate(input)
		if err != nil {
			return err
		}

		previous = found.Status
		found.Status = status
		if err := orderRepo.UpdateStatus(ctx, found); err != nil {
			return notFound(err, repository.ErrOrderNotFound, "order not found")
		}
		order = found

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update order")
	}

	if previous != order.Status {
		srv.log(ctx).Info("Order status changed", slog.Int64("orderID", order.ID), slog.String("status", string(order.Status)))
		publishAfterCommit(ctx, srv.publisher, srv.log(ctx), service.EventOrderStatusChanged, map[string]any{
			"order_id":        order.ID,
			"previous_status": string(previous),
			"status":          string(order.Status),
		})
	}

	return order, nil
}

func validateStatusUpdate(input *usecase.UpdateOrderInput) (entity.OrderStatus, error) {
	if len(input.UnknownFields) > 0 {
		fields := append([]string(nil), input.UnknownFields...)
		sort.Strings(fields)

		return "", domainerrors.NewNonFieldError("Only the status field may be updated. Not allowed: " + strings.Join(fields, ", ") + ".")
	}
	if input.Status == nil {
		return "", domainerrors.NewValidationError("status", domainerrors.MsgRequired)
	}

	status := entity.OrderStatus(*input.Status)
	if !status.IsValid() {
		return "", domainerrors.NewValidationError("status", "\""+*input.Status+"\" is not a valid choice.")
	}

	return status, nil
}

// AuthorizeOrderUpdate checks that the caller is the business user of an existing order.
func (srv *orderService) AuthorizeOrderUpdate(ctx context.Context, caller *policy.Caller, orderID int64) error {
	if err := policy.Check(policy.OrderUpdate, caller, nil); err != nil {
		return err
	}

	order, err := srv.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return notFound(err, repository.ErrOrderNotFound, "order not found")
	}

	return policy.Check(policy.OrderUpdate, caller, policy.TargetOwnedBy(order.BusinessUserID))
}

// DeleteOrder removes an order. Staff only.
func (srv *orderService) DeleteOrder(ctx context.Context, caller *policy.Caller, orderID int64) error {
	if err := policy.Check(policy.OrderDelete, caller, nil); err != nil {
		return err
	}

	if err := srv.orderRepo.Delete(ctx, orderID); err != nil {
		return notFound(err, repository.ErrOrderNotFound, "order not found")
	}

	srv.log(ctx).Info("Order deleted", slog.Int64("orderID", orderID))

	return nil
}

// ListOrders lists the caller's orders: placed ones for customers, received ones for business users.
func (srv *orderService) ListOrders(ctx context.Context, caller *policy.Caller, page repository.PageRequest) (*usecase.PageResult[*entity.Order], error) {
	if err := policy.Check(policy.OrderList, caller, nil); err != nil {
		return nil, err
	}

	var scope repository.OrderScope
	switch caller.Type {
	case entity.ProfileTypeCustomer:
		scope = repository.OrderScopeCustomer
	case entity.ProfileTypeBusiness:
		scope = repository.OrderScopeBusiness
	default:
		return &usecase.PageResult[*entity.Order]{Items: []*entity.Order{}}, nil
	}

	orders, total, err := srv.orderRepo.ListByUser(ctx, caller.UserID, scope, page)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}

	return &usecase.PageResult[*entity.Order]{Items: orders, Total: total}, nil
}

// GetOrder retrieves an order visible to the caller.
func (srv *orderService) GetOrder(ctx context.Context, caller *policy.Caller, orderID int64) (*entity.Order, error) {
	if err := policy.Check(policy.OrderRetrieve, caller, nil); err != nil {
		return nil, err
	}

	order, err := srv.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, notFound(err, repository.ErrOrderNotFound, "order not found")
	}
	if !caller.IsStaff && !order.IsParty(caller.UserID) {
		return nil, errors.Wrap(domainerrors.ErrNotFound, "order not found")
	}

	return order, nil
}

// CountOrders counts the orders a business user received with the given status.
func (srv *orderService) CountOrders(ctx context.Context, caller *policy.Caller, businessUserID int64, status entity.OrderStatus) (int64, error) {
	if err := policy.Check(policy.OrderCount, caller, nil); err != nil {
		return 0, err
	}

	if _, err := srv.userRepo.FindByID(ctx, businessUserID); err != nil {
		return 0, notFound(err, repository.ErrUserNotFound, "business user not found")
	}

	count, err := srv.orderRepo.CountByBusinessAndStatus(ctx, businessUserID, status)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count orders")
	}

	return count, nil
}
