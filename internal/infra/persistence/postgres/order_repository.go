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
)

// orderRepository implements repository.OrderRepository using GORM.
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository is the constructor for orderRepository.
func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts the order and reloads its tier.
func (repo *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	orderM := fromOrderDomain(order)

	if err := repo.db.WithContext(ctx).Omit("OfferDetail").Create(orderM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrOfferDetailNotFound
		}
		if isCheckConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("invalid order status")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create order")
	}

	order.ID = orderM.ID
	order.CreatedAt = orderM.CreatedAt
	order.UpdatedAt = orderM.UpdatedAt

	return nil
}

// FindByID retrieves an order with its tier.
func (repo *orderRepository) FindByID(ctx context.Context, id int64) (*entity.Order, error) {
	var orderM model.OrderModel
	err := repo.db.WithContext(ctx).
		Preload("OfferDetail").
		Where("id = ?", id).
		First(&orderM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOrderNotFound
		}

		return nil, errors.Wrap(err, "failed to find order by id")
	}

	return toOrderDomain(&orderM), nil
}

// UpdateStatus writes the status and advances updated_at.
func (repo *orderRepository) UpdateStatus(ctx context.Context, order *entity.Order) error {
	now := time.Now()
	result := repo.db.WithContext(ctx).
		Model(&model.OrderModel{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"status":     string(order.Status),
			"updated_at": now,
		})
	if result.Error != nil {
		if isCheckConstraintViolation(result.Error) {
			return domainerrors.ErrValidationFailed.WrapMessage("invalid order status")
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update order")
	}
	if result.RowsAffected == 0 {
		return repository.ErrOrderNotFound
	}

	order.UpdatedAt = now

	return nil
}

// Delete removes an order.
func (repo *orderRepository) Delete(ctx context.Context, id int64) error {
	result := repo.db.WithContext(ctx).Delete(&model.OrderModel{}, id)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete order")
	}
	if result.RowsAffected == 0 {
		return repository.ErrOrderNotFound
	}

	return nil
}

// ListByUser pages through orders placed or received by a user, newest first.
func (repo *orderRepository) ListByUser(ctx context.Context, userID int64, scope repository.OrderScope, page repository.PageRequest) ([]*entity.Order, int64, error) {
	base := repo.db.WithContext(ctx).Model(&model.OrderModel{})
	switch scope {
	case repository.OrderScopeCustomer:
		base = base.Where("customer_user_id = ?", userID)
	case repository.OrderScopeBusiness:
		base = base.Where("business_user_id = ?", userID)
	default:
		return []*entity.Order{}, 0, nil
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count orders")
	}

	var ordersM []*model.OrderModel
	err := paginate(base.Session(&gorm.Session{}), page).
		Preload("OfferDetail").
		Order("created_at DESC").
		Order("id DESC").
		Find(&ordersM).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list orders")
	}

	orders := make([]*entity.Order, 0, len(ordersM))
	for _, o := range ordersM {
		orders = append(orders, toOrderDomain(o))
	}

	return orders, total, nil
}

// CountByBusinessAndStatus counts a business user's orders in one status.
func (repo *orderRepository) CountByBusinessAndStatus(ctx context.Context, businessUserID int64, status entity.OrderStatus) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&model.OrderModel{}).
		Where("business_user_id = ? AND status = ?", businessUserID, string(status)).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count orders")
	}

	return count, nil
}

// --- Mapper Functions ---

func toOrderDomain(data *model.OrderModel) *entity.Order {
	order := &entity.Order{
		ID:             data.ID,
		CustomerUserID: data.CustomerUserID,
		BusinessUserID: data.BusinessUserID,
		OfferDetailID:  data.OfferDetailID,
		Status:         entity.OrderStatus(data.Status),
		CreatedAt:      data.CreatedAt,
		UpdatedAt:      data.UpdatedAt,
	}
	if data.OfferDetail != nil {
		order.Detail = toOfferDetailDomain(data.OfferDetail)
	}

	return order
}

func fromOrderDomain(data *entity.Order) *model.OrderModel {
	return &model.OrderModel{
		ID:             data.ID,
		CustomerUserID: data.CustomerUserID,
		BusinessUserID: data.BusinessUserID,
		OfferDetailID:  data.OfferDetailID,
		Status:         string(data.Status),
	}
}
