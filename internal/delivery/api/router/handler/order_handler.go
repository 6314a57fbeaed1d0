package handler

import (
	"coderr/config"
	"coderr/internal/delivery/api/response"
	"coderr/internal/domain/entity"
	domainerrors "coderr/internal/domain/errors"
	"coderr/internal/domain/policy"
	"coderr/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// OrderHandler serves the order workflow and the per-business order counters.
type OrderHandler struct {
	orderUC usecase.OrderUsecase
	pages   paginator
}

// OrderHandlerParams holds dependencies for OrderHandler, injected by Fx.
type OrderHandlerParams struct {
	fx.In

	OrderUC usecase.OrderUsecase
	Config  *config.Config
}

// NewOrderHandler is the constructor for OrderHandler.
func NewOrderHandler(params OrderHandlerParams) *OrderHandler {
	return &OrderHandler{
		orderUC: params.OrderUC,
		pages:   newPaginator(params.Config),
	}
}

type orderCountView struct {
	OrderCount int64 `json:"order_count"`
}

type completedOrderCountView struct {
	CompletedOrderCount int64 `json:"completed_order_count"`
}

// ListOrders returns the orders the caller takes part in.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	caller, err := authorize(c, policy.OrderList)
	if err != nil {
		return err
	}

	q, err := h.pages.parse(c)
	if err != nil {
		return err
	}

	result, err := h.orderUC.ListOrders(c.Request().Context(), caller, q.request())
	if err != nil {
		return errors.WithStack(err)
	}

	page, err := buildPage(c, q, result.Total, mapSlice(result.Items, newOrderView))
	if err != nil {
		return err
	}

	return response.OK(c, page)
}

// CreateOrder places an order on an offer tier.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	caller, err := authorize(c, policy.OrderCreate)
	if err != nil {
		return err
	}

	body, err := readPayload(c)
	if err != nil {
		return err
	}

	errs := domainerrors.FieldErrors{}
	detailID := body.Int("offer_detail_id", errs)
	if err := errs.Err(); err != nil {
		return err
	}

	// A missing id reaches the use case as 0, which it rejects after the role check.
	var offerDetailID int64
	if detailID != nil {
		offerDetailID = int64(*detailID)
	}

	order, err := h.orderUC.CreateOrder(c.Request().Context(), caller, offerDetailID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Created(c, newOrderView(order))
}

// GetOrder returns one order visible to the caller.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	caller, err := authorize(c, policy.OrderRetrieve)
	if err != nil {
		return err
	}

	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orderUC.GetOrder(c.Request().Context(), caller, orderID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, newOrderView(order))
}

// UpdateOrder changes the status of an order. Only the status key is accepted.
func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	caller, err := authorize(c, policy.OrderUpdate)
	if err != nil {
		return err
	}

	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	body, err := readPayload(c)
	if err != nil {
		return payloadError(err, func() error {
			return h.orderUC.AuthorizeOrderUpdate(c.Request().Context(), caller, orderID)
		})
	}

	input := &usecase.UpdateOrderInput{Status: body.Text("status")}
	for _, key := range body.Keys() {
		if key != "status" {
			input.UnknownFields = append(input.UnknownFields, key)
		}
	}

	order, err := h.orderUC.UpdateOrder(c.Request().Context(), caller, orderID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, newOrderView(order))
}

// DeleteOrder removes an order. Staff only.
func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	caller, err := authorize(c, policy.OrderDelete)
	if err != nil {
		return err
	}

	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.orderUC.DeleteOrder(c.Request().Context(), caller, orderID); err != nil {
		return errors.WithStack(err)
	}

	return response.NoContent(c)
}

// CountInProgress returns the number of in-progress orders of a business user.
func (h *OrderHandler) CountInProgress(c echo.Context) error {
	count, err := h.count(c, entity.OrderStatusInProgress)
	if err != nil {
		return err
	}

	return response.OK(c, orderCountView{OrderCount: count})
}

// CountCompleted returns the number of completed orders of a business user.
func (h *OrderHandler) CountCompleted(c echo.Context) error {
	count, err := h.count(c, entity.OrderStatusCompleted)
	if err != nil {
		return err
	}

	return response.OK(c, completedOrderCountView{CompletedOrderCount: count})
}

func (h *OrderHandler) count(c echo.Context, status entity.OrderStatus) (int64, error) {
	caller, err := authorize(c, policy.OrderCount)
	if err != nil {
		return 0, err
	}

	businessUserID, err := pathID(c, "business_user_id")
	if err != nil {
		return 0, err
	}

	count, err := h.orderUC.CountOrders(c.Request().Context(), caller, businessUserID, status)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	return count, nil
}
