package impl

import (
	"context"
	"net/http"
	"testing"

	"coderr/internal/domain/entity"
	"coderr/internal/domain/policy"
	"coderr/internal/domain/repository"
	"coderr/internal/domain/service"
	"coderr/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderWorld struct {
	*fixtures
	business *policy.Caller
	customer *policy.Caller
	offer    *entity.Offer
}

func newOrderWorld(t *testing.T) orderWorld {
	f := newFixtures(t)
	business := f.register(t, "biz", entity.ProfileTypeBusiness)
	customer := f.register(t, "cust", entity.ProfileTypeCustomer)

	return orderWorld{
		fixtures: f,
		business: business,
		customer: customer,
		offer:    f.createOffer(t, business, "Logo"),
	}
}

func (w orderWorld) basicID() int64 {
	return w.offer.DetailByType(entity.OfferTypeBasic).ID
}

func TestOrderService_CreateOrder_Success(t *testing.T) {
	w := newOrderWorld(t)

	order, err := w.orders.CreateOrder(context.Background(), w.customer, w.basicID())

	require.NoError(t, err)
	assert.Equal(t, w.customer.UserID, order.CustomerUserID)
	assert.Equal(t, w.business.UserID, order.BusinessUserID)
	assert.Equal(t, entity.OrderStatusInProgress, order.Status)
	require.NotNil(t, order.Detail)
	assert.Equal(t, 50, order.Detail.Price)
	assert.Contains(t, w.publisher.Types(), service.EventOrderCreated)
}

func TestOrderService_CreateOrder_Errors(t *testing.T) {
	w := newOrderWorld(t)
	ctx := context.Background()

	_, err := w.orders.CreateOrder(ctx, nil, w.basicID())
	assert.Equal(t, http.StatusUnauthorized, httpCode(err))

	_, err = w.orders.CreateOrder(ctx, w.business, w.basicID())
	assert.Equal(t, http.StatusForbidden, httpCode(err))

	_, err = w.orders.CreateOrder(ctx, w.customer, 9999)
	assert.Equal(t, http.StatusNotFound, httpCode(err))

	_, err = w.orders.CreateOrder(ctx, w.customer, 0)
	assert.Equal(t, http.StatusBadRequest, httpCode(err))
}

func TestOrderService_CreateOrder_SameTierTwice(t *testing.T) {
	w := newOrderWorld(t)
	ctx := context.Background()

	first, err := w.orders.CreateOrder(ctx, w.customer, w.basicID())
	require.NoError(t, err)
	second, err := w.orders.CreateOrder(ctx, w.customer, w.basicID())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestOrderService_TierFieldsFollowDetailEdits(t *testing.T) {
	w := newOrderWorld(t)
	ctx := context.Background()

	order, err := w.orders.CreateOrder(ctx, w.customer, w.basicID())
	require.NoError(t, err)

	basic := entity.OfferTypeBasic
	_, err = w.offers.UpdateOffer(ctx, w.business, w.offer.ID, &usecase.UpdateOfferInput{
		Details: []entity.DetailPatch{{OfferType: &basic, Price: ptr(75)}},
	})
	require.NoError(t, err)

	reloaded, err := w.orders.GetOrder(ctx, w.customer, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 75, reloaded.Detail.Price)
}

func TestOrderService_UpdateOrder(t *testing.T) {
	w := newOrderWorld(t)
	ctx := context.Background()
	order, err := w.orders.CreateOrder(ctx, w.customer, w.basicID())
	require.NoError(t, err)

	updated, err := w.orders.UpdateOrder(ctx, w.business, order.ID, &usecase.UpdateOrderInput{Status: ptr("completed")})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCompleted, updated.Status)
	assert.Contains(t, w.publisher.Types(), service.EventOrderStatusChanged)

	_, err = w.orders.UpdateOrder(ctx, w.customer, order.ID, &usecase.UpdateOrderInput{Status: ptr("cancelled")})
	assert.Equal(t, http.StatusForbidden, httpCode(err))

	_, err = w.orders.UpdateOrder(ctx, nil, order.ID, &usecase.UpdateOrderInput{Status: ptr("cancelled")})
	assert.Equal(t, http.StatusUnauthorized, httpCode(err))

	_, err = w.orders.UpdateOrder(ctx, w.business, 9999, &usecase.UpdateOrderInput{Status: ptr("cancelled")})
	assert.Equal(t, http.StatusNotFound, httpCode(err))
}

func TestOrderService_UpdateOrder_RejectsPayloads(t *testing.T) {
	tests := []struct {
		name  string
		input usecase.UpdateOrderInput
		key   string
	}{
		{name: "unknown status", input: usecase.UpdateOrderInput{Status: ptr("shipped")}, key: "status"},
		{name: "missing status", input: usecase.UpdateOrderInput{}, key: "status"},
		{name: "extra field", input: usecase.UpdateOrderInput{Status: ptr("completed"), UnknownFields: []string{"price"}}, key: "non_field_errors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newOrderWorld(t)
			ctx := context.Background()
			order, err := w.orders.CreateOrder(ctx, w.customer, w.basicID())
			require.NoError(t, err)

			_, err = w.orders.UpdateOrder(ctx, w.business, order.ID, &tt.input)

			require.Error(t, err)
			assert.Contains(t, fieldErrors(t, err), tt.key)

			reloaded, err := w.orders.GetOrder(ctx, w.business, order.ID)
			require.NoError(t, err)
			assert.Equal(t, entity.OrderStatusInProgress, reloaded.Status)
		})
	}
}

func TestOrderService_DeleteOrder_StaffOnly(t *testing.T) {
	w := newOrderWorld(t)
	ctx := context.Background()
	order, err := w.orders.CreateOrder(ctx, w.customer, w.basicID())
	require.NoError(t, err)

	err = w.orders.DeleteOrder(ctx, w.business, order.ID)
	assert.Equal(t, http.StatusForbidden, httpCode(err))

	admin := w.staff(t)
	require.NoError(t, w.orders.DeleteOrder(ctx, admin, order.ID))

	err = w.orders.DeleteOrder(ctx, admin, order.ID)
	assert.Equal(t, http.StatusNotFound, httpCode(err))
}

func TestOrderService_ListOrders_ScopedByRole(t *testing.T) {
	w := newOrderWorld(t)
	ctx := context.Background()
	other := w.register(t, "other", entity.ProfileTypeCustomer)

	_, err := w.orders.CreateOrder(ctx, w.customer, w.basicID())
	require.NoError(t, err)
	_, err = w.orders.CreateOrder(ctx, other, w.basicID())
	require.NoError(t, err)

	page, err := w.orders.ListOrders(ctx, w.customer, repository.Unpaged())
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	page, err = w.orders.ListOrders(ctx, w.business, repository.Unpaged())
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = w.orders.ListOrders(ctx, &policy.Caller{UserID: 77}, repository.Unpaged())
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	_, err = w.orders.ListOrders(ctx, nil, repository.Unpaged())
	assert.Equal(t, http.StatusUnauthorized, httpCode(err))
}

func TestOrderService_GetOrder_Visibility(t *testing.T) {
	w := newOrderWorld(t)
	ctx := context.Background()
	stranger := w.register(t, "stranger", entity.ProfileTypeCustomer)
	order, err := w.orders.CreateOrder(ctx, w.customer, w.basicID())
	require.NoError(t, err)

	_, err = w.orders.GetOrder(ctx, stranger, order.ID)
	assert.Equal(t, http.StatusNotFound, httpCode(err))

	_, err = w.orders.GetOrder(ctx, w.staff(t), order.ID)
	assert.NoError(t, err)
}

func TestOrderService_CountOrders(t *testing.T) {
	w := newOrderWorld(t)
	ctx := context.Background()

	first, err := w.orders.CreateOrder(ctx, w.customer, w.basicID())
	require.NoError(t, err)
	_, err = w.orders.CreateOrder(ctx, w.customer, w.basicID())
	require.NoError(t, err)
	_, err = w.orders.UpdateOrder(ctx, w.business, first.ID, &usecase.UpdateOrderInput{Status: ptr("completed")})
	require.NoError(t, err)

	inProgress, err := w.orders.CountOrders(ctx, w.customer, w.business.UserID, entity.OrderStatusInProgress)
	require.NoError(t, err)
	assert.EqualValues(t, 1, inProgress)

	completed, err := w.orders.CountOrders(ctx, w.customer, w.business.UserID, entity.OrderStatusCompleted)
	require.NoError(t, err)
	assert.EqualValues(t, 1, completed)

	_, err = w.orders.CountOrders(ctx, w.customer, 9999, entity.OrderStatusCompleted)
	assert.Equal(t, http.StatusNotFound, httpCode(err))

	_, err = w.orders.CountOrders(ctx, nil, w.business.UserID, entity.OrderStatusCompleted)
	assert.Equal(t, http.StatusUnauthorized, httpCode(err))
}
