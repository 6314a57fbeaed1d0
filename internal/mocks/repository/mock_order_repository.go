package repository

import (
	"context"

	"coderr/internal/domain/entity"
	"coderr/internal/domain/repository"

	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a testify mock of repository.OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

var _ repository.OrderRepository = (*MockOrderRepository)(nil)

type MockOrderRepository_Expecter struct {
	mock *mock.Mock
}

func (_m *MockOrderRepository) EXPECT() *MockOrderRepository_Expecter {
	return &MockOrderRepository_Expecter{mock: &_m.Mock}
}

// Create provides a mock function with given fields: ctx, order
func (_m *MockOrderRepository) Create(ctx context.Context, order *entity.Order) error {
	ret := _m.Called(ctx, order)

	if len(ret) == 0 {
		panic("no return value specified for Create")
	}

	if rf, ok := ret.Get(0).(func(context.Context, *entity.Order) error); ok {
		return rf(ctx, order)
	}

	return ret.Error(0)
}

// MockOrderRepository_Create_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Create'
type MockOrderRepository_Create_Call struct {
	*mock.Call
}

// Create is a helper method to define mock.On call
//   - ctx context.Context
//   - order *entity.Order
func (_e *MockOrderRepository_Expecter) Create(ctx interface{}, order interface{}) *MockOrderRepository_Create_Call {
	return &MockOrderRepository_Create_Call{Call: _e.mock.On("Create", ctx, order)}
}

func (_c *MockOrderRepository_Create_Call) Run(run func(ctx context.Context, order *entity.Order)) *MockOrderRepository_Create_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(*entity.Order))
	})
	return _c
}

func (_c *MockOrderRepository_Create_Call) Return(_a0 error) *MockOrderRepository_Create_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockOrderRepository_Create_Call) RunAndReturn(run func(context.Context, *entity.Order) error) *MockOrderRepository_Create_Call {
	_c.Call.Return(run)
	return _c
}

// FindByID provides a mock function with given fields: ctx, id
func (_m *MockOrderRepository) FindByID(ctx context.Context, id int64) (*entity.Order, error) {
	ret := _m.Called(ctx, id)

	if len(ret) == 0 {
		panic("no return value specified for FindByID")
	}

	if rf, ok := ret.Get(0).(func(context.Context, int64) (*entity.Order, error)); ok {
		return rf(ctx, id)
	}

	r0, _ := ret.Get(0).(*entity.Order)

	return r0, ret.Error(1)
}

// MockOrderRepository_FindByID_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'FindByID'
type MockOrderRepository_FindByID_Call struct {
	*mock.Call
}

// FindByID is a helper method to define mock.On call
//   - ctx context.Context
//   - id int64
func (_e *MockOrderRepository_Expecter) FindByID(ctx interface{}, id interface{}) *MockOrderRepository_FindByID_Call {
	return &MockOrderRepository_FindByID_Call{Call: _e.mock.On("FindByID", ctx, id)}
}

func (_c *MockOrderRepository_FindByID_Call) Run(run func(ctx context.Context, id int64)) *MockOrderRepository_FindByID_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(int64))
	})
	return _c
}

func (_c *MockOrderRepository_FindByID_Call) Return(_a0 *entity.Order, _a1 error) *MockOrderRepository_FindByID_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockOrderRepository_FindByID_Call) RunAndReturn(run func(context.Context, int64) (*entity.Order, error)) *MockOrderRepository_FindByID_Call {
	_c.Call.Return(run)
	return _c
}

// UpdateStatus provides a mock function with given fields: ctx, order
func (_m *MockOrderRepository) UpdateStatus(ctx context.Context, order *entity.Order) error {
	ret := _m.Called(ctx, order)

	if len(ret) == 0 {
		panic("no return value specified for UpdateStatus")
	}

	if rf, ok := ret.Get(0).(func(context.Context, *entity.Order) error); ok {
		return rf(ctx, order)
	}

	return ret.Error(0)
}

// MockOrderRepository_UpdateStatus_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'UpdateStatus'
type MockOrderRepository_UpdateStatus_Call struct {
	*mock.Call
}

// UpdateStatus is a helper method to define mock.On call
//   - ctx context.Context
//   - order *entity.Order
func (_e *MockOrderRepository_Expecter) UpdateStatus(ctx interface{}, order interface{}) *MockOrderRepository_UpdateStatus_Call {
	return &MockOrderRepository_UpdateStatus_Call{Call: _e.mock.On("UpdateStatus", ctx, order)}
}

func (_c *MockOrderRepository_UpdateStatus_Call) Run(run func(ctx context.Context, order *entity.Order)) *MockOrderRepository_UpdateStatus_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(*entity.Order))
	})
	return _c
}

func (_c *MockOrderRepository_UpdateStatus_Call) Return(_a0 error) *MockOrderRepository_UpdateStatus_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockOrderRepository_UpdateStatus_Call) RunAndReturn(run func(context.Context, *entity.Order) error) *MockOrderRepository_UpdateStatus_Call {
	_c.Call.Return(run)
	return _c
}

// Delete provides a mock function with given fields: ctx, id
func (_m *MockOrderRepository) Delete(ctx context.Context, id int64) error {
	ret := _m.Called(ctx, id)

	if len(ret) == 0 {
		panic("no return value specified for Delete")
	}

	if rf, ok := ret.Get(0).(func(context.Context, int64) error); ok {
		return rf(ctx, id)
	}

	return ret.Error(0)
}

// MockOrderRepository_Delete_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Delete'
type MockOrderRepository_Delete_Call struct {
	*mock.Call
}

// Delete is a helper method to define mock.On call
//   - ctx context.Context
//   - id int64
func (_e *MockOrderRepository_Expecter) Delete(ctx interface{}, id interface{}) *MockOrderRepository_Delete_Call {
	return &MockOrderRepository_Delete_Call{Call: _e.mock.On("Delete", ctx, id)}
}

func (_c *MockOrderRepository_Delete_Call) Run(run func(ctx context.Context, id int64)) *MockOrderRepository_Delete_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(int64))
	})
	return _c
}

func (_c *MockOrderRepository_Delete_Call) Return(_a0 error) *MockOrderRepository_Delete_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockOrderRepository_Delete_Call) RunAndReturn(run func(context.Context, int64) error) *MockOrderRepository_Delete_Call {
	_c.Call.Return(run)
	return _c
}

// ListByUser provides a mock function with given fields: ctx, userID, scope, page
func (_m *MockOrderRepository) ListByUser(ctx context.Context, userID int64, scope repository.OrderScope, page repository.PageRequest) ([]*entity.Order, int64, error) {
	ret := _m.Called(ctx, userID, scope, page)

	if len(ret) == 0 {
		panic("no return value specified for ListByUser")
	}

	if rf, ok := ret.Get(0).(func(context.Context, int64, repository.OrderScope, repository.PageRequest) ([]*entity.Order, int64, error)); ok {
		return rf(ctx, userID, scope, page)
	}

	r0, _ := ret.Get(0).([]*entity.Order)
	r1, _ := ret.Get(1).(int64)

	return r0, r1, ret.Error(2)
}

// MockOrderRepository_ListByUser_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'ListByUser'
type MockOrderRepository_ListByUser_Call struct {
	*mock.Call
}

// ListByUser is a helper method to define mock.On call
//   - ctx context.Context
//   - userID int64
//   - scope repository.OrderScope
//   - page repository.PageRequest
func (_e *MockOrderRepository_Expecter) ListByUser(ctx interface{}, userID interface{}, scope interface{}, page interface{}) *MockOrderRepository_ListByUser_Call {
	return &MockOrderRepository_ListByUser_Call{Call: _e.mock.On("ListByUser", ctx, userID, scope, page)}
}

func (_c *MockOrderRepository_ListByUser_Call) Run(run func(ctx context.Context, userID int64, scope repository.OrderScope, page repository.PageRequest)) *MockOrderRepository_ListByUser_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(int64), args[2].(repository.OrderScope), args[3].(repository.PageRequest))
	})
	return _c
}

func (_c *MockOrderRepository_ListByUser_Call) Return(_a0 []*entity.Order, _a1 int64, _a2 error) *MockOrderRepository_ListByUser_Call {
	_c.Call.Return(_a0, _a1, _a2)
	return _c
}

func (_c *MockOrderRepository_ListByUser_Call) RunAndReturn(run func(context.Context, int64, repository.OrderScope, repository.PageRequest) ([]*entity.Order, int64, error)) *MockOrderRepository_ListByUser_Call {
	_c.Call.Return(run)
	return _c
}

// CountByBusinessAndStatus provides a mock function with given fields: ctx, businessUserID, status
func (_m *MockOrderRepository) CountByBusinessAndStatus(ctx context.Context, businessUserID int64, status entity.OrderStatus) (int64, error) {
	ret := _m.Called(ctx, businessUserID, status)

	if len(ret) == 0 {
		panic("no return value specified for CountByBusinessAndStatus")
	}

	if rf, ok := ret.Get(0).(func(context.Context, int64, entity.OrderStatus) (int64, error)); ok {
		return rf(ctx, businessUserID, status)
	}

	r0, _ := ret.Get(0).(int64)

	return r0, ret.Error(1)
}

// MockOrderRepository_CountByBusinessAndStatus_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'CountByBusinessAndStatus'
type MockOrderRepository_CountByBusinessAndStatus_Call struct {
	*mock.Call
}

// CountByBusinessAndStatus is a helper method to define mock.On call
//   - ctx context.Context
//   - businessUserID int64
//   - status entity.OrderStatus
func (_e *MockOrderRepository_Expecter) CountByBusinessAndStatus(ctx interface{}, businessUserID interface{}, status interface{}) *MockOrderRepository_CountByBusinessAndStatus_Call {
	return &MockOrderRepository_CountByBusinessAndStatus_Call{Call: _e.mock.On("CountByBusinessAndStatus", ctx, businessUserID, status)}
}

func (_c *MockOrderRepository_CountByBusinessAndStatus_Call) Run(run func(ctx context.Context, businessUserID int64, status entity.OrderStatus)) *MockOrderRepository_CountByBusinessAndStatus_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(int64), args[2].(entity.OrderStatus))
	})
	return _c
}

func (_c *MockOrderRepository_CountByBusinessAndStatus_Call) Return(_a0 int64, _a1 error) *MockOrderRepository_CountByBusinessAndStatus_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockOrderRepository_CountByBusinessAndStatus_Call) RunAndReturn(run func(context.Context, int64, entity.OrderStatus) (int64, error)) *MockOrderRepository_CountByBusinessAndStatus_Call {
	_c.Call.Return(run)
	return _c
}

// NewMockOrderRepository creates a new instance of MockOrderRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockOrderRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockOrderRepository {
	m := &MockOrderRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
