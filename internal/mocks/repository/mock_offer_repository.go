package repository

import (
	"context"

	"coderr/internal/domain/entity"
	"coderr/internal/domain/repository"

	"github.com/stretchr/testify/mock"
)

// MockOfferRepository is a testify mock of repository.OfferRepository.
type MockOfferRepository struct {
	mock.Mock
}

var _ repository.OfferRepository = (*MockOfferRepository)(nil)

type MockOfferRepository_Expecter struct {
	mock *mock.Mock
}

func (_m *MockOfferRepository) EXPECT() *MockOfferRepository_Expecter {
	return &MockOfferRepository_Expecter{mock: &_m.Mock}
}

// Create provides a mock function with given fields: ctx, offer
func (_m *MockOfferRepository) Create(ctx context.Context, offer *entity.Offer) error {
	ret := _m.Called(ctx, offer)

	if len(ret) == 0 {
		panic("no return value specified for Create")
	}

	if rf, ok := ret.Get(0).(func(context.Context, *entity.Offer) error); ok {
		return rf(ctx, offer)
	}

	return ret.Error(0)
}

// MockOfferRepository_Create_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Create'
type MockOfferRepository_Create_Call struct {
	*mock.Call
}

// Create is a helper method to define mock.On call
//   - ctx context.Context
//   - offer *entity.Offer
func (_e *MockOfferRepository_Expecter) Create(ctx interface{}, offer interface{}) *MockOfferRepository_Create_Call {
	return &MockOfferRepository_Create_Call{Call: _e.mock.On("Create", ctx, offer)}
}

func (_c *MockOfferRepository_Create_Call) Run(run func(ctx context.Context, offer *entity.Offer)) *MockOfferRepository_Create_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(*entity.Offer))
	})
	return _c
}

func (_c *MockOfferRepository_Create_Call) Return(_a0 error) *MockOfferRepository_Create_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockOfferRepository_Create_Call) RunAndReturn(run func(context.Context, *entity.Offer) error) *MockOfferRepository_Create_Call {
	_c.Call.Return(run)
	return _c
}

// FindByID provides a mock function with given fields: ctx, id
func (_m *MockOfferRepository) FindByID(ctx context.Context, id int64) (*entity.Offer, error) {
	ret := _m.Called(ctx, id)

	if len(ret) == 0 {
		panic("no return value specified for FindByID")
	}

	if rf, ok := ret.Get(0).(func(context.Context, int64) (*entity.Offer, error)); ok {
		return rf(ctx, id)
	}

	r0, _ := ret.Get(0).(*entity.Offer)

	return r0, ret.Error(1)
}

// MockOfferRepository_FindByID_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'FindByID'
type MockOfferRepository_FindByID_Call struct {
	*mock.Call
}

// FindByID is a helper method to define mock.On call
//   - ctx context.Context
//   - id int64
func (_e *MockOfferRepository_Expecter) FindByID(ctx interface{}, id interface{}) *MockOfferRepository_FindByID_Call {
	return &MockOfferRepository_FindByID_Call{Call: _e.mock.On("FindByID", ctx, id)}
}

func (_c *MockOfferRepository_FindByID_Call) Run(run func(ctx context.Context, id int64)) *MockOfferRepository_FindByID_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(int64))
	})
	return _c
}

func (_c *MockOfferRepository_FindByID_Call) Return(_a0 *entity.Offer, _a1 error) *MockOfferRepository_FindByID_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockOfferRepository_FindByID_Call) RunAndReturn(run func(context.Context, int64) (*entity.Offer, error)) *MockOfferRepository_FindByID_Call {
	_c.Call.Return(run)
	return _c
}

// Update provides a mock function with given fields: ctx, offer
func (_m *MockOfferRepository) Update(ctx context.Context, offer *entity.Offer) error {
	ret := _m.Called(ctx, offer)

	if len(ret) == 0 {
		panic("no return value specified for Update")
	}

	if rf, ok := ret.Get(0).(func(context.Context, *entity.Offer) error); ok {
		return rf(ctx, offer)
	}

	return ret.Error(0)
}

// MockOfferRepository_Update_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Update'
type MockOfferRepository_Update_Call struct {
	*mock.Call
}

// Update is a helper method to define mock.On call
//   - ctx context.Context
//   - offer *entity.Offer
func (_e *MockOfferRepository_Expecter) Update(ctx interface{}, offer interface{}) *MockOfferRepository_Update_Call {
	return &MockOfferRepository_Update_Call{Call: _e.mock.On("Update", ctx, offer)}
}

func (_c *MockOfferRepository_Update_Call) Run(run func(ctx context.Context, offer *entity.Offer)) *MockOfferRepository_Update_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(*entity.Offer))
	})
	return _c
}

func (_c *MockOfferRepository_Update_Call) Return(_a0 error) *MockOfferRepository_Update_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockOfferRepository_Update_Call) RunAndReturn(run func(context.Context, *entity.Offer) error) *MockOfferRepository_Update_Call {
	_c.Call.Return(run)
	return _c
}

// Delete provides a mock function with given fields: ctx, id
func (_m *MockOfferRepository) Delete(ctx context.Context, id int64) error {
	ret := _m.Called(ctx, id)

	if len(ret) == 0 {
		panic("no return value specified for Delete")
	}

	if rf, ok := ret.Get(0).(func(context.Context, int64) error); ok {
		return rf(ctx, id)
	}

	return ret.Error(0)
}

// MockOfferRepository_Delete_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Delete'
type MockOfferRepository_Delete_Call struct {
	*mock.Call
}

// Delete is a helper method to define mock.On call
//   - ctx context.Context
//   - id int64
func (_e *MockOfferRepository_Expecter) Delete(ctx interface{}, id interface{}) *MockOfferRepository_Delete_Call {
	return &MockOfferRepository_Delete_Call{Call: _e.mock.On("Delete", ctx, id)}
}

func (_c *MockOfferRepository_Delete_Call) Run(run func(ctx context.Context, id int64)) *MockOfferRepository_Delete_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(int64))
	})
	return _c
}

func (_c *MockOfferRepository_Delete_Call) Return(_a0 error) *MockOfferRepository_Delete_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockOfferRepository_Delete_Call) RunAndReturn(run func(context.Context, int64) error) *MockOfferRepository_Delete_Call {
	_c.Call.Return(run)
	return _c
}

// List provides a mock function with given fields: ctx, filter, page
func (_m *MockOfferRepository) List(ctx context.Context, filter repository.OfferFilter, page repository.PageRequest) ([]*entity.Offer, int64, error) {
	ret := _m.Called(ctx, filter, page)

	if len(ret) == 0 {
		panic("no return value specified for List")
	}

	if rf, ok := ret.Get(0).(func(context.Context, repository.OfferFilter, repository.PageRequest) ([]*entity.Offer, int64, error)); ok {
		return rf(ctx, filter, page)
	}

	r0, _ := ret.Get(0).([]*entity.Offer)
	r1, _ := ret.Get(1).(int64)

	return r0, r1, ret.Error(2)
}

// MockOfferRepository_List_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'List'
type MockOfferRepository_List_Call struct {
	*mock.Call
}

// List is a helper method to define mock.On call
//   - ctx context.Context
//   - filter repository.OfferFilter
//   - page repository.PageRequest
func (_e *MockOfferRepository_Expecter) List(ctx interface{}, filter interface{}, page interface{}) *MockOfferRepository_List_Call {
	return &MockOfferRepository_List_Call{Call: _e.mock.On("List", ctx, filter, page)}
}

func (_c *MockOfferRepository_List_Call) Run(run func(ctx context.Context, filter repository.OfferFilter, page repository.PageRequest)) *MockOfferRepository_List_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(repository.OfferFilter), args[2].(repository.PageRequest))
	})
	return _c
}

func (_c *MockOfferRepository_List_Call) Return(_a0 []*entity.Offer, _a1 int64, _a2 error) *MockOfferRepository_List_Call {
	_c.Call.Return(_a0, _a1, _a2)
	return _c
}

func (_c *MockOfferRepository_List_Call) RunAndReturn(run func(context.Context, repository.OfferFilter, repository.PageRequest) ([]*entity.Offer, int64, error)) *MockOfferRepository_List_Call {
	_c.Call.Return(run)
	return _c
}

// FindDetailByID provides a mock function with given fields: ctx, id
func (_m *MockOfferRepository) FindDetailByID(ctx context.Context, id int64) (*entity.OfferDetail, error) {
	ret := _m.Called(ctx, id)

	if len(ret) == 0 {
		panic("no return value specified for FindDetailByID")
	}

	if rf, ok := ret.Get(0).(func(context.Context, int64) (*entity.OfferDetail, error)); ok {
		return rf(ctx, id)
	}

	r0, _ := ret.Get(0).(*entity.OfferDetail)

	return r0, ret.Error(1)
}

// MockOfferRepository_FindDetailByID_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'FindDetailByID'
type MockOfferRepository_FindDetailByID_Call struct {
	*mock.Call
}

// FindDetailByID is a helper method to define mock.On call
//   - ctx context.Context
//   - id int64
func (_e *MockOfferRepository_Expecter) FindDetailByID(ctx interface{}, id interface{}) *MockOfferRepository_FindDetailByID_Call {
	return &MockOfferRepository_FindDetailByID_Call{Call: _e.mock.On("FindDetailByID", ctx, id)}
}

func (_c *MockOfferRepository_FindDetailByID_Call) Run(run func(ctx context.Context, id int64)) *MockOfferRepository_FindDetailByID_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(int64))
	})
	return _c
}

func (_c *MockOfferRepository_FindDetailByID_Call) Return(_a0 *entity.OfferDetail, _a1 error) *MockOfferRepository_FindDetailByID_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockOfferRepository_FindDetailByID_Call) RunAndReturn(run func(context.Context, int64) (*entity.OfferDetail, error)) *MockOfferRepository_FindDetailByID_Call {
	_c.Call.Return(run)
	return _c
}

// Count provides a mock function with given fields: ctx
func (_m *MockOfferRepository) Count(ctx context.Context) (int64, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for Count")
	}

	if rf, ok := ret.Get(0).(func(context.Context) (int64, error)); ok {
		return rf(ctx)
	}

	r0, _ := ret.Get(0).(int64)

	return r0, ret.Error(1)
}

// MockOfferRepository_Count_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Count'
type MockOfferRepository_Count_Call struct {
	*mock.Call
}

// Count is a helper method to define mock.On call
//   - ctx context.Context
func (_e *MockOfferRepository_Expecter) Count(ctx interface{}) *MockOfferRepository_Count_Call {
	return &MockOfferRepository_Count_Call{Call: _e.mock.On("Count", ctx)}
}

func (_c *MockOfferRepository_Count_Call) Run(run func(ctx context.Context)) *MockOfferRepository_Count_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context))
	})
	return _c
}

func (_c *MockOfferRepository_Count_Call) Return(_a0 int64, _a1 error) *MockOfferRepository_Count_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockOfferRepository_Count_Call) RunAndReturn(run func(context.Context) (int64, error)) *MockOfferRepository_Count_Call {
	_c.Call.Return(run)
	return _c
}

// NewMockOfferRepository creates a new instance of MockOfferRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockOfferRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockOfferRepository {
	m := &MockOfferRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
