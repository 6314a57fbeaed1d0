package repository

import (
	"context"

	"coderr/internal/domain/entity"
	"coderr/internal/domain/repository"

	"github.com/stretchr/testify/mock"
)

// MockReviewRepository is a testify mock of repository.ReviewRepository.
type MockReviewRepository struct {
	mock.Mock
}

var _ repository.ReviewRepository = (*MockReviewRepository)(nil)

type MockReviewRepository_Expecter struct {
	mock *mock.Mock
}

func (_m *MockReviewRepository) EXPECT() *MockReviewRepository_Expecter {
	return &MockReviewRepository_Expecter{mock: &_m.Mock}
}

// Create provides a mock function with given fields: ctx, review
func (_m *MockReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	ret := _m.Called(ctx, review)

	if len(ret) == 0 {
		panic("no return value specified for Create")
	}

	if rf, ok := ret.Get(0).(func(context.Context, *entity.Review) error); ok {
		return rf(ctx, review)
	}

	return ret.Error(0)
}

// MockReviewRepository_Create_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Create'
type MockReviewRepository_Create_Call struct {
	*mock.Call
}

// Create is a helper method to define mock.On call
//   - ctx context.Context
//   - review *entity.Review
func (_e *MockReviewRepository_Expecter) Create(ctx interface{}, review interface{}) *MockReviewRepository_Create_Call {
	return &MockReviewRepository_Create_Call{Call: _e.mock.On("Create", ctx, review)}
}

func (_c *MockReviewRepository_Create_Call) Run(run func(ctx context.Context, review *entity.Review)) *MockReviewRepository_Create_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(*entity.Review))
	})
	return _c
}

func (_c *MockReviewRepository_Create_Call) Return(_a0 error) *MockReviewRepository_Create_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockReviewRepository_Create_Call) RunAndReturn(run func(context.Context, *entity.Review) error) *MockReviewRepository_Create_Call {
	_c.Call.Return(run)
	return _c
}

// FindByID provides a mock function with given fields: ctx, id
func (_m *MockReviewRepository) FindByID(ctx context.Context, id int64) (*entity.Review, error) {
	ret := _m.Called(ctx, id)

	if len(ret) == 0 {
		panic("no return value specified for FindByID")
	}

	if rf, ok := ret.Get(0).(func(context.Context, int64) (*entity.Review, error)); ok {
		return rf(ctx, id)
	}

	r0, _ := ret.Get(0).(*entity.Review)

	return r0, ret.Error(1)
}

// MockReviewRepository_FindByID_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'FindByID'
type MockReviewRepository_FindByID_Call struct {
	*mock.Call
}

// FindByID is a helper method to define mock.On call
//   - ctx context.Context
//   - id int64
func (_e *MockReviewRepository_Expecter) FindByID(ctx interface{}, id interface{}) *MockReviewRepository_FindByID_Call {
	return &MockReviewRepository_FindByID_Call{Call: _e.mock.On("FindByID", ctx, id)}
}

func (_c *MockReviewRepository_FindByID_Call) Run(run func(ctx context.Context, id int64)) *MockReviewRepository_FindByID_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(int64))
	})
	return _c
}

func (_c *MockReviewRepository_FindByID_Call) Return(_a0 *entity.Review, _a1 error) *MockReviewRepository_FindByID_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockReviewRepository_FindByID_Call) RunAndReturn(run func(context.Context, int64) (*entity.Review, error)) *MockReviewRepository_FindByID_Call {
	_c.Call.Return(run)
	return _c
}

// ExistsForPair provides a mock function with given fields: ctx, reviewerID, businessUserID
func (_m *MockReviewRepository) ExistsForPair(ctx context.Context, reviewerID int64, businessUserID int64) (bool, error) {
	ret := _m.Called(ctx, reviewerID, businessUserID)

	if len(ret) == 0 {
		panic("no return value specified for ExistsForPair")
	}

	if rf, ok := ret.Get(0).(func(context.Context, int64, int64) (bool, error)); ok {
		return rf(ctx, reviewerID, businessUserID)
	}

	r0, _ := ret.Get(0).(bool)

	return r0, ret.Error(1)
}

// MockReviewRepository_ExistsForPair_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'ExistsForPair'
type MockReviewRepository_ExistsForPair_Call struct {
	*mock.Call
}

// ExistsForPair is a helper method to define mock.On call
//   - ctx context.Context
//   - reviewerID int64
//   - businessUserID int64
func (_e *MockReviewRepository_Expecter) ExistsForPair(ctx interface{}, reviewerID interface{}, businessUserID interface{}) *MockReviewRepository_ExistsForPair_Call {
	return &MockReviewRepository_ExistsForPair_Call{Call: _e.mock.On("ExistsForPair", ctx, reviewerID, businessUserID)}
}

func (_c *MockReviewRepository_ExistsForPair_Call) Run(run func(ctx context.Context, reviewerID int64, businessUserID int64)) *MockReviewRepository_ExistsForPair_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(int64), args[2].(int64))
	})
	return _c
}

func (_c *MockReviewRepository_ExistsForPair_Call) Return(_a0 bool, _a1 error) *MockReviewRepository_ExistsForPair_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockReviewRepository_ExistsForPair_Call) RunAndReturn(run func(context.Context, int64, int64) (bool, error)) *MockReviewRepository_ExistsForPair_Call {
	_c.Call.Return(run)
	return _c
}

// Update provides a mock function with given fields: ctx, review
func (_m *MockReviewRepository) Update(ctx context.Context, review *entity.Review) error {
	ret := _m.Called(ctx, review)

	if len(ret) == 0 {
		panic("no return value specified for Update")
	}

	if rf, ok := ret.Get(0).(func(context.Context, *entity.Review) error); ok {
		return rf(ctx, review)
	}

	return ret.Error(0)
}

// MockReviewRepository_Update_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Update'
type MockReviewRepository_Update_Call struct {
	*mock.Call
}

// Update is a helper method to define mock.On call
//   - ctx context.Context
//   - review *entity.Review
func (_e *MockReviewRepository_Expecter) Update(ctx interface{}, review interface{}) *MockReviewRepository_Update_Call {
	return &MockReviewRepository_Update_Call{Call: _e.mock.On("Update", ctx, review)}
}

func (_c *MockReviewRepository_Update_Call) Run(run func(ctx context.Context, review *entity.Review)) *MockReviewRepository_Update_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(*entity.Review))
	})
	return _c
}

func (_c *MockReviewRepository_Update_Call) Return(_a0 error) *MockReviewRepository_Update_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockReviewRepository_Update_Call) RunAndReturn(run func(context.Context, *entity.Review) error) *MockReviewRepository_Update_Call {
	_c.Call.Return(run)
	return _c
}

// Delete provides a mock function with given fields: ctx, id
func (_m *MockReviewRepository) Delete(ctx context.Context, id int64) error {
	ret := _m.Called(ctx, id)

	if len(ret) == 0 {
		panic("no return value specified for Delete")
	}

	if rf, ok := ret.Get(0).(func(context.Context, int64) error); ok {
		return rf(ctx, id)
	}

	return ret.Error(0)
}

// MockReviewRepository_Delete_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Delete'
type MockReviewRepository_Delete_Call struct {
	*mock.Call
}

// Delete is a helper method to define mock.On call
//   - ctx context.Context
//   - id int64
func (_e *MockReviewRepository_Expecter) Delete(ctx interface{}, id interface{}) *MockReviewRepository_Delete_Call {
	return &MockReviewRepository_Delete_Call{Call: _e.mock.On("Delete", ctx, id)}
}

func (_c *MockReviewRepository_Delete_Call) Run(run func(ctx context.Context, id int64)) *MockReviewRepository_Delete_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(int64))
	})
	return _c
}

func (_c *MockReviewRepository_Delete_Call) Return(_a0 error) *MockReviewRepository_Delete_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockReviewRepository_Delete_Call) RunAndReturn(run func(context.Context, int64) error) *MockReviewRepository_Delete_Call {
	_c.Call.Return(run)
	return _c
}

// List provides a mock function with given fields: ctx, filter, page
func (_m *MockReviewRepository) List(ctx context.Context, filter repository.ReviewFilter, page repository.PageRequest) ([]*entity.Review, int64, error) {
	ret := _m.Called(ctx, filter, page)

	if len(ret) == 0 {
		panic("no return value specified for List")
	}

	if rf, ok := ret.Get(0).(func(context.Context, repository.ReviewFilter, repository.PageRequest) ([]*entity.Review, int64, error)); ok {
		return rf(ctx, filter, page)
	}

	r0, _ := ret.Get(0).([]*entity.Review)
	r1, _ := ret.Get(1).(int64)

	return r0, r1, ret.Error(2)
}

// MockReviewRepository_List_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'List'
type MockReviewRepository_List_Call struct {
	*mock.Call
}

// List is a helper method to define mock.On call
//   - ctx context.Context
//   - filter repository.ReviewFilter
//   - page repository.PageRequest
func (_e *MockReviewRepository_Expecter) List(ctx interface{}, filter interface{}, page interface{}) *MockReviewRepository_List_Call {
	return &MockReviewRepository_List_Call{Call: _e.mock.On("List", ctx, filter, page)}
}

func (_c *MockReviewRepository_List_Call) Run(run func(ctx context.Context, filter repository.ReviewFilter, page repository.PageRequest)) *MockReviewRepository_List_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(repository.ReviewFilter), args[2].(repository.PageRequest))
	})
	return _c
}

func (_c *MockReviewRepository_List_Call) Return(_a0 []*entity.Review, _a1 int64, _a2 error) *MockReviewRepository_List_Call {
	_c.Call.Return(_a0, _a1, _a2)
	return _c
}

func (_c *MockReviewRepository_List_Call) RunAndReturn(run func(context.Context, repository.ReviewFilter, repository.PageRequest) ([]*entity.Review, int64, error)) *MockReviewRepository_List_Call {
	_c.Call.Return(run)
	return _c
}

// Count provides a mock function with given fields: ctx
func (_m *MockReviewRepository) Count(ctx context.Context) (int64, error) {
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

// MockReviewRepository_Count_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Count'
type MockReviewRepository_Count_Call struct {
	*mock.Call
}

// Count is a helper method to define mock.On call
//   - ctx context.Context
func (_e *MockReviewRepository_Expecter) Count(ctx interface{}) *MockReviewRepository_Count_Call {
	return &MockReviewRepository_Count_Call{Call: _e.mock.On("Count", ctx)}
}

func (_c *MockReviewRepository_Count_Call) Run(run func(ctx context.Context)) *MockReviewRepository_Count_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context))
	})
	return _c
}

func (_c *MockReviewRepository_Count_Call) Return(_a0 int64, _a1 error) *MockReviewRepository_Count_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockReviewRepository_Count_Call) RunAndReturn(run func(context.Context) (int64, error)) *MockReviewRepository_Count_Call {
	_c.Call.Return(run)
	return _c
}

// AverageRating provides a mock function with given fields: ctx
func (_m *MockReviewRepository) AverageRating(ctx context.Context) (float64, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for AverageRating")
	}

	if rf, ok := ret.Get(0).(func(context.Context) (float64, error)); ok {
		return rf(ctx)
	}

	r0, _ := ret.Get(0).(float64)

	return r0, ret.Error(1)
}

// MockReviewRepository_AverageRating_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'AverageRating'
type MockReviewRepository_AverageRating_Call struct {
	*mock.Call
}

// AverageRating is a helper method to define mock.On call
//   - ctx context.Context
func (_e *MockReviewRepository_Expecter) AverageRating(ctx interface{}) *MockReviewRepository_AverageRating_Call {
	return &MockReviewRepository_AverageRating_Call{Call: _e.mock.On("AverageRating", ctx)}
}

func (_c *MockReviewRepository_AverageRating_Call) Run(run func(ctx context.Context)) *MockReviewRepository_AverageRating_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context))
	})
	return _c
}

func (_c *MockReviewRepository_AverageRating_Call) Return(_a0 float64, _a1 error) *MockReviewRepository_AverageRating_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockReviewRepository_AverageRating_Call) RunAndReturn(run func(context.Context) (float64, error)) *MockReviewRepository_AverageRating_Call {
	_c.Call.Return(run)
	return _c
}

// NewMockReviewRepository creates a new instance of MockReviewRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockReviewRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockReviewRepository {
	m := &MockReviewRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
