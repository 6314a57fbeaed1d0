package repository

import (
	"context"

	"coderr/internal/domain/entity"
	"coderr/internal/domain/repository"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a testify mock of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

var _ repository.UserRepository = (*MockUserRepository)(nil)

type MockUserRepository_Expecter struct {
	mock *mock.Mock
}

func (_m *MockUserRepository) EXPECT() *MockUserRepository_Expecter {
	return &MockUserRepository_Expecter{mock: &_m.Mock}
}

// FindByID provides a mock function with given fields: ctx, id
func (_m *MockUserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	ret := _m.Called(ctx, id)

	if len(ret) == 0 {
		panic("no return value specified for FindByID")
	}

	if rf, ok := ret.Get(0).(func(context.Context, int64) (*entity.User, error)); ok {
		return rf(ctx, id)
	}

	r0, _ := ret.Get(0).(*entity.User)

	return r0, ret.Error(1)
}

// MockUserRepository_FindByID_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'FindByID'
type MockUserRepository_FindByID_Call struct {
	*mock.Call
}

// FindByID is a helper method to define mock.On call
//   - ctx context.Context
//   - id int64
func (_e *MockUserRepository_Expecter) FindByID(ctx interface{}, id interface{}) *MockUserRepository_FindByID_Call {
	return &MockUserRepository_FindByID_Call{Call: _e.mock.On("FindByID", ctx, id)}
}

func (_c *MockUserRepository_FindByID_Call) Run(run func(ctx context.Context, id int64)) *MockUserRepository_FindByID_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(int64))
	})
	return _c
}

func (_c *MockUserRepository_FindByID_Call) Return(_a0 *entity.User, _a1 error) *MockUserRepository_FindByID_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockUserRepository_FindByID_Call) RunAndReturn(run func(context.Context, int64) (*entity.User, error)) *MockUserRepository_FindByID_Call {
	_c.Call.Return(run)
	return _c
}

// FindByUsername provides a mock function with given fields: ctx, username
func (_m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	ret := _m.Called(ctx, username)

	if len(ret) == 0 {
		panic("no return value specified for FindByUsername")
	}

	if rf, ok := ret.Get(0).(func(context.Context, string) (*entity.User, error)); ok {
		return rf(ctx, username)
	}

	r0, _ := ret.Get(0).(*entity.User)

	return r0, ret.Error(1)
}

// MockUserRepository_FindByUsername_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'FindByUsername'
type MockUserRepository_FindByUsername_Call struct {
	*mock.Call
}

// FindByUsername is a helper method to define mock.On call
//   - ctx context.Context
//   - username string
func (_e *MockUserRepository_Expecter) FindByUsername(ctx interface{}, username interface{}) *MockUserRepository_FindByUsername_Call {
	return &MockUserRepository_FindByUsername_Call{Call: _e.mock.On("FindByUsername", ctx, username)}
}

func (_c *MockUserRepository_FindByUsername_Call) Run(run func(ctx context.Context, username string)) *MockUserRepository_FindByUsername_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(string))
	})
	return _c
}

func (_c *MockUserRepository_FindByUsername_Call) Return(_a0 *entity.User, _a1 error) *MockUserRepository_FindByUsername_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockUserRepository_FindByUsername_Call) RunAndReturn(run func(context.Context, string) (*entity.User, error)) *MockUserRepository_FindByUsername_Call {
	_c.Call.Return(run)
	return _c
}

// ExistsByUsername provides a mock function with given fields: ctx, username
func (_m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	ret := _m.Called(ctx, username)

	if len(ret) == 0 {
		panic("no return value specified for ExistsByUsername")
	}

	if rf, ok := ret.Get(0).(func(context.Context, string) (bool, error)); ok {
		return rf(ctx, username)
	}

	r0, _ := ret.Get(0).(bool)

	return r0, ret.Error(1)
}

// MockUserRepository_ExistsByUsername_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'ExistsByUsername'
type MockUserRepository_ExistsByUsername_Call struct {
	*mock.Call
}

// ExistsByUsername is a helper method to define mock.On call
//   - ctx context.Context
//   - username string
func (_e *MockUserRepository_Expecter) ExistsByUsername(ctx interface{}, username interface{}) *MockUserRepository_ExistsByUsername_Call {
	return &MockUserRepository_ExistsByUsername_Call{Call: _e.mock.On("ExistsByUsername", ctx, username)}
}

func (_c *MockUserRepository_ExistsByUsername_Call) Run(run func(ctx context.Context, username string)) *MockUserRepository_ExistsByUsername_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(string))
	})
	return _c
}

func (_c *MockUserRepository_ExistsByUsername_Call) Return(_a0 bool, _a1 error) *MockUserRepository_ExistsByUsername_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockUserRepository_ExistsByUsername_Call) RunAndReturn(run func(context.Context, string) (bool, error)) *MockUserRepository_ExistsByUsername_Call {
	_c.Call.Return(run)
	return _c
}

// ExistsByEmail provides a mock function with given fields: ctx, email, excludeID
func (_m *MockUserRepository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	ret := _m.Called(ctx, email, excludeID)

	if len(ret) == 0 {
		panic("no return value specified for ExistsByEmail")
	}

	if rf, ok := ret.Get(0).(func(context.Context, string, int64) (bool, error)); ok {
		return rf(ctx, email, excludeID)
	}

	r0, _ := ret.Get(0).(bool)

	return r0, ret.Error(1)
}

// MockUserRepository_ExistsByEmail_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'ExistsByEmail'
type MockUserRepository_ExistsByEmail_Call struct {
	*mock.Call
}

// ExistsByEmail is a helper method to define mock.On call
//   - ctx context.Context
//   - email string
//   - excludeID int64
func (_e *MockUserRepository_Expecter) ExistsByEmail(ctx interface{}, email interface{}, excludeID interface{}) *MockUserRepository_ExistsByEmail_Call {
	return &MockUserRepository_ExistsByEmail_Call{Call: _e.mock.On("ExistsByEmail", ctx, email, excludeID)}
}

func (_c *MockUserRepository_ExistsByEmail_Call) Run(run func(ctx context.Context, email string, excludeID int64)) *MockUserRepository_ExistsByEmail_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(string), args[2].(int64))
	})
	return _c
}

func (_c *MockUserRepository_ExistsByEmail_Call) Return(_a0 bool, _a1 error) *MockUserRepository_ExistsByEmail_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockUserRepository_ExistsByEmail_Call) RunAndReturn(run func(context.Context, string, int64) (bool, error)) *MockUserRepository_ExistsByEmail_Call {
	_c.Call.Return(run)
	return _c
}

// Create provides a mock function with given fields: ctx, user
func (_m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	ret := _m.Called(ctx, user)

	if len(ret) == 0 {
		panic("no return value specified for Create")
	}

	if rf, ok := ret.Get(0).(func(context.Context, *entity.User) error); ok {
		return rf(ctx, user)
	}

	return ret.Error(0)
}

// MockUserRepository_Create_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Create'
type MockUserRepository_Create_Call struct {
	*mock.Call
}

// Create is a helper method to define mock.On call
//   - ctx context.Context
//   - user *entity.User
func (_e *MockUserRepository_Expecter) Create(ctx interface{}, user interface{}) *MockUserRepository_Create_Call {
	return &MockUserRepository_Create_Call{Call: _e.mock.On("Create", ctx, user)}
}

func (_c *MockUserRepository_Create_Call) Run(run func(ctx context.Context, user *entity.User)) *MockUserRepository_Create_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(*entity.User))
	})
	return _c
}

func (_c *MockUserRepository_Create_Call) Return(_a0 error) *MockUserRepository_Create_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockUserRepository_Create_Call) RunAndReturn(run func(context.Context, *entity.User) error) *MockUserRepository_Create_Call {
	_c.Call.Return(run)
	return _c
}

// Update provides a mock function with given fields: ctx, user
func (_m *MockUserRepository) Update(ctx context.Context, user *entity.User) error {
	ret := _m.Called(ctx, user)

	if len(ret) == 0 {
		panic("no return value specified for Update")
	}

	if rf, ok := ret.Get(0).(func(context.Context, *entity.User) error); ok {
		return rf(ctx, user)
	}

	return ret.Error(0)
}

// MockUserRepository_Update_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Update'
type MockUserRepository_Update_Call struct {
	*mock.Call
}

// Update is a helper method to define mock.On call
//   - ctx context.Context
//   - user *entity.User
func (_e *MockUserRepository_Expecter) Update(ctx interface{}, user interface{}) *MockUserRepository_Update_Call {
	return &MockUserRepository_Update_Call{Call: _e.mock.On("Update", ctx, user)}
}

func (_c *MockUserRepository_Update_Call) Run(run func(ctx context.Context, user *entity.User)) *MockUserRepository_Update_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(*entity.User))
	})
	return _c
}

func (_c *MockUserRepository_Update_Call) Return(_a0 error) *MockUserRepository_Update_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockUserRepository_Update_Call) RunAndReturn(run func(context.Context, *entity.User) error) *MockUserRepository_Update_Call {
	_c.Call.Return(run)
	return _c
}

// ListByType provides a mock function with given fields: ctx, profileType, page
func (_m *MockUserRepository) ListByType(ctx context.Context, profileType entity.ProfileType, page repository.PageRequest) ([]*entity.User, int64, error) {
	ret := _m.Called(ctx, profileType, page)

	if len(ret) == 0 {
		panic("no return value specified for ListByType")
	}

	if rf, ok := ret.Get(0).(func(context.Context, entity.ProfileType, repository.PageRequest) ([]*entity.User, int64, error)); ok {
		return rf(ctx, profileType, page)
	}

	r0, _ := ret.Get(0).([]*entity.User)
	r1, _ := ret.Get(1).(int64)

	return r0, r1, ret.Error(2)
}

// MockUserRepository_ListByType_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'ListByType'
type MockUserRepository_ListByType_Call struct {
	*mock.Call
}

// ListByType is a helper method to define mock.On call
//   - ctx context.Context
//   - profileType entity.ProfileType
//   - page repository.PageRequest
func (_e *MockUserRepository_Expecter) ListByType(ctx interface{}, profileType interface{}, page interface{}) *MockUserRepository_ListByType_Call {
	return &MockUserRepository_ListByType_Call{Call: _e.mock.On("ListByType", ctx, profileType, page)}
}

func (_c *MockUserRepository_ListByType_Call) Run(run func(ctx context.Context, profileType entity.ProfileType, page repository.PageRequest)) *MockUserRepository_ListByType_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(entity.ProfileType), args[2].(repository.PageRequest))
	})
	return _c
}

func (_c *MockUserRepository_ListByType_Call) Return(_a0 []*entity.User, _a1 int64, _a2 error) *MockUserRepository_ListByType_Call {
	_c.Call.Return(_a0, _a1, _a2)
	return _c
}

func (_c *MockUserRepository_ListByType_Call) RunAndReturn(run func(context.Context, entity.ProfileType, repository.PageRequest) ([]*entity.User, int64, error)) *MockUserRepository_ListByType_Call {
	_c.Call.Return(run)
	return _c
}

// CountByType provides a mock function with given fields: ctx, profileType
func (_m *MockUserRepository) CountByType(ctx context.Context, profileType entity.ProfileType) (int64, error) {
	ret := _m.Called(ctx, profileType)

	if len(ret) == 0 {
		panic("no return value specified for CountByType")
	}

	if rf, ok := ret.Get(0).(func(context.Context, entity.ProfileType) (int64, error)); ok {
		return rf(ctx, profileType)
	}

	r0, _ := ret.Get(0).(int64)

	return r0, ret.Error(1)
}

// MockUserRepository_CountByType_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'CountByType'
type MockUserRepository_CountByType_Call struct {
	*mock.Call
}

// CountByType is a helper method to define mock.On call
//   - ctx context.Context
//   - profileType entity.ProfileType
func (_e *MockUserRepository_Expecter) CountByType(ctx interface{}, profileType interface{}) *MockUserRepository_CountByType_Call {
	return &MockUserRepository_CountByType_Call{Call: _e.mock.On("CountByType", ctx, profileType)}
}

func (_c *MockUserRepository_CountByType_Call) Run(run func(ctx context.Context, profileType entity.ProfileType)) *MockUserRepository_CountByType_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(entity.ProfileType))
	})
	return _c
}

func (_c *MockUserRepository_CountByType_Call) Return(_a0 int64, _a1 error) *MockUserRepository_CountByType_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockUserRepository_CountByType_Call) RunAndReturn(run func(context.Context, entity.ProfileType) (int64, error)) *MockUserRepository_CountByType_Call {
	_c.Call.Return(run)
	return _c
}

// NewMockUserRepository creates a new instance of MockUserRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockUserRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUserRepository {
	m := &MockUserRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
