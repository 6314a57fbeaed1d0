package repository

import (
	"coderr/internal/domain/repository"

	"github.com/stretchr/testify/mock"
)

// MockRepositoryFactory is a testify mock of repository.RepositoryFactory.
type MockRepositoryFactory struct {
	mock.Mock
}

var _ repository.RepositoryFactory = (*MockRepositoryFactory)(nil)

type MockRepositoryFactory_Expecter struct {
	mock *mock.Mock
}

func (_m *MockRepositoryFactory) EXPECT() *MockRepositoryFactory_Expecter {
	return &MockRepositoryFactory_Expecter{mock: &_m.Mock}
}

// NewUserRepository provides a mock function with no fields
func (_m *MockRepositoryFactory) NewUserRepository() repository.UserRepository {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for NewUserRepository")
	}

	if rf, ok := ret.Get(0).(func() repository.UserRepository); ok {
		return rf()
	}

	r0, _ := ret.Get(0).(repository.UserRepository)

	return r0
}

// MockRepositoryFactory_NewUserRepository_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'NewUserRepository'
type MockRepositoryFactory_NewUserRepository_Call struct {
	*mock.Call
}

// NewUserRepository is a helper method to define mock.On call
func (_e *MockRepositoryFactory_Expecter) NewUserRepository() *MockRepositoryFactory_NewUserRepository_Call {
	return &MockRepositoryFactory_NewUserRepository_Call{Call: _e.mock.On("NewUserRepository")}
}

func (_c *MockRepositoryFactory_NewUserRepository_Call) Run(run func()) *MockRepositoryFactory_NewUserRepository_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run()
	})
	return _c
}

func (_c *MockRepositoryFactory_NewUserRepository_Call) Return(_a0 repository.UserRepository) *MockRepositoryFactory_NewUserRepository_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockRepositoryFactory_NewUserRepository_Call) RunAndReturn(run func() repository.UserRepository) *MockRepositoryFactory_NewUserRepository_Call {
	_c.Call.Return(run)
	return _c
}

// NewOfferRepository provides a mock function with no fields
func (_m *MockRepositoryFactory) NewOfferRepository() repository.OfferRepository {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for NewOfferRepository")
	}

	if rf, ok := ret.Get(0).(func() repository.OfferRepository); ok {
		return rf()
	}

	r0, _ := ret.Get(0).(repository.OfferRepository)

	return r0
}

// MockRepositoryFactory_NewOfferRepository_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'NewOfferRepository'
type MockRepositoryFactory_NewOfferRepository_Call struct {
	*mock.Call
}

// NewOfferRepository is a helper method to define mock.On call
func (_e *MockRepositoryFactory_Expecter) NewOfferRepository() *MockRepositoryFactory_NewOfferRepository_Call {
	return &MockRepositoryFactory_NewOfferRepository_Call{Call: _e.mock.On("NewOfferRepository")}
}

func (_c *MockRepositoryFactory_NewOfferRepository_Call) Run(run func()) *MockRepositoryFactory_NewOfferRepository_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run()
	})
	return _c
}

func (_c *MockRepositoryFactory_NewOfferRepository_Call) Return(_a0 repository.OfferRepository) *MockRepositoryFactory_NewOfferRepository_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockRepositoryFactory_NewOfferRepository_Call) RunAndReturn(run func() repository.OfferRepository) *MockRepositoryFactory_NewOfferRepository_Call {
	_c.Call.Return(run)
	return _c
}

// NewOrderRepository provides a mock function with no fields
func (_m *MockRepositoryFactory) NewOrderRepository() repository.OrderRepository {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for NewOrderRepository")
	}

	if rf, ok := ret.Get(0).(func() repository.OrderRepository); ok {
		return rf()
	}

	r0, _ := ret.Get(0).(repository.OrderRepository)

	return r0
}

// MockRepositoryFactory_NewOrderRepository_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'NewOrderRepository'
type MockRepositoryFactory_NewOrderRepository_Call struct {
	*mock.Call
}

// NewOrderRepository is a helper method to define mock.On call
func (_e *MockRepositoryFactory_Expecter) NewOrderRepository() *MockRepositoryFactory_NewOrderRepository_Call {
	return &MockRepositoryFactory_NewOrderRepository_Call{Call: _e.mock.On("NewOrderRepository")}
}

func (_c *MockRepositoryFactory_NewOrderRepository_Call) Run(run func()) *MockRepositoryFactory_NewOrderRepository_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run()
	})
	return _c
}

func (_c *MockRepositoryFactory_NewOrderRepository_Call) Return(_a0 repository.OrderRepository) *MockRepositoryFactory_NewOrderRepository_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockRepositoryFactory_NewOrderRepository_Call) RunAndReturn(run func() repository.OrderRepository) *MockRepositoryFactory_NewOrderRepository_Call {
	_c.Call.Return(run)
	return _c
}

// NewReviewRepository provides a mock function with no fields
func (_m *MockRepositoryFactory) NewReviewRepository() repository.ReviewRepository {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for NewReviewRepository")
	}

	if rf, ok := ret.Get(0).(func() repository.ReviewRepository); ok {
		return rf()
	}

	r0, _ := ret.Get(0).(repository.ReviewRepository)

	return r0
}

// MockRepositoryFactory_NewReviewRepository_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'NewReviewRepository'
type MockRepositoryFactory_NewReviewRepository_Call struct {
	*mock.Call
}

// NewReviewRepository is a helper method to define mock.On call
func (_e *MockRepositoryFactory_Expecter) NewReviewRepository() *MockRepositoryFactory_NewReviewRepository_Call {
	return &MockRepositoryFactory_NewReviewRepository_Call{Call: _e.mock.On("NewReviewRepository")}
}

func (_c *MockRepositoryFactory_NewReviewRepository_Call) Run(run func()) *MockRepositoryFactory_NewReviewRepository_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run()
	})
	return _c
}

func (_c *MockRepositoryFactory_NewReviewRepository_Call) Return(_a0 repository.ReviewRepository) *MockRepositoryFactory_NewReviewRepository_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockRepositoryFactory_NewReviewRepository_Call) RunAndReturn(run func() repository.ReviewRepository) *MockRepositoryFactory_NewReviewRepository_Call {
	_c.Call.Return(run)
	return _c
}

// NewMockRepositoryFactory creates a new instance of MockRepositoryFactory. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockRepositoryFactory(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRepositoryFactory {
	m := &MockRepositoryFactory{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
