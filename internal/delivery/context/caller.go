package context

import (
	"coderr/internal/domain/entity"
	"coderr/internal/domain/policy"

	"github.com/labstack/echo/v4"
)

const (
	// KeyCaller is the key for storing the authenticated caller in echo.Context.
	KeyCaller ContextKey = "caller"

	// KeyUser is the key for storing the authenticated user in echo.Context.
	KeyUser ContextKey = "user"
)

// SetUser stores the authenticated user and the caller derived from it.
func SetUser(c echo.Context, user *entity.User) {
	c.Set(string(KeyUser), user)
	c.Set(string(KeyCaller), policy.CallerFromUser(user))
}

// GetUser returns the authenticated user, or nil for anonymous requests.
func GetUser(c echo.Context) *entity.User {
	user, _ := c.Get(string(KeyUser)).(*entity.User)

	return user
}

// GetCaller returns the authenticated caller, or nil for anonymous requests.
func GetCaller(c echo.Context) *policy.Caller {
	caller, _ := c.Get(string(KeyCaller)).(*policy.Caller)

	return caller
}
