package handler

import (
	"coderr/internal/delivery/api/response"
	"coderr/internal/domain/entity"
	"coderr/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	authUC usecase.AuthUsecase
}

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	AuthUC usecase.AuthUsecase
}

// NewAuthHandler is the constructor for AuthHandler.
func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{authUC: params.AuthUC}
}

// RegistrationRequest is the body of POST /api/registration/.
type RegistrationRequest struct {
	Username         string `json:"username"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	RepeatedPassword string `json:"repeated_password"`
	Type             string `json:"type"`
}

// LoginRequest is the body of POST /api/login/.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account with its profile and returns a token.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegistrationRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(err)
	}

	out, err := h.authUC.Register(c.Request().Context(), &usecase.RegisterInput{
		Username:         req.Username,
		Email:            req.Email,
		Password:         req.Password,
		RepeatedPassword: req.RepeatedPassword,
		Type:             entity.ProfileType(req.Type),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Created(c, newAuthView(out.Token, out.User))
}

// Login exchanges credentials for a token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(err)
	}

	out, err := h.authUC.Login(c.Request().Context(), &usecase.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, newAuthView(out.Token, out.User))
}
