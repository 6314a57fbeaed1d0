package middleware

import (
	"log/slog"
	"strings"

	deliverycontext "coderr/internal/delivery/context"
	"coderr/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// tokenSchemes are the accepted Authorization header schemes.
var tokenSchemes = []string{"Bearer", "Token"}

// AuthMiddleware resolves the caller of each request from its access token.
type AuthMiddleware struct {
	authUC usecase.AuthUsecase
	logger *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(authUC usecase.AuthUsecase, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authUC: authUC,
		logger: logger,
	}
}

// Identify loads the user behind the Authorization header. Requests without a
// header stay anonymous; a header that cannot be resolved is rejected with 401.
// Access rules are enforced by the use cases, not here.
func (m *AuthMiddleware) Identify(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return next(c)
		}

		token := extractToken(header)

		// Authenticate rejects an empty token with the same 401 as an invalid one.
		user, err := m.authUC.Authenticate(c.Request().Context(), token)
		if err != nil {
			return errors.WithStack(err)
		}

		deliverycontext.SetUser(c, user)

		return next(c)
	}
}

// extractToken returns the credential of a "<scheme> <token>" header, or "" when the scheme is unknown.
func extractToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return ""
	}
	for _, s := range tokenSchemes {
		if strings.EqualFold(scheme, s) {
			return strings.TrimSpace(token)
		}
	}

	return ""
}
