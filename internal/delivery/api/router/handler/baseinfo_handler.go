package handler

import (
	"net/http"
	"strings"

	"coderr/internal/delivery/api/response"
	domainerrors "coderr/internal/domain/errors"
	"coderr/internal/domain/service"
	"coderr/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// HealthCheck reports that the process is serving requests.
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// BaseInfoHandler serves the public marketplace summary.
type BaseInfoHandler struct {
	baseInfoUC usecase.BaseInfoUsecase
}

// BaseInfoHandlerParams holds dependencies for BaseInfoHandler, injected by Fx.
type BaseInfoHandlerParams struct {
	fx.In

	BaseInfoUC usecase.BaseInfoUsecase
}

// NewBaseInfoHandler is the constructor for BaseInfoHandler.
func NewBaseInfoHandler(params BaseInfoHandlerParams) *BaseInfoHandler {
	return &BaseInfoHandler{baseInfoUC: params.BaseInfoUC}
}

// GetBaseInfo returns review, rating, business and offer totals.
func (h *BaseInfoHandler) GetBaseInfo(c echo.Context) error {
	info, err := h.baseInfoUC.GetBaseInfo(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, newBaseInfoView(info))
}

// MediaHandler streams uploaded files out of the blob bucket.
type MediaHandler struct {
	storage service.FileStorage
}

// MediaHandlerParams holds dependencies for MediaHandler, injected by Fx.
type MediaHandlerParams struct {
	fx.In

	Storage service.FileStorage
}

// NewMediaHandler is the constructor for MediaHandler.
func NewMediaHandler(params MediaHandlerParams) *MediaHandler {
	return &MediaHandler{storage: params.Storage}
}

// Serve writes the object stored under the wildcard path.
func (h *MediaHandler) Serve(c echo.Context) error {
	key := strings.TrimPrefix(c.Param("*"), "/")

	file, err := h.storage.Open(c.Request().Context(), key)
	if err != nil {
		if errors.Is(err, service.ErrFileNotFound) {
			return domainerrors.ErrNotFound
		}

		return errors.WithStack(err)
	}
	defer file.Body.Close()

	contentType := file.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}

	return c.Stream(http.StatusOK, contentType, file.Body)
}
