// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"strings"

	"coderr/internal/delivery/api/middleware"
	"coderr/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
)

const apiPrefix = "/api"

type RouterParams struct {
	fx.In

	AuthHandler     *handler.AuthHandler
	ProfileHandler  *handler.ProfileHandler
	OfferHandler    *handler.OfferHandler
	OrderHandler    *handler.OrderHandler
	ReviewHandler   *handler.ReviewHandler
	BaseInfoHandler *handler.BaseInfoHandler
	MediaHandler    *handler.MediaHandler
	AuthMiddleware  *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler     *handler.AuthHandler
	profileHandler  *handler.ProfileHandler
	offerHandler    *handler.OfferHandler
	orderHandler    *handler.OrderHandler
	reviewHandler   *handler.ReviewHandler
	baseInfoHandler *handler.BaseInfoHandler
	mediaHandler    *handler.MediaHandler
	authMiddleware  *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:     params.AuthHandler,
		profileHandler:  params.ProfileHandler,
		offerHandler:    params.OfferHandler,
		orderHandler:    params.OrderHandler,
		reviewHandler:   params.ReviewHandler,
		baseInfoHandler: params.BaseInfoHandler,
		mediaHandler:    params.MediaHandler,
		authMiddleware:  params.AuthMiddleware,
	}
}

// TrailingSlash adds the trailing slash every API route is registered with.
func TrailingSlash() echo.MiddlewareFunc {
	return echomiddleware.AddTrailingSlashWithConfig(echomiddleware.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool {
			return !strings.HasPrefix(c.Request().URL.Path, apiPrefix+"/")
		},
	})
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Uploaded profile files and offer images
	e.GET("/media/*", r.mediaHandler.Serve)

	// Every API route resolves the caller; access rules are applied per operation.
	api := e.Group(apiPrefix, r.authMiddleware.Identify)

	// Auth routes
	api.POST("/registration/", r.authHandler.Register)
	api.POST("/login/", r.authHandler.Login)

	// Profile routes
	api.GET("/profile/:id/", r.profileHandler.GetProfile)
	api.PATCH("/profile/:id/", r.profileHandler.UpdateProfile)
	api.GET("/profiles/business/", r.profileHandler.ListBusinessProfiles)
	api.GET("/profiles/customer/", r.profileHandler.ListCustomerProfiles)

	// Offer routes
	offers := api.Group("/offers")
	{
		offers.GET("/", r.offerHandler.ListOffers)
		offers.POST("/", r.offerHandler.CreateOffer)
		offers.GET("/:id/", r.offerHandler.GetOffer)
		offers.PATCH("/:id/", r.offerHandler.UpdateOffer)
		offers.DELETE("/:id/", r.offerHandler.DeleteOffer)
		offers.GET("/:id/qr/", r.offerHandler.GetShareCode)
	}
	api.GET("/offerdetails/:id/", r.offerHandler.GetOfferDetail)

	// Order routes
	orders := api.Group("/orders")
	{
		orders.GET("/", r.orderHandler.ListOrders)
		orders.POST("/", r.orderHandler.CreateOrder)
		orders.GET("/:id/", r.orderHandler.GetOrder)
		orders.PATCH("/:id/", r.orderHandler.UpdateOrder)
		orders.DELETE("/:id/", r.orderHandler.DeleteOrder)
	}
	api.GET("/order-count/:business_user_id/", r.orderHandler.CountInProgress)
	api.GET("/completed-order-count/:business_user_id/", r.orderHandler.CountCompleted)

	// Review routes
	reviews := api.Group("/reviews")
	{
		reviews.GET("/", r.reviewHandler.ListReviews)
		reviews.POST("/", r.reviewHandler.CreateReview)
		reviews.GET("/:id/", r.reviewHandler.GetReview)
		reviews.PATCH("/:id/", r.reviewHandler.UpdateReview)
		reviews.DELETE("/:id/", r.reviewHandler.DeleteReview)
	}

	api.GET("/base-info/", r.baseInfoHandler.GetBaseInfo)
}
