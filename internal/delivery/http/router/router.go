// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"accounts/internal/delivery/http/middleware"
	"accounts/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// RouterParams holds dependencies for the router, injected by Fx.
type RouterParams struct {
	fx.In

	AccountHandler *handler.AccountHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	accountHandler *handler.AccountHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		accountHandler: params.AccountHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Public account routes
	e.POST("/users", r.accountHandler.Register)
	e.POST("/login", r.accountHandler.Login)
	e.GET("/logout", r.accountHandler.Logout)

	// Owner-only routes. The gate is attached per route because a group on
	// "/:accountId" would also catch unknown paths.
	authenticate := r.authMiddleware.Authenticate
	e.GET("/:accountId/profile", r.accountHandler.GetProfile, authenticate)
	e.PUT("/:accountId/update", r.accountHandler.UpdateProfile, authenticate)
}
