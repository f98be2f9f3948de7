package router

import (
	"github.com/labstack/echo/v4"

	"turtlecoin/internal/adapter/api/handler"
	"turtlecoin/internal/adapter/api/middleware"
)

// SetupUserRouter sets up user registration, login and profile routes
func SetupUserRouter(e *echo.Echo, userHandler *handler.UserHandler, authMiddleware *middleware.AuthMiddleware) {
	group := e.Group("/main/user")

	group.POST("/register", userHandler.Register)
	group.POST("/login", userHandler.Login)
	group.GET("/:id", userHandler.GetUser, authMiddleware.Authenticate)
}
