package router

import (
	"github.com/labstack/echo/v4"

	"turtlecoin/internal/adapter/api/handler"
	"turtlecoin/internal/adapter/api/middleware"
)

// SetupNotificationRouter sets up the SSE push routes
func SetupNotificationRouter(e *echo.Echo, notificationHandler *handler.NotificationHandler, authMiddleware *middleware.AuthMiddleware) {
	group := e.Group("/main/notifications")

	// subscribers must prove they are the user in the path
	group.GET("/sse/subscribe/:id", notificationHandler.Subscribe, authMiddleware.Authenticate)

	// testing hook that injects a notification
	group.POST("/send-data/:id", notificationHandler.SendData)
}
