package router

import (
	"github.com/labstack/echo/v4"

	"turtlecoin/internal/adapter/api/handler"
	"turtlecoin/internal/adapter/api/middleware"
)

func Setup(
	e *echo.Echo,
	authMiddleware *middleware.AuthMiddleware,
	chatHandler *handler.ChatHandler,
	notificationHandler *handler.NotificationHandler,
	userHandler *handler.UserHandler,
	listingHandler *handler.ListingHandler,
) {
	SetupHealthRouter(e)
	SetupUserRouter(e, userHandler, authMiddleware)
	SetupListingRouter(e, listingHandler, authMiddleware)
	SetupChatRouter(e, chatHandler, authMiddleware)
	SetupNotificationRouter(e, notificationHandler, authMiddleware)
}
