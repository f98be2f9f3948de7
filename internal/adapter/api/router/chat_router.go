package router

import (
	"github.com/labstack/echo/v4"

	"turtlecoin/internal/adapter/api/handler"
	"turtlecoin/internal/adapter/api/middleware"
)

// SetupChatRouter sets up all chat room routes
func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware) {
	chatGroup := e.Group("/chat/rooms")
	chatGroup.Use(authMiddleware.Authenticate)

	chatGroup.POST("", chatHandler.CreateRoom)                         // POST /chat/rooms
	chatGroup.POST("/from-listing", chatHandler.CreateRoomFromListing) // POST /chat/rooms/from-listing
	chatGroup.GET("", chatHandler.GetRooms)                            // GET /chat/rooms

	chatGroup.POST("/:id/messages", chatHandler.SendMessage) // POST /chat/rooms/:id/messages
	chatGroup.GET("/:id/messages", chatHandler.GetMessages)  // GET /chat/rooms/:id/messages
}
