package router

import (
	"github.com/labstack/echo/v4"

	"turtlecoin/internal/adapter/api/handler"
	"turtlecoin/internal/adapter/api/middleware"
)

// SetupListingRouter sets up turtle listing routes
func SetupListingRouter(e *echo.Echo, listingHandler *handler.ListingHandler, authMiddleware *middleware.AuthMiddleware) {
	group := e.Group("/main/transaction")

	group.POST("", listingHandler.Enroll, authMiddleware.Authenticate)
	group.GET("/:id", listingHandler.GetListing)
	group.GET("", listingHandler.GetListings)
}
