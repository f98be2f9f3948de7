package utils

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// PaginationParams represents pagination parameters. Page numbers start at 0,
// matching the store contract.
type PaginationParams struct {
	Page     int
	PageSize int
}

// GetPaginationParams extracts pagination parameters from request
func GetPaginationParams(c echo.Context) PaginationParams {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("size"))

	if page < 0 {
		page = 0
	}

	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20 // Default page size
	}

	return PaginationParams{
		Page:     page,
		PageSize: pageSize,
	}
}
