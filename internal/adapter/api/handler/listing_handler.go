package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"turtlecoin/internal/usecase"
	"turtlecoin/pkg/errors"
	"turtlecoin/pkg/response"
	"turtlecoin/pkg/utils"
)

type ListingHandler struct {
	listingUseCase *usecase.ListingUseCase
}

func NewListingHandler(listingUseCase *usecase.ListingUseCase) *ListingHandler {
	return &ListingHandler{
		listingUseCase: listingUseCase,
	}
}

type enrollListingRequest struct {
	TurtleID int64    `json:"turtleId" validate:"required,gt=0"`
	Title    string   `json:"title" validate:"required"`
	Content  string   `json:"content"`
	Price    float64  `json:"price" validate:"required,gt=0"`
	Weight   float64  `json:"weight"`
	Photos   []string `json:"photos"`
	Tags     []string `json:"tags"`
}

func (h *ListingHandler) Enroll(c echo.Context) error {
	var req enrollListingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(int64)

	listing, err := h.listingUseCase.Enroll(c.Request().Context(), userID, usecase.EnrollListingInput{
		TurtleID: req.TurtleID,
		Title:    req.Title,
		Content:  req.Content,
		Price:    req.Price,
		Weight:   req.Weight,
		Photos:   req.Photos,
		Tags:     req.Tags,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, listing)
}

func (h *ListingHandler) GetListing(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return response.Error(c, errors.BadRequest("Invalid listing id", err))
	}

	listing, err := h.listingUseCase.GetByID(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, listing)
}

func (h *ListingHandler) GetListings(c echo.Context) error {
	params := utils.GetPaginationParams(c)

	listings, err := h.listingUseCase.List(c.Request().Context(), params.Page, params.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, listings, params.Page, params.PageSize)
}
