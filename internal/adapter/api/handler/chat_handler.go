package handler

import (
	"github.com/labstack/echo/v4"

	"turtlecoin/internal/usecase"
	"turtlecoin/pkg/response"
	"turtlecoin/pkg/utils"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type createRoomRequest struct {
	OtherUserID int64 `json:"otherUserId" validate:"required,gt=0"`
}

type createRoomFromListingRequest struct {
	ListingID int64 `json:"listingId" validate:"required,gt=0"`
}

type sendMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

type roomIDResponse struct {
	RoomID string `json:"roomId"`
}

// CreateRoom opens (or returns) the room between the caller and another user
func (h *ChatHandler) CreateRoom(c echo.Context) error {
	var req createRoomRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(int64)

	roomID, err := h.chatUseCase.OpenRoom(c.Request().Context(), userID, req.OtherUserID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, roomIDResponse{RoomID: roomID})
}

// CreateRoomFromListing opens the room with a listing's seller and drops the
// listing card into it
func (h *ChatHandler) CreateRoomFromListing(c echo.Context) error {
	var req createRoomFromListingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(int64)

	roomID, err := h.chatUseCase.OpenRoomFromListing(c.Request().Context(), userID, req.ListingID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, roomIDResponse{RoomID: roomID})
}

// SendMessage appends a text message to a room
func (h *ChatHandler) SendMessage(c echo.Context) error {
	roomID := c.Param("id")
	userID := c.Get("uid").(int64)

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.chatUseCase.SendTextToRoom(c.Request().Context(), userID, roomID, req.Text)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// GetMessages returns one page of a room's history, newest first
func (h *ChatHandler) GetMessages(c echo.Context) error {
	roomID := c.Param("id")
	userID := c.Get("uid").(int64)
	params := utils.GetPaginationParams(c)

	messages, err := h.chatUseCase.HistoryByRoom(c.Request().Context(), userID, roomID, params.Page, params.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, messages, params.Page, params.PageSize)
}

// GetRooms returns the caller's room list ordered by recency
func (h *ChatHandler) GetRooms(c echo.Context) error {
	userID := c.Get("uid").(int64)
	params := utils.GetPaginationParams(c)

	rooms, err := h.chatUseCase.Rooms(c.Request().Context(), userID, params.Page, params.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, rooms, params.Page, params.PageSize)
}
