package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"turtlecoin/internal/infrastructure/sse"
	"turtlecoin/pkg/errors"
	"turtlecoin/pkg/response"
)

type NotificationHandler struct {
	hub       *sse.Hub
	keepalive time.Duration
}

func NewNotificationHandler(hub *sse.Hub, keepalive time.Duration) *NotificationHandler {
	return &NotificationHandler{
		hub:       hub,
		keepalive: keepalive,
	}
}

// Subscribe opens the caller's long-lived text/event-stream. Only the
// authenticated user may subscribe to their own stream.
func (h *NotificationHandler) Subscribe(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		return response.Error(c, errors.BadRequest("Invalid user id", err))
	}

	if uid := c.Get("uid").(int64); uid != userID {
		return response.Error(c, errors.Forbidden("You may only subscribe to your own stream", nil))
	}

	sub := h.hub.Subscribe(userID)
	defer h.hub.Close(sub)

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case <-sub.Done():
			return nil
		case event := <-sub.Events():
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, event.Data); err != nil {
				return nil
			}
			w.Flush()
		case <-ticker.C:
			// comment frame, ignored by clients
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}

// SendData injects a notification into a user's stream. Testing hook.
func (h *NotificationHandler) SendData(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		return response.Error(c, errors.BadRequest("Invalid user id", err))
	}

	var payload interface{} = "data"
	if c.Request().Body != nil {
		var body map[string]interface{}
		if err := json.NewDecoder(c.Request().Body).Decode(&body); err == nil && len(body) > 0 {
			payload = body
		}
	}

	h.hub.Notify(userID, "chat", payload)
	return c.NoContent(http.StatusOK)
}
