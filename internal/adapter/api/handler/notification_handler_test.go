package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turtlecoin/internal/infrastructure/sse"
)

// streamRecorder is a response writer safe to inspect while the handler
// goroutine is still streaming into it.
type streamRecorder struct {
	mu     sync.Mutex
	header http.Header
	code   int
	body   strings.Builder
}

func newStreamRecorder() *streamRecorder {
	return &streamRecorder{header: make(http.Header)}
}

func (w *streamRecorder) Header() http.Header { return w.header }

func (w *streamRecorder) WriteHeader(code int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.code = code
}

func (w *streamRecorder) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.body.Write(p)
}

func (w *streamRecorder) Flush() {}

func (w *streamRecorder) BodyString() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.body.String()
}

func TestSubscribeRejectsOtherUsersStream(t *testing.T) {
	hub := sse.NewHub()
	h := NewNotificationHandler(hub, time.Second)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/main/notifications/sse/subscribe/13", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("13")
	c.Set("uid", int64(7))

	require.NoError(t, h.Subscribe(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, hub.SubscriberCount(13))
}

func TestSubscribeRejectsBadUserID(t *testing.T) {
	h := NewNotificationHandler(sse.NewHub(), time.Second)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/main/notifications/sse/subscribe/abc", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	c.Set("uid", int64(7))

	require.NoError(t, h.Subscribe(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubscribeStreamsEvents(t *testing.T) {
	hub := sse.NewHub()
	h := NewNotificationHandler(hub, 50*time.Millisecond)

	e := echo.New()
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/main/notifications/sse/subscribe/13", nil).WithContext(ctx)
	rec := newStreamRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("13")
	c.Set("uid", int64(13))

	done := make(chan error, 1)
	go func() {
		done <- h.Subscribe(c)
	}()

	require.Eventually(t, func() bool {
		return hub.SubscriberCount(13) == 1
	}, time.Second, 5*time.Millisecond, "the stream should register with the hub")

	hub.Notify(13, "chat", map[string]string{"text": "hello"})

	require.Eventually(t, func() bool {
		return strings.Contains(rec.BodyString(), "event: chat")
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("handler did not return after the client disconnected")
	}

	assert.Contains(t, rec.BodyString(), "event: chat\ndata: {\"text\":\"hello\"}\n\n")
	assert.Equal(t, "text/event-stream", rec.Header().Get(echo.HeaderContentType))
	assert.Zero(t, hub.SubscriberCount(13), "disconnect removes the subscription")
}

func TestSubscribeWritesKeepalives(t *testing.T) {
	hub := sse.NewHub()
	h := NewNotificationHandler(hub, 10*time.Millisecond)

	e := echo.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/main/notifications/sse/subscribe/13", nil).WithContext(ctx)
	rec := newStreamRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("13")
	c.Set("uid", int64(13))

	done := make(chan error, 1)
	go func() {
		done <- h.Subscribe(c)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(rec.BodyString(), ": keepalive\n\n")
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestSendDataReachesSubscribers(t *testing.T) {
	hub := sse.NewHub()
	h := NewNotificationHandler(hub, time.Second)

	sub := hub.Subscribe(13)
	defer hub.Close(sub)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/main/notifications/send-data/13", strings.NewReader(`{"text":"probe"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("13")

	require.NoError(t, h.SendData(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	select {
	case event := <-sub.Events():
		assert.Equal(t, "chat", event.Name)
		assert.JSONEq(t, `{"text":"probe"}`, string(event.Data))
	default:
		t.Fatal("expected the injected frame to reach the subscriber")
	}
}

func TestSendDataWithoutBodySendsPlaceholder(t *testing.T) {
	hub := sse.NewHub()
	h := NewNotificationHandler(hub, time.Second)

	sub := hub.Subscribe(13)
	defer hub.Close(sub)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/main/notifications/send-data/13", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("13")

	require.NoError(t, h.SendData(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	select {
	case event := <-sub.Events():
		assert.Equal(t, `"data"`, string(event.Data))
	default:
		t.Fatal("expected a placeholder frame")
	}
}
