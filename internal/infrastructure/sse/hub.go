package sse

import (
	"encoding/json"
	"sync"

	"turtlecoin/pkg/logger"
)

// Event is one server-sent frame: an event name plus a JSON-encoded payload.
type Event struct {
	Name string
	Data []byte
}

// Subscription is one live push stream belonging to one user session. A user
// may hold several at once (one per device); each is registered and removed
// independently.
type Subscription struct {
	UserID int64

	events chan Event
	done   chan struct{}
	once   sync.Once
}

// Events is the stream of frames to deliver to the client.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Done is closed when the subscription reaches its terminal state.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Hub is the process-wide registry of push subscriptions keyed by user id.
// Delivery is best effort: a subscriber that cannot keep up is closed and
// dropped, never blocking the sender or its siblings.
type Hub struct {
	mu   sync.RWMutex
	subs map[int64]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[int64]map[*Subscription]struct{}),
	}
}

const subscriptionBuffer = 16

// Subscribe opens a fresh subscription for userID.
func (h *Hub) Subscribe(userID int64) *Subscription {
	sub := &Subscription{
		UserID: userID,
		events: make(chan Event, subscriptionBuffer),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	set, ok := h.subs[userID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[userID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	logger.Debug("SSE subscription opened for user %d", userID)
	return sub
}

// Close removes the subscription from the registry; safe to call repeatedly
// and from any goroutine.
func (h *Hub) Close(sub *Subscription) {
	sub.once.Do(func() {
		h.mu.Lock()
		if set, ok := h.subs[sub.UserID]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(h.subs, sub.UserID)
			}
		}
		h.mu.Unlock()
		close(sub.done)
		logger.Debug("SSE subscription closed for user %d", sub.UserID)
	})
}

// Notify fans a payload out to every live subscription of userID. Payloads
// are marshaled once; subscriptions whose buffers are full are closed.
func (h *Hub) Notify(userID int64, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal push payload for user %d: %v", userID, err)
		return
	}

	h.mu.RLock()
	snapshot := make([]*Subscription, 0, len(h.subs[userID]))
	for sub := range h.subs[userID] {
		snapshot = append(snapshot, sub)
	}
	h.mu.RUnlock()

	for _, sub := range snapshot {
		select {
		case sub.events <- Event{Name: event, Data: data}:
		default:
			logger.Warn("Dropping stalled SSE subscription for user %d", userID)
			h.Close(sub)
		}
	}
}

// SubscriberCount reports the number of live subscriptions for a user.
func (h *Hub) SubscriberCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
