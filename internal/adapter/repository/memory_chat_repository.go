package repository

import (
	"context"
	"sync"
	"time"

	"turtlecoin/internal/domain/entity"
	"turtlecoin/internal/domain/repository"
	"turtlecoin/pkg/errors"
)

// memoryChatRepository implements the chat store contract on process memory.
// It backs tests and local development; the mutation semantics live in the
// shared entity methods so this adapter and the Firestore one cannot drift.
type memoryChatRepository struct {
	mu       sync.Mutex
	byPair   map[string]*entity.Room
	byID     map[string]*entity.Room
	messages map[string][]*entity.Message // room id -> append order
}

func NewMemoryChatRepository() repository.ChatRepository {
	return &memoryChatRepository{
		byPair:   make(map[string]*entity.Room),
		byID:     make(map[string]*entity.Room),
		messages: make(map[string][]*entity.Message),
	}
}

func (r *memoryChatRepository) CreateRoom(ctx context.Context, room *entity.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := room.Pair().Key()
	if _, ok := r.byPair[key]; ok {
		return errors.Conflict("Room for this participant pair already exists")
	}

	now := time.Now()
	room.CreatedAt = now
	room.UpdatedAt = now

	stored := cloneRoom(room)
	r.byPair[key] = stored
	r.byID[stored.ID] = stored
	return nil
}

func (r *memoryChatRepository) GetRoomByPair(ctx context.Context, pair entity.Pair) (*entity.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.byPair[pair.Key()]
	if !ok {
		return nil, errors.NotFound("Room", nil)
	}
	return cloneRoom(room), nil
}

func (r *memoryChatRepository) GetRoomByID(ctx context.Context, id string) (*entity.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.byID[id]
	if !ok {
		return nil, errors.NotFound("Room", nil)
	}
	return cloneRoom(room), nil
}

func (r *memoryChatRepository) AppendMessage(ctx context.Context, pair entity.Pair, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.byPair[pair.Key()]
	if !ok {
		return errors.NotFound("Room", nil)
	}

	// Append order wins over caller clocks: a message serialized later never
	// carries an earlier timestamp than its predecessor.
	history := r.messages[room.ID]
	if n := len(history); n > 0 && message.RegistTime < history[n-1].RegistTime {
		message.RegistTime = history[n-1].RegistTime
	}

	if err := room.Apply(message); err != nil {
		return err
	}
	room.UpdatedAt = time.Now()
	r.messages[room.ID] = append(history, cloneMessage(message))
	return nil
}

func (r *memoryChatRepository) ResetUnread(ctx context.Context, pair entity.Pair, reader int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.byPair[pair.Key()]
	if !ok {
		return errors.NotFound("Room", nil)
	}
	if err := room.ResetUnread(reader); err != nil {
		return err
	}
	room.UpdatedAt = time.Now()
	return nil
}

func (r *memoryChatRepository) Messages(ctx context.Context, pair entity.Pair, page, size int) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.byPair[pair.Key()]
	if !ok {
		return nil, errors.NotFound("Room", nil)
	}

	history := r.messages[room.ID]
	start := page * size
	if start >= len(history) {
		return nil, nil
	}
	end := start + size
	if end > len(history) {
		end = len(history)
	}

	// Newest first: walk the append-order history backwards.
	out := make([]*entity.Message, 0, end-start)
	for i := 0; i < end-start; i++ {
		out = append(out, cloneMessage(history[len(history)-1-start-i]))
	}
	return out, nil
}

func (r *memoryChatRepository) RecentRooms(ctx context.Context, userID int64, page, size int) ([]*entity.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rooms []*entity.Room
	for _, room := range r.byPair {
		if room.Pair().Contains(userID) {
			rooms = append(rooms, cloneRoom(room))
		}
	}

	SortRoomsByRecency(rooms)
	return PageRooms(rooms, page, size), nil
}

func (r *memoryChatRepository) HasListingCard(ctx context.Context, pair entity.Pair, listingID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.byPair[pair.Key()]
	if !ok {
		return false, errors.NotFound("Room", nil)
	}
	for _, m := range r.messages[room.ID] {
		if m.Type == entity.MessageTypeListing && m.ListingID == listingID {
			return true, nil
		}
	}
	return false, nil
}

func cloneRoom(room *entity.Room) *entity.Room {
	clone := *room
	clone.Participants = append([]int64(nil), room.Participants...)
	clone.UnreadCount = append([]int(nil), room.UnreadCount...)
	return &clone
}

func cloneMessage(message *entity.Message) *entity.Message {
	clone := *message
	return &clone
}
