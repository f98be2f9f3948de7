package repository

import (
	"context"

	"turtlecoin/internal/domain/entity"
)

// ChatRepository is the durable container of rooms and messages. Mutators on
// the same room are serialized; AppendMessage applies the room's
// recent-message and unread-counter updates in the same atomic step as the
// append.
type ChatRepository interface {
	// CreateRoom persists a fresh room. Fails with CONFLICT if a room with
	// the same participant pair already exists.
	CreateRoom(ctx context.Context, room *entity.Room) error
	GetRoomByPair(ctx context.Context, pair entity.Pair) (*entity.Room, error)
	GetRoomByID(ctx context.Context, id string) (*entity.Room, error)

	AppendMessage(ctx context.Context, pair entity.Pair, message *entity.Message) error
	ResetUnread(ctx context.Context, pair entity.Pair, reader int64) error

	// Messages returns one page of the room's history, newest first.
	// Page numbers start at 0; a page past the end is empty, not an error.
	Messages(ctx context.Context, pair entity.Pair, page, size int) ([]*entity.Message, error)

	// RecentRooms returns the rooms containing userID ordered by recent
	// message time descending; rooms that never saw a text message sort
	// last, ties break by room id descending.
	RecentRooms(ctx context.Context, userID int64, page, size int) ([]*entity.Room, error)

	// HasListingCard reports whether the room already holds a card for the
	// given listing, to keep the listing hand-off idempotent.
	HasListingCard(ctx context.Context, pair entity.Pair, listingID int64) (bool, error)
}
