package repository

import (
	"context"
	stderrors "errors"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"turtlecoin/internal/domain/entity"
	"turtlecoin/internal/domain/repository"
	"turtlecoin/pkg/errors"
	"turtlecoin/pkg/logger"
)

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

func (r *firestoreChatRepository) rooms() *firestore.CollectionRef {
	return r.client.Collection("rooms")
}

func (r *firestoreChatRepository) messages(roomID string) *firestore.CollectionRef {
	return r.rooms().Doc(roomID).Collection("messages")
}

func (r *firestoreChatRepository) pairQuery(pair entity.Pair) firestore.Query {
	return r.rooms().Where("participants", "==", []int64{pair.Left, pair.Right}).Limit(1)
}

// roomByPairTx resolves the room document inside a transaction so that the
// uniqueness check and subsequent writes share one consistent read set.
func (r *firestoreChatRepository) roomByPairTx(tx *firestore.Transaction, pair entity.Pair) (*entity.Room, error) {
	iter := tx.Documents(r.pairQuery(pair))
	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, errors.NotFound("Room", nil)
	}
	if err != nil {
		return nil, errors.Internal("Failed to query room by pair", err)
	}

	var room entity.Room
	if err := doc.DataTo(&room); err != nil {
		return nil, errors.Internal("Failed to parse room data", err)
	}
	return &room, nil
}

func (r *firestoreChatRepository) CreateRoom(ctx context.Context, room *entity.Room) error {
	now := time.Now()
	room.CreatedAt = now
	room.UpdatedAt = now

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := r.roomByPairTx(tx, room.Pair())
		if err == nil {
			return errors.Conflict("Room for this participant pair already exists")
		}
		if !errors.Is(err, "NOT_FOUND") {
			return err
		}
		return tx.Set(r.rooms().Doc(room.ID), room)
	})
	if err != nil {
		if errors.Is(err, "CONFLICT") {
			return err
		}
		return errors.Internal("Failed to create room", err)
	}
	return nil
}

func (r *firestoreChatRepository) GetRoomByPair(ctx context.Context, pair entity.Pair) (*entity.Room, error) {
	iter := r.pairQuery(pair).Documents(ctx)
	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, errors.NotFound("Room", nil)
	}
	if err != nil {
		return nil, errors.Internal("Failed to query room by pair", err)
	}

	var room entity.Room
	if err := doc.DataTo(&room); err != nil {
		return nil, errors.Internal("Failed to parse room data", err)
	}
	return &room, nil
}

func (r *firestoreChatRepository) GetRoomByID(ctx context.Context, id string) (*entity.Room, error) {
	doc, err := r.rooms().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Room", err)
		}
		return nil, errors.Internal("Failed to get room", err)
	}

	var room entity.Room
	if err := doc.DataTo(&room); err != nil {
		return nil, errors.Internal("Failed to parse room data", err)
	}
	return &room, nil
}

func (r *firestoreChatRepository) AppendMessage(ctx context.Context, pair entity.Pair, message *entity.Message) error {
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		room, err := r.roomByPairTx(tx, pair)
		if err != nil {
			return err
		}

		if err := room.Apply(message); err != nil {
			return err
		}
		room.UpdatedAt = time.Now()

		if err := tx.Set(r.messages(room.ID).Doc(message.ID), message); err != nil {
			return err
		}
		return tx.Set(r.rooms().Doc(room.ID), room)
	})
	if err != nil {
		var appErr *errors.AppError
		if ok := errorsAs(err, &appErr); ok {
			return appErr
		}
		return errors.Internal("Failed to append message", err)
	}
	return nil
}

func (r *firestoreChatRepository) ResetUnread(ctx context.Context, pair entity.Pair, reader int64) error {
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		room, err := r.roomByPairTx(tx, pair)
		if err != nil {
			return err
		}
		if err := room.ResetUnread(reader); err != nil {
			return err
		}
		room.UpdatedAt = time.Now()
		return tx.Set(r.rooms().Doc(room.ID), room)
	})
	if err != nil {
		var appErr *errors.AppError
		if ok := errorsAs(err, &appErr); ok {
			return appErr
		}
		return errors.Internal("Failed to reset unread count", err)
	}
	return nil
}

func (r *firestoreChatRepository) Messages(ctx context.Context, pair entity.Pair, page, size int) ([]*entity.Message, error) {
	room, err := r.GetRoomByPair(ctx, pair)
	if err != nil {
		return nil, err
	}

	query := r.messages(room.ID).
		OrderBy("registTime", firestore.Desc).
		OrderBy(firestore.DocumentID, firestore.Desc).
		Offset(page * size).
		Limit(size)

	iter := query.Documents(ctx)
	var messages []*entity.Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Error("Firestore error while iterating messages for room %s: %v", room.ID, err)
			return nil, errors.Internal("Failed to iterate messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			logger.Error("Error parsing message data for room %s: %v", room.ID, err)
			return nil, errors.Internal("Failed to parse message data", err)
		}
		messages = append(messages, &message)
	}

	return messages, nil
}

func (r *firestoreChatRepository) RecentRooms(ctx context.Context, userID int64, page, size int) ([]*entity.Room, error) {
	// Single fetch plus in-memory ordering sidesteps a composite index on
	// participants + recentMessage.registTime.
	query := r.rooms().Where("participants", "array-contains", userID)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while fetching rooms for user %d: %v", userID, err)
		return nil, errors.Internal("Failed to fetch rooms", err)
	}

	var rooms []*entity.Room
	for _, doc := range allDocs {
		var room entity.Room
		if err := doc.DataTo(&room); err != nil {
			logger.Warn("Skipping unparsable room document for user %d: %v", userID, err)
			continue
		}
		rooms = append(rooms, &room)
	}

	SortRoomsByRecency(rooms)
	return PageRooms(rooms, page, size), nil
}

func (r *firestoreChatRepository) HasListingCard(ctx context.Context, pair entity.Pair, listingID int64) (bool, error) {
	room, err := r.GetRoomByPair(ctx, pair)
	if err != nil {
		return false, err
	}

	iter := r.messages(room.ID).
		Where("type", "==", entity.MessageTypeListing).
		Where("listingId", "==", listingID).
		Limit(1).
		Documents(ctx)
	_, err = iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, errors.Internal("Failed to query listing card", err)
	}
	return true, nil
}

// errorsAs keeps application errors raised inside a transaction closure from
// being re-wrapped as internal failures.
func errorsAs(err error, target **errors.AppError) bool {
	return stderrors.As(err, target)
}

// SortRoomsByRecency orders rooms by recent message time descending; rooms
// still carrying the sentinel recent message sort last, ties break by room id
// descending.
func SortRoomsByRecency(rooms []*entity.Room) {
	sort.SliceStable(rooms, func(i, j int) bool {
		ri, rj := rooms[i].RecentMessage, rooms[j].RecentMessage
		if ri.IsZero() != rj.IsZero() {
			return !ri.IsZero()
		}
		if ri.RegistTime != rj.RegistTime {
			return ri.RegistTime > rj.RegistTime
		}
		return rooms[i].ID > rooms[j].ID
	})
}

// PageRooms slices one page out of an already ordered room list.
func PageRooms(rooms []*entity.Room, page, size int) []*entity.Room {
	start := page * size
	if start >= len(rooms) {
		return nil
	}
	end := start + size
	if end > len(rooms) {
		end = len(rooms)
	}
	return rooms[start:end]
}
