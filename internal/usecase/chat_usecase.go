package usecase

import (
	"context"
	"strconv"

	"turtlecoin/internal/domain/entity"
	"turtlecoin/internal/domain/repository"
	"turtlecoin/internal/infrastructure/ratelimit"
	"turtlecoin/internal/infrastructure/sse"
	"turtlecoin/pkg/errors"
	"turtlecoin/pkg/logger"
)

type ChatUseCase struct {
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	listingRepo repository.ListingRepository
	hub         *sse.Hub
	rateLimiter *ratelimit.RateLimiter
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	listingRepo repository.ListingRepository,
	hub *sse.Hub,
) *ChatUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &ChatUseCase{
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		listingRepo: listingRepo,
		hub:         hub,
		rateLimiter: rateLimiter,
	}
}

// chatPush is the payload of an `event: chat` push frame.
type chatPush struct {
	RoomID     string  `json:"roomId"`
	Kind       string  `json:"kind"`
	Sender     int64   `json:"sender,omitempty"`
	Text       string  `json:"text,omitempty"`
	Title      string  `json:"title,omitempty"`
	Price      float64 `json:"price,omitempty"`
	Image      string  `json:"image,omitempty"`
	RegistTime string  `json:"registTime,omitempty"`
}

// OpenRoom resolves (and creates if missing) the room between the caller and
// otherID, returning its id. The call is idempotent: a concurrent create by
// the other side yields the same room.
func (uc *ChatUseCase) OpenRoom(ctx context.Context, selfID, otherID int64) (string, error) {
	pair, err := entity.NewPair(selfID, otherID)
	if err != nil {
		return "", err
	}

	if _, err := uc.userRepo.GetByID(ctx, selfID); err != nil {
		return "", err
	}
	if _, err := uc.userRepo.GetByID(ctx, otherID); err != nil {
		return "", err
	}

	room, err := uc.ensureRoom(ctx, selfID, pair)
	if err != nil {
		return "", err
	}
	return room.ID, nil
}

// OpenRoomFromListing opens the room between the caller and the listing's
// seller and drops the listing card into it. The card is idempotent per
// listing: re-entering the room does not append a duplicate.
func (uc *ChatUseCase) OpenRoomFromListing(ctx context.Context, selfID, listingID int64) (string, error) {
	listing, err := uc.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return "", err
	}

	pair, err := entity.NewPair(selfID, listing.SellerID)
	if err != nil {
		return "", err
	}

	if _, err := uc.userRepo.GetByID(ctx, selfID); err != nil {
		return "", err
	}
	if _, err := uc.userRepo.GetByID(ctx, listing.SellerID); err != nil {
		return "", err
	}

	room, err := uc.ensureRoom(ctx, selfID, pair)
	if err != nil {
		return "", err
	}

	hasCard, err := uc.chatRepo.HasListingCard(ctx, pair, listing.ID)
	if err != nil {
		return "", err
	}
	if !hasCard {
		image := ""
		if len(listing.Photos) > 0 {
			image = listing.Photos[0]
		}
		card := entity.NewListingCardMessage(listing.ID, listing.Title, listing.Price, image)
		if err := uc.chatRepo.AppendMessage(ctx, pair, card); err != nil {
			return "", err
		}

		uc.hub.Notify(pair.Other(selfID), "chat", chatPush{
			RoomID:     room.ID,
			Kind:       entity.MessageTypeListing,
			Title:      card.Title,
			Price:      card.Price,
			Image:      card.Image,
			RegistTime: card.RegistTime,
		})
	}

	return room.ID, nil
}

// SendText appends a text message from the caller to the room shared with
// otherID and pushes a notification to the receiver. The message is durable
// before the push fires; push failures never surface here.
func (uc *ChatUseCase) SendText(ctx context.Context, selfID, otherID int64, text string) (*entity.Message, error) {
	pair, err := entity.NewPair(selfID, otherID)
	if err != nil {
		return nil, err
	}

	if allowed, wait := uc.rateLimiter.Allow(strconv.FormatInt(selfID, 10), "send_message"); !allowed {
		logger.Warn("SendText rate limited: user %d must wait %v", selfID, wait)
		return nil, errors.TooManyRequests("Too many messages, slow down")
	}

	room, err := uc.chatRepo.GetRoomByPair(ctx, pair)
	if err != nil {
		return nil, err
	}

	message := entity.NewTextMessage(selfID, text)
	if err := uc.chatRepo.AppendMessage(ctx, pair, message); err != nil {
		return nil, err
	}

	uc.hub.Notify(otherID, "chat", chatPush{
		RoomID:     room.ID,
		Kind:       entity.MessageTypeText,
		Sender:     message.Sender,
		Text:       message.Text,
		RegistTime: message.RegistTime,
	})

	return message, nil
}

// SendTextToRoom is SendText addressed by room id instead of the opposite
// user; the caller must be a participant.
func (uc *ChatUseCase) SendTextToRoom(ctx context.Context, selfID int64, roomID, text string) (*entity.Message, error) {
	room, err := uc.chatRepo.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	pair := room.Pair()
	if !pair.Contains(selfID) {
		return nil, errors.NotAParticipant(nil)
	}
	return uc.SendText(ctx, selfID, pair.Other(selfID), text)
}

// History returns one page of the room's messages, newest first, enriched
// with sender profiles. Reading history counts as opening the room: the
// caller's unread counter is reset.
func (uc *ChatUseCase) History(ctx context.Context, selfID, otherID int64, page, size int) ([]MessageView, error) {
	pair, err := entity.NewPair(selfID, otherID)
	if err != nil {
		return nil, err
	}

	messages, err := uc.chatRepo.Messages(ctx, pair, page, size)
	if err != nil {
		return nil, err
	}

	if err := uc.chatRepo.ResetUnread(ctx, pair, selfID); err != nil {
		logger.Warn("Failed to reset unread count for user %d in room %s: %v", selfID, pair.Key(), err)
	}

	views := make([]MessageView, 0, len(messages))
	profiles := make(map[int64]*entity.User)
	for _, message := range messages {
		var sender *entity.User
		if message.IsText() {
			sender = uc.lookupProfile(ctx, profiles, message.Sender)
		}
		views = append(views, AssembleMessage(message, sender))
	}
	return views, nil
}

// HistoryByRoom is History addressed by room id; the caller must be a
// participant.
func (uc *ChatUseCase) HistoryByRoom(ctx context.Context, selfID int64, roomID string, page, size int) ([]MessageView, error) {
	room, err := uc.chatRepo.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	pair := room.Pair()
	if !pair.Contains(selfID) {
		return nil, errors.NotAParticipant(nil)
	}
	return uc.History(ctx, selfID, pair.Other(selfID), page, size)
}

// Rooms returns one page of the caller's room list ordered by recency.
func (uc *ChatUseCase) Rooms(ctx context.Context, selfID int64, page, size int) ([]RoomSummary, error) {
	rooms, err := uc.chatRepo.RecentRooms(ctx, selfID, page, size)
	if err != nil {
		return nil, err
	}

	summaries := make([]RoomSummary, 0, len(rooms))
	profiles := make(map[int64]*entity.User)
	for _, room := range rooms {
		other := uc.lookupProfile(ctx, profiles, room.Pair().Other(selfID))
		summaries = append(summaries, AssembleRoomSummary(room, selfID, other))
	}
	return summaries, nil
}

// ensureRoom fetches the pair's room, creating it on first contact. A lost
// creation race resolves to the winner's room.
func (uc *ChatUseCase) ensureRoom(ctx context.Context, selfID int64, pair entity.Pair) (*entity.Room, error) {
	room, err := uc.chatRepo.GetRoomByPair(ctx, pair)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	if allowed, wait := uc.rateLimiter.Allow(strconv.FormatInt(selfID, 10), "create_room"); !allowed {
		logger.Warn("Room creation rate limited: user %d must wait %v", selfID, wait)
		return nil, errors.TooManyRequests("Too many new rooms, slow down")
	}

	room = entity.NewRoom(pair)
	if err := uc.chatRepo.CreateRoom(ctx, room); err != nil {
		if errors.Is(err, "CONFLICT") {
			return uc.chatRepo.GetRoomByPair(ctx, pair)
		}
		return nil, err
	}
	return room, nil
}

// lookupProfile caches per-call profile lookups; a deleted account yields nil
// rather than an error so history and room lists stay readable.
func (uc *ChatUseCase) lookupProfile(ctx context.Context, cache map[int64]*entity.User, userID int64) *entity.User {
	if user, ok := cache[userID]; ok {
		return user
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, "NOT_FOUND") {
			logger.Warn("Profile lookup failed for user %d: %v", userID, err)
		}
		user = nil
	}
	cache[userID] = user
	return user
}
