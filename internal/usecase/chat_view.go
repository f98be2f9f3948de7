package usecase

import (
	"turtlecoin/internal/domain/entity"
)

// MessageView is the outward-facing rendering of a stored message; the
// concrete type mirrors the message's discriminator.
type MessageView interface {
	isMessageView()
}

// TextMessageView is a text message joined with its sender's profile.
// Nickname and UserProfile stay null when the account no longer exists so
// old history remains readable.
type TextMessageView struct {
	Type        string  `json:"type"`
	UserID      int64   `json:"userId"`
	Nickname    *string `json:"nickname"`
	UserProfile *string `json:"userProfile"`
	Message     string  `json:"message"`
	RegistTime  string  `json:"registTime"`
}

func (TextMessageView) isMessageView() {}

// ListingCardView renders a listing card verbatim from its stored fields;
// the image URL is a persisted opaque string.
type ListingCardView struct {
	Type       string  `json:"type"`
	ListingID  int64   `json:"listingId"`
	Title      string  `json:"title"`
	Price      float64 `json:"price"`
	Image      string  `json:"image"`
	RegistTime string  `json:"registTime"`
}

func (ListingCardView) isMessageView() {}

// RoomSummary is one row of the room list.
type RoomSummary struct {
	RoomID            string  `json:"roomId"`
	OtherUserID       int64   `json:"otherUserId"`
	OtherNickname     *string `json:"otherNickname"`
	OtherProfileImage *string `json:"otherProfileImage"`
	LastText          string  `json:"lastText"`
	LastTimestamp     string  `json:"lastTimestamp"`
	UnreadForSelf     int     `json:"unreadForSelf"`
}

// AssembleMessage builds the view for one stored message. sender may be nil
// for text messages whose author was deleted; it is ignored for cards.
func AssembleMessage(m *entity.Message, sender *entity.User) MessageView {
	if m.IsText() {
		view := TextMessageView{
			Type:       m.Type,
			UserID:     m.Sender,
			Message:    m.Text,
			RegistTime: m.RegistTime,
		}
		if sender != nil {
			view.Nickname = &sender.Nickname
			view.UserProfile = &sender.ProfileImage
		}
		return view
	}

	return ListingCardView{
		Type:       m.Type,
		ListingID:  m.ListingID,
		Title:      m.Title,
		Price:      m.Price,
		Image:      m.Image,
		RegistTime: m.RegistTime,
	}
}

// AssembleRoomSummary projects a room onto the caller's side of it. other may
// be nil when the opposite account was deleted.
func AssembleRoomSummary(room *entity.Room, selfID int64, other *entity.User) RoomSummary {
	summary := RoomSummary{
		RoomID:        room.ID,
		OtherUserID:   room.Pair().Other(selfID),
		LastText:      room.RecentMessage.Text,
		LastTimestamp: room.RecentMessage.RegistTime,
		UnreadForSelf: room.UnreadFor(selfID),
	}
	if other != nil {
		summary.OtherNickname = &other.Nickname
		summary.OtherProfileImage = &other.ProfileImage
	}
	return summary
}
