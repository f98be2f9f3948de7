package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	MessageTypeText    = "text"
	MessageTypeListing = "listing"
)

// registTimeLayout is fixed width so that lexical order on the stored
// strings matches chronological order.
const registTimeLayout = "2006-01-02T15:04:05.000000000Z"

func nowRegistTime() string {
	return time.Now().UTC().Format(registTimeLayout)
}

// Message is a tagged variant: Type selects which fields are meaningful.
// Text messages carry Sender and Text; listing cards carry ListingID, Title,
// Price and Image. RegistTime is an ISO-8601 string on both and is the
// ordering key within a room.
type Message struct {
	ID         string  `json:"id" firestore:"id"`
	Type       string  `json:"type" firestore:"type"`
	Sender     int64   `json:"sender,omitempty" firestore:"sender,omitempty"`
	Text       string  `json:"text,omitempty" firestore:"text,omitempty"`
	ListingID  int64   `json:"listingId,omitempty" firestore:"listingId,omitempty"`
	Title      string  `json:"title,omitempty" firestore:"title,omitempty"`
	Price      float64 `json:"price,omitempty" firestore:"price,omitempty"`
	Image      string  `json:"image,omitempty" firestore:"image,omitempty"`
	RegistTime string  `json:"registTime" firestore:"registTime"`
}

func NewTextMessage(sender int64, text string) *Message {
	return &Message{
		ID:         uuid.New().String(),
		Type:       MessageTypeText,
		Sender:     sender,
		Text:       text,
		RegistTime: nowRegistTime(),
	}
}

func NewListingCardMessage(listingID int64, title string, price float64, image string) *Message {
	return &Message{
		ID:         uuid.New().String(),
		Type:       MessageTypeListing,
		ListingID:  listingID,
		Title:      title,
		Price:      price,
		Image:      image,
		RegistTime: nowRegistTime(),
	}
}

func (m *Message) IsText() bool {
	return m.Type == MessageTypeText
}
