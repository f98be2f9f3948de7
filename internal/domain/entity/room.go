package entity

import (
	"time"

	"github.com/google/uuid"
	"turtlecoin/pkg/errors"
)

// RecentMessage is the denormalized copy of the last text message in a room,
// kept for list views. The zero value is the sentinel of a fresh room.
type RecentMessage struct {
	Sender     int64  `json:"sender,omitempty" firestore:"sender,omitempty"`
	Text       string `json:"text,omitempty" firestore:"text,omitempty"`
	RegistTime string `json:"registTime,omitempty" firestore:"registTime,omitempty"`
}

func (r RecentMessage) IsZero() bool {
	return r.RegistTime == ""
}

// Room is the container of the two-party message history between two users.
// Participants holds the canonical pair [left, right] with left < right;
// UnreadCount is indexed positionally to Participants.
type Room struct {
	ID            string        `json:"id" firestore:"id"`
	Participants  []int64       `json:"participants" firestore:"participants"`
	UnreadCount   []int         `json:"unreadCount" firestore:"unreadCount"`
	RecentMessage RecentMessage `json:"recentMessage" firestore:"recentMessage"`
	CreatedAt     time.Time     `json:"created_at" firestore:"createdAt"`
	UpdatedAt     time.Time     `json:"updated_at" firestore:"updatedAt"`
}

func NewRoom(pair Pair) *Room {
	return &Room{
		ID:           uuid.New().String(),
		Participants: []int64{pair.Left, pair.Right},
		UnreadCount:  []int{0, 0},
	}
}

func (r *Room) Pair() Pair {
	return Pair{Left: r.Participants[0], Right: r.Participants[1]}
}

// Apply mutates the room state for an appended message. Text messages
// overwrite RecentMessage and bump the counter of the non-sender; listing
// cards leave both untouched so the room-list preview stays a readable line.
// Store adapters must call this in the same atomic step as the append itself.
func (r *Room) Apply(m *Message) error {
	if !m.IsText() {
		return nil
	}

	pair := r.Pair()
	idx := pair.IndexOf(m.Sender)
	if idx < 0 {
		return errors.NotAParticipant(nil)
	}

	r.RecentMessage = RecentMessage{
		Sender:     m.Sender,
		Text:       m.Text,
		RegistTime: m.RegistTime,
	}
	r.UnreadCount[1-idx]++
	return nil
}

// ResetUnread zeroes the reader's counter, leaving the other side untouched.
func (r *Room) ResetUnread(reader int64) error {
	idx := r.Pair().IndexOf(reader)
	if idx < 0 {
		return errors.NotAParticipant(nil)
	}
	r.UnreadCount[idx] = 0
	return nil
}

// UnreadFor returns the counter belonging to userID, 0 for non-participants.
func (r *Room) UnreadFor(userID int64) int {
	idx := r.Pair().IndexOf(userID)
	if idx < 0 {
		return 0
	}
	return r.UnreadCount[idx]
}
