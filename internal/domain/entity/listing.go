package entity

import (
	"time"
)

// Listing is a turtle put up for sale. The seller is referenced by id only;
// Photos holds persisted image URLs, the first of which feeds the in-chat
// listing card.
type Listing struct {
	ID       int64    `json:"id" firestore:"id"`
	TurtleID int64    `json:"turtle_id" firestore:"turtleId"`
	SellerID int64    `json:"seller_id" firestore:"sellerId"`
	Title    string   `json:"title" firestore:"title"`
	Content  string   `json:"content" firestore:"content"`
	Price    float64  `json:"price" firestore:"price"`
	Weight   float64  `json:"weight,omitempty" firestore:"weight,omitempty"`
	Photos   []string `json:"photos" firestore:"photos"`
	Tags     []string `json:"tags,omitempty" firestore:"tags,omitempty"`
	Progress string   `json:"progress" firestore:"progress"` // "sale", "during", "completed"

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
