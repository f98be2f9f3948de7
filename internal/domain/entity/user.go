package entity

import (
	"time"
)

type User struct {
	ID           int64  `json:"id" firestore:"id"`
	Email        string `json:"email" firestore:"email"`
	PasswordHash string `json:"-" firestore:"passwordHash"`
	Nickname     string `json:"nickname" firestore:"nickname"`
	ProfileImage string `json:"profile_image,omitempty" firestore:"profileImage,omitempty"`
	Address      string `json:"address,omitempty" firestore:"address,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
