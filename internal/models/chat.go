package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Chat is a two-party conversation. Members always holds exactly two user
// ids; each member's chats index should carry a matching ChatRef.
// LastMessage is a denormalized cache of the most recent message text,
// maintained by callers of UpdateChat.
type Chat struct {
	ID          bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	Members     []bson.ObjectID `bson:"members" json:"members"`
	LastMessage string          `bson:"last_message,omitempty" json:"lastMessage,omitempty"`
	CreatedAt   time.Time       `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `bson:"updated_at" json:"updatedAt"`
}

type CreateChatRequest struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
}

type UpdateChatRequest struct {
	LastMessage string `json:"lastMessage"`
}
