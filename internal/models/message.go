package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Message belongs to exactly one chat. The chat id is not validated as a
// foreign key; deleting a chat leaves its messages behind.
type Message struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id"`
	ChatID      bson.ObjectID `bson:"chat_id" json:"chatId"`
	SenderID    bson.ObjectID `bson:"sender_id" json:"senderId"`
	MessageText string        `bson:"message_text" json:"messageText"`
	Image       *Image        `bson:"image,omitempty" json:"image,omitempty"`
	ReplyingTo  *ReplyRef     `bson:"replying_to,omitempty" json:"replyingTo,omitempty"`
	CreatedAt   time.Time     `bson:"created_at" json:"createdAt"`
}

// ReplyRef is a denormalized back-reference to the message being replied
// to, snapshotted at send time.
type ReplyRef struct {
	MessageID   bson.ObjectID `bson:"message_id,omitempty" json:"messageId,omitempty"`
	SenderID    bson.ObjectID `bson:"sender_id,omitempty" json:"senderId,omitempty"`
	MessageText string        `bson:"message_text,omitempty" json:"messageText,omitempty"`
}

// Websocket event names mirror the mobile client's protocol.
const (
	WSEventNewUserAdd     = "new-user-add"
	WSEventGetUsers       = "get-users"
	WSEventSendMessage    = "send-message"
	WSEventReceiveMessage = "receive-message"
)

// WSEvent is the wire format for realtime events in both directions.
// Payload is relayed opaquely; the server never inspects it.
type WSEvent struct {
	Event   string          `json:"event"`
	UserID  string          `json:"userId,omitempty"`
	OUID    string          `json:"ouid,omitempty"`
	Users   []string        `json:"users,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}
