package services

import (
	"context"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"finderent-backend/internal/media"
	"finderent-backend/internal/models"
	"finderent-backend/internal/utils"
)

const messagesFolder = "Messages"

// imageMessageText marks a message whose content is the attached image.
const imageMessageText = "image"

type MessageService struct {
	messages *mongo.Collection
	media    media.Uploader
}

func NewMessageService(messages *mongo.Collection, uploader media.Uploader) *MessageService {
	return &MessageService{messages: messages, media: uploader}
}

// AddMessageRequest is the write payload for a new message. ReplyingTo is
// an optional snapshot of the message being replied to.
type AddMessageRequest struct {
	ChatID      string
	SenderID    string
	MessageText string
	ReplyingTo  *models.ReplyRef
}

// Add stores a message. When an image is attached it is uploaded first
// and the message text becomes the image marker. The chat id is stored
// as given; nothing checks the chat still exists.
func (s *MessageService) Add(ctx context.Context, req AddMessageRequest, image io.Reader) (*models.Message, error) {
	cid, err := parseID(req.ChatID)
	if err != nil {
		return nil, err
	}
	sid, err := parseID(req.SenderID)
	if err != nil {
		return nil, err
	}
	if req.MessageText == "" && image == nil {
		return nil, invalidf("message must have text or an image")
	}

	msg := &models.Message{
		ChatID:      cid,
		SenderID:    sid,
		MessageText: req.MessageText,
		ReplyingTo:  req.ReplyingTo,
		CreatedAt:   time.Now(),
	}

	if image != nil {
		if s.media == nil {
			return nil, invalidf("image uploads are not available")
		}
		asset, err := s.media.Upload(ctx, image, messagesFolder)
		if err != nil {
			return nil, err
		}
		msg.MessageText = imageMessageText
		msg.Image = &models.Image{PublicID: asset.PublicID, URL: asset.URL}
	}

	res, err := s.messages.InsertOne(ctx, msg)
	if err != nil {
		return nil, err
	}
	msg.ID = res.InsertedID.(bson.ObjectID)
	return msg, nil
}

// ListByChat returns the chat's messages oldest first.
func (s *MessageService) ListByChat(ctx context.Context, chatID string) ([]models.Message, error) {
	cid, err := parseID(chatID)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.M{"created_at": 1})
	cursor, err := s.messages.Find(ctx, bson.M{"chat_id": cid}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// GetAll lists every message.
func (s *MessageService) GetAll(ctx context.Context) ([]models.Message, error) {
	cursor, err := s.messages.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// Delete removes a message; an attached image is destroyed on the image
// host best-effort.
func (s *MessageService) Delete(ctx context.Context, messageID string) error {
	mid, err := parseID(messageID)
	if err != nil {
		return err
	}

	var msg models.Message
	if err := s.messages.FindOne(ctx, bson.M{"_id": mid}).Decode(&msg); err != nil {
		if err == mongo.ErrNoDocuments {
			return notFoundf("message not found")
		}
		return err
	}

	if msg.MessageText == imageMessageText && msg.Image != nil && msg.Image.PublicID != "" && s.media != nil {
		utils.LogError(s.media.Destroy(ctx, msg.Image.PublicID), "DestroyMessageImage")
	}

	_, err = s.messages.DeleteOne(ctx, bson.M{"_id": mid})
	return err
}
