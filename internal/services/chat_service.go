package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"finderent-backend/internal/models"
	"finderent-backend/internal/utils"
)

// ChatService keeps a two-party chat and its participants' denormalized
// chat indexes consistent: creating a chat appends a {peer, chatID} entry
// to both users, deleting it strips the entry from every member.
type ChatService struct {
	chats *mongo.Collection
	users *mongo.Collection
}

func NewChatService(chats, users *mongo.Collection) *ChatService {
	return &ChatService{chats: chats, users: users}
}

// CreateChatResult reports either the newly created chat or that a chat
// for the pair already existed.
type CreateChatResult struct {
	Chat    *models.Chat `json:"chat,omitempty"`
	Existed bool         `json:"existed"`
}

// CreateChat creates a chat between sender and receiver unless one
// already exists. The duplicate check scans both parties' chat indexes,
// so it holds for either call order; it is not a store-level uniqueness
// constraint, and two perfectly concurrent calls for the same pair can
// still race.
//
// The chat insert and the two index appends are separate writes. On a
// partial failure the completed steps are compensated (index entry
// pulled, orphan chat deleted) so no half-linked chat is left behind.
func (s *ChatService) CreateChat(ctx context.Context, senderID, receiverID string) (*CreateChatResult, error) {
	sid, err := parseID(senderID)
	if err != nil {
		return nil, err
	}
	rid, err := parseID(receiverID)
	if err != nil {
		return nil, err
	}
	if sid == rid {
		return nil, invalidf("sender and receiver must differ")
	}

	sender, err := s.findUser(ctx, sid)
	if err != nil {
		return nil, err
	}
	receiver, err := s.findUser(ctx, rid)
	if err != nil {
		return nil, err
	}

	if ref, ok := findChatRef(sender.Chats, rid); ok {
		return s.existingChat(ctx, ref)
	}
	if ref, ok := findChatRef(receiver.Chats, sid); ok {
		return s.existingChat(ctx, ref)
	}

	now := time.Now()
	chat := &models.Chat{
		Members:   []bson.ObjectID{sid, rid},
		CreatedAt: now,
		UpdatedAt: now,
	}
	res, err := s.chats.InsertOne(ctx, chat)
	if err != nil {
		return nil, err
	}
	chat.ID = res.InsertedID.(bson.ObjectID)

	if err := s.pushChatRef(ctx, sid, rid, chat.ID); err != nil {
		s.compensateChat(ctx, chat.ID)
		return nil, err
	}
	if err := s.pushChatRef(ctx, rid, sid, chat.ID); err != nil {
		s.compensateRef(ctx, sid, chat.ID)
		s.compensateChat(ctx, chat.ID)
		return nil, err
	}

	return &CreateChatResult{Chat: chat}, nil
}

// DeleteChat removes the chat and strips the matching entry from every
// member's chat index. A member that no longer exists is skipped; its
// index entry is gone with it. Messages of the chat are not cascaded.
func (s *ChatService) DeleteChat(ctx context.Context, chatID string) error {
	cid, err := parseID(chatID)
	if err != nil {
		return err
	}

	var chat models.Chat
	if err := s.chats.FindOne(ctx, bson.M{"_id": cid}).Decode(&chat); err != nil {
		if err == mongo.ErrNoDocuments {
			return notFoundf("chat not found")
		}
		return err
	}

	for _, member := range chat.Members {
		res, err := s.users.UpdateOne(ctx,
			bson.M{"_id": member},
			bson.M{"$pull": bson.M{"chats": bson.M{"chat_id": cid}}},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			utils.LogError(notFoundf("chat member "+member.Hex()+" missing"), "DeleteChat")
		}
	}

	_, err = s.chats.DeleteOne(ctx, bson.M{"_id": cid})
	return err
}

// UpdateChat overwrites the denormalized last-message cache. Nothing
// verifies the text against the message store; callers own coherence.
func (s *ChatService) UpdateChat(ctx context.Context, chatID, lastMessage string) (*models.Chat, error) {
	cid, err := parseID(chatID)
	if err != nil {
		return nil, err
	}

	var chat models.Chat
	err = s.chats.FindOneAndUpdate(ctx,
		bson.M{"_id": cid},
		bson.M{"$set": bson.M{"last_message": lastMessage, "updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&chat)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, notFoundf("no chat found with that ID")
		}
		return nil, err
	}
	return &chat, nil
}

// UserChats lists every chat the user is a member of.
func (s *ChatService) UserChats(ctx context.Context, userID string) ([]models.Chat, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	cursor, err := s.chats.Find(ctx, bson.M{"members": bson.M{"$in": bson.A{uid}}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	chats := []models.Chat{}
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// FindChat returns the chat both users are members of, if any.
func (s *ChatService) FindChat(ctx context.Context, firstID, secondID string) (*models.Chat, error) {
	fid, err := parseID(firstID)
	if err != nil {
		return nil, err
	}
	sid, err := parseID(secondID)
	if err != nil {
		return nil, err
	}

	var chat models.Chat
	err = s.chats.FindOne(ctx, bson.M{"members": bson.M{"$all": bson.A{fid, sid}}}).Decode(&chat)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, notFoundf("chat not found")
		}
		return nil, err
	}
	return &chat, nil
}

// GetAll lists every chat.
func (s *ChatService) GetAll(ctx context.Context) ([]models.Chat, error) {
	cursor, err := s.chats.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	chats := []models.Chat{}
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func (s *ChatService) findUser(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, notFoundf("no user found with that ID")
		}
		return nil, err
	}
	return &user, nil
}

// existingChat resolves the "already exists" result. The referenced chat
// document is loaded best-effort; a dangling index entry still reports
// Existed so no second chat gets created for the pair.
func (s *ChatService) existingChat(ctx context.Context, ref models.ChatRef) (*CreateChatResult, error) {
	result := &CreateChatResult{Existed: true}
	var chat models.Chat
	if err := s.chats.FindOne(ctx, bson.M{"_id": ref.ChatID}).Decode(&chat); err == nil {
		result.Chat = &chat
	}
	return result, nil
}

func (s *ChatService) pushChatRef(ctx context.Context, userID, peerID, chatID bson.ObjectID) error {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$push": bson.M{"chats": models.ChatRef{UserID: peerID, ChatID: chatID}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return notFoundf("no user found with that ID")
	}
	return nil
}

func (s *ChatService) compensateRef(ctx context.Context, userID, chatID bson.ObjectID) {
	_, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"chats": bson.M{"chat_id": chatID}}},
	)
	utils.LogError(err, "CreateChat rollback")
}

func (s *ChatService) compensateChat(ctx context.Context, chatID bson.ObjectID) {
	_, err := s.chats.DeleteOne(ctx, bson.M{"_id": chatID})
	utils.LogError(err, "CreateChat rollback")
}

func findChatRef(refs []models.ChatRef, peer bson.ObjectID) (models.ChatRef, bool) {
	for _, ref := range refs {
		if ref.UserID == peer {
			return ref, true
		}
	}
	return models.ChatRef{}, false
}
