package services

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"finderent-backend/internal/db"
	"finderent-backend/internal/models"
)

func TestFindChatRef(t *testing.T) {
	peer := bson.NewObjectID()
	chatID := bson.NewObjectID()
	refs := []models.ChatRef{
		{UserID: bson.NewObjectID(), ChatID: bson.NewObjectID()},
		{UserID: peer, ChatID: chatID},
	}

	ref, ok := findChatRef(refs, peer)
	if !ok || ref.ChatID != chatID {
		t.Fatalf("findChatRef = %v, %v", ref, ok)
	}

	if _, ok := findChatRef(refs, bson.NewObjectID()); ok {
		t.Fatalf("unexpected match for unknown peer")
	}
}

func TestParseID(t *testing.T) {
	id := bson.NewObjectID()
	parsed, err := parseID(id.Hex())
	if err != nil || parsed != id {
		t.Fatalf("parseID round trip failed: %v %v", parsed, err)
	}

	if _, err := parseID("not-a-hex-id"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func setupChatDB(t *testing.T) *db.Client {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	ctx := context.Background()
	c, err := db.New(ctx, uri, "finderent_test")
	if err != nil {
		t.Fatalf("db.New failed: %v", err)
	}
	_ = c.Users().Drop(ctx)
	_ = c.Chats().Drop(ctx)
	return c
}

func insertUser(t *testing.T, c *db.Client, firstName string) bson.ObjectID {
	t.Helper()

	now := time.Now()
	res, err := c.Users().InsertOne(context.Background(), &models.User{
		UserType:  models.UserTypeStudent,
		FirstName: firstName,
		LastName:  "Tester",
		Email:     firstName + "@example.com",
		Chats:     []models.ChatRef{},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("insert user %s: %v", firstName, err)
	}
	return res.InsertedID.(bson.ObjectID)
}

func loadUser(t *testing.T, c *db.Client, id bson.ObjectID) *models.User {
	t.Helper()

	var user models.User
	if err := c.Users().FindOne(context.Background(), bson.M{"_id": id}).Decode(&user); err != nil {
		t.Fatalf("load user: %v", err)
	}
	return &user
}

func TestChatService_CreateDeleteLifecycle(t *testing.T) {
	c := setupChatDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	svc := NewChatService(c.Chats(), c.Users())
	ctx := context.Background()

	alice := insertUser(t, c, "alice")
	bob := insertUser(t, c, "bob")

	res, err := svc.CreateChat(ctx, alice.Hex(), bob.Hex())
	if err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}
	if res.Existed || res.Chat == nil {
		t.Fatalf("first create should report a new chat: %+v", res)
	}
	chatID := res.Chat.ID

	// Both parties carry the index entry pointing at the peer.
	aliceDoc := loadUser(t, c, alice)
	if ref, ok := findChatRef(aliceDoc.Chats, bob); !ok || ref.ChatID != chatID {
		t.Fatalf("alice missing chat ref: %+v", aliceDoc.Chats)
	}
	bobDoc := loadUser(t, c, bob)
	if ref, ok := findChatRef(bobDoc.Chats, alice); !ok || ref.ChatID != chatID {
		t.Fatalf("bob missing chat ref: %+v", bobDoc.Chats)
	}

	// Reversed call order finds the same chat instead of creating another.
	res2, err := svc.CreateChat(ctx, bob.Hex(), alice.Hex())
	if err != nil {
		t.Fatalf("second CreateChat failed: %v", err)
	}
	if !res2.Existed || res2.Chat == nil || res2.Chat.ID != chatID {
		t.Fatalf("second create should return the existing chat: %+v", res2)
	}

	chats, err := svc.UserChats(ctx, alice.Hex())
	if err != nil || len(chats) != 1 {
		t.Fatalf("UserChats = %v chats, err %v", len(chats), err)
	}

	found, err := svc.FindChat(ctx, bob.Hex(), alice.Hex())
	if err != nil || found.ID != chatID {
		t.Fatalf("FindChat failed: %v %v", found, err)
	}

	// Delete strips the index entry from both members and the chat itself.
	if err := svc.DeleteChat(ctx, chatID.Hex()); err != nil {
		t.Fatalf("DeleteChat failed: %v", err)
	}
	if refs := loadUser(t, c, alice).Chats; len(refs) != 0 {
		t.Fatalf("alice still carries chat refs: %+v", refs)
	}
	if refs := loadUser(t, c, bob).Chats; len(refs) != 0 {
		t.Fatalf("bob still carries chat refs: %+v", refs)
	}
	if _, err := svc.FindChat(ctx, alice.Hex(), bob.Hex()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("chat should be gone, got %v", err)
	}
}

func TestChatService_CreateChatValidation(t *testing.T) {
	c := setupChatDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	svc := NewChatService(c.Chats(), c.Users())
	ctx := context.Background()

	alice := insertUser(t, c, "alice")

	if _, err := svc.CreateChat(ctx, alice.Hex(), alice.Hex()); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("self chat: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.CreateChat(ctx, alice.Hex(), bson.NewObjectID().Hex()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing receiver: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.CreateChat(ctx, "garbage", alice.Hex()); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad id: expected ErrInvalidInput, got %v", err)
	}
}

func TestChatService_DeleteChatNotFound(t *testing.T) {
	c := setupChatDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	svc := NewChatService(c.Chats(), c.Users())
	ctx := context.Background()

	alice := insertUser(t, c, "alice")
	bob := insertUser(t, c, "bob")

	res, err := svc.CreateChat(ctx, alice.Hex(), bob.Hex())
	if err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}

	if err := svc.DeleteChat(ctx, bson.NewObjectID().Hex()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown chat: expected ErrNotFound, got %v", err)
	}

	// Nothing changed: the existing chat and both index entries survive.
	if _, ok := findChatRef(loadUser(t, c, alice).Chats, bob); !ok {
		t.Fatalf("alice lost her chat ref")
	}
	if _, ok := findChatRef(loadUser(t, c, bob).Chats, alice); !ok {
		t.Fatalf("bob lost his chat ref")
	}
	if found, err := svc.FindChat(ctx, alice.Hex(), bob.Hex()); err != nil || found.ID != res.Chat.ID {
		t.Fatalf("existing chat affected: %v %v", found, err)
	}
}

func TestChatService_UpdateChat(t *testing.T) {
	c := setupChatDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	svc := NewChatService(c.Chats(), c.Users())
	ctx := context.Background()

	alice := insertUser(t, c, "alice")
	bob := insertUser(t, c, "bob")

	res, err := svc.CreateChat(ctx, alice.Hex(), bob.Hex())
	if err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}

	chat, err := svc.UpdateChat(ctx, res.Chat.ID.Hex(), "see you at 8")
	if err != nil {
		t.Fatalf("UpdateChat failed: %v", err)
	}
	if chat.LastMessage != "see you at 8" {
		t.Fatalf("last message = %q", chat.LastMessage)
	}

	if _, err := svc.UpdateChat(ctx, bson.NewObjectID().Hex(), "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown chat: expected ErrNotFound, got %v", err)
	}
}
