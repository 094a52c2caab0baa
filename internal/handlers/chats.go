package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"finderent-backend/internal/models"
	"finderent-backend/internal/services"
)

// CreateChatHandler opens a conversation between two users, or returns
// the existing one when the pair already has a chat.
func CreateChatHandler(chatService *services.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.CreateChatRequest
		if err := c.BodyParser(&req); err != nil {
			return NewAppError(http.StatusBadRequest, "invalid request body")
		}
		res, err := chatService.CreateChat(c.Context(), req.SenderID, req.ReceiverID)
		if err != nil {
			return err
		}
		code := http.StatusCreated
		if res.Existed {
			code = http.StatusOK
		}
		return c.Status(code).JSON(fiber.Map{"status": "success", "data": res})
	}
}

func GetAllChatsHandler(chatService *services.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		chats, err := chatService.GetAll(c.Context())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"results": len(chats),
			"data":    fiber.Map{"chats": chats},
		})
	}
}

func UserChatsHandler(chatService *services.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		chats, err := chatService.UserChats(c.Context(), c.Params("userId"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"results": len(chats),
			"data":    fiber.Map{"chats": chats},
		})
	}
}

func FindChatHandler(chatService *services.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		chat, err := chatService.FindChat(c.Context(), c.Params("firstId"), c.Params("secondId"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"status": "success", "data": fiber.Map{"chat": chat}})
	}
}

// UpdateChatHandler records the latest message preview on a chat.
func UpdateChatHandler(chatService *services.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.UpdateChatRequest
		if err := c.BodyParser(&req); err != nil {
			return NewAppError(http.StatusBadRequest, "invalid request body")
		}
		chat, err := chatService.UpdateChat(c.Context(), c.Params("chatId"), req.LastMessage)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"status": "success", "data": fiber.Map{"chat": chat}})
	}
}

func DeleteChatHandler(chatService *services.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := chatService.DeleteChat(c.Context(), c.Params("id")); err != nil {
			return err
		}
		return c.SendStatus(http.StatusNoContent)
	}
}
