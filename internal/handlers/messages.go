package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"finderent-backend/internal/models"
	"finderent-backend/internal/services"
)

// AddMessageHandler stores a chat message. An image can be attached as
// a multipart file named "image"; replyingTo arrives as a JSON-encoded
// form field when the message quotes another.
func AddMessageHandler(messageService *services.MessageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := services.AddMessageRequest{
			ChatID:      c.FormValue("chatId"),
			SenderID:    c.FormValue("senderId"),
			MessageText: c.FormValue("messageText"),
		}
		if req.ChatID == "" {
			// JSON body, no attachment.
			var body struct {
				ChatID      string           `json:"chatId"`
				SenderID    string           `json:"senderId"`
				MessageText string           `json:"messageText"`
				ReplyingTo  *models.ReplyRef `json:"replyingTo"`
			}
			if err := c.BodyParser(&body); err != nil {
				return NewAppError(http.StatusBadRequest, "invalid request body")
			}
			req.ChatID = body.ChatID
			req.SenderID = body.SenderID
			req.MessageText = body.MessageText
			req.ReplyingTo = body.ReplyingTo
		} else if raw := c.FormValue("replyingTo"); raw != "" {
			var reply models.ReplyRef
			if err := json.Unmarshal([]byte(raw), &reply); err != nil {
				return NewAppError(http.StatusBadRequest, "invalid replyingTo field")
			}
			req.ReplyingTo = &reply
		}

		var image io.Reader
		if fileHeader, err := c.FormFile("image"); err == nil {
			file, err := fileHeader.Open()
			if err != nil {
				return NewAppError(http.StatusBadRequest, "unable to read image file")
			}
			defer file.Close()
			image = file
		}

		message, err := messageService.Add(c.Context(), req, image)
		if err != nil {
			return err
		}
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"status": "success",
			"data":   fiber.Map{"message": message},
		})
	}
}

func GetChatMessagesHandler(messageService *services.MessageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		messages, err := messageService.ListByChat(c.Context(), c.Params("chatId"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"results": len(messages),
			"data":    fiber.Map{"messages": messages},
		})
	}
}

func GetAllMessagesHandler(messageService *services.MessageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		messages, err := messageService.GetAll(c.Context())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"results": len(messages),
			"data":    fiber.Map{"messages": messages},
		})
	}
}

func DeleteMessageHandler(messageService *services.MessageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := messageService.Delete(c.Context(), c.Params("id")); err != nil {
			return err
		}
		return c.SendStatus(http.StatusNoContent)
	}
}
