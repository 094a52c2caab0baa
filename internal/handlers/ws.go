package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"finderent-backend/internal/models"
	"finderent-backend/internal/utils"
)

// WSUpgradeMiddleware rejects non-websocket requests on the ws route.
func WSUpgradeMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// WebSocketHandler runs the realtime protocol: a client announces its
// user id with new-user-add, the server rebroadcasts the presence list,
// and send-message events are relayed to the target's connection if it
// is online. Undeliverable events are dropped.
func WebSocketHandler(relay *Relay) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		connID := uuid.New().String()

		defer func() {
			relay.Unregister(connID)
			relay.Broadcast(models.WSEvent{
				Event: models.WSEventGetUsers,
				Users: relay.ActiveUsers(),
			})
			c.Close()
		}()

		for {
			msgType, raw, err := c.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("error: %v", err)
				}
				break
			}
			if msgType != websocket.TextMessage {
				continue
			}

			var event models.WSEvent
			if err := utils.SafeJSONParse(raw, &event); err != nil {
				utils.LogError(err, "WS JSON Parse")
				continue
			}

			switch event.Event {
			case models.WSEventNewUserAdd:
				if event.UserID == "" {
					continue
				}
				relay.Register(event.UserID, connID, c)
				relay.Broadcast(models.WSEvent{
					Event: models.WSEventGetUsers,
					Users: relay.ActiveUsers(),
				})
			case models.WSEventSendMessage:
				if event.OUID == "" {
					continue
				}
				relay.Send(event.OUID, models.WSEvent{
					Event:   models.WSEventReceiveMessage,
					UserID:  event.UserID,
					Payload: event.Payload,
				})
			default:
				log.Printf("Unknown event: %s", event.Event)
			}
		}
	})
}
