package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"finderent-backend/internal/db"
	"finderent-backend/internal/handlers"
	"finderent-backend/internal/mail"
	"finderent-backend/internal/media"
	"finderent-backend/internal/services"
	"finderent-backend/internal/utils"
)

func Run() {
	// Load Env
	if err := utils.LoadEnv(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Init DB
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := db.New(ctx,
		utils.GetEnv("MONGODB_URI", "mongodb://localhost:27017"),
		utils.GetEnv("MONGO_DB", "finderent"))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := client.Close(context.Background()); err != nil {
			log.Printf("Warning: failed to disconnect from database: %v", err)
		}
	}()

	if err := client.CreateIndexes(ctx); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	// Media storage
	uploader, err := media.NewCloudinary(utils.GetEnv("CLOUDINARY_URL", ""))
	if err != nil {
		log.Fatalf("Failed to init media storage: %v", err)
	}

	// Mail
	mailer := mail.New(mail.Config{
		Host:     utils.GetEnv("EMAIL_HOST", "smtp.gmail.com"),
		Port:     utils.GetEnvInt("EMAIL_PORT", 587),
		Username: utils.GetEnv("EMAIL_USERNAME", ""),
		Password: utils.GetEnv("EMAIL_PASSWORD", ""),
		From:     utils.GetEnv("EMAIL_FROM", "FindeRent <no-reply@finderent.app>"),
		Inbox:    utils.GetEnv("EMAIL_INBOX", ""),
	})

	// Services
	userService := services.NewUserService(client.Users(), client.Apartments(), uploader, mailer)
	chatService := services.NewChatService(client.Chats(), client.Users())
	messageService := services.NewMessageService(client.Messages(), uploader)
	apartmentService := services.NewApartmentService(client.Apartments(), client.Users(), uploader)

	// Presence relay
	relay := handlers.NewRelay()

	// Rate limiting for credential endpoints
	limiter := handlers.NewLimiterStore(10, 5, 10*time.Minute)
	defer limiter.Stop()

	// Fiber App
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    16 * 1024 * 1024,
	})

	// Middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: utils.GetEnv("CORS_ORIGIN", "*"),
	}))

	// Routes
	api := app.Group("/api/v1")

	// Users
	users := api.Group("/users")
	users.Post("/signup", handlers.RateLimit(limiter), handlers.SignupHandler(userService))
	users.Post("/login", handlers.RateLimit(limiter), handlers.LoginHandler(userService))
	users.Post("/forgotPassword", handlers.RateLimit(limiter), handlers.ForgotPasswordHandler(userService))
	users.Patch("/resetPassword", handlers.ResetPasswordHandler(userService))
	users.Post("/contactUs", handlers.ContactUsHandler(userService))

	users.Use(handlers.Protect(userService))
	users.Patch("/updateMe", handlers.UpdateMeHandler(userService))
	users.Patch("/updateMyPassword", handlers.UpdateMyPasswordHandler(userService))
	users.Patch("/pushToken", handlers.PushTokenHandler(userService))
	users.Get("/", handlers.GetAllUsersHandler(userService))
	users.Get("/:id", handlers.GetUserHandler(userService))
	users.Patch("/:id/favourites", handlers.UpdateFavouriteHandler(userService))

	// Chats
	chats := api.Group("/chats", handlers.Protect(userService))
	chats.Get("/", handlers.GetAllChatsHandler(chatService))
	chats.Post("/", handlers.CreateChatHandler(chatService))
	chats.Get("/find/:firstId/:secondId", handlers.FindChatHandler(chatService))
	chats.Patch("/update/:chatId", handlers.UpdateChatHandler(chatService))
	chats.Get("/:userId", handlers.UserChatsHandler(chatService))
	chats.Delete("/:id", handlers.DeleteChatHandler(chatService))

	// Messages
	messages := api.Group("/messages", handlers.Protect(userService))
	messages.Get("/", handlers.GetAllMessagesHandler(messageService))
	messages.Post("/", handlers.AddMessageHandler(messageService))
	messages.Get("/:chatId", handlers.GetChatMessagesHandler(messageService))
	messages.Delete("/:id", handlers.DeleteMessageHandler(messageService))

	// Apartments
	apartments := api.Group("/apartments")
	apartments.Get("/apartments-within/:distance/center/:latlng/unit/:unit", handlers.ApartmentsWithinHandler(apartmentService))
	apartments.Get("/distances/:latlng/unit/:unit", handlers.ApartmentDistancesHandler(apartmentService))
	apartments.Get("/", handlers.GetAllApartmentsHandler(apartmentService))
	apartments.Get("/:id", handlers.GetApartmentHandler(apartmentService))

	apartments.Use(handlers.Protect(userService))
	apartments.Post("/", handlers.CreateApartmentHandler(apartmentService))
	apartments.Patch("/:id", handlers.UpdateApartmentHandler(apartmentService))
	apartments.Delete("/:id", handlers.DeleteApartmentHandler(apartmentService))
	apartments.Post("/:id/images", handlers.AddApartmentImageHandler(apartmentService))
	apartments.Patch("/:id/interesteds", handlers.ToggleInterestHandler(apartmentService))

	// Health Check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// WebSocket Route
	// Note: Middleware order matters. WSUpgradeMiddleware rejects plain
	// HTTP requests, then Protect checks the token.
	app.Use("/ws", handlers.WSUpgradeMiddleware)
	app.Use("/ws", handlers.Protect(userService))
	app.Get("/ws", handlers.WebSocketHandler(relay))

	// Catch-all for unknown routes
	app.Use(handlers.NotFoundHandler)

	// Start Server
	port := utils.GetEnv("PORT", "3000")
	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Gracefully shutting down...")
	relay.Clear()
	_ = app.Shutdown()
	log.Println("Server shutdown complete")
}
