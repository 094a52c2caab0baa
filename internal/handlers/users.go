package handlers

import (
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"finderent-backend/internal/models"
	"finderent-backend/internal/services"
	"finderent-backend/internal/utils"
)

// SignupHandler registers a new student or landlord account.
func SignupHandler(userService *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.RegisterRequest
		if err := c.BodyParser(&req); err != nil {
			return NewAppError(http.StatusBadRequest, "invalid request body")
		}
		user, err := userService.Register(c.Context(), req)
		if err != nil {
			return err
		}
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"status": "success",
			"data":   fiber.Map{"user": user},
		})
	}
}

func LoginHandler(userService *services.UserService) fiber.Handler {
	secret := utils.GetEnv("JWT_SECRET", "secret")
	return func(c *fiber.Ctx) error {
		var req models.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return NewAppError(http.StatusBadRequest, "invalid request body")
		}
		res, err := userService.Login(c.Context(), req, secret)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

func ForgotPasswordHandler(userService *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.ForgotPasswordRequest
		if err := c.BodyParser(&req); err != nil {
			return NewAppError(http.StatusBadRequest, "invalid request body")
		}
		if err := userService.ForgotPassword(c.Context(), req.Email); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"status": "success", "message": "code sent to email"})
	}
}

func ResetPasswordHandler(userService *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.ResetPasswordRequest
		if err := c.BodyParser(&req); err != nil {
			return NewAppError(http.StatusBadRequest, "invalid request body")
		}
		if err := userService.ResetPassword(c.Context(), req); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"status": "success", "message": "password updated"})
	}
}

func ContactUsHandler(userService *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.ContactUsRequest
		if err := c.BodyParser(&req); err != nil {
			return NewAppError(http.StatusBadRequest, "invalid request body")
		}
		if err := userService.ContactUs(req); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"status": "success", "message": "message sent"})
	}
}

// UpdateMeHandler updates the authenticated user's profile. The avatar
// arrives as an optional multipart file named "avatar".
func UpdateMeHandler(userService *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req models.UpdateMeRequest
		if err := c.BodyParser(&req); err != nil {
			return NewAppError(http.StatusBadRequest, "invalid request body")
		}

		var avatar io.Reader
		if fileHeader, err := c.FormFile("avatar"); err == nil {
			file, err := fileHeader.Open()
			if err != nil {
				return NewAppError(http.StatusBadRequest, "unable to read avatar file")
			}
			defer file.Close()
			avatar = file
		}

		user, err := userService.UpdateMe(c.Context(), userID, req, avatar)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"status": "success", "data": fiber.Map{"user": user}})
	}
}

func UpdateMyPasswordHandler(userService *services.UserService) fiber.Handler {
	secret := utils.GetEnv("JWT_SECRET", "secret")
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req models.UpdatePasswordRequest
		if err := c.BodyParser(&req); err != nil {
			return NewAppError(http.StatusBadRequest, "invalid request body")
		}
		user, err := userService.UpdatePassword(c.Context(), userID, req)
		if err != nil {
			return err
		}

		// Re-issue a token: the old one predates the password change.
		token, err := services.GenerateJWT(user.ID.Hex(), secret)
		if err != nil {
			return err
		}
		return c.JSON(&models.AuthResponse{Token: token, User: user})
	}
}

func GetAllUsersHandler(userService *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := userService.GetAll(c.Context())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"results": len(users),
			"data":    fiber.Map{"users": users},
		})
	}
}

func GetUserHandler(userService *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := userService.GetByID(c.Context(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"status": "success", "data": fiber.Map{"user": user}})
	}
}

// UpdateFavouriteHandler toggles an apartment in a user's favourites.
func UpdateFavouriteHandler(userService *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.ToggleRequest
		if err := c.BodyParser(&req); err != nil {
			return NewAppError(http.StatusBadRequest, "invalid request body")
		}
		if err := userService.UpdateFavourite(c.Context(), c.Params("id"), req.ApartmentID, req.Action); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"status": "success"})
	}
}

// PushTokenHandler stores the device push token for the authenticated
// user.
func PushTokenHandler(userService *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var body struct {
			PushToken string `json:"pushToken"`
		}
		if err := c.BodyParser(&body); err != nil || body.PushToken == "" {
			return NewAppError(http.StatusBadRequest, "pushToken required")
		}
		if err := userService.SetPushToken(c.Context(), userID, body.PushToken); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"status": "success"})
	}
}
