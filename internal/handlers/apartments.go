package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"finderent-backend/internal/models"
	"finderent-backend/internal/query"
	"finderent-backend/internal/services"
)

// GetAllApartmentsHandler lists apartments, applying the filter, sort,
// field selection and pagination query parameters.
func GetAllApartmentsHandler(apartmentService *services.ApartmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apartments, err := apartmentService.List(c.Context(), query.Parse(c.Queries()))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"results": len(apartments),
			"data":    fiber.Map{"apartments": apartments},
		})
	}
}

func CreateApartmentHandler(apartmentService *services.ApartmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var apartment models.Apartment
		if err := c.BodyParser(&apartment); err != nil {
			return NewAppError(http.StatusBadRequest, "invalid request body")
		}
		created, err := apartmentService.Create(c.Context(), &apartment)
		if err != nil {
			return err
		}
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"status": "success",
			"data":   fiber.Map{"apartment": created},
		})
	}
}

func GetApartmentHandler(apartmentService *services.ApartmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apartment, err := apartmentService.Get(c.Context(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"status": "success", "data": fiber.Map{"apartment": apartment}})
	}
}

func UpdateApartmentHandler(apartmentService *services.ApartmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var payload map[string]interface{}
		if err := c.BodyParser(&payload); err != nil {
			return NewAppError(http.StatusBadRequest, "invalid request body")
		}
		apartment, err := apartmentService.Update(c.Context(), c.Params("id"), payload)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"status": "success", "data": fiber.Map{"apartment": apartment}})
	}
}

func DeleteApartmentHandler(apartmentService *services.ApartmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := apartmentService.Delete(c.Context(), c.Params("id")); err != nil {
			return err
		}
		return c.SendStatus(http.StatusNoContent)
	}
}

// AddApartmentImageHandler appends an uploaded image to a listing. The
// file arrives as a multipart file named "image".
func AddApartmentImageHandler(apartmentService *services.ApartmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("image")
		if err != nil {
			return NewAppError(http.StatusBadRequest, "image file required")
		}
		file, err := fileHeader.Open()
		if err != nil {
			return NewAppError(http.StatusBadRequest, "unable to read image file")
		}
		defer file.Close()

		apartment, err := apartmentService.AddImage(c.Context(), c.Params("id"), file)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"status": "success", "data": fiber.Map{"apartment": apartment}})
	}
}

// ApartmentsWithinHandler returns listings inside a radius around a
// point. Route shape: /apartments-within/:distance/center/:latlng/unit/:unit
// where latlng is "lat,lng" and unit is "mi" or "km".
func ApartmentsWithinHandler(apartmentService *services.ApartmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		distance, err := strconv.ParseFloat(c.Params("distance"), 64)
		if err != nil {
			return NewAppError(http.StatusBadRequest, "invalid distance")
		}
		lat, lng, err := parseLatLng(c.Params("latlng"))
		if err != nil {
			return NewAppError(http.StatusBadRequest, err.Error())
		}
		apartments, err := apartmentService.Within(c.Context(), distance, lat, lng, c.Params("unit"), query.Parse(c.Queries()))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"results": len(apartments),
			"data":    fiber.Map{"apartments": apartments},
		})
	}
}

// ApartmentDistancesHandler computes the distance from a point to every
// listing. Route shape: /distances/:latlng/unit/:unit.
func ApartmentDistancesHandler(apartmentService *services.ApartmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, lng, err := parseLatLng(c.Params("latlng"))
		if err != nil {
			return NewAppError(http.StatusBadRequest, err.Error())
		}
		distances, err := apartmentService.Distances(c.Context(), lat, lng, c.Params("unit"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"results": len(distances),
			"data":    fiber.Map{"distances": distances},
		})
	}
}

// ToggleInterestHandler marks or unmarks a user as interested in a
// listing.
func ToggleInterestHandler(apartmentService *services.ApartmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.ToggleRequest
		if err := c.BodyParser(&req); err != nil {
			return NewAppError(http.StatusBadRequest, "invalid request body")
		}
		if err := apartmentService.ToggleInterest(c.Context(), c.Params("id"), req.UserID, req.Action); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"status": "success"})
	}
}

func parseLatLng(raw string) (lat, lng float64, err error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return 0, 0, fiber.NewError(http.StatusBadRequest, "please provide latitude and longitude in the format lat,lng")
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fiber.NewError(http.StatusBadRequest, "invalid latitude")
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fiber.NewError(http.StatusBadRequest, "invalid longitude")
	}
	return lat, lng, nil
}
