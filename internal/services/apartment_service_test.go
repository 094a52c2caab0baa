package services

import (
	"context"
	"errors"
	"math"
	"os"
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"

	"finderent-backend/internal/db"
	"finderent-backend/internal/models"
	"finderent-backend/internal/query"
)

func TestGeoRadius(t *testing.T) {
	if got := geoRadius(3963.2, "mi"); math.Abs(got-1) > 1e-9 {
		t.Fatalf("geoRadius in miles = %v, want 1 radian", got)
	}
	if got := geoRadius(6378.1, "km"); math.Abs(got-1) > 1e-9 {
		t.Fatalf("geoRadius in km = %v, want 1 radian", got)
	}
	// Unknown units fall back to kilometres.
	if got := geoRadius(6378.1, ""); math.Abs(got-1) > 1e-9 {
		t.Fatalf("geoRadius default unit = %v, want 1 radian", got)
	}
}

func TestDistanceMultiplier(t *testing.T) {
	if got := distanceMultiplier("mi"); got != 0.000621371 {
		t.Fatalf("miles multiplier = %v", got)
	}
	if got := distanceMultiplier("km"); got != 0.001 {
		t.Fatalf("km multiplier = %v", got)
	}
}

func validApartment() *models.Apartment {
	return &models.Apartment{
		Address: models.Address{
			Street:         "Herzl",
			City:           "Tel Aviv",
			Country:        "Israel",
			BuildingNumber: 12,
		},
		Location:      models.NewGeoPoint(34.7818, 32.0853),
		TotalCapacity: 3,
		NumberOfRooms: 2,
		Price:         4200,
		Rating:        4.5,
	}
}

func TestValidateApartment(t *testing.T) {
	if err := validateApartment(validApartment()); err != nil {
		t.Fatalf("valid apartment rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*models.Apartment)
	}{
		{"missing street", func(a *models.Apartment) { a.Address.Street = "" }},
		{"street too short", func(a *models.Apartment) { a.Address.Street = "x" }},
		{"missing city", func(a *models.Apartment) { a.Address.City = "" }},
		{"missing country", func(a *models.Apartment) { a.Address.Country = "" }},
		{"missing building number", func(a *models.Apartment) { a.Address.BuildingNumber = 0 }},
		{"zero capacity", func(a *models.Apartment) { a.TotalCapacity = 0 }},
		{"too many rooms", func(a *models.Apartment) { a.NumberOfRooms = 11 }},
		{"free apartment", func(a *models.Apartment) { a.Price = 0 }},
		{"rating out of range", func(a *models.Apartment) { a.Rating = 6 }},
		{"negative distance", func(a *models.Apartment) { a.DistanceFromAcademy = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			apt := validApartment()
			tc.mutate(apt)
			if err := validateApartment(apt); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func setupApartmentDB(t *testing.T) *db.Client {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	ctx := context.Background()
	c, err := db.New(ctx, uri, "finderent_test")
	if err != nil {
		t.Fatalf("db.New failed: %v", err)
	}
	_ = c.Apartments().Drop(ctx)
	_ = c.Users().Drop(ctx)
	if err := c.CreateIndexes(ctx); err != nil {
		t.Fatalf("CreateIndexes failed: %v", err)
	}
	return c
}

func TestApartmentService_GeoSearch(t *testing.T) {
	c := setupApartmentDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	svc := NewApartmentService(c.Apartments(), c.Users(), nil)
	ctx := context.Background()

	// Tel Aviv, Jerusalem and Haifa, searched from Tel Aviv.
	telAviv := validApartment()
	jerusalem := validApartment()
	jerusalem.Address.City = "Jerusalem"
	jerusalem.Location = models.NewGeoPoint(35.2137, 31.7683)
	jerusalem.Price = 5200
	haifa := validApartment()
	haifa.Address.City = "Haifa"
	haifa.Location = models.NewGeoPoint(34.9896, 32.7940)
	haifa.Price = 3000

	for _, apt := range []*models.Apartment{telAviv, jerusalem, haifa} {
		if _, err := svc.Create(ctx, apt); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	// Jerusalem is ~54km away, Haifa ~80km. A 60km radius keeps Haifa out.
	within, err := svc.Within(ctx, 60, 32.0853, 34.7818, "km", query.Parse(nil))
	if err != nil {
		t.Fatalf("Within failed: %v", err)
	}
	if len(within) != 2 {
		t.Fatalf("60km radius returned %d listings, want 2", len(within))
	}
	for _, apt := range within {
		if apt.Address.City == "Haifa" {
			t.Fatalf("Haifa should be outside a 60km radius of Tel Aviv")
		}
	}

	// Unrelated filter, sort and pagination parameters compose with the
	// radius without changing which listings are inside it.
	composed, err := svc.Within(ctx, 60, 32.0853, 34.7818, "km", query.Parse(map[string]string{
		"price[gte]": "1000",
		"sort":       "-price",
		"limit":      "50",
	}))
	if err != nil {
		t.Fatalf("Within with query params failed: %v", err)
	}
	if len(composed) != 2 {
		t.Fatalf("composed query returned %d listings, want 2", len(composed))
	}
	if composed[0].Address.City != "Jerusalem" || composed[1].Address.City != "Tel Aviv" {
		t.Fatalf("composed sort wrong: %s, %s", composed[0].Address.City, composed[1].Address.City)
	}

	distances, err := svc.Distances(ctx, 32.0853, 34.7818, "km")
	if err != nil {
		t.Fatalf("Distances failed: %v", err)
	}
	if len(distances) != 3 {
		t.Fatalf("Distances returned %d rows, want 3", len(distances))
	}
	// Nearest first.
	if distances[0].Address.City != "Tel Aviv" {
		t.Fatalf("nearest listing = %s, want Tel Aviv", distances[0].Address.City)
	}
	if distances[0].Distance > distances[1].Distance || distances[1].Distance > distances[2].Distance {
		t.Fatalf("distances not ascending: %+v", distances)
	}
}

func TestApartmentService_ToggleInterest(t *testing.T) {
	c := setupApartmentDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	svc := NewApartmentService(c.Apartments(), c.Users(), nil)
	ctx := context.Background()

	apt, err := svc.Create(ctx, validApartment())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	user := insertUser(t, c, "interested")

	if err := svc.ToggleInterest(ctx, apt.ID.Hex(), user.Hex(), ToggleAdd); err != nil {
		t.Fatalf("add interest failed: %v", err)
	}
	// Adding twice conflicts instead of duplicating.
	if err := svc.ToggleInterest(ctx, apt.ID.Hex(), user.Hex(), ToggleAdd); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate add: expected ErrConflict, got %v", err)
	}

	got, err := svc.Get(ctx, apt.ID.Hex())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.Interesteds) != 1 || got.Interesteds[0] != user {
		t.Fatalf("interesteds = %v", got.Interesteds)
	}

	if err := svc.ToggleInterest(ctx, apt.ID.Hex(), user.Hex(), ToggleRemove); err != nil {
		t.Fatalf("remove interest failed: %v", err)
	}
	if err := svc.ToggleInterest(ctx, apt.ID.Hex(), user.Hex(), ToggleRemove); !errors.Is(err, ErrConflict) {
		t.Fatalf("remove absent: expected ErrConflict, got %v", err)
	}

	if err := svc.ToggleInterest(ctx, apt.ID.Hex(), user.Hex(), "flip"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown action: expected ErrInvalidInput, got %v", err)
	}
	if err := svc.ToggleInterest(ctx, apt.ID.Hex(), bson.NewObjectID().Hex(), ToggleAdd); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing user: expected ErrNotFound, got %v", err)
	}
}

func TestApartmentService_UpdateProtectsID(t *testing.T) {
	c := setupApartmentDB(t)
	defer func() { _ = c.Close(context.Background()) }()

	svc := NewApartmentService(c.Apartments(), c.Users(), nil)
	ctx := context.Background()

	apt, err := svc.Create(ctx, validApartment())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := svc.Update(ctx, apt.ID.Hex(), map[string]interface{}{
		"price": 4800,
		"_id":   bson.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Price != 4800 {
		t.Fatalf("price = %v, want 4800", updated.Price)
	}
	if updated.ID != apt.ID {
		t.Fatalf("id changed on update")
	}

	if _, err := svc.Update(ctx, apt.ID.Hex(), map[string]interface{}{"_id": 1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("id-only payload: expected ErrInvalidInput, got %v", err)
	}
}
