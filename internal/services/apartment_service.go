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
	"finderent-backend/internal/query"
	"finderent-backend/internal/utils"
)

// Earth radii used to convert a distance into radians for $centerSphere.
const (
	earthRadiusMiles = 3963.2
	earthRadiusKm    = 6378.1
)

type ApartmentService struct {
	apartments *mongo.Collection
	users      *mongo.Collection
	media      media.Uploader
}

func NewApartmentService(apartments, users *mongo.Collection, uploader media.Uploader) *ApartmentService {
	return &ApartmentService{apartments: apartments, users: users, media: uploader}
}

// Create validates and inserts a listing.
func (s *ApartmentService) Create(ctx context.Context, apt *models.Apartment) (*models.Apartment, error) {
	if err := validateApartment(apt); err != nil {
		return nil, err
	}
	apt.Location.Type = "Point"
	if apt.Images == nil {
		apt.Images = []models.Image{}
	}
	if apt.Tenants == nil {
		apt.Tenants = []bson.ObjectID{}
	}
	if apt.Interesteds == nil {
		apt.Interesteds = []bson.ObjectID{}
	}
	apt.CreatedAt = time.Now()

	res, err := s.apartments.InsertOne(ctx, apt)
	if err != nil {
		return nil, err
	}
	apt.ID = res.InsertedID.(bson.ObjectID)
	return apt, nil
}

// Get loads one listing.
func (s *ApartmentService) Get(ctx context.Context, apartmentID string) (*models.Apartment, error) {
	aid, err := parseID(apartmentID)
	if err != nil {
		return nil, err
	}
	var apt models.Apartment
	if err := s.apartments.FindOne(ctx, bson.M{"_id": aid}).Decode(&apt); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, notFoundf("no apartment found with that ID")
		}
		return nil, err
	}
	return &apt, nil
}

// List applies the parsed query features: filter, sort, projection and
// pagination all run inside the store's query engine.
func (s *ApartmentService) List(ctx context.Context, f query.Features) ([]models.Apartment, error) {
	cursor, err := s.apartments.Find(ctx, f.Filter, f.FindOptions())
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	apartments := []models.Apartment{}
	if err := cursor.All(ctx, &apartments); err != nil {
		return nil, err
	}
	return apartments, nil
}

// Update applies the request body as a $set payload and returns the new
// document. The id field is never writable.
func (s *ApartmentService) Update(ctx context.Context, apartmentID string, payload map[string]interface{}) (*models.Apartment, error) {
	aid, err := parseID(apartmentID)
	if err != nil {
		return nil, err
	}
	delete(payload, "_id")
	delete(payload, "id")
	if len(payload) == 0 {
		return nil, invalidf("nothing to update")
	}

	var apt models.Apartment
	err = s.apartments.FindOneAndUpdate(ctx,
		bson.M{"_id": aid},
		bson.M{"$set": payload},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&apt)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, notFoundf("no apartment found with that ID")
		}
		return nil, err
	}
	return &apt, nil
}

// Delete removes the listing and destroys its hosted images best-effort.
func (s *ApartmentService) Delete(ctx context.Context, apartmentID string) error {
	apt, err := s.Get(ctx, apartmentID)
	if err != nil {
		return err
	}

	if s.media != nil {
		for _, img := range apt.Images {
			if img.PublicID != "" {
				utils.LogError(s.media.Destroy(ctx, img.PublicID), "DestroyListingImage")
			}
		}
	}

	_, err = s.apartments.DeleteOne(ctx, bson.M{"_id": apt.ID})
	return err
}

// AddImage uploads a listing photo and appends it to the images array.
func (s *ApartmentService) AddImage(ctx context.Context, apartmentID string, file io.Reader) (*models.Apartment, error) {
	aid, err := parseID(apartmentID)
	if err != nil {
		return nil, err
	}
	if s.media == nil {
		return nil, invalidf("image uploads are not available")
	}
	asset, err := s.media.Upload(ctx, file, "Apartments")
	if err != nil {
		return nil, err
	}

	var apt models.Apartment
	err = s.apartments.FindOneAndUpdate(ctx,
		bson.M{"_id": aid},
		bson.M{"$push": bson.M{"images": models.Image{PublicID: asset.PublicID, URL: asset.URL}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&apt)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, notFoundf("no apartment found with that ID")
		}
		return nil, err
	}
	return &apt, nil
}

// Within returns the listings inside the given radius around the center
// point. Unrelated filter/sort/pagination features are merged in, so a
// radius search composes with the regular list parameters.
func (s *ApartmentService) Within(ctx context.Context, distance, lat, lng float64, unit string, f query.Features) ([]models.Apartment, error) {
	if distance <= 0 {
		return nil, invalidf("distance must be a positive number")
	}

	if f.Filter == nil {
		f.Filter = bson.M{}
	}
	f.Filter["location"] = bson.M{
		"$geoWithin": bson.M{
			"$centerSphere": bson.A{bson.A{lng, lat}, geoRadius(distance, unit)},
		},
	}

	return s.List(ctx, f)
}

// Distances returns every listing's distance from the given point, in the
// requested unit, nearest first.
func (s *ApartmentService) Distances(ctx context.Context, lat, lng float64, unit string) ([]models.ApartmentDistance, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$geoNear", Value: bson.D{
			{Key: "near", Value: models.NewGeoPoint(lng, lat)},
			{Key: "distanceField", Value: "distance"},
			{Key: "distanceMultiplier", Value: distanceMultiplier(unit)},
			{Key: "key", Value: "location"},
			{Key: "spherical", Value: true},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "distance", Value: 1},
			{Key: "address", Value: 1},
		}}},
	}

	cursor, err := s.apartments.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	distances := []models.ApartmentDistance{}
	if err := cursor.All(ctx, &distances); err != nil {
		return nil, err
	}
	return distances, nil
}

// ToggleInterest adds or removes a user in the listing's interesteds set.
func (s *ApartmentService) ToggleInterest(ctx context.Context, apartmentID, userID, action string) error {
	aid, err := parseID(apartmentID)
	if err != nil {
		return err
	}
	uid, err := parseID(userID)
	if err != nil {
		return err
	}
	return toggleRef(ctx, s.apartments, aid, "interesteds", s.users, uid, action)
}

// geoRadius converts a distance to radians for $centerSphere. Kilometres
// are the default unit.
func geoRadius(distance float64, unit string) float64 {
	if unit == "mi" {
		return distance / earthRadiusMiles
	}
	return distance / earthRadiusKm
}

// distanceMultiplier converts $geoNear's metres into the requested unit.
func distanceMultiplier(unit string) float64 {
	if unit == "mi" {
		return 0.000621371
	}
	return 0.001
}

func validateApartment(apt *models.Apartment) error {
	switch {
	case apt.Address.Street == "":
		return invalidf("an apartment must have a street")
	case len(apt.Address.Street) < 2 || len(apt.Address.Street) > 40:
		return invalidf("a street name must have between 2 and 40 characters")
	case apt.Address.City == "":
		return invalidf("an apartment must have a city")
	case apt.Address.Country == "":
		return invalidf("an apartment must have a country")
	case apt.Address.BuildingNumber == 0:
		return invalidf("an apartment must have a building number")
	case apt.TotalCapacity < 1 || apt.TotalCapacity > 10:
		return invalidf("apartment capacity must be between 1 and 10")
	case apt.NumberOfRooms < 1 || apt.NumberOfRooms > 10:
		return invalidf("number of rooms must be between 1 and 10")
	case apt.Price <= 0:
		return invalidf("an apartment must have a monthly price")
	case apt.Rating < 0 || apt.Rating > 5:
		return invalidf("rating must be between 0 and 5")
	case apt.DistanceFromAcademy < 0:
		return invalidf("distance must be a positive number")
	}
	return nil
}
