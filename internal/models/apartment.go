package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Address struct {
	Street          string `bson:"street" json:"street"`
	City            string `bson:"city" json:"city"`
	Country         string `bson:"country" json:"country"`
	BuildingNumber  int    `bson:"building_number" json:"buildingNumber"`
	ApartmentNumber int    `bson:"apartment_number,omitempty" json:"apartmentNumber,omitempty"`
}

// GeoPoint is a GeoJSON Point: coordinates are [lng, lat].
type GeoPoint struct {
	Type        string     `bson:"type" json:"type"`
	Coordinates [2]float64 `bson:"coordinates" json:"coordinates"`
}

func NewGeoPoint(lng, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: [2]float64{lng, lat}}
}

// ApartmentContent lists the amenities of a listing.
type ApartmentContent struct {
	TV           bool `bson:"tv" json:"tv"`
	Balcony      bool `bson:"balcony" json:"balcony"`
	Bed          bool `bson:"bed" json:"bed"`
	Wifi         bool `bson:"wifi" json:"wifi"`
	Oven         bool `bson:"oven" json:"oven"`
	Microwave    bool `bson:"microwave" json:"microwave"`
	Couch        bool `bson:"couch" json:"couch"`
	CoffeeTable  bool `bson:"coffee_table" json:"coffeeTable"`
	WaterHeater  bool `bson:"water_heater" json:"waterHeater"`
	Washer       bool `bson:"washer" json:"washer"`
	Dryer        bool `bson:"dryer" json:"dryer"`
	Iron         bool `bson:"iron" json:"iron"`
	Refrigirator bool `bson:"refrigirator" json:"refrigirator"`
	Freezer      bool `bson:"freezer" json:"freezer"`
}

type Apartment struct {
	ID                  bson.ObjectID    `bson:"_id,omitempty" json:"id"`
	Address             Address          `bson:"address" json:"address"`
	Location            GeoPoint         `bson:"location" json:"location"`
	DistanceFromAcademy float64          `bson:"distance_from_academy" json:"distanceFromAcademy"`
	TotalCapacity       int              `bson:"total_capacity" json:"totalCapacity"`
	RealTimeCapacity    int              `bson:"real_time_capacity" json:"realTimeCapacity"`
	About               string           `bson:"about,omitempty" json:"about,omitempty"`
	NumberOfRooms       int              `bson:"number_of_rooms" json:"numberOfRooms"`
	ApartmentContent    ApartmentContent `bson:"apartment_content" json:"apartmentContent"`
	Rating              float64          `bson:"rating,omitempty" json:"rating,omitempty"`
	Price               float64          `bson:"price" json:"price"`
	Images              []Image          `bson:"images" json:"images"`
	Owner               bson.ObjectID    `bson:"owner,omitempty" json:"owner,omitempty"`
	Tenants             []bson.ObjectID  `bson:"tenants" json:"tenants"`
	Interesteds         []bson.ObjectID  `bson:"interesteds" json:"interesteds"`
	CreatedAt           time.Time        `bson:"created_at" json:"createdAt"`
}

// ApartmentDistance is one row of the distances aggregation: how far a
// listing is from the requested center point, in the requested unit.
type ApartmentDistance struct {
	ID       bson.ObjectID `bson:"_id" json:"id"`
	Address  Address       `bson:"address" json:"address"`
	Distance float64       `bson:"distance" json:"distance"`
}
