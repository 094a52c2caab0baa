package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	UserTypeStudent  = "student"
	UserTypeLandlord = "landlord"
)

// DefaultAvatarURL is used until the user uploads their own picture.
const DefaultAvatarURL = "https://res.cloudinary.com/finderent/image/upload/v1719482644/default_gdug47.png"

// ChatRef is one entry of a user's denormalized chat index: the peer user
// and the chat shared with them. The chat document's members list is the
// source of truth; this index only exists to avoid a full chat scan.
type ChatRef struct {
	UserID bson.ObjectID `bson:"user_id" json:"userID"`
	ChatID bson.ObjectID `bson:"chat_id" json:"chatID"`
}

// Image is a reference to an asset on the hosted image service.
type Image struct {
	PublicID string `bson:"public_id,omitempty" json:"public_id,omitempty"`
	URL      string `bson:"url,omitempty" json:"url,omitempty"`
}

type Coordinates struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

type SocialNetworks struct {
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
	Facebook  string `bson:"facebook,omitempty" json:"facebook,omitempty"`
	Linkedin  string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
}

type User struct {
	ID                  bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserType            string          `bson:"user_type" json:"userType"`
	FirstName           string          `bson:"first_name" json:"firstName"`
	LastName            string          `bson:"last_name" json:"lastName"`
	Avatar              Image           `bson:"avatar" json:"avatar"`
	Age                 string          `bson:"age" json:"age"`
	Gender              string          `bson:"gender,omitempty" json:"gender,omitempty"`
	Phone               string          `bson:"phone,omitempty" json:"phone,omitempty"`
	Academic            string          `bson:"academic,omitempty" json:"academic,omitempty"`
	Department          string          `bson:"department,omitempty" json:"department,omitempty"`
	Yearbook            string          `bson:"yearbook,omitempty" json:"yearbook,omitempty"`
	Coordinates         Coordinates     `bson:"coordinates" json:"coordinates"`
	Email               string          `bson:"email" json:"email"`
	Password            string          `bson:"password" json:"-"`
	PushToken           string          `bson:"push_token,omitempty" json:"pushToken,omitempty"`
	FavouriteApartments []bson.ObjectID `bson:"favourite_apartments" json:"favouriteApartments"`
	Chats               []ChatRef       `bson:"chats" json:"chats"`
	MyApartments        []bson.ObjectID `bson:"my_apartments" json:"myApartments"`
	SocialNetworks      SocialNetworks  `bson:"social_networks,omitempty" json:"socialNetworks,omitempty"`
	Hobbies             string          `bson:"hobbies,omitempty" json:"hobbies,omitempty"`
	FunFact             string          `bson:"fun_fact,omitempty" json:"funFact,omitempty"`
	OTP                 int             `bson:"otp,omitempty" json:"-"`
	OTPExpire           time.Time       `bson:"otp_expire,omitempty" json:"-"`
	PasswordChangedAt   time.Time       `bson:"password_changed_at,omitempty" json:"-"`
	CreatedAt           time.Time       `bson:"created_at" json:"createdAt"`
	UpdatedAt           time.Time       `bson:"updated_at" json:"updatedAt"`
}

type RegisterRequest struct {
	UserType        string `json:"userType"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Age             string `json:"age"`
	Gender          string `json:"gender"`
	Phone           string `json:"phone"`
	Academic        string `json:"academic"`
	Department      string `json:"department"`
	Yearbook        string `json:"yearbook"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
	// Lat and Lng arrive as strings from the mobile client and are
	// validated as numbers before signup proceeds.
	Lat string `json:"lat"`
	Lng string `json:"lng"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// UpdateMeRequest carries the profile fields a user may change. Only
// non-nil fields end up in the update payload.
type UpdateMeRequest struct {
	FirstName      *string         `json:"firstName"`
	LastName       *string         `json:"lastName"`
	Age            *string         `json:"age"`
	Gender         *string         `json:"gender"`
	Phone          *string         `json:"phone"`
	Academic       *string         `json:"academic"`
	Department     *string         `json:"department"`
	Yearbook       *string         `json:"yearbook"`
	Hobbies        *string         `json:"hobbies"`
	FunFact        *string         `json:"funFact"`
	PushToken      *string         `json:"pushToken"`
	SocialNetworks *SocialNetworks `json:"socialNetworks"`
	Coordinates    *Coordinates    `json:"coordinates"`
}

type UpdatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email"`
	OTP             int    `json:"otp"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

type ContactUsRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}

// ToggleRequest drives the favourite/interested membership toggles.
// Action is either "add" or "remove".
type ToggleRequest struct {
	Action      string `json:"action"`
	ApartmentID string `json:"apartmentID"`
	UserID      string `json:"userID"`
}
