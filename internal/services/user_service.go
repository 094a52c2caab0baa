package services

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"finderent-backend/internal/mail"
	"finderent-backend/internal/media"
	"finderent-backend/internal/models"
	"finderent-backend/internal/utils"
)

const (
	bcryptCost = 12
	otpTTL     = 10 * time.Minute
	tokenTTL   = 72 * time.Hour

	avatarFolder = "Avatars"
)

type UserService struct {
	users      *mongo.Collection
	apartments *mongo.Collection
	media      media.Uploader
	mail       mail.Sender
}

func NewUserService(users, apartments *mongo.Collection, uploader media.Uploader, mailer mail.Sender) *UserService {
	return &UserService{users: users, apartments: apartments, media: uploader, mail: mailer}
}

// Register validates the signup payload, hashes the password and inserts
// the user. Validation failures return before any store access.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := validateRegister(req); err != nil {
		return nil, err
	}

	lat, _ := strconv.ParseFloat(req.Lat, 64)
	lng, _ := strconv.ParseFloat(req.Lng, 64)

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		UserType:            req.UserType,
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Avatar:              models.Image{URL: models.DefaultAvatarURL},
		Age:                 req.Age,
		Gender:              req.Gender,
		Phone:               req.Phone,
		Academic:            req.Academic,
		Department:          req.Department,
		Yearbook:            req.Yearbook,
		Coordinates:         models.Coordinates{Lat: lat, Lng: lng},
		Email:               normalizeEmail(req.Email),
		Password:            string(hash),
		FavouriteApartments: []bson.ObjectID{},
		Chats:               []models.ChatRef{},
		MyApartments:        []bson.ObjectID{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	res, err := s.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	user.ID = res.InsertedID.(bson.ObjectID)

	if s.mail != nil {
		utils.LogError(s.mail.SendWelcome(user.Email, user.FirstName), "SendWelcome")
	}
	return user, nil
}

// Login checks the credentials and returns a signed token plus the user.
func (s *UserService) Login(ctx context.Context, req models.LoginRequest, secret string) (*models.AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, invalidf("please provide email and password")
	}

	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": normalizeEmail(req.Email)}).Decode(&user)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := GenerateJWT(user.ID.Hex(), secret)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: &user}, nil
}

// GetByID loads one user.
func (s *UserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": uid}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, notFoundf("no user found with that ID")
		}
		return nil, err
	}
	return &user, nil
}

// GetAll lists every user.
func (s *UserService) GetAll(ctx context.Context) ([]models.User, error) {
	cursor, err := s.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateMe applies the provided profile fields. When a new avatar is
// uploaded the previous remote asset is destroyed first.
func (s *UserService) UpdateMe(ctx context.Context, userID string, req models.UpdateMeRequest, avatar io.Reader) (*models.User, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}

	set := buildProfileUpdate(req)

	if avatar != nil {
		if s.media == nil {
			return nil, errors.New("media service not configured")
		}
		current, err := s.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if current.Avatar.PublicID != "" {
			utils.LogError(s.media.Destroy(ctx, current.Avatar.PublicID), "DestroyAvatar")
		}
		asset, err := s.media.Upload(ctx, avatar, avatarFolder)
		if err != nil {
			return nil, err
		}
		set["avatar"] = models.Image{PublicID: asset.PublicID, URL: asset.URL}
	}

	set["updated_at"] = time.Now()

	var user models.User
	err = s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": uid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, notFoundf("no user found with that ID")
		}
		return nil, err
	}
	return &user, nil
}

// UpdatePassword verifies the current password before setting a new one.
func (s *UserService) UpdatePassword(ctx context.Context, userID string, req models.UpdatePasswordRequest) (*models.User, error) {
	if req.Password != req.PasswordConfirm {
		return nil, invalidf("passwords do not match")
	}
	if len(req.Password) < 6 {
		return nil, invalidf("the password must contain at least 6 characters")
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.PasswordCurrent)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.setPassword(ctx, user.ID, req.Password)
}

// ForgotPassword generates a one-time code, stores it with an expiry and
// emails it to the account address.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return notFoundf("there is no user with that email address")
		}
		return err
	}

	otp, err := generateOTP()
	if err != nil {
		return err
	}

	_, err = s.users.UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"otp": otp, "otp_expire": time.Now().Add(otpTTL)}},
	)
	if err != nil {
		return err
	}

	if s.mail == nil {
		return errors.New("mail service not configured")
	}
	if err := s.mail.SendPasswordReset(user.Email, user.FirstName, otp); err != nil {
		// Clear the code so a failed send can't leave a live OTP around.
		_, uerr := s.users.UpdateOne(ctx, bson.M{"_id": user.ID},
			bson.M{"$unset": bson.M{"otp": "", "otp_expire": ""}})
		utils.LogError(uerr, "ForgotPassword cleanup")
		return err
	}
	return nil
}

// ResetPassword checks the one-time code and replaces the password.
func (s *UserService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	if req.Password != req.PasswordConfirm {
		return invalidf("passwords do not match")
	}
	if len(req.Password) < 6 {
		return invalidf("the password must contain at least 6 characters")
	}

	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": normalizeEmail(req.Email)}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return notFoundf("there is no user with that email address")
		}
		return err
	}

	if user.OTP == 0 || user.OTP != req.OTP {
		return invalidf("invalid reset code")
	}
	if time.Now().After(user.OTPExpire) {
		return invalidf("reset code has expired")
	}

	_, err = s.setPassword(ctx, user.ID, req.Password)
	return err
}

// ContactUs relays the form to the service inbox.
func (s *UserService) ContactUs(req models.ContactUsRequest) error {
	if req.Email == "" || req.Message == "" {
		return invalidf("please provide email and message")
	}
	if s.mail == nil {
		return errors.New("mail service not configured")
	}
	return s.mail.SendContactUs(mail.ContactForm{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
	})
}

// UpdateFavourite toggles an apartment in the user's favourites list.
func (s *UserService) UpdateFavourite(ctx context.Context, userID, apartmentID, action string) error {
	uid, err := parseID(userID)
	if err != nil {
		return err
	}
	aid, err := parseID(apartmentID)
	if err != nil {
		return err
	}
	return toggleRef(ctx, s.users, uid, "favourite_apartments", s.apartments, aid, action)
}

// SetPushToken stores the device push token on the account.
func (s *UserService) SetPushToken(ctx context.Context, userID, token string) error {
	uid, err := parseID(userID)
	if err != nil {
		return err
	}
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{"$set": bson.M{"push_token": token}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return notFoundf("no user found with that ID")
	}
	return nil
}

func (s *UserService) setPassword(ctx context.Context, uid bson.ObjectID, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": uid},
		bson.M{
			// Stamp slightly in the past so a token issued in the same
			// second still validates against PasswordChangedAt.
			"$set":   bson.M{"password": string(hash), "password_changed_at": time.Now().Add(-time.Second)},
			"$unset": bson.M{"otp": "", "otp_expire": ""},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GenerateJWT signs a token carrying the user id, valid for 72 hours.
func GenerateJWT(userID, secret string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken parses and verifies a token, returning its claims.
func ValidateToken(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// ChangedPasswordAfter reports whether the password was changed after the
// token was issued; such tokens are rejected.
func ChangedPasswordAfter(user *models.User, issuedAt time.Time) bool {
	if user.PasswordChangedAt.IsZero() {
		return false
	}
	return user.PasswordChangedAt.After(issuedAt)
}

func validateRegister(req models.RegisterRequest) error {
	switch {
	case req.FirstName == "":
		return invalidf("please fill in first name")
	case req.LastName == "":
		return invalidf("please fill in last name")
	case req.Age == "":
		return invalidf("please enter age")
	case req.Email == "":
		return invalidf("please provide email")
	case !strings.Contains(req.Email, "@"):
		return invalidf("please provide a valid email")
	case req.Password == "":
		return invalidf("please enter password")
	case len(req.Password) < 6:
		return invalidf("the password must contain at least 6 characters")
	case req.Password != req.PasswordConfirm:
		return invalidf("passwords do not match")
	case req.UserType != models.UserTypeStudent && req.UserType != models.UserTypeLandlord:
		return invalidf("userType must be student or landlord")
	}

	// A single early return: an invalid coordinate must not let signup
	// continue into the insert.
	if _, err := strconv.ParseFloat(req.Lat, 64); err != nil {
		return invalidf("lat must be a number")
	}
	if _, err := strconv.ParseFloat(req.Lng, 64); err != nil {
		return invalidf("lng must be a number")
	}
	return nil
}

func buildProfileUpdate(req models.UpdateMeRequest) bson.M {
	set := bson.M{}
	setIf := func(field string, value *string) {
		if value != nil {
			set[field] = *value
		}
	}
	setIf("first_name", req.FirstName)
	setIf("last_name", req.LastName)
	setIf("age", req.Age)
	setIf("gender", req.Gender)
	setIf("phone", req.Phone)
	setIf("academic", req.Academic)
	setIf("department", req.Department)
	setIf("yearbook", req.Yearbook)
	setIf("hobbies", req.Hobbies)
	setIf("fun_fact", req.FunFact)
	setIf("push_token", req.PushToken)
	if req.SocialNetworks != nil {
		set["social_networks"] = *req.SocialNetworks
	}
	if req.Coordinates != nil {
		set["coordinates"] = *req.Coordinates
	}
	return set
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateOTP returns a 6-digit one-time code.
func generateOTP() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()) + 100000, nil
}
