package service

import (
	"context"
	"time"

	usermodel "VoChat/module/user/model"
	"VoChat/tools/errs"
	jwtlib "VoChat/tools/security"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

type SignupParams struct {
	Username           string
	Email              string
	Password           string
	Language           string
	EnableTextToSpeech *bool
}

// Signup creates an account with a bcrypt password hash and issues a token.
func Signup(ctx context.Context, db *mongo.Database, opts jwtlib.Options, in SignupParams) (*usermodel.User, string, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, "", errs.ErrArgs.WithDetail("username, email and password are required")
	}
	if len(in.Password) < minPasswordLen {
		return nil, "", errs.ErrArgs.WithDetail("password must be at least 6 characters")
	}

	coll := db.Collection(usermodel.Collection)
	if err := ensureAbsent(ctx, coll, bson.M{"email": in.Email}, errs.ErrDuplicateEmail); err != nil {
		return nil, "", err
	}
	if err := ensureAbsent(ctx, coll, bson.M{"username": in.Username}, errs.ErrDuplicateName); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", errors.Wrap(err, "hash password")
	}

	lang := in.Language
	if lang == "" || !usermodel.IsSupportedLanguage(lang) {
		lang = "en"
	}
	tts := true
	if in.EnableTextToSpeech != nil {
		tts = *in.EnableTextToSpeech
	}

	now := time.Now()
	u := &usermodel.User{
		ID:                 primitive.NewObjectID(),
		Username:           in.Username,
		Email:              in.Email,
		PasswordHash:       string(hash),
		Language:           lang,
		EnableTextToSpeech: tts,
		CreateTime:         now,
		UpdateTime:         now,
	}
	if _, err := coll.InsertOne(ctx, u); err != nil {
		return nil, "", errors.Wrap(err, "insert user")
	}

	token, _, err := jwtlib.Generate(opts, u.ID.Hex())
	if err != nil {
		return nil, "", errors.Wrap(err, "issue token")
	}
	return u, token, nil
}

// Login verifies credentials, flips the stored online flag and issues a
// token. The flag is a display-layer convenience; the gateway registry is
// what routing actually trusts.
func Login(ctx context.Context, db *mongo.Database, opts jwtlib.Options, email, password string) (*usermodel.User, string, error) {
	coll := db.Collection(usermodel.Collection)

	var u usermodel.User
	err := coll.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, "", errs.ErrBadCredentials
	}
	if err != nil {
		return nil, "", errors.Wrap(err, "find user")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", errs.ErrBadCredentials
	}

	now := time.Now()
	_, err = coll.UpdateByID(ctx, u.ID, bson.M{"$set": bson.M{
		"is_online":       true,
		"last_login_time": now,
		"update_time":     now,
	}})
	if err != nil {
		return nil, "", errors.Wrap(err, "mark online")
	}
	u.IsOnline = true

	token, _, err := jwtlib.Generate(opts, u.ID.Hex())
	if err != nil {
		return nil, "", errors.Wrap(err, "issue token")
	}
	return &u, token, nil
}

// Logout clears the online flag.
func Logout(ctx context.Context, db *mongo.Database, userID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return errs.ErrArgs.WithDetail("bad user id")
	}
	_, err = db.Collection(usermodel.Collection).UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"is_online":   false,
		"update_time": time.Now(),
	}})
	return errors.Wrap(err, "mark offline")
}

// GetByID loads one user by hex object id.
func GetByID(ctx context.Context, db *mongo.Database, userID string) (*usermodel.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, errs.ErrArgs.WithDetail("bad user id")
	}
	var u usermodel.User
	err = db.Collection(usermodel.Collection).FindOne(ctx, bson.M{"_id": oid}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user")
	}
	return &u, nil
}

type ProfileUpdate struct {
	ProfileImage       *string
	Language           *string
	EnableTextToSpeech *bool
}

// UpdateProfile applies the provided fields and returns the fresh document.
func UpdateProfile(ctx context.Context, db *mongo.Database, userID string, in ProfileUpdate) (*usermodel.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, errs.ErrArgs.WithDetail("bad user id")
	}

	set := bson.M{"update_time": time.Now()}
	if in.ProfileImage != nil {
		set["profile_image"] = *in.ProfileImage
	}
	if in.Language != nil {
		if !usermodel.IsSupportedLanguage(*in.Language) {
			return nil, errs.ErrArgs.WithDetail("unsupported language")
		}
		set["language"] = *in.Language
	}
	if in.EnableTextToSpeech != nil {
		set["enable_text_to_speech"] = *in.EnableTextToSpeech
	}

	coll := db.Collection(usermodel.Collection)
	var u usermodel.User
	err = coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "update profile")
	}
	return &u, nil
}

// ListOthers returns every account except the caller, password stripped;
// this feeds the sidebar.
func ListOthers(ctx context.Context, db *mongo.Database, userID string) ([]usermodel.PublicUser, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, errs.ErrArgs.WithDetail("bad user id")
	}
	cur, err := db.Collection(usermodel.Collection).Find(ctx, bson.M{"_id": bson.M{"$ne": oid}})
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	defer cur.Close(ctx)

	out := make([]usermodel.PublicUser, 0)
	for cur.Next(ctx) {
		var u usermodel.User
		if err := cur.Decode(&u); err != nil {
			return nil, errors.Wrap(err, "decode user")
		}
		out = append(out, u.Public())
	}
	return out, errors.Wrap(cur.Err(), "cursor")
}

func ensureAbsent(ctx context.Context, coll *mongo.Collection, filter bson.M, dup *errs.CodeError) error {
	err := coll.FindOne(ctx, filter).Err()
	if err == nil {
		return dup
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	return errors.Wrap(err, "uniqueness check")
}
