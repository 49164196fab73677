package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const Collection = "users"

// Languages the client UI can translate between; messages carry one of
// these tags.
var SupportedLanguages = []string{
	"en", "es", "fr", "de", "it", "pt", "ru", "zh", "ja", "ar", "hi",
}

func IsSupportedLanguage(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// User is the account document. PasswordHash never leaves the storage
// layer; every API-facing projection goes through Public().
type User struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username           string             `bson:"username" json:"username"`
	Email              string             `bson:"email" json:"email"`
	PasswordHash       string             `bson:"password" json:"-"`
	ProfileImage       string             `bson:"profile_image,omitempty" json:"profileImage,omitempty"`
	Language           string             `bson:"language" json:"language"`
	EnableTextToSpeech bool               `bson:"enable_text_to_speech" json:"enableTextToSpeech"`
	IsOnline           bool               `bson:"is_online" json:"isOnline"`
	LastLoginTime      time.Time          `bson:"last_login_time,omitempty" json:"lastLoginAt,omitempty"`
	CreateTime         time.Time          `bson:"create_time" json:"createdAt"`
	UpdateTime         time.Time          `bson:"update_time" json:"updatedAt"`
}

// PublicUser is the password-free projection returned by the API.
type PublicUser struct {
	ID                 primitive.ObjectID `json:"_id"`
	Username           string             `json:"username"`
	Email              string             `json:"email"`
	ProfileImage       string             `json:"profileImage,omitempty"`
	Language           string             `json:"language"`
	EnableTextToSpeech bool               `json:"enableTextToSpeech"`
	IsOnline           bool               `json:"isOnline"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:                 u.ID,
		Username:           u.Username,
		Email:              u.Email,
		ProfileImage:       u.ProfileImage,
		Language:           u.Language,
		EnableTextToSpeech: u.EnableTextToSpeech,
		IsOnline:           u.IsOnline,
	}
}
