package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const Collection = "messages"

// Message is the persisted chat message. Image and VoiceMessage carry a URL
// or a base64 data string; the gateway and this store treat both opaquely.
type Message struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	SenderID   primitive.ObjectID `bson:"sender_id" json:"senderId"`
	ReceiverID primitive.ObjectID `bson:"receiver_id" json:"receiverId"`

	Text         string `bson:"text,omitempty" json:"text,omitempty"`
	Image        string `bson:"image,omitempty" json:"image,omitempty"`
	VoiceMessage string `bson:"voice_message,omitempty" json:"voiceMessage,omitempty"`
	IsVoice      bool   `bson:"is_voice" json:"isVoice"`
	Language     string `bson:"language,omitempty" json:"language,omitempty"`

	CreateTime time.Time `bson:"create_time" json:"createdAt"`
	UpdateTime time.Time `bson:"update_time" json:"updatedAt"`
}

// HasContent enforces the one rule the store insists on: a message must
// carry text, an image or a voice payload.
func (m *Message) HasContent() bool {
	return m.Text != "" || m.Image != "" || m.VoiceMessage != ""
}
