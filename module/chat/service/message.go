package service

import (
	"context"
	"time"

	chatmodel "VoChat/module/chat/model"
	usermodel "VoChat/module/user/model"
	"VoChat/tools/errs"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SendParams struct {
	SenderID     string
	ReceiverID   string
	Text         string
	Image        string
	VoiceMessage string
	IsVoice      bool
	Language     string
}

// Save persists a new message. Durability completes here; live delivery is
// the caller's next step and never feeds back into this result.
func Save(ctx context.Context, db *mongo.Database, in SendParams) (*chatmodel.Message, error) {
	sender, err := primitive.ObjectIDFromHex(in.SenderID)
	if err != nil {
		return nil, errs.ErrArgs.WithDetail("bad sender id")
	}
	receiver, err := primitive.ObjectIDFromHex(in.ReceiverID)
	if err != nil {
		return nil, errs.ErrArgs.WithDetail("bad receiver id")
	}

	now := time.Now()
	msg := &chatmodel.Message{
		ID:           primitive.NewObjectID(),
		SenderID:     sender,
		ReceiverID:   receiver,
		Text:         in.Text,
		Image:        in.Image,
		VoiceMessage: in.VoiceMessage,
		IsVoice:      in.IsVoice,
		Language:     in.Language,
		CreateTime:   now,
		UpdateTime:   now,
	}
	if !msg.HasContent() {
		return nil, errs.ErrEmptyMessage
	}
	if msg.Language == "" {
		msg.Language = senderLanguage(ctx, db, sender)
	}

	if _, err := db.Collection(chatmodel.Collection).InsertOne(ctx, msg); err != nil {
		return nil, errors.Wrap(err, "insert message")
	}
	return msg, nil
}

// senderLanguage falls back to the sender's preferred language, then "en".
func senderLanguage(ctx context.Context, db *mongo.Database, sender primitive.ObjectID) string {
	var u usermodel.User
	err := db.Collection(usermodel.Collection).FindOne(ctx, bson.M{"_id": sender}).Decode(&u)
	if err != nil || u.Language == "" {
		return "en"
	}
	return u.Language
}

// ListConversation returns both directions of a two-party conversation in
// ascending creation order.
func ListConversation(ctx context.Context, db *mongo.Database, userID, peerID string) ([]chatmodel.Message, error) {
	me, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, errs.ErrArgs.WithDetail("bad user id")
	}
	peer, err := primitive.ObjectIDFromHex(peerID)
	if err != nil {
		return nil, errs.ErrArgs.WithDetail("bad peer id")
	}

	filter := bson.M{"$or": bson.A{
		bson.M{"sender_id": me, "receiver_id": peer},
		bson.M{"sender_id": peer, "receiver_id": me},
	}}
	cur, err := db.Collection(chatmodel.Collection).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "create_time", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "find messages")
	}
	defer cur.Close(ctx)

	out := make([]chatmodel.Message, 0)
	for cur.Next(ctx) {
		var m chatmodel.Message
		if err := cur.Decode(&m); err != nil {
			return nil, errors.Wrap(err, "decode message")
		}
		out = append(out, m)
	}
	return out, errors.Wrap(cur.Err(), "cursor")
}
