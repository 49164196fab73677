package gateway

import (
	"encoding/json"
	"fmt"
)

// Wire event names. These match the Socket.IO events the web client already
// speaks, so the front end does not care what runs behind the upgrade.
const (
	EventOnlineUsers = "getOnlineUsers" // server -> all clients
	EventNewMessage  = "newMessage"     // server -> receiver
	EventTyping      = "typing"         // both directions
	EventStreamVoice = "streamVoice"    // client -> server
	EventVoiceStream = "voiceStream"    // server -> receiver
	EventPing        = "ping"           // client -> server
	EventPong        = "pong"           // server -> client
)

// Frame is the JSON envelope for every message on the socket.
type Frame struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data,omitempty"`
}

// ParseFrame decodes an inbound envelope. Payload fields stay untyped here;
// each handler decodes Data into its own payload struct.
func ParseFrame(raw []byte) (*Frame, error) {
	f := &Frame{}
	if err := json.Unmarshal(raw, f); err != nil {
		return nil, fmt.Errorf("unmarshal frame: %w", err)
	}
	if f.Event == "" {
		return nil, fmt.Errorf("frame has no event")
	}
	return f, nil
}

func marshalFrame(event string, data any) ([]byte, error) {
	return json.Marshal(struct {
		Event string `json:"event"`
		Data  any    `json:"data,omitempty"`
	}{Event: event, Data: data})
}

// DeliveryEvent is the tagged union the router dispatches on. Every variant
// carries an explicit receiver used solely for routing; the gateway never
// persists any of it.
type DeliveryEvent interface {
	Receiver() string
	outbound() (event string, data any)
}

// NewMessage announces a message that the HTTP layer already persisted.
// Message is the stored document, forwarded opaquely.
type NewMessage struct {
	SenderID   string
	ReceiverID string
	Message    any
}

func (e NewMessage) Receiver() string { return e.ReceiverID }

func (e NewMessage) outbound() (string, any) { return EventNewMessage, e.Message }

// TypingState is a purely advisory indicator; nothing is retained between
// calls, not even the last known state.
type TypingState struct {
	SenderID   string
	ReceiverID string
	IsTyping   bool
}

func (e TypingState) Receiver() string { return e.ReceiverID }

func (e TypingState) outbound() (string, any) {
	return EventTyping, typingOut{SenderID: e.SenderID, IsTyping: e.IsTyping}
}

// VoiceChunk is one piece of a streamed voice message. MessageID and Final
// pass through untouched so the receiver can reassemble; the gateway does no
// buffering or reordering.
type VoiceChunk struct {
	SenderID   string
	ReceiverID string
	MessageID  string
	Chunk      string // base64 audio payload, opaque to the gateway
	Final      bool
}

func (e VoiceChunk) Receiver() string { return e.ReceiverID }

func (e VoiceChunk) outbound() (string, any) {
	return EventVoiceStream, voiceOut{
		SenderID:  e.SenderID,
		Chunk:     e.Chunk,
		MessageID: e.MessageID,
		Final:     e.Final,
	}
}

// Outbound payload shapes, named after what the web client reads.

type typingOut struct {
	SenderID string `json:"senderId"`
	IsTyping bool   `json:"isTyping"`
}

type voiceOut struct {
	SenderID  string `json:"senderId"`
	Chunk     string `json:"audioChunk"`
	MessageID string `json:"messageId"`
	Final     bool   `json:"finished"`
}

// Inbound payload shapes, decoded from Frame.Data by the handlers.

type typingIn struct {
	ReceiverID string `json:"receiverId"`
	IsTyping   bool   `json:"isTyping"`
}

type voiceIn struct {
	ReceiverID string `json:"receiverId"`
	Chunk      string `json:"audioChunk"`
	MessageID  string `json:"messageId"`
	Final      bool   `json:"finished"`
}
