package gateway

import (
	"context"
	"fmt"
	"time"

	"VoChat/logger"
	"VoChat/service/storage"
	"VoChat/tools/decode"
)

// Inbound event handlers. Client-originated realtime signals (typing, voice
// chunks) come straight off the socket; they are relayed, never persisted.

type typingHandler struct{}

func (typingHandler) Event() string { return EventTyping }

func (typingHandler) Handle(ctx *Context, c *Client, data map[string]any) error {
	if c.UserID == "" {
		return fmt.Errorf("anonymous connection cannot send typing state")
	}
	p, err := decode.DecodeMap[typingIn](data)
	if err != nil {
		return err
	}
	if p.ReceiverID == "" {
		return fmt.Errorf("typing frame missing receiverId")
	}
	ctx.S.Router().Route(TypingState{
		SenderID:   c.UserID,
		ReceiverID: p.ReceiverID,
		IsTyping:   p.IsTyping,
	})
	return nil
}

type voiceHandler struct{}

func (voiceHandler) Event() string { return EventStreamVoice }

func (voiceHandler) Handle(ctx *Context, c *Client, data map[string]any) error {
	if c.UserID == "" {
		return fmt.Errorf("anonymous connection cannot stream voice")
	}
	p, err := decode.DecodeMap[voiceIn](data)
	if err != nil {
		return err
	}
	if p.ReceiverID == "" {
		return fmt.Errorf("streamVoice frame missing receiverId")
	}
	ctx.S.Router().Route(VoiceChunk{
		SenderID:   c.UserID,
		ReceiverID: p.ReceiverID,
		MessageID:  p.MessageID,
		Chunk:      p.Chunk,
		Final:      p.Final,
	})
	return nil
}

// pingHandler answers application-level pings and renews the presence
// mirror TTL, so a healthy client never falls out of the external view.
type pingHandler struct{}

func (pingHandler) Event() string { return EventPing }

func (pingHandler) Handle(ctx *Context, c *Client, _ map[string]any) error {
	if c.UserID != "" {
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := storage.PresenceRenew(rctx, c.UserID, ctx.S.opts.PresenceTTL); err != nil {
			logger.Warnf("[gateway] presence renew user=%s: %v", c.UserID, err)
		}
	}
	payload, err := marshalFrame(EventPong, nil)
	if err != nil {
		return err
	}
	c.Enqueue(payload)
	return nil
}
