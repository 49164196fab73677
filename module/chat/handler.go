package chat

import (
	"net/http"

	"VoChat/logger"
	mid "VoChat/middleware"
	"VoChat/module/chat/service"
	usersvc "VoChat/module/user/service"
	"VoChat/service/gateway"
	"VoChat/service/mgo"
	"VoChat/tools/errs"

	"github.com/gin-gonic/gin"
)

// Handlers serves the message API. It persists through the chat service and
// then hands the stored document to the gateway router; a receiver who is
// offline simply misses the live push and reads the message from history.
type Handlers struct {
	Router *gateway.Router
}

func NewHandlers(router *gateway.Router) *Handlers {
	return &Handlers{Router: router}
}

// SidebarUsers returns every other account for the contact list.
func (h *Handlers) SidebarUsers(c *gin.Context) {
	users, err := usersvc.ListOthers(c.Request.Context(), mgo.GetDB(), mid.UserID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetMessages returns the conversation with the user in the path.
func (h *Handlers) GetMessages(c *gin.Context) {
	msgs, err := service.ListConversation(c.Request.Context(), mgo.GetDB(), mid.UserID(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

type sendReq struct {
	Text         string `json:"text"`
	Image        string `json:"image"`
	VoiceMessage string `json:"voiceMessage"`
	IsVoice      bool   `json:"isVoice"`
	Language     string `json:"language"`
}

// SendMessage persists the message, then routes it for live delivery. The
// response reflects only the durable write; delivery is best-effort and
// silent either way.
func (h *Handlers) SendMessage(c *gin.Context) {
	var req sendReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.WithDetail(err.Error()))
		return
	}

	senderID := mid.UserID(c)
	receiverID := c.Param("id")

	msg, err := service.Save(c.Request.Context(), mgo.GetDB(), service.SendParams{
		SenderID:     senderID,
		ReceiverID:   receiverID,
		Text:         req.Text,
		Image:        req.Image,
		VoiceMessage: req.VoiceMessage,
		IsVoice:      req.IsVoice,
		Language:     req.Language,
	})
	if err != nil {
		respondErr(c, err)
		return
	}

	h.Router.Route(gateway.NewMessage{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Message:    msg,
	})

	c.JSON(http.StatusCreated, msg)
}

func respondErr(c *gin.Context, err error) {
	status, ce := errs.APIStatus(err)
	if status == http.StatusInternalServerError {
		logger.Errorf("[chat] internal error: %+v", err)
	}
	c.JSON(status, ce)
}
