package user

import (
	"net/http"
	"time"

	"VoChat/logger"
	mid "VoChat/middleware"
	"VoChat/module/user/service"
	"VoChat/service/mgo"
	"VoChat/tools/errs"
	security "VoChat/tools/security"

	"github.com/gin-gonic/gin"
)

// Handlers carries the pieces the auth endpoints need; constructed once in
// main and mounted on the router.
type Handlers struct {
	JWT security.Options
}

func NewHandlers(jwt security.Options) *Handlers {
	return &Handlers{JWT: jwt}
}

type signupReq struct {
	Username           string `json:"username"`
	Email              string `json:"email"`
	Password           string `json:"password"`
	Language           string `json:"language"`
	EnableTextToSpeech *bool  `json:"enableTextToSpeech"`
}

func (h *Handlers) Signup(c *gin.Context) {
	var req signupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	u, token, err := service.Signup(c.Request.Context(), mgo.GetDB(), h.JWT, service.SignupParams{
		Username:           req.Username,
		Email:              req.Email,
		Password:           req.Password,
		Language:           req.Language,
		EnableTextToSpeech: req.EnableTextToSpeech,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	h.setSession(c, token)
	c.JSON(http.StatusCreated, u.Public())
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handlers) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	u, token, err := service.Login(c.Request.Context(), mgo.GetDB(), h.JWT, req.Email, req.Password)
	if err != nil {
		respondErr(c, err)
		return
	}
	h.setSession(c, token)
	c.JSON(http.StatusOK, gin.H{"user": u.Public(), "token": token})
}

func (h *Handlers) Logout(c *gin.Context) {
	uid := mid.UserID(c)
	if err := service.Logout(c.Request.Context(), mgo.GetDB(), uid); err != nil {
		respondErr(c, err)
		return
	}
	c.SetCookie(mid.CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Check returns the authenticated caller's account; the front end uses it
// to restore a session on reload.
func (h *Handlers) Check(c *gin.Context) {
	u, err := service.GetByID(c.Request.Context(), mgo.GetDB(), mid.UserID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, u.Public())
}

type updateProfileReq struct {
	ProfileImage       *string `json:"profileImage"`
	Language           *string `json:"language"`
	EnableTextToSpeech *bool   `json:"enableTextToSpeech"`
}

func (h *Handlers) UpdateProfile(c *gin.Context) {
	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	u, err := service.UpdateProfile(c.Request.Context(), mgo.GetDB(), mid.UserID(c), service.ProfileUpdate{
		ProfileImage:       req.ProfileImage,
		Language:           req.Language,
		EnableTextToSpeech: req.EnableTextToSpeech,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, u.Public())
}

func (h *Handlers) setSession(c *gin.Context, token string) {
	maxAge := int((7 * 24 * time.Hour).Seconds())
	if h.JWT.TTL > 0 {
		maxAge = int(h.JWT.TTL.Seconds())
	}
	c.SetCookie(mid.CookieName, token, maxAge, "/", "", false, true)
}

func respondErr(c *gin.Context, err error) {
	status, ce := errs.APIStatus(err)
	if status == http.StatusInternalServerError {
		logger.Errorf("[user] internal error: %+v", err)
	}
	c.JSON(status, ce)
}
