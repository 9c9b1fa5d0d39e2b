package server

import (
	"net/http"

	"github.com/Luismorlan/blogmux/blog"
	"github.com/Luismorlan/blogmux/model"
	"github.com/Luismorlan/blogmux/server/middlewares"
	"github.com/Luismorlan/blogmux/session"
	"github.com/gin-gonic/gin"
)

// Handler adapts http requests to blog workflows. It owns nothing but the
// translation: decoding forms, reading the actor set by the session
// middleware and encoding results or errors.
type Handler struct {
	svc      *blog.Service
	sessions *session.Manager
	// secureCookie marks the session cookie https only.
	secureCookie bool
}

func NewHandler(svc *blog.Service, sessions *session.Manager, secureCookie bool) *Handler {
	return &Handler{svc: svc, sessions: sessions, secureCookie: secureCookie}
}

func (h *Handler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middlewares.SessionCookie, token, maxAge, "/", "", h.secureCookie, true)
}

// startSession logs user in and answers with the user and its token.
func (h *Handler) startSession(c *gin.Context, status int, user *model.User) {
	token, err := h.sessions.Establish(c.Request.Context(), user)
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.setSessionCookie(c, token, int(h.sessions.TTL().Seconds()))
	c.JSON(status, gin.H{"user": user, "token": token})
}

func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

func (h *Handler) Register(c *gin.Context) {
	var form blog.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		abortWithBadForm(c, err)
		return
	}
	user, err := h.svc.Register(c.Request.Context(), form)
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.startSession(c, http.StatusCreated, user)
}

func (h *Handler) Login(c *gin.Context) {
	var form blog.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		abortWithBadForm(c, err)
		return
	}
	user, err := h.svc.Login(c.Request.Context(), form)
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.startSession(c, http.StatusOK, user)
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.sessions.Clear(c.Request.Context(), middlewares.SessionToken(c)); err != nil {
		abortWithError(c, err)
		return
	}
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"msg": "Logged out"})
}

func (h *Handler) Contact(c *gin.Context) {
	var form blog.ContactForm
	if err := c.ShouldBind(&form); err != nil {
		abortWithBadForm(c, err)
		return
	}
	if err := h.svc.Contact(c.Request.Context(), form); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Message sent"})
}
