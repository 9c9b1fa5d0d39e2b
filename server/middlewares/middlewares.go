package middlewares

import (
	"net/http"
	"strings"

	"github.com/Luismorlan/blogmux/model"
	"github.com/Luismorlan/blogmux/session"
	"github.com/Luismorlan/blogmux/utils"
	Logger "github.com/Luismorlan/blogmux/utils/log"
	"github.com/gin-gonic/gin"
)

const (
	// SessionCookie carries the session token for browser clients, api clients
	// may send "Authorization: Bearer <token>" instead.
	SessionCookie = "blog_session"

	actorKey = "actor"
	tokenKey = "session_token"
)

func tokenFromRequest(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// Session middleware resolves the session token of the request into the
// acting user. It never rejects a request on its own: a missing or invalid
// token just leaves the request anonymous and every workflow decides whether
// that's enough. Only a failure to reach the session registry or the store
// aborts the request.
func Session(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)

		actor, err := manager.CurrentActor(c.Request.Context(), token)
		if err != nil {
			Logger.Log.WithError(err).Error("fail to resolve session")
			utils.CountError("session")
			c.JSON(http.StatusInternalServerError, gin.H{
				"code": utils.ErrorTokenAuthFail,
				"msg":  "fail to resolve session",
			})
			c.Abort()
			return
		}

		c.Set(tokenKey, token)
		if actor != nil {
			c.Set(actorKey, actor)
		}

		// before request
		c.Next()
	}
}

// CurrentActor returns the user resolved by Session, nil when anonymous.
func CurrentActor(c *gin.Context) *model.User {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil
	}
	actor, _ := v.(*model.User)
	return actor
}

// SessionToken returns the raw token the request was sent with.
func SessionToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}
