package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/deepwork/internal/db"
	"github.com/deepwork/internal/locale"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	sessionUserIDKey   = "user_id"
	sessionUsernameKey = "username"
	userContextKey     = "__user_id"
)

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login 校验用户名密码并写入会话
func (a *API) Login(c *gin.Context) {
	var payload loginPayload
	if !bindPayload(c, &payload) {
		return
	}

	user, err := db.FindUser(a.db, payload.Username)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("find user failed: %v", err)
		}
		respondMessage(c, http.StatusUnauthorized, locale.MsgInvalidCredentials)
		return
	}
	if !user.CheckPassword(payload.Password) {
		respondMessage(c, http.StatusUnauthorized, locale.MsgInvalidCredentials)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserIDKey, user.ID)
	session.Set(sessionUsernameKey, user.Username)
	if err := session.Save(); err != nil {
		fail(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"id": user.ID, "username": user.Username})
}

// Logout 清空会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"logged_out": true})
}

// AuthRequired 要求会话中存在用户，否则返回 401
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get(sessionUserIDKey).(string)
		if !ok || userID == "" {
			respondMessage(c, http.StatusUnauthorized, locale.MsgUnauthorized)
			c.Abort()
			return
		}
		c.Set(userContextKey, userID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(userContextKey)
}
