package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/harvestcms/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	sessionUserID   = "user_id"
	sessionUsername = "username"
)

// ShowLoginPage renders the admin login form.
func (a *API) ShowLoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"title": "Admin Login",
	})
}

// Login checks credentials and starts an admin session.
func (a *API) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	var user db.User
	err := a.db.Where("username = ?", username).First(&user).Error
	if err == nil {
		err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	}
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			c.Error(err)
		}
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{
			"title":    "Admin Login",
			"error":    "Invalid username or password",
			"username": username,
		})
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserID, user.ID)
	session.Set(sessionUsername, user.Username)
	if err := session.Save(); err != nil {
		c.Error(err)
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{
			"title": "Admin Login",
			"error": "Could not start session",
		})
		return
	}

	c.Redirect(http.StatusFound, "/admin/panels/dashboard")
}

// Logout ends the admin session.
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/admin/login")
}

// AuthRequired rejects requests without an admin session. API requests get
// a JSON 401, pages are redirected to the login form.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get(sessionUserID) == nil {
			if strings.HasPrefix(c.Request.URL.Path, "/admin/api/") {
				respondError(c, http.StatusUnauthorized, "login required")
			} else {
				c.Redirect(http.StatusFound, "/admin/login")
			}
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentUsername(c *gin.Context) string {
	if name, ok := sessions.Default(c).Get(sessionUsername).(string); ok {
		return name
	}
	return ""
}
