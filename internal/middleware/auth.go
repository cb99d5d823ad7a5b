package middleware

import (
	"net/http"

	"github.com/RomanDaru/otazkomat/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const CheckUserKey = "user"

// Named cookie sessions. The login session and the anonymous free-question
// marker live in separate cookies so the marker can carry its own 30-day
// expiry without touching the login state.
const (
	SessionName      = "otazkomat_session"
	QuotaSessionName = "otazkomat_quota"
)

// LoadUser resolves the session user (if any) and sets it on the context.
func LoadUser(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.DefaultMany(c, SessionName)
		userID := session.Get("user_id")

		if userID != nil {
			var user models.User
			if err := gdb.First(&user, userID).Error; err == nil {
				c.Set(CheckUserKey, &user)
			}
		}
		c.Next()
	}
}

// AuthRequired rejects requests without a loaded session user.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckUserKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user LoadUser put on the context, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, exists := c.Get(CheckUserKey); exists {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
