package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/RomanDaru/otazkomat/internal/config"
	"github.com/RomanDaru/otazkomat/internal/middleware"
	"github.com/RomanDaru/otazkomat/internal/models"
	"github.com/RomanDaru/otazkomat/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db          *gorm.DB
	cfg         config.Config
	oauthConfig *oauth2.Config
}

func NewAuthHandler(gdb *gorm.DB, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		db:  gdb,
		cfg: cfg,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.SiteURL + "/auth/google/callback",
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}

// createUser registers a new account. The username is derived from the
// email's local part, same as the classic signup flow.
func (h *AuthHandler) createUser(username, email, password string) (*models.User, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: hash,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	parts := strings.Split(req.Email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		Fail(c, http.StatusBadRequest, "Invalid email address")
		return
	}
	if len(req.Password) < 6 {
		Fail(c, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	user, err := h.createUser(parts[0], req.Email, req.Password)
	if err != nil {
		Fail(c, http.StatusConflict, "Email already registered")
		return
	}

	h.setSessionUser(c, user.ID)
	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		Fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if !utils.CheckPasswordHash(req.Password, user.Password) {
		Fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	h.setSessionUser(c, user.ID)
	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(&user)})
}

// Logout handles GET /auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.DefaultMany(c, middleware.SessionName)
	session.Clear()
	if err := session.Save(); err != nil {
		log.Printf("Failed to clear session: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me handles GET /api/me.
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}

func (h *AuthHandler) setSessionUser(c *gin.Context, userID uint) {
	session := sessions.DefaultMany(c, middleware.SessionName)
	session.Set("user_id", userID)
	if err := session.Save(); err != nil {
		log.Printf("Failed to save session: %v", err)
	}
}
