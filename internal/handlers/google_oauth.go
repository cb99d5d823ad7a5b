package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/RomanDaru/otazkomat/internal/middleware"
	"github.com/RomanDaru/otazkomat/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
)

// GoogleUserInfo is the userinfo payload returned by Google.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

func generateStateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// GoogleLogin handles GET /auth/google: redirect to the consent screen with a
// random state token stored in the session.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state, err := generateStateToken()
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Failed to start login")
		return
	}

	session := sessions.DefaultMany(c, middleware.SessionName)
	session.Set("oauth_state", state)
	session.Save()

	url := h.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback handles GET /auth/google/callback.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	session := sessions.DefaultMany(c, middleware.SessionName)
	savedState := session.Get("oauth_state")

	if savedState == nil || c.Query("state") != savedState.(string) {
		c.Redirect(http.StatusFound, "/?error=invalid_state")
		return
	}

	session.Delete("oauth_state")
	session.Save()

	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusFound, "/?error=no_code")
		return
	}

	token, err := h.oauthConfig.Exchange(context.Background(), code)
	if err != nil {
		c.Redirect(http.StatusFound, "/?error=token_exchange_failed")
		return
	}

	userInfo, err := h.getGoogleUserInfo(token.AccessToken)
	if err != nil {
		c.Redirect(http.StatusFound, "/?error=get_userinfo_failed")
		return
	}

	if !userInfo.VerifiedEmail {
		c.Redirect(http.StatusFound, "/?error=email_not_verified")
		return
	}

	// Look the user up by GoogleID or email; first login auto-registers.
	var user models.User
	err = h.db.Where("google_id = ?", userInfo.ID).Or("email = ?", userInfo.Email).First(&user).Error
	if err != nil {
		username := userInfo.GivenName
		if username == "" {
			username = strings.Split(userInfo.Email, "@")[0]
		}

		// GoogleID doubles as the initial password so the account can set a
		// real one later.
		newUser, err := h.createUser(username, userInfo.Email, userInfo.ID)
		if err != nil {
			c.Redirect(http.StatusFound, "/?error=create_user_failed")
			return
		}

		newUser.GoogleID = userInfo.ID
		newUser.GoogleEmail = userInfo.Email
		h.db.Save(newUser)

		user = *newUser
	} else if user.GoogleID == "" {
		user.GoogleID = userInfo.ID
		user.GoogleEmail = userInfo.Email
		h.db.Save(&user)
	}

	session.Set("user_id", user.ID)
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) getGoogleUserInfo(accessToken string) (*GoogleUserInfo, error) {
	resp, err := http.Get("https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + accessToken)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var userInfo GoogleUserInfo
	if err := json.Unmarshal(body, &userInfo); err != nil {
		return nil, err
	}

	return &userInfo, nil
}
