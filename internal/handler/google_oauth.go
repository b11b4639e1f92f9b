package handler

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"

	"ajopay/config"
	"ajopay/internal/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleOAuthHandler implements the redirect flow: /auth/google hands
// the browser to Google, /auth/google/callback exchanges the code and
// issues our own token pair.
type GoogleOAuthHandler struct {
	oauthCfg *oauth2.Config
	authSvc  *service.AuthService
}

func NewGoogleOAuthHandler(cfg *config.OAuthConfig, authSvc *service.AuthService) *GoogleOAuthHandler {
	return &GoogleOAuthHandler{
		oauthCfg: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		authSvc: authSvc,
	}
}

type googleUserinfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Redirect starts the flow. State goes into a short-lived cookie and is
// checked on callback.
func (h *GoogleOAuthHandler) Redirect(c *gin.Context) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start login"})
		return
	}
	state := base64.RawURLEncoding.EncodeToString(b)
	c.SetCookie("oauth_state", state, 300, "/", "", false, true)
	// Optional ?role=AGENT signs the new account up as an agent.
	if role := c.Query("role"); role != "" {
		c.SetCookie("oauth_role", role, 300, "/", "", false, true)
	}
	c.Redirect(http.StatusTemporaryRedirect, h.oauthCfg.AuthCodeURL(state))
}

func (h *GoogleOAuthHandler) Callback(c *gin.Context) {
	stateCookie, err := c.Cookie("oauth_state")
	if err != nil || stateCookie == "" || c.Query("state") != stateCookie {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state mismatch"})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}
	token, err := h.oauthCfg.Exchange(c.Request.Context(), code)
	if err != nil {
		log.Printf("[oauth] code exchange: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "exchange failed"})
		return
	}

	client := h.oauthCfg.Client(c.Request.Context(), token)
	resp, err := client.Get(googleUserinfoURL)
	if err != nil {
		log.Printf("[oauth] userinfo: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch profile"})
		return
	}
	defer resp.Body.Close()
	var info googleUserinfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.ID == "" || info.Email == "" {
		c.JSON(http.StatusBadGateway, gin.H{"error": "invalid profile response"})
		return
	}

	role, _ := c.Cookie("oauth_role")
	user, access, refresh, created, err := h.authSvc.LoginWithGoogle(info.ID, info.Email, info.Name, info.Picture, role)
	if err != nil {
		log.Printf("[oauth] login google_id=%s: %v", info.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"user":          user,
		"access_token":  access,
		"refresh_token": refresh,
		"created":       created,
	})
}
