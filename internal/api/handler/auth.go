package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/timmy/memerator/internal/api/middleware"
	"github.com/timmy/memerator/internal/service"
)

// CookieConfig controls the session cookie written on login.
type CookieConfig struct {
	Secure bool
}

// AuthHandler handles registration and sessions.
type AuthHandler struct {
	authService *service.AuthService
	cookie      CookieConfig
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService *service.AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie}
}

// CredentialsRequest is the body of register and login.
type CredentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account.
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Login issues a session token and sets it as a cookie.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	session, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	h.setSessionCookie(c, session.Token, maxAge)
	c.JSON(http.StatusOK, session)
}

// Logout clears the session cookie. Tokens are stateless and stay valid until they expire.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

// Me returns the current user.
// GET /api/v1/me
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if err := service.RequireUser(user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, value, maxAge, "/", "", h.cookie.Secure, true)
}
