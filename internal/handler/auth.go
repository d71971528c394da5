package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"core/internal/auth"
)

// AuthHandler fronts the magic-link sign-in flow against the identity
// provider.
type AuthHandler struct {
	provider *auth.Client
	logger   *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(provider *auth.Client, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		provider: provider,
		logger:   logger.With("component", "auth_handler"),
	}
}

// MagicLink handles POST /api/auth/magic-link
func (h *AuthHandler) MagicLink(c *gin.Context) {
	var req struct {
		Email      string `json:"email" binding:"required,email"`
		RedirectTo string `json:"redirectTo"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email is required"})
		return
	}

	if err := h.provider.SendMagicLink(c.Request.Context(), req.Email, req.RedirectTo); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.InfoContext(c.Request.Context(), "magic link requested", slog.String("email", req.Email))
	c.JSON(http.StatusOK, gin.H{"message": "Check your email for the sign-in link"})
}

// Verify handles POST /api/auth/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
		Type  string `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A token is required"})
		return
	}

	session, err := h.provider.VerifyToken(c.Request.Context(), req.Token, req.Type)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// Refresh handles POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A refresh token is required"})
		return
	}

	session, err := h.provider.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// Session handles GET /api/auth/session. The route sits behind the
// auth middleware, so the claims are already verified; the provider
// round trip confirms the session has not been revoked and picks up a
// refreshed token pair when the access token just expired.
func (h *AuthHandler) Session(c *gin.Context) {
	session := auth.Session{
		AccessToken:  bearerToken(c),
		RefreshToken: c.GetHeader("X-Refresh-Token"),
	}

	user, refreshed, err := h.provider.GetUser(c.Request.Context(), session)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	resp := gin.H{"user": user}
	if refreshed != nil {
		resp["session"] = refreshed
	}
	c.JSON(http.StatusOK, resp)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.provider.Logout(c.Request.Context(), bearerToken(c)); err != nil {
		h.respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

func (h *AuthHandler) respondAuthError(c *gin.Context, err error) {
	if errors.Is(err, auth.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired credentials"})
		return
	}
	respondError(c, h.logger, err)
}

func bearerToken(c *gin.Context) string {
	token, _ := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	return token
}
