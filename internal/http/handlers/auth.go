package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/roadmap-backend/internal/http/middleware"
	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
	"github.com/yungbote/roadmap-backend/internal/services"
)

type AuthHandler struct {
	log      *logger.Logger
	sessions services.SessionService
	cookies  middleware.Cookies
	metrics  *observability.Metrics
}

func NewAuthHandler(log *logger.Logger, sessions services.SessionService, cookies middleware.Cookies, metrics *observability.Metrics) *AuthHandler {
	return &AuthHandler{
		log:      log.With("handler", "AuthHandler"),
		sessions: sessions,
		cookies:  cookies,
		metrics:  metrics,
	}
}

type statusBody struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Login exchanges a Firebase ID token (Authorization: Bearer) for the
// session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	idToken := bearerToken(c)
	if idToken == "" {
		h.metrics.IncSessionEvent("login", "missing_token")
		c.JSON(http.StatusBadRequest, statusBody{Status: "error", Message: "Missing ID token."})
		return
	}
	sess, err := h.sessions.Establish(c.Request.Context(), idToken)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrSessionNotConfigured):
		h.metrics.IncSessionEvent("login", "not_configured")
		c.JSON(http.StatusServiceUnavailable, statusBody{Status: "error", Message: "Server not configured for authentication."})
		return
	case errors.Is(err, services.ErrInvalidIDToken):
		h.metrics.IncSessionEvent("login", "invalid_token")
		c.JSON(http.StatusUnauthorized, statusBody{Status: "error"})
		return
	default:
		h.metrics.IncSessionEvent("login", "error")
		h.log.Error("establish session failed", "error", err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, statusBody{Status: "error"})
		return
	}
	h.metrics.IncSessionEvent("login", "ok")
	h.cookies.SetSession(c, sess.Token, h.sessions.TTL())
	c.JSON(http.StatusOK, statusBody{Status: "success"})
}

// Logout always succeeds and always expires the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, _ := c.Cookie(h.cookies.Session); token != "" {
		if err := h.sessions.Clear(c.Request.Context(), token); err != nil {
			h.log.Warn("session not revoked", "error", err)
		}
	}
	h.metrics.IncSessionEvent("logout", "ok")
	h.cookies.SetSession(c, "", 0)
	c.JSON(http.StatusOK, statusBody{Status: "success"})
}

func (h *AuthHandler) Session(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	status := "signed-out"
	if caller != nil {
		status = "session-ready"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        status,
		"authenticated": caller != nil,
		"user":          caller,
	})
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
