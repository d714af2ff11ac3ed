package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/addrauth"
	"github.com/layer-3/addrauth/core"
)

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	auth   addrauth.Client
	logger *slog.Logger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(auth addrauth.Client, logger *slog.Logger) *AuthHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandlers{
		auth:   auth,
		logger: logger,
	}
}

// Create handles the challenge request
func (h *AuthHandlers) Create(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	challenge, err := h.auth.GenerateChallenge(req.Address)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"challenge": challenge.Value,
		"token":     challenge.Token,
	})
}

// VerifyChallenge handles the signed challenge and returns a session token
func (h *AuthHandlers) VerifyChallenge(c *gin.Context) {
	var req struct {
		Token     string         `json:"token" binding:"required"`
		Signature string         `json:"signature" binding:"required"`
		PublicKey string         `json:"publicKey" binding:"required"`
		Address   string         `json:"address" binding:"required"`
		Included  map[string]any `json:"included"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	session, err := h.auth.VerifyChallenge(c.Request.Context(), req.Token, req.Signature, req.PublicKey, req.Address, req.Included)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   session.Token,
		"address": session.Address,
	})
}

// VerifyJWT reports whether a session token is valid
func (h *AuthHandlers) VerifyJWT(c *gin.Context) {
	var req struct {
		JWT string `json:"jwt" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	claims, err := h.auth.VerifyJWT(req.JWT)
	if err != nil {
		status, msg := errorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("session verification failed", "error", err)
		}
		c.JSON(status, gin.H{"valid": false, "error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":  true,
		"claims": claims,
	})
}

// Me returns information about the authenticated user
func (h *AuthHandlers) Me(c *gin.Context) {
	// User address is set by the auth middleware
	address, exists := c.Get(userAddressKey)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User not found in context"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address": address,
	})
}

func (h *AuthHandlers) fail(c *gin.Context, err error) {
	status, msg := errorStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": msg})
}

// errorStatus maps service errors to a status code and a client safe message
func errorStatus(err error) (int, string) {
	var verr *core.ValidationError

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, core.ErrChallengeConsumed):
		return http.StatusUnauthorized, "Challenge already used"
	case errors.Is(err, core.ErrTokenExpired):
		return http.StatusUnauthorized, "Token expired"
	case errors.Is(err, core.ErrTokenInvalid):
		return http.StatusUnauthorized, "Invalid token"
	case errors.Is(err, core.ErrInvalidSignature):
		return http.StatusUnauthorized, "Invalid signature"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}
