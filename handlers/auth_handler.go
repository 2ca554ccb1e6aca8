package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"net/http"

	"github.com/MinilikBelachew/voice-chat/auth"
	"github.com/MinilikBelachew/voice-chat/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles HTTP requests for authentication
type AuthHandler struct {
	authService *service.AuthService
	google      *auth.GoogleProvider
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, google *auth.GoogleProvider) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		google:      google,
	}
}

// IssueCodeRequest represents the request body for requesting a code
type IssueCodeRequest struct {
	Email string `json:"email"`
}

// IssueCode handles POST /api/auth/code
func (h *AuthHandler) IssueCode(c *gin.Context) {
	var req IssueCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	err := h.authService.IssueCode(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, service.ErrMissingEmail) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MISSING_EMAIL",
					"message": "Email is required",
				},
			})
			return
		}
		// Full detail stays in the server log; the client gets a
		// generic failure either way
		log.Printf("auth: failed to issue code for %s: %v", req.Email, err)
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MAIL_FAILED",
				"message": "Failed to send verification code",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Code sent successfully"})
}

// VerifyCodeRequest represents the request body for verifying a code
type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// VerifyCode handles POST /api/auth/verify
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	user, token, err := h.authService.VerifyCode(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingEmail), errors.Is(err, service.ErrMissingCode):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_REQUEST",
					"message": "Email and code are required",
				},
			})
		case errors.Is(err, service.ErrInvalidCode):
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_CODE",
					"message": "Invalid or expired code",
				},
			})
		default:
			log.Printf("auth: verification failed for %s: %v", req.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VERIFY_FAILED",
					"message": "Verification failed",
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// GoogleLogin handles GET /api/auth/google
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if h.google == nil || !h.google.Configured() {
		c.JSON(http.StatusNotImplemented, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "OAUTH_DISABLED",
				"message": "Federated login is not configured",
			},
		})
		return
	}

	state := randomState()
	c.SetCookie("oauth_state", state, 600, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.google.AuthURL(state))
}

// GoogleCallback handles GET /api/auth/google/callback
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.google == nil || !h.google.Configured() {
		c.JSON(http.StatusNotImplemented, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "OAUTH_DISABLED",
				"message": "Federated login is not configured",
			},
		})
		return
	}

	expectedState, err := c.Cookie("oauth_state")
	if err != nil || c.Query("state") != expectedState {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATE",
				"message": "OAuth state mismatch",
			},
		})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_CODE",
				"message": "Authorization code is required",
			},
		})
		return
	}

	identity, err := h.google.Exchange(c.Request.Context(), code)
	if err != nil {
		log.Printf("auth: oauth exchange failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "OAUTH_FAILED",
				"message": "Federated login failed",
			},
		})
		return
	}

	user, token, err := h.authService.AuthenticateExternal(c.Request.Context(), identity.Email, identity.Name)
	if err != nil {
		log.Printf("auth: failed to establish oauth session for %s: %v", identity.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LOGIN_FAILED",
				"message": "Failed to establish session",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

func randomState() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "state"
	}
	return hex.EncodeToString(buf)
}
