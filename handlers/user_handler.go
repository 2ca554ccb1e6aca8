package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/MinilikBelachew/voice-chat/models"
	"github.com/MinilikBelachew/voice-chat/service"

	"github.com/gin-gonic/gin"
)

// UserHandler handles HTTP requests for profile, persona, and memories
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetConfig handles GET /api/user/config
func (h *UserHandler) GetConfig(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Authentication required",
			},
		})
		return
	}

	cfg, err := h.userService.GetSessionConfig(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "USER_NOT_FOUND",
					"message": "User not found",
				},
			})
			return
		}
		log.Printf("user: failed to build session config: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CONFIG_FAILED",
				"message": "Failed to build configuration",
			},
		})
		return
	}

	c.JSON(http.StatusOK, cfg)
}

// OnboardingRequest represents the request body for onboarding
type OnboardingRequest struct {
	Name       string  `json:"name"`
	AIName     string  `json:"aiName"`
	AIBehavior string  `json:"aiBehavior"`
	VoiceID    *string `json:"voiceId"`
}

// Onboarding handles POST /api/user/onboarding
func (h *UserHandler) Onboarding(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Authentication required",
			},
		})
		return
	}

	var req OnboardingRequest
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

	user, err := h.userService.CompleteOnboarding(c.Request.Context(), userID, req.Name, req.AIName, req.AIBehavior, req.VoiceID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingOnboardingFields):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MISSING_FIELDS",
					"message": "name, aiName and aiBehavior are required",
				},
			})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "USER_NOT_FOUND",
					"message": "User not found",
				},
			})
		default:
			log.Printf("user: onboarding failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ONBOARDING_FAILED",
					"message": "Failed to save onboarding",
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

// SelectPersonaRequest represents the request body for persona selection
type SelectPersonaRequest struct {
	Persona string `json:"persona"`
}

// SelectPersona handles POST /api/user/persona
func (h *UserHandler) SelectPersona(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Authentication required",
			},
		})
		return
	}

	var req SelectPersonaRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Persona == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_PERSONA",
				"message": "Persona is required",
			},
		})
		return
	}

	err := h.userService.SelectPersona(c.Request.Context(), userID, models.Persona(req.Persona))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPersona):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_PERSONA",
					"message": "Unknown persona",
				},
			})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "USER_NOT_FOUND",
					"message": "User not found",
				},
			})
		default:
			log.Printf("user: persona update failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UPDATE_FAILED",
					"message": "Failed to update persona",
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Persona updated successfully"})
}

// AddMemoryRequest represents the request body for adding a memory
type AddMemoryRequest struct {
	Content  string `json:"content"`
	Category string `json:"category"`
}

// AddMemory handles POST /api/user/memory
func (h *UserHandler) AddMemory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Authentication required",
			},
		})
		return
	}

	var req AddMemoryRequest
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

	memory, err := h.userService.AddMemory(c.Request.Context(), userID, req.Content, models.MemoryCategory(req.Category))
	if err != nil {
		if errors.Is(err, service.ErrMissingContent) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MISSING_CONTENT",
					"message": "Content is required",
				},
			})
			return
		}
		if errors.Is(err, service.ErrInvalidCategory) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_CATEGORY",
					"message": "Unknown memory category",
				},
			})
			return
		}
		log.Printf("user: failed to save memory: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SAVE_FAILED",
				"message": "Failed to save memory",
			},
		})
		return
	}

	c.JSON(http.StatusOK, memory)
}
