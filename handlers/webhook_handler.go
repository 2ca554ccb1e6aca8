package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/MinilikBelachew/voice-chat/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WebhookHandler receives post-conversation analysis callbacks from the
// voice gateway. The gateway echoes back the metadata attached at
// session start, which is how the callback is tied to a user.
type WebhookHandler struct {
	userService *service.UserService
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(userService *service.UserService) *WebhookHandler {
	return &WebhookHandler{userService: userService}
}

// webhookPayload is the subset of the gateway callback we consume
type webhookPayload struct {
	Metadata struct {
		UserID string `json:"user_id"`
	} `json:"metadata"`
	Analysis struct {
		DataCollection struct {
			PersonalFacts string `json:"personal_facts"`
		} `json:"data_collection"`
	} `json:"analysis"`
}

// HandleVoiceWebhook handles POST /api/webhooks/voice
func (h *WebhookHandler) HandleVoiceWebhook(c *gin.Context) {
	var payload webhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	if payload.Metadata.UserID == "" {
		log.Printf("webhook: callback without user_id metadata, skipping")
		c.JSON(http.StatusOK, gin.H{"processed": false, "reason": "no user_id"})
		return
	}

	userID, err := uuid.Parse(payload.Metadata.UserID)
	if err != nil {
		log.Printf("webhook: invalid user_id %q, skipping", payload.Metadata.UserID)
		c.JSON(http.StatusOK, gin.H{"processed": false, "reason": "invalid user_id"})
		return
	}

	facts := strings.TrimSpace(payload.Analysis.DataCollection.PersonalFacts)
	if facts == "" {
		c.JSON(http.StatusOK, gin.H{"processed": false, "reason": "no facts"})
		return
	}

	if _, err := h.userService.RecordAnalysisMemory(c.Request.Context(), userID, facts); err != nil {
		log.Printf("webhook: failed to record analysis memory for %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SAVE_FAILED",
				"message": "Failed to record analysis",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"processed": true})
}
