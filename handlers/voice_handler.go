package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MinilikBelachew/voice-chat/voice"
)

// VoiceClient is the gateway surface the voice handler depends on
type VoiceClient interface {
	GetSignedURL(ctx context.Context) (string, error)
	ListVoices(ctx context.Context) ([]voice.Voice, error)
}

// VoiceHandler handles HTTP requests that proxy the voice gateway
type VoiceHandler struct {
	client VoiceClient
}

// NewVoiceHandler creates a new voice handler
func NewVoiceHandler(client VoiceClient) *VoiceHandler {
	return &VoiceHandler{client: client}
}

// GetSignedURL handles GET /api/get-signed-url. Browser-driven sessions
// use this credential to connect to the gateway directly.
func (h *VoiceHandler) GetSignedURL(c *gin.Context) {
	signedURL, err := h.client.GetSignedURL(c.Request.Context())
	if err != nil {
		log.Printf("voice: failed to fetch signed URL: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "GATEWAY_ERROR",
				"message": "Failed to get connection credential",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"signedUrl": signedURL})
}

// ListVoices handles GET /api/voices
func (h *VoiceHandler) ListVoices(c *gin.Context) {
	voices, err := h.client.ListVoices(c.Request.Context())
	if err != nil {
		log.Printf("voice: failed to list voices: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "GATEWAY_ERROR",
				"message": "Failed to fetch voices",
			},
		})
		return
	}

	c.JSON(http.StatusOK, voices)
}
