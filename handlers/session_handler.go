package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/MinilikBelachew/voice-chat/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionHandler handles HTTP requests for server-side voice sessions
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// StartSession handles POST /api/sessions. Works with or without an
// authenticated identity; anonymous sessions are stateless.
func (h *SessionHandler) StartSession(c *gin.Context) {
	var userID *uuid.UUID
	if id, ok := currentUserID(c); ok {
		userID = &id
	}

	sess, err := h.sessionService.Start(c.Request.Context(), userID)
	if err != nil {
		log.Printf("session: start failed: %v", err)
		if errors.Is(err, service.ErrGateway) {
			c.JSON(http.StatusBadGateway, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "GATEWAY_ERROR",
					"message": "Voice service is unavailable",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "START_FAILED",
				"message": "Failed to start session",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":    sess.ID,
		"state": sess.State(),
	})
}

// StopSession handles DELETE /api/sessions/:id
func (h *SessionHandler) StopSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_SESSION_ID",
				"message": "Invalid session id format",
			},
		})
		return
	}

	if err := h.sessionService.Stop(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SESSION_NOT_FOUND",
				"message": "Session not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session stopped"})
}

// GetSession handles GET /api/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_SESSION_ID",
				"message": "Invalid session id format",
			},
		})
		return
	}

	sess, ok := h.sessionService.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SESSION_NOT_FOUND",
				"message": "Session not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         sess.ID,
		"state":      sess.State(),
		"utterances": sess.UtteranceCount(),
	})
}
