package handler

import (
	"net/http"
	"strings"

	"healjai/backend/internal/healjai"
	"healjai/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten in production!
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the connection and subscribes the participant to
// its event stream. The session token from the join response authenticates
// the upgrade; polling clients skip this endpoint entirely.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token missing"})
		return
	}

	participantID, err := h.validateToken(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to upgrade connection"})
		return
	}

	client := &healjai.WebSocketClient{
		ParticipantID: participantID,
		Conn:          conn,
		Hub:           h.Hub,
		Send:          make(chan models.Event, 256),
	}

	h.Hub.RegisterCh <- client
	client.Run()
}
