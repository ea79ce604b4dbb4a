package handler

import (
	"errors"
	"log"
	"net/http"

	"healjai/backend/internal/config"
	"healjai/backend/internal/healjai"
	"healjai/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type joinRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type sendMessageRequest struct {
	ParticipantID string `json:"participant_id"`
	Content       string `json:"content"`
}

type leaveRequest struct {
	ParticipantID string `json:"participant_id"`
}

// Join registers an anonymous participant and immediately tries to match it.
// The response carries the session token for the websocket event stream.
func (h *Handler) Join(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": h.Loc.GetString(h.Lang, "error.invalid_input")})
		return
	}

	role, ok := models.ParseRole(req.Role)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": h.Loc.GetString(h.Lang, "error.invalid_input")})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": h.Loc.GetString(h.Lang, "error.name_required")})
		return
	}

	p, err := h.Coordinator.Join(req.Name, role)
	if err != nil {
		if errors.Is(err, healjai.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": h.Loc.GetString(h.Lang, "error.name_required")})
			return
		}
		h.abortWithError(c, err)
		return
	}

	token, err := h.issueToken(p.ID)
	if err != nil {
		log.Printf("failed to issue token for %s: %v", p.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.Loc.GetString(h.Lang, "error.generic")})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":               true,
		"participant_id":        p.ID,
		"role":                  p.Role,
		"token":                 token,
		"poll_interval_seconds": config.SuggestedPollIntervalSeconds,
	})
}

// Status is the match polling endpoint: the first poll that observes a match
// moves the participant from matched to chatting.
func (h *Handler) Status(c *gin.Context) {
	matched, roomID, err := h.Coordinator.CheckStatus(c.Param("participantID"))
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	resp := gin.H{"matched": matched}
	if matched {
		resp["room_id"] = roomID
	}
	c.JSON(http.StatusOK, resp)
}

// CancelSearch removes a waiting participant from the queue before a match
// happens. Cancelling an unknown or already matched participant succeeds.
func (h *Handler) CancelSearch(c *gin.Context) {
	if err := h.Coordinator.CancelSearch(c.Param("participantID")); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RoomData returns the room plus both participant records for members.
func (h *Handler) RoomData(c *gin.Context) {
	data, err := h.Coordinator.RoomData(c.Param("roomID"), c.Query("participant_id"))
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// SendMessage appends a chat message. Profane content is cleaned, never
// rejected; sending into an ended room yields the "chat ended" conflict.
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": h.Loc.GetString(h.Lang, "error.invalid_input")})
		return
	}

	if _, err := h.Coordinator.Send(c.Param("roomID"), req.ParticipantID, req.Content); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// messageView adds the system flag to the wire form so clients do not have
// to infer it from a null sender.
type messageView struct {
	models.Message
	IsSystem bool `json:"is_system"`
}

// GetMessages returns the room's messages in append order plus the active
// flag; after closure the last message is the system notice.
func (h *Handler) GetMessages(c *gin.Context) {
	msgs, isActive, err := h.Coordinator.Messages(c.Param("roomID"))
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	views := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, messageView{Message: m, IsSystem: m.IsSystem()})
	}
	c.JSON(http.StatusOK, gin.H{
		"messages":  views,
		"is_active": isActive,
	})
}

// Leave ends the room for both sides. Leaving twice, or leaving a room that
// no longer exists, succeeds the same way leaving once does.
func (h *Handler) Leave(c *gin.Context) {
	var req leaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": h.Loc.GetString(h.Lang, "error.invalid_input")})
		return
	}

	if err := h.Coordinator.Leave(c.Param("roomID"), req.ParticipantID); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
