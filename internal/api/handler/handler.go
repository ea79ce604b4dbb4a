package handler

import (
	"errors"
	"log"
	"net/http"

	"healjai/backend/internal/healjai"
	"healjai/backend/internal/localization"

	"github.com/gin-gonic/gin"
)

// Handler wires the HTTP surface to the matching coordinator and the hub.
type Handler struct {
	Coordinator *healjai.Coordinator
	Hub         *healjai.Hub
	Loc         *localization.Localizer
	JWTSecret   []byte
	Lang        string
}

func NewHandler(coordinator *healjai.Coordinator, hub *healjai.Hub,
	loc *localization.Localizer, jwtSecret []byte, lang string) *Handler {
	return &Handler{
		Coordinator: coordinator,
		Hub:         hub,
		Loc:         loc,
		JWTSecret:   jwtSecret,
		Lang:        lang,
	}
}

// abortWithError maps a core error onto an HTTP status and a localized
// user-facing message. Room closure is deliberately a conflict rather than
// a server error: it is an expected end state of every chat.
func (h *Handler) abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, healjai.ErrProfaneName):
		c.JSON(http.StatusBadRequest, gin.H{"error": h.Loc.GetString(h.Lang, "error.name_profane")})
	case errors.Is(err, healjai.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": h.Loc.GetString(h.Lang, "error.invalid_input")})
	case errors.Is(err, healjai.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": h.Loc.GetString(h.Lang, "error.not_found")})
	case errors.Is(err, healjai.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": h.Loc.GetString(h.Lang, "error.unauthorized")})
	case errors.Is(err, healjai.ErrRoomClosed):
		c.JSON(http.StatusConflict, gin.H{"error": h.Loc.GetString(h.Lang, "error.chat_ended")})
	default:
		// Storage or transport failure: suggest a retry, never crash the
		// matching process. Retrying is the caller's business.
		log.Printf("internal error on %s: %v", c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.Loc.GetString(h.Lang, "error.generic")})
	}
}
