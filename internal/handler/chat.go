package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/TripMate/internal/service"
	logger "github.com/Gopher0727/TripMate/middleware/log"
)

type ChatHandler struct {
	chatService service.IChatService
	logger      *logger.Logger
}

func NewChatHandler(chatService service.IChatService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{chatService: chatService, logger: log}
}

// ListRooms returns the rooms the caller may join
func (h *ChatHandler) ListRooms(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	rooms, err := h.chatService.ListUserRooms(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func (h *ChatHandler) GetRoom(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	roomID, ok := pathID(c, "id")
	if !ok {
		return
	}
	room, err := h.chatService.GetRoom(c.Request.Context(), roomID, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, room)
}
