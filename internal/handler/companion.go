package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/TripMate/internal/service"
	logger "github.com/Gopher0727/TripMate/middleware/log"
	"github.com/Gopher0727/TripMate/pkg/dto"
)

type CompanionHandler struct {
	companionService service.ICompanionService
	logger           *logger.Logger
}

func NewCompanionHandler(companionService service.ICompanionService, log *logger.Logger) *CompanionHandler {
	return &CompanionHandler{companionService: companionService, logger: log}
}

// CreateCompanion opens a recruiting listing and its chat room
func (h *CompanionHandler) CreateCompanion(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.CreateCompanionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	companion, err := h.companionService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, companion)
}

func (h *CompanionHandler) GetCompanion(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	companion, err := h.companionService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, companion)
}

// ListCompanions searches listings by status, trip, owner and destination
func (h *CompanionHandler) ListCompanions(c *gin.Context) {
	var query dto.CompanionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, err := h.companionService.List(c.Request.Context(), &query)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *CompanionHandler) UpdateCompanion(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCompanionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	companion, err := h.companionService.Update(c.Request.Context(), id, userID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, companion)
}

func (h *CompanionHandler) DeleteCompanion(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.companionService.Delete(c.Request.Context(), id, userID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
