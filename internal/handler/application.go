package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/TripMate/internal/service"
	logger "github.com/Gopher0727/TripMate/middleware/log"
	"github.com/Gopher0727/TripMate/pkg/dto"
)

type ApplicationHandler struct {
	applicationService service.IApplicationService
	logger             *logger.Logger
}

func NewApplicationHandler(applicationService service.IApplicationService, log *logger.Logger) *ApplicationHandler {
	return &ApplicationHandler{applicationService: applicationService, logger: log}
}

// Apply records the caller's application to a listing. The body is optional.
func (h *ApplicationHandler) Apply(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	companionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.applicationService.Apply(c.Request.Context(), companionID, userID, req.Message)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	companionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	apps, err := h.applicationService.ListApplications(c.Request.Context(), companionID, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

func (h *ApplicationHandler) ListMyApplications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	apps, err := h.applicationService.ListMyApplications(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

func (h *ApplicationHandler) Approve(c *gin.Context) {
	h.decide(c, h.applicationService.Approve)
}

func (h *ApplicationHandler) Reject(c *gin.Context) {
	h.decide(c, h.applicationService.Reject)
}

type decision func(ctx context.Context, companionID, applicantID, actingUserID int64) (*dto.ApplicationDTO, error)

func (h *ApplicationHandler) decide(c *gin.Context, fn decision) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	companionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	applicantID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	app, err := fn(c.Request.Context(), companionID, applicantID, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, app)
}
