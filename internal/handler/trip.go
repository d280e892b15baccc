package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/TripMate/internal/service"
	logger "github.com/Gopher0727/TripMate/middleware/log"
	"github.com/Gopher0727/TripMate/pkg/dto"
)

type TripHandler struct {
	tripService service.ITripService
	logger      *logger.Logger
}

func NewTripHandler(tripService service.ITripService, log *logger.Logger) *TripHandler {
	return &TripHandler{tripService: tripService, logger: log}
}

// CreateTrip handles trip creation for the authenticated user
func (h *TripHandler) CreateTrip(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req dto.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trip, err := h.tripService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, trip)
}

func (h *TripHandler) GetTrip(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	trip, err := h.tripService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (h *TripHandler) ListTrips(c *gin.Context) {
	var q struct {
		Page int `form:"page"`
		Size int `form:"size"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, err := h.tripService.List(c.Request.Context(), q.Page, q.Size)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ListMyTrips returns the caller's own trips
func (h *TripHandler) ListMyTrips(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	trips, err := h.tripService.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, trips)
}

func (h *TripHandler) UpdateTrip(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trip, err := h.tripService.Update(c.Request.Context(), id, userID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// DeleteTrip removes a trip once none of its listings is recruiting
func (h *TripHandler) DeleteTrip(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.tripService.Delete(c.Request.Context(), id, userID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TripHandler) GetSchedules(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	schedules, err := h.tripService.GetSchedules(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, schedules)
}

// ReplaceSchedules overwrites the itinerary of the caller's trip with the posted list
func (h *TripHandler) ReplaceSchedules(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req []*dto.TripScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	schedules, err := h.tripService.ReplaceSchedules(c.Request.Context(), id, userID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, schedules)
}
