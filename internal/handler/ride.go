package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"haul/internal/domain"
	"haul/internal/middleware"
	"haul/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rideService *service.RideService
	log         logrus.FieldLogger
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService, log logrus.FieldLogger) *RideHandler {
	return &RideHandler{
		rideService: rideService,
		log:         log,
	}
}

// CreateRide handles POST /v1/rides
func (h *RideHandler) CreateRide(c *gin.Context) {
	profile, ok := requireProfile(c)
	if !ok {
		return
	}

	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ride, err := h.rideService.CreateRide(c.Request.Context(), service.CreateRideRequest{
		Requester:          profile,
		OriginAddress:      req.OriginAddress,
		DestinationAddress: req.DestinationAddress,
		Price:              *req.Price,
		IsProduct:          req.IsProduct,
		Product:            req.Product.toDomain(),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondJSON(c, http.StatusCreated, "ride created", toRideResponse(ride))
}

// ListAvailable handles GET /v1/rides/available
func (h *RideHandler) ListAvailable(c *gin.Context) {
	offset, ok := offsetParam(c)
	if !ok {
		return
	}

	page, err := h.rideService.ListAvailable(c.Request.Context(), c.Query("city"), offset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondJSON(c, http.StatusOK, "", toPage(page, toRideResponse))
}

// ListHistory handles GET /v1/rides/history
func (h *RideHandler) ListHistory(c *gin.Context) {
	profile, ok := requireProfile(c)
	if !ok {
		return
	}
	offset, ok := offsetParam(c)
	if !ok {
		return
	}

	page, err := h.rideService.ListHistory(c.Request.Context(), profile.Actor(), offset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondJSON(c, http.StatusOK, "", toPage(page, toRideResponse))
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	profile, ok := requireProfile(c)
	if !ok {
		return
	}

	ride, err := h.rideService.GetRide(c.Request.Context(), c.Param("id"), profile.Actor())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondJSON(c, http.StatusOK, "", toRideResponse(ride))
}

// AcceptRide handles POST /v1/rides/:id/accept
func (h *RideHandler) AcceptRide(c *gin.Context) {
	profile, ok := requireProfile(c)
	if !ok {
		return
	}

	ride, err := h.rideService.AcceptRide(c.Request.Context(), service.AcceptRideRequest{
		RideID: c.Param("id"),
		Driver: profile,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondJSON(c, http.StatusOK, "ride accepted", toRideResponse(ride))
}

// UpdateStatus handles PUT /v1/rides/:id/status
func (h *RideHandler) UpdateStatus(c *gin.Context) {
	profile, ok := requireProfile(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ride, err := h.rideService.UpdateStatus(c.Request.Context(), service.UpdateStatusRequest{
		RideID: c.Param("id"),
		Actor:  profile.Actor(),
		Status: domain.RideStatus(req.Status),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondJSON(c, http.StatusOK, "ride status updated", toRideResponse(ride))
}

// DriverStats handles GET /v1/drivers/me/stats
func (h *RideHandler) DriverStats(c *gin.Context) {
	profile, ok := requireProfile(c)
	if !ok {
		return
	}

	stats, err := h.rideService.DriverStats(c.Request.Context(), profile.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respondJSON(c, http.StatusOK, "", DriverStatsResponse{
		DriverID:       stats.DriverID,
		CompletedRides: stats.CompletedRides,
		TotalEarnings:  stats.TotalEarnings.StringFixed(2),
	})
}

// requireProfile returns the authenticated profile or answers 401.
func requireProfile(c *gin.Context) (*domain.Profile, bool) {
	profile := middleware.ProfileFrom(c)
	if profile == nil {
		c.JSON(http.StatusUnauthorized, Response{Success: false, Message: "authentication required"})
		return nil, false
	}
	return profile, true
}

// offsetParam parses the offset query parameter, answering 400 when it is
// not a non-negative integer.
func offsetParam(c *gin.Context) (int, bool) {
	raw := c.Query("offset")
	if raw == "" {
		return 0, true
	}
	offset, err := strconv.Atoi(raw)
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "offset must be a non-negative integer"})
		return 0, false
	}
	return offset, true
}
