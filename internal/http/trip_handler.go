package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-service/internal/model"
	"fleet-service/internal/service"
)

type createTripRequest struct {
	VehicleID         string  `json:"vehicle_id" binding:"required"`
	DriverID          string  `json:"driver_id" binding:"required"`
	CargoWeight       float64 `json:"cargo_weight"`
	Origin            string  `json:"origin"`
	Destination       string  `json:"destination"`
	ScheduledDate     *string `json:"scheduled_date"`
	EstimatedFuelCost float64 `json:"estimated_fuel_cost"`
	Revenue           float64 `json:"revenue"`
}

type updateTripRequest struct {
	CargoWeight       *float64 `json:"cargo_weight"`
	Origin            *string  `json:"origin"`
	Destination       *string  `json:"destination"`
	ScheduledDate     *string  `json:"scheduled_date"`
	EstimatedFuelCost *float64 `json:"estimated_fuel_cost"`
	Revenue           *float64 `json:"revenue"`
}

type completeTripRequest struct {
	Distance float64  `json:"distance" binding:"required"`
	Revenue  *float64 `json:"revenue"`
}

func (h *Handler) listTrips(c *gin.Context) {
	vehicleID, err := queryUUID(c, "vehicle_id")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	driverID, err := queryUUID(c, "driver_id")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	limit, offset := parsePage(c)

	trips, err := h.trips.List(c.Request.Context(), service.TripListOptions{
		Statuses:  upperCSV[model.TripStatus](c.Query("status")),
		VehicleID: vehicleID,
		DriverID:  driverID,
		Search:    c.Query("search"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"items": trips}))
}

func (h *Handler) getTrip(c *gin.Context) {
	id, ok := parseIDParam(c, "trip")
	if !ok {
		return
	}
	trip, err := h.trips.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(trip))
}

func (h *Handler) createTrip(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var req createTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	vehicleID, err := parseUUID("vehicle_id", req.VehicleID)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	driverID, err := parseUUID("driver_id", req.DriverID)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	scheduled, err := parseOptionalDate("scheduled_date", req.ScheduledDate)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	trip, err := h.trips.Create(c.Request.Context(), principal, service.CreateTripInput{
		VehicleID:         vehicleID,
		DriverID:          driverID,
		CargoWeight:       req.CargoWeight,
		Origin:            req.Origin,
		Destination:       req.Destination,
		ScheduledDate:     scheduled,
		EstimatedFuelCost: req.EstimatedFuelCost,
		Revenue:           req.Revenue,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse(trip))
}

func (h *Handler) updateTrip(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "trip")
	if !ok {
		return
	}

	var req updateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	scheduled, err := parseOptionalDate("scheduled_date", req.ScheduledDate)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	trip, err := h.trips.Update(c.Request.Context(), principal, id, service.UpdateTripInput{
		CargoWeight:       req.CargoWeight,
		Origin:            req.Origin,
		Destination:       req.Destination,
		ScheduledDate:     scheduled,
		EstimatedFuelCost: req.EstimatedFuelCost,
		Revenue:           req.Revenue,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(trip))
}

func (h *Handler) dispatchTrip(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "trip")
	if !ok {
		return
	}
	trip, err := h.trips.Dispatch(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(trip))
}

func (h *Handler) completeTrip(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "trip")
	if !ok {
		return
	}

	var req completeTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	trip, err := h.trips.Complete(c.Request.Context(), principal, id, service.CompleteTripInput{
		Distance: req.Distance,
		Revenue:  req.Revenue,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(trip))
}

func (h *Handler) cancelTrip(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "trip")
	if !ok {
		return
	}
	trip, err := h.trips.Cancel(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(trip))
}
