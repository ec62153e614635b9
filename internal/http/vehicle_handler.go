package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fleet-service/internal/model"
	"fleet-service/internal/service"
)

type createVehicleRequest struct {
	Name            string  `json:"name" binding:"required"`
	Model           string  `json:"model"`
	LicensePlate    string  `json:"license_plate" binding:"required"`
	VehicleType     string  `json:"vehicle_type" binding:"required"`
	MaxCapacity     float64 `json:"max_capacity"`
	Odometer        float64 `json:"odometer"`
	AcquisitionCost float64 `json:"acquisition_cost"`
	Region          string  `json:"region"`
}

type updateVehicleRequest struct {
	Name            *string  `json:"name"`
	Model           *string  `json:"model"`
	VehicleType     *string  `json:"vehicle_type"`
	MaxCapacity     *float64 `json:"max_capacity"`
	Odometer        *float64 `json:"odometer"`
	AcquisitionCost *float64 `json:"acquisition_cost"`
	Region          *string  `json:"region"`
}

func (h *Handler) listVehicles(c *gin.Context) {
	limit, offset := parsePage(c)
	vehicles, err := h.vehicles.List(c.Request.Context(), service.VehicleListOptions{
		Statuses: upperCSV[model.VehicleStatus](c.Query("status")),
		Types:    upperCSV[model.VehicleType](c.Query("vehicle_type")),
		Region:   strings.TrimSpace(c.Query("region")),
		Search:   strings.TrimSpace(c.Query("search")),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"items": vehicles}))
}

func (h *Handler) getVehicle(c *gin.Context) {
	id, ok := parseIDParam(c, "vehicle")
	if !ok {
		return
	}
	vehicle, err := h.vehicles.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(vehicle))
}

func (h *Handler) createVehicle(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var req createVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	vehicle, err := h.vehicles.Create(c.Request.Context(), principal, service.CreateVehicleInput{
		Name:            req.Name,
		Model:           req.Model,
		LicensePlate:    req.LicensePlate,
		VehicleType:     model.VehicleType(strings.ToUpper(strings.TrimSpace(req.VehicleType))),
		MaxCapacity:     req.MaxCapacity,
		Odometer:        req.Odometer,
		AcquisitionCost: req.AcquisitionCost,
		Region:          req.Region,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse(vehicle))
}

func (h *Handler) updateVehicle(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "vehicle")
	if !ok {
		return
	}

	var req updateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	input := service.UpdateVehicleInput{
		Name:            req.Name,
		Model:           req.Model,
		MaxCapacity:     req.MaxCapacity,
		Odometer:        req.Odometer,
		AcquisitionCost: req.AcquisitionCost,
		Region:          req.Region,
	}
	if req.VehicleType != nil {
		vt := model.VehicleType(strings.ToUpper(strings.TrimSpace(*req.VehicleType)))
		input.VehicleType = &vt
	}

	vehicle, err := h.vehicles.Update(c.Request.Context(), principal, id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(vehicle))
}

func (h *Handler) retireVehicle(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "vehicle")
	if !ok {
		return
	}
	vehicle, err := h.vehicles.Retire(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(vehicle))
}

func (h *Handler) deleteVehicle(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "vehicle")
	if !ok {
		return
	}
	if err := h.vehicles.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
