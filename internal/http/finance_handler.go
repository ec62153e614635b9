package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-service/internal/service"
)

type fuelLogRequest struct {
	VehicleID       string  `json:"vehicle_id" binding:"required"`
	TripID          *string `json:"trip_id"`
	Date            *string `json:"date"`
	Liters          float64 `json:"liters" binding:"required"`
	Cost            float64 `json:"cost" binding:"required"`
	OdometerReading float64 `json:"odometer_reading"`
}

type expenseRequest struct {
	VehicleID   string  `json:"vehicle_id" binding:"required"`
	TripID      *string `json:"trip_id"`
	Category    string  `json:"category" binding:"required"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount" binding:"required"`
	Date        *string `json:"date"`
}

func (h *Handler) addFuelLog(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var req fuelLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	vehicleID, err := parseUUID("vehicle_id", req.VehicleID)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	tripID, err := parseOptionalUUID("trip_id", req.TripID)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	date, err := parseOptionalDate("date", req.Date)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	entry, err := h.finance.AddFuelLog(c.Request.Context(), principal, service.AddFuelLogInput{
		VehicleID:       vehicleID,
		TripID:          tripID,
		Date:            date,
		Liters:          req.Liters,
		Cost:            req.Cost,
		OdometerReading: req.OdometerReading,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse(entry))
}

func (h *Handler) addExpense(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	vehicleID, err := parseUUID("vehicle_id", req.VehicleID)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	tripID, err := parseOptionalUUID("trip_id", req.TripID)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	date, err := parseOptionalDate("date", req.Date)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	entry, err := h.finance.AddExpense(c.Request.Context(), principal, service.AddExpenseInput{
		VehicleID:   vehicleID,
		TripID:      tripID,
		Category:    req.Category,
		Description: req.Description,
		Amount:      req.Amount,
		Date:        date,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse(entry))
}

func (h *Handler) listFuelLogs(c *gin.Context) {
	opts, ok := financeListOptions(c)
	if !ok {
		return
	}
	entries, err := h.finance.ListFuelLogs(c.Request.Context(), opts)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"items": entries}))
}

func (h *Handler) listExpenses(c *gin.Context) {
	opts, ok := financeListOptions(c)
	if !ok {
		return
	}
	entries, err := h.finance.ListExpenses(c.Request.Context(), opts)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"items": entries}))
}

func financeListOptions(c *gin.Context) (service.FinanceListOptions, bool) {
	var opts service.FinanceListOptions
	var err error
	if opts.VehicleID, err = queryUUID(c, "vehicle_id"); err != nil {
		badRequest(c, err.Error())
		return opts, false
	}
	if opts.TripID, err = queryUUID(c, "trip_id"); err != nil {
		badRequest(c, err.Error())
		return opts, false
	}
	if opts.DateFrom, err = queryDate(c, "date_from"); err != nil {
		badRequest(c, err.Error())
		return opts, false
	}
	if opts.DateTo, err = queryDate(c, "date_to"); err != nil {
		badRequest(c, err.Error())
		return opts, false
	}
	opts.Category = c.Query("category")
	opts.Limit, opts.Offset = parsePage(c)
	return opts, true
}
