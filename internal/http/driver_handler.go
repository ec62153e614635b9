package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fleet-service/internal/model"
	"fleet-service/internal/service"
)

type createDriverRequest struct {
	FullName      string `json:"full_name" binding:"required"`
	LicenseNumber string `json:"license_number" binding:"required"`
	LicenseExpiry string `json:"license_expiry" binding:"required"`
	Phone         string `json:"phone"`
	Status        string `json:"status"`
}

type updateDriverRequest struct {
	FullName      *string `json:"full_name"`
	LicenseNumber *string `json:"license_number"`
	LicenseExpiry *string `json:"license_expiry"`
	Phone         *string `json:"phone"`
}

type dutyRequest struct {
	OnDuty *bool `json:"on_duty" binding:"required"`
}

type suspendRequest struct {
	Reason string `json:"reason"`
}

type complaintRequest struct {
	Note string `json:"note"`
}

func (h *Handler) listDrivers(c *gin.Context) {
	limit, offset := parsePage(c)
	drivers, err := h.drivers.List(c.Request.Context(), service.DriverListOptions{
		Statuses: upperCSV[model.DriverStatus](c.Query("status")),
		Search:   strings.TrimSpace(c.Query("search")),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"items": drivers}))
}

func (h *Handler) getDriver(c *gin.Context) {
	id, ok := parseIDParam(c, "driver")
	if !ok {
		return
	}
	driver, err := h.drivers.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(driver))
}

func (h *Handler) createDriver(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var req createDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	expiry, err := parseDate("license_expiry", req.LicenseExpiry)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	driver, err := h.drivers.Create(c.Request.Context(), principal, service.CreateDriverInput{
		FullName:      req.FullName,
		LicenseNumber: req.LicenseNumber,
		LicenseExpiry: expiry,
		Phone:         req.Phone,
		Status:        model.DriverStatus(strings.ToUpper(strings.TrimSpace(req.Status))),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse(driver))
}

func (h *Handler) updateDriver(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "driver")
	if !ok {
		return
	}

	var req updateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	expiry, err := parseOptionalDate("license_expiry", req.LicenseExpiry)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	driver, err := h.drivers.Update(c.Request.Context(), principal, id, service.UpdateDriverInput{
		FullName:      req.FullName,
		LicenseNumber: req.LicenseNumber,
		LicenseExpiry: expiry,
		Phone:         req.Phone,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(driver))
}

func (h *Handler) setDriverDuty(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "driver")
	if !ok {
		return
	}

	var req dutyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	driver, err := h.drivers.SetDuty(c.Request.Context(), principal, id, *req.OnDuty)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(driver))
}

func (h *Handler) suspendDriver(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "driver")
	if !ok {
		return
	}

	var req suspendRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	driver, err := h.drivers.Suspend(c.Request.Context(), principal, id, strings.TrimSpace(req.Reason))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(driver))
}

func (h *Handler) unsuspendDriver(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "driver")
	if !ok {
		return
	}
	driver, err := h.drivers.Unsuspend(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(driver))
}

func (h *Handler) recordComplaint(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "driver")
	if !ok {
		return
	}

	var req complaintRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	driver, err := h.drivers.RecordComplaint(c.Request.Context(), principal, id, strings.TrimSpace(req.Note))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(driver))
}

func (h *Handler) deleteDriver(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "driver")
	if !ok {
		return
	}
	if err := h.drivers.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
