package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fleet-service/internal/http/middleware"
	"fleet-service/internal/model"
	"fleet-service/internal/service"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

type Services struct {
	Trips       *service.TripService
	Vehicles    *service.VehicleService
	Drivers     *service.DriverService
	Maintenance *service.MaintenanceService
	Finance     *service.FinanceService
	Metrics     *service.MetricsService
	Audit       *service.AuditService
}

type Handler struct {
	trips       *service.TripService
	vehicles    *service.VehicleService
	drivers     *service.DriverService
	maintenance *service.MaintenanceService
	finance     *service.FinanceService
	metrics     *service.MetricsService
	audit       *service.AuditService
	health      func(ctx context.Context) error
	log         zerolog.Logger
}

func NewHandler(services Services, health func(ctx context.Context) error, log zerolog.Logger) *Handler {
	return &Handler{
		trips:       services.Trips,
		vehicles:    services.Vehicles,
		drivers:     services.Drivers,
		maintenance: services.Maintenance,
		finance:     services.Finance,
		metrics:     services.Metrics,
		audit:       services.Audit,
		health:      health,
		log:         log,
	}
}

func (h *Handler) healthz(c *gin.Context) {
	if h.health != nil {
		if err := h.health(c.Request.Context()); err != nil {
			h.log.Error().Err(err).Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	reason := string(service.ReasonOf(err))
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse("invalid_input", err.Error(), reason))
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, errorResponse("validation_error", err.Error(), reason))
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, errorResponse("invalid_transition", err.Error(), reason))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse("not_found", err.Error(), reason))
	case errors.Is(err, service.ErrPreconditionFailed):
		c.JSON(http.StatusConflict, errorResponse("precondition_failed", err.Error(), reason))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, errorResponse("conflict", err.Error(), reason))
	case errors.Is(err, service.ErrDuplicateKey):
		c.JSON(http.StatusConflict, errorResponse("duplicate_key", err.Error(), reason))
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal", "internal error", ""))
	}
}

func principalOrAbort(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("unauthenticated", "principal missing", ""))
	}
	return principal, ok
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResponse("invalid_input", msg, "invalid_input"))
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		badRequest(c, "invalid "+name+" id")
		return uuid.Nil, false
	}
	return id, true
}

func parseUUID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s", field)
	}
	return id, nil
}

func parseOptionalUUID(field string, value *string) (*uuid.UUID, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	id, err := parseUUID(field, *value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func queryUUID(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	return parseOptionalUUID(name, &raw)
}

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if ts, err := time.Parse(time.DateOnly, value); err == nil {
		return ts, nil
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: expected YYYY-MM-DD or RFC 3339", field)
	}
	return ts, nil
}

func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	ts, err := parseDate(field, *value)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func queryDate(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	return parseOptionalDate(name, &raw)
}

func parsePage(c *gin.Context) (limit, offset int) {
	limit = defaultLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if raw := strings.TrimSpace(c.Query("offset")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			offset = v
		}
	}
	return limit, offset
}

func upperCSV[T ~string](value string) []T {
	parts := splitCSV(value)
	out := make([]T, 0, len(parts))
	for _, part := range parts {
		out = append(out, T(strings.ToUpper(part)))
	}
	return out
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

type responseEnvelope struct {
	Data interface{} `json:"data"`
}

func successResponse(data interface{}) responseEnvelope {
	return responseEnvelope{Data: data}
}

func errorResponse(code, msg, reason string) gin.H {
	body := gin.H{"error": msg, "code": code}
	if reason != "" {
		body["reason"] = reason
	}
	return body
}
