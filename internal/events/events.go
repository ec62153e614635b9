// Package events publishes lifecycle notifications after a unit of work has committed.
package events

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TripDispatched      Type = "trip.dispatched"
	TripCompleted       Type = "trip.completed"
	TripCancelled       Type = "trip.cancelled"
	VehicleRetired      Type = "vehicle.retired"
	VehicleStatus       Type = "vehicle.status_changed"
	DriverSuspended     Type = "driver.suspended"
	DriverUnsuspended   Type = "driver.unsuspended"
	MaintenanceOpened   Type = "maintenance.opened"
	MaintenanceResolved Type = "maintenance.resolved"
)

type Event struct {
	Type       Type                   `json:"type"`
	EntityID   uuid.UUID              `json:"entity_id"`
	ActorID    uuid.UUID              `json:"actor_id"`
	Status     string                 `json:"status,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error {
	return nil
}

// Topic maps an event type onto an MQTT topic below prefix, e.g. fleet/trip/dispatched.
func Topic(prefix string, t Type) string {
	suffix := strings.ReplaceAll(string(t), ".", "/")
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return suffix
	}
	return prefix + "/" + suffix
}
