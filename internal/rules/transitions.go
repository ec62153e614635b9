package rules

import "fleet-service/internal/model"

var tripTransitions = map[model.TripStatus]map[model.TripStatus]struct{}{
	model.TripStatusDraft: {
		model.TripStatusDispatched: {},
		model.TripStatusCancelled:  {},
	},
	model.TripStatusDispatched: {
		model.TripStatusCompleted: {},
		model.TripStatusCancelled: {},
	},
}

var maintenanceTransitions = map[model.MaintenanceStatus]map[model.MaintenanceStatus]struct{}{
	model.MaintenanceStatusOpen: {
		model.MaintenanceStatusInProgress: {},
		model.MaintenanceStatusResolved:   {},
	},
	model.MaintenanceStatusInProgress: {
		model.MaintenanceStatusResolved: {},
	},
}

// TripTransitionAllowed reports whether a trip may move from current to next.
// Completed and cancelled trips have no outgoing edges.
func TripTransitionAllowed(current, next model.TripStatus) Outcome {
	if allowed, ok := tripTransitions[current]; ok {
		if _, ok := allowed[next]; ok {
			return Pass()
		}
	}
	return Fail(ReasonInvalidTransition, "trip cannot move from %s to %s", current, next)
}

func MaintenanceTransitionAllowed(current, next model.MaintenanceStatus) Outcome {
	if current == next {
		return Pass()
	}
	if allowed, ok := maintenanceTransitions[current]; ok {
		if _, ok := allowed[next]; ok {
			return Pass()
		}
	}
	return Fail(ReasonInvalidTransition, "maintenance log cannot move from %s to %s", current, next)
}
