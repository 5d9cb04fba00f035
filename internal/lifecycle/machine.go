// Package lifecycle defines the canonical fault status state machine.
//
// New -> Assigned -> InProgress -> Completed, with Completed terminal.
// Completion is never a direct status edit: the only entry into Completed
// is Complete, which demands both signatures and the composed act snapshot
// already on the fault. Those fields are written exclusively by the signing
// protocol, so only its completion callback can satisfy the guard.
package lifecycle

import (
	commonerrors "github.com/judzis-sketch/gedimu-registras/internal/common/errors"
	"github.com/judzis-sketch/gedimu-registras/internal/models"
	"github.com/judzis-sketch/gedimu-registras/internal/notify"
)

// legal holds the direct status edges. in-progress -> completed exists in
// the table but Step refuses it; see Complete.
var legal = map[models.Status]models.Status{
	models.StatusNew:        models.StatusAssigned,
	models.StatusAssigned:   models.StatusInProgress,
	models.StatusInProgress: models.StatusCompleted,
}

// CanTransition reports whether the state machine has an edge from -> to.
func CanTransition(from, to models.Status) bool {
	return legal[from] == to
}

// Step applies a non-terminal transition to the fault and returns the
// notification draft the transition must produce. On rejection the fault is
// left unchanged.
//
// technicianName is used for the Assigned draft; it may be empty.
func Step(f *models.Fault, to models.Status, technicianName string) (*models.NotificationDraft, error) {
	if to == models.StatusCompleted {
		// Only the signing protocol's completion callback may complete.
		return nil, commonerrors.NewInvalidTransitionError(string(f.Status), string(to))
	}
	if !CanTransition(f.Status, to) {
		return nil, commonerrors.NewInvalidTransitionError(string(f.Status), string(to))
	}

	switch to {
	case models.StatusAssigned:
		if f.AssignedTechnicianID == "" {
			return nil, commonerrors.NewInvalidTransitionError(string(f.Status), string(to))
		}
		f.Status = to
		return notify.DraftAssigned(f, technicianName), nil
	case models.StatusInProgress:
		if f.AssignedTechnicianID == "" {
			return nil, commonerrors.NewInvalidTransitionError(string(f.Status), string(to))
		}
		f.Status = to
		return notify.DraftInProgress(f), nil
	}

	return nil, commonerrors.NewInvalidTransitionError(string(f.Status), string(to))
}

// Complete moves the fault into the terminal Completed status. The guard is
// the signing protocol's terminal success state: both signatures captured
// and the act snapshot composed.
func Complete(f *models.Fault) (*models.NotificationDraft, error) {
	if f.Status != models.StatusInProgress {
		return nil, commonerrors.NewInvalidTransitionError(string(f.Status), string(models.StatusCompleted))
	}
	if len(f.TechnicianSignature) == 0 || len(f.CustomerSignature) == 0 || len(f.ActSnapshot) == 0 {
		return nil, commonerrors.NewInvalidTransitionError(string(f.Status), string(models.StatusCompleted))
	}
	f.Status = models.StatusCompleted
	return notify.DraftCompleted(f), nil
}
