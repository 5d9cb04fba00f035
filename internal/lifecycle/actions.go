// internal/lifecycle/actions.go
package lifecycle

import "github.com/judzis-sketch/gedimu-registras/internal/models"

// ActionKind identifies an operation a front end may offer for a fault.
// Any UI consumes this uniformly instead of dispatching on status/signature
// combinations itself.
type ActionKind string

const (
	ActionAssignTechnician ActionKind = "assign-technician"
	ActionReassign         ActionKind = "reassign"
	ActionStartWork        ActionKind = "start-work"
	ActionSignTechnician   ActionKind = "sign-technician"
	ActionSignCustomer     ActionKind = "sign-customer"
	ActionDownloadAct      ActionKind = "download-act"
)

// AvailableActions computes the set of actions the state machine permits
// for the fault's current status and signature phase.
func AvailableActions(f *models.Fault) []ActionKind {
	switch f.Status {
	case models.StatusNew:
		return []ActionKind{ActionAssignTechnician}
	case models.StatusAssigned:
		return []ActionKind{ActionReassign, ActionStartWork}
	case models.StatusInProgress:
		actions := []ActionKind{ActionReassign}
		switch {
		case len(f.TechnicianSignature) == 0:
			actions = append(actions, ActionSignTechnician)
		case len(f.CustomerSignature) == 0 || len(f.ActSnapshot) == 0:
			actions = append(actions, ActionSignCustomer)
		}
		return actions
	case models.StatusCompleted:
		return []ActionKind{ActionDownloadAct}
	}
	return nil
}
