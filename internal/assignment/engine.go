// Package assignment selects the technician who should own a fault.
//
// The policy is greedy least-loaded: among workers whose specialties cover
// the fault type, pick the one with the fewest non-completed assigned
// faults. Ties break by input order, so the result is deterministic for a
// given roster and fault snapshot. Manual reassignment runs the same
// algorithm over a one-element candidate slate.
package assignment

import "github.com/judzis-sketch/gedimu-registras/internal/models"

// Result is the outcome of an assignment decision. An empty TechnicianID
// means no qualified technician exists and the fault stays new; that is a
// valid terminal outcome, not an error.
type Result struct {
	TechnicianID string
	Status       models.Status
}

// Assigned reports whether a technician was selected.
func (r Result) Assigned() bool {
	return r.TechnicianID != ""
}

// Assign picks the least-loaded qualified worker for the fault. Load is the
// count of faults in activeFaults assigned to the candidate and not yet
// completed. The load counts come from whatever snapshot the caller holds;
// they are not re-fetched transactionally.
func Assign(fault *models.Fault, workers []models.Worker, activeFaults []models.Fault) Result {
	var selected *models.Worker
	minLoad := -1

	for i := range workers {
		w := &workers[i]
		if !w.HasSpecialty(fault.Type) {
			continue
		}
		load := 0
		for j := range activeFaults {
			f := &activeFaults[j]
			if f.AssignedTechnicianID == w.ID && f.Active() {
				load++
			}
		}
		// Strict less-than keeps the first candidate on ties.
		if selected == nil || load < minLoad {
			selected = w
			minLoad = load
		}
	}

	if selected == nil {
		return Result{Status: models.StatusNew}
	}
	return Result{TechnicianID: selected.ID, Status: models.StatusAssigned}
}
