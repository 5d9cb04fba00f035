// internal/models/worker.go
package models

// Worker is a technician capable of resolving faults of certain types.
// Faults reference workers by ID only; a deleted worker leaves a dangling
// reference that display code resolves to "unknown".
type Worker struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone,omitempty"`
	Specialties []FaultType `json:"specialties"`
}

// HasSpecialty reports whether the worker may be assigned faults of type t.
func (w *Worker) HasSpecialty(t FaultType) bool {
	for _, s := range w.Specialties {
		if s == t {
			return true
		}
	}
	return false
}
