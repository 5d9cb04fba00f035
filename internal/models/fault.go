// internal/models/fault.go
package models

import "time"

// FaultType categorizes a reported fault. A worker may only be assigned
// faults whose type is in their specialties.
type FaultType string

const (
	FaultTypeElectricity FaultType = "electricity"
	FaultTypePlumbing    FaultType = "plumbing"
	FaultTypeRenovation  FaultType = "renovation"
	FaultTypeGeneral     FaultType = "general"
)

// FaultTypes lists every valid fault type in declaration order.
var FaultTypes = []FaultType{
	FaultTypeElectricity,
	FaultTypePlumbing,
	FaultTypeRenovation,
	FaultTypeGeneral,
}

// Valid reports whether t is one of the known fault types.
func (t FaultType) Valid() bool {
	switch t {
	case FaultTypeElectricity, FaultTypePlumbing, FaultTypeRenovation, FaultTypeGeneral:
		return true
	}
	return false
}

// Status is the lifecycle state of a fault. Completed is terminal.
type Status string

const (
	StatusNew        Status = "new"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// DisplayIDPrefix is the fixed prefix of human-facing fault identifiers,
// e.g. FAULT-0042.
const DisplayIDPrefix = "FAULT-"

// Fault is one reported maintenance issue tracked through its lifecycle.
// Signature payloads and the act snapshot are opaque PNG bytes; their
// presence gates lifecycle transitions.
type Fault struct {
	ID          string    `json:"id"`
	DisplayID   string    `json:"displayId"`
	Type        FaultType `json:"type"`
	Description string    `json:"description"`
	Address     string    `json:"address"`

	ReporterName  string `json:"reporterName"`
	ReporterEmail string `json:"reporterEmail"`
	ReporterPhone string `json:"reporterPhone"`

	Status               Status `json:"status"`
	AssignedTechnicianID string `json:"assignedTechnicianId,omitempty"`

	TechnicianSignature []byte `json:"technicianSignature,omitempty"`
	CustomerSignature   []byte `json:"customerSignature,omitempty"`
	ActSnapshot         []byte `json:"actSnapshot,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Active reports whether the fault still counts toward a technician's load.
func (f *Fault) Active() bool {
	return f.Status != StatusCompleted
}

// NewFaultInput is the resident submission as handed over by the form layer.
// The form layer enforces the field contracts; the validation package
// re-checks them before the core accepts the fault.
type NewFaultInput struct {
	ReporterName  string    `json:"reporterName"`
	ReporterEmail string    `json:"reporterEmail"`
	ReporterPhone string    `json:"reporterPhone"`
	Address       string    `json:"address"`
	Type          FaultType `json:"type"`
	Description   string    `json:"description"`
}
