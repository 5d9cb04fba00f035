package assignment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/judzis-sketch/gedimu-registras/internal/models"
)

func plumbingFault() *models.Fault {
	return &models.Fault{
		DisplayID: "FAULT-0001",
		Type:      models.FaultTypePlumbing,
		Status:    models.StatusNew,
	}
}

func assignedFault(technicianID string, status models.Status) models.Fault {
	return models.Fault{
		Type:                 models.FaultTypePlumbing,
		Status:               status,
		AssignedTechnicianID: technicianID,
	}
}

func TestAssign_LeastLoadedWins(t *testing.T) {
	workers := []models.Worker{
		{ID: "w1", Name: "Jonas", Specialties: []models.FaultType{models.FaultTypePlumbing}},
		{ID: "w2", Name: "Petras", Specialties: []models.FaultType{models.FaultTypePlumbing}},
	}
	active := []models.Fault{
		assignedFault("w1", models.StatusAssigned),
		assignedFault("w1", models.StatusInProgress),
	}

	result := Assign(plumbingFault(), workers, active)

	assert.Equal(t, "w2", result.TechnicianID)
	assert.Equal(t, models.StatusAssigned, result.Status)
	assert.True(t, result.Assigned())
}

func TestAssign_CompletedFaultsDoNotCount(t *testing.T) {
	workers := []models.Worker{
		{ID: "w1", Specialties: []models.FaultType{models.FaultTypePlumbing}},
		{ID: "w2", Specialties: []models.FaultType{models.FaultTypePlumbing}},
	}
	// w1 has only completed history; w2 carries one live fault.
	active := []models.Fault{
		assignedFault("w1", models.StatusCompleted),
		assignedFault("w1", models.StatusCompleted),
		assignedFault("w2", models.StatusAssigned),
	}

	result := Assign(plumbingFault(), workers, active)
	assert.Equal(t, "w1", result.TechnicianID)
}

func TestAssign_TieBrokenByInputOrder(t *testing.T) {
	workers := []models.Worker{
		{ID: "w2", Specialties: []models.FaultType{models.FaultTypePlumbing}},
		{ID: "w1", Specialties: []models.FaultType{models.FaultTypePlumbing}},
	}

	result := Assign(plumbingFault(), workers, nil)
	assert.Equal(t, "w2", result.TechnicianID)
}

func TestAssign_SpecialtyFilter(t *testing.T) {
	workers := []models.Worker{
		{ID: "w1", Specialties: []models.FaultType{models.FaultTypeElectricity}},
		{ID: "w2", Specialties: []models.FaultType{models.FaultTypeRenovation, models.FaultTypeGeneral}},
	}

	result := Assign(plumbingFault(), workers, nil)

	assert.False(t, result.Assigned())
	assert.Equal(t, models.StatusNew, result.Status)
}

func TestAssign_NoWorkers(t *testing.T) {
	result := Assign(plumbingFault(), nil, nil)
	assert.False(t, result.Assigned())
	assert.Equal(t, models.StatusNew, result.Status)
}

func TestAssign_SingleCandidateSlate(t *testing.T) {
	// Manual reassignment narrows the slate to the administrator's pick.
	workers := []models.Worker{
		{ID: "w3", Specialties: []models.FaultType{models.FaultTypePlumbing}},
	}

	result := Assign(plumbingFault(), workers, nil)
	assert.Equal(t, "w3", result.TechnicianID)
	assert.Equal(t, models.StatusAssigned, result.Status)
}

func TestAssign_SingleCandidateWithoutSpecialty(t *testing.T) {
	workers := []models.Worker{
		{ID: "w3", Specialties: []models.FaultType{models.FaultTypeElectricity}},
	}

	result := Assign(plumbingFault(), workers, nil)
	assert.False(t, result.Assigned())
}
