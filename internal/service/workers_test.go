package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "github.com/judzis-sketch/gedimu-registras/internal/common/errors"
	"github.com/judzis-sketch/gedimu-registras/internal/models"
)

func TestCreateWorker(t *testing.T) {
	ctx := context.Background()

	t.Run("valid worker", func(t *testing.T) {
		_, ws, _ := newTestServices(t)

		w, err := ws.CreateWorker(ctx, &models.Worker{
			Name:        "Petras Petraitis",
			Email:       "petras@example.lt",
			Specialties: []models.FaultType{models.FaultTypePlumbing, models.FaultTypeGeneral},
		})
		require.NoError(t, err)
		assert.NotEmpty(t, w.ID)

		got, err := ws.GetWorker(ctx, w.ID)
		require.NoError(t, err)
		assert.Equal(t, "Petras Petraitis", got.Name)
		assert.Len(t, got.Specialties, 2)
	})

	t.Run("rejects short name", func(t *testing.T) {
		_, ws, _ := newTestServices(t)

		_, err := ws.CreateWorker(ctx, &models.Worker{
			Name:        "P",
			Specialties: []models.FaultType{models.FaultTypeGeneral},
		})
		assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeValidationFailed))
	})

	t.Run("rejects empty specialties", func(t *testing.T) {
		_, ws, _ := newTestServices(t)

		_, err := ws.CreateWorker(ctx, &models.Worker{Name: "Petras"})
		assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeValidationFailed))
	})

	t.Run("rejects unknown specialty", func(t *testing.T) {
		_, ws, _ := newTestServices(t)

		_, err := ws.CreateWorker(ctx, &models.Worker{
			Name:        "Petras",
			Specialties: []models.FaultType{"roofing"},
		})
		assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeValidationFailed))
	})
}

func TestUpdateWorker(t *testing.T) {
	ctx := context.Background()
	_, ws, _ := newTestServices(t)
	w := seedWorker(t, ws, "Petras", models.FaultTypePlumbing)

	err := ws.UpdateWorker(ctx, w.ID, map[string]interface{}{
		"specialties": []models.FaultType{models.FaultTypeElectricity},
	})
	require.NoError(t, err)

	got, err := ws.GetWorker(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.FaultType{models.FaultTypeElectricity}, got.Specialties)

	err = ws.UpdateWorker(ctx, w.ID, map[string]interface{}{
		"specialties": []models.FaultType{"roofing"},
	})
	assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeValidationFailed))
}

func TestDeleteWorkerLeavesDanglingReference(t *testing.T) {
	ctx := context.Background()
	fs, ws, _ := newTestServices(t)
	w := seedWorker(t, ws, "Petras", models.FaultTypePlumbing)

	f, _, err := fs.ReportFault(ctx, validInput())
	require.NoError(t, err)
	require.Equal(t, w.ID, f.AssignedTechnicianID)

	require.NoError(t, ws.DeleteWorker(ctx, w.ID))

	got, err := fs.GetFault(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, got.AssignedTechnicianID)
	assert.Equal(t, "Nežinomas", ws.ResolveName(ctx, got.AssignedTechnicianID))
}

func TestResolveName(t *testing.T) {
	ctx := context.Background()
	_, ws, _ := newTestServices(t)
	w := seedWorker(t, ws, "Petras", models.FaultTypePlumbing)

	assert.Equal(t, "Petras", ws.ResolveName(ctx, w.ID))
	assert.Equal(t, "Nežinomas", ws.ResolveName(ctx, ""))
	assert.Equal(t, "Nežinomas", ws.ResolveName(ctx, "missing"))
}
