// Package signing implements the two-phase completion ceremony: the
// technician signs first, then the customer, and only a successful act
// composition lets the fault enter its terminal status.
package signing

import (
	"context"

	commonerrors "github.com/judzis-sketch/gedimu-registras/internal/common/errors"
	"github.com/judzis-sketch/gedimu-registras/internal/common/logger"
	"github.com/judzis-sketch/gedimu-registras/internal/common/metrics"
	"github.com/judzis-sketch/gedimu-registras/internal/lifecycle"
	"github.com/judzis-sketch/gedimu-registras/internal/models"
	"github.com/judzis-sketch/gedimu-registras/internal/store"
)

// Phase is the signature sub-state of a fault, derived from its signature
// fields rather than stored separately.
type Phase string

const (
	PhaseUnsigned         Phase = "unsigned"
	PhaseTechnicianSigned Phase = "technician-signed"
	PhaseFullySigned      Phase = "fully-signed"
)

// PhaseOf derives the signing phase from the fault's signature fields.
func PhaseOf(f *models.Fault) Phase {
	switch {
	case len(f.TechnicianSignature) == 0:
		return PhaseUnsigned
	case len(f.CustomerSignature) == 0:
		return PhaseTechnicianSigned
	default:
		return PhaseFullySigned
	}
}

// Compositor renders the act snapshot for a fully signed fault.
type Compositor interface {
	Compose(f *models.Fault, worker *models.Worker, techSig, custSig []byte) ([]byte, error)
}

// Protocol drives signature capture against the store and invokes the act
// compositor at the right moment.
type Protocol struct {
	faults     *store.FaultRepository
	workers    *store.WorkerRepository
	compositor Compositor
	logger     logger.Logger
}

func NewProtocol(faults *store.FaultRepository, workers *store.WorkerRepository, compositor Compositor, log logger.Logger) *Protocol {
	return &Protocol{
		faults:     faults,
		workers:    workers,
		compositor: compositor,
		logger:     log.WithFields(map[string]interface{}{"component": "signing"}),
	}
}

// CaptureTechnicianSignature stores the technician's signature, entering
// phase 1. Allowed only while the fault is in progress and unsigned. The
// fault's status is not touched.
func (p *Protocol) CaptureTechnicianSignature(ctx context.Context, faultID string, image []byte) error {
	if len(image) == 0 {
		return commonerrors.NewValidationFailedError("technician signature image is empty")
	}

	f, err := p.faults.Get(ctx, faultID)
	if err != nil {
		return err
	}
	if f.Status != models.StatusInProgress {
		return commonerrors.NewInvalidPhaseError("technician may sign only while the fault is in progress")
	}
	if PhaseOf(f) != PhaseUnsigned {
		return commonerrors.NewInvalidPhaseError("technician signature already captured")
	}

	if err := p.faults.Update(ctx, faultID, map[string]interface{}{
		"technicianSignature": image,
	}); err != nil {
		return err
	}

	metrics.SignaturesCaptured.WithLabelValues("technician").Inc()
	p.logger.Info("technician signature captured", map[string]interface{}{
		"faultId":   faultID,
		"displayId": f.DisplayID,
	})
	return nil
}

// CaptureCustomerSignature stores the customer's signature, synchronously
// composes the act snapshot and, only if compositing succeeds, completes
// the fault and returns the completion notification draft.
//
// On composition failure the customer signature stays persisted, the fault
// remains in progress and the operation is retryable: re-invoking with a
// stored customer signature just re-attempts compositing (image may then be
// nil).
func (p *Protocol) CaptureCustomerSignature(ctx context.Context, faultID string, image []byte) (*models.NotificationDraft, error) {
	f, err := p.faults.Get(ctx, faultID)
	if err != nil {
		return nil, err
	}

	switch PhaseOf(f) {
	case PhaseUnsigned:
		return nil, commonerrors.NewInvalidPhaseError("customer may sign only after the technician")
	case PhaseTechnicianSigned:
		if f.Status != models.StatusInProgress {
			return nil, commonerrors.NewInvalidPhaseError("customer may sign only while the fault is in progress")
		}
		if len(image) == 0 {
			return nil, commonerrors.NewValidationFailedError("customer signature image is empty")
		}
		if err := p.faults.Update(ctx, faultID, map[string]interface{}{
			"customerSignature": image,
		}); err != nil {
			return nil, err
		}
		f.CustomerSignature = image
		metrics.SignaturesCaptured.WithLabelValues("customer").Inc()
	case PhaseFullySigned:
		if len(f.ActSnapshot) > 0 {
			// The ceremony already reached its terminal success state.
			return nil, commonerrors.NewInvalidPhaseError("act is already fully signed and composed")
		}
		// Retry of a previously failed composition.
		p.logger.Info("re-attempting act composition", map[string]interface{}{
			"faultId":   faultID,
			"displayId": f.DisplayID,
		})
	}

	worker := p.lookupWorker(ctx, f.AssignedTechnicianID)
	snapshot, err := p.compositor.Compose(f, worker, f.TechnicianSignature, f.CustomerSignature)
	if err != nil {
		// Signature writes stay; status transition is withheld.
		return nil, err
	}
	f.ActSnapshot = snapshot

	draft, err := lifecycle.Complete(f)
	if err != nil {
		return nil, err
	}

	if err := p.faults.Update(ctx, faultID, map[string]interface{}{
		"actSnapshot": snapshot,
		"status":      models.StatusCompleted,
	}); err != nil {
		return nil, err
	}

	metrics.TransitionsApplied.WithLabelValues(string(models.StatusInProgress), string(models.StatusCompleted)).Inc()
	p.logger.Info("fault completed", map[string]interface{}{
		"faultId":   faultID,
		"displayId": f.DisplayID,
	})
	return draft, nil
}

// lookupWorker resolves the weak technician reference; a deleted worker
// yields nil and the act names the technician as unknown.
func (p *Protocol) lookupWorker(ctx context.Context, technicianID string) *models.Worker {
	if technicianID == "" {
		return nil
	}
	w, err := p.workers.Get(ctx, technicianID)
	if err != nil {
		p.logger.Warn("assigned technician not found", map[string]interface{}{
			"technicianId": technicianID,
		})
		return nil
	}
	return w
}
