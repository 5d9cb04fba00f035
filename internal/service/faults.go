// Package service exposes the fault registry's operations: intake,
// assignment, the work lifecycle, signature capture and archiving. It is
// the only layer that coordinates the store with the pure engines.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/judzis-sketch/gedimu-registras/internal/act"
	"github.com/judzis-sketch/gedimu-registras/internal/allocator"
	"github.com/judzis-sketch/gedimu-registras/internal/assignment"
	commonerrors "github.com/judzis-sketch/gedimu-registras/internal/common/errors"
	"github.com/judzis-sketch/gedimu-registras/internal/common/logger"
	"github.com/judzis-sketch/gedimu-registras/internal/common/metrics"
	"github.com/judzis-sketch/gedimu-registras/internal/lifecycle"
	"github.com/judzis-sketch/gedimu-registras/internal/models"
	"github.com/judzis-sketch/gedimu-registras/internal/notify"
	"github.com/judzis-sketch/gedimu-registras/internal/signing"
	"github.com/judzis-sketch/gedimu-registras/internal/store"
	"github.com/judzis-sketch/gedimu-registras/internal/validation"
)

// dispatchTimeout bounds background notification delivery.
const dispatchTimeout = 15 * time.Second

// ActIndexer records completed act metadata for later search. Indexing is
// best effort; a failure never blocks completion.
type ActIndexer interface {
	IndexAct(ctx context.Context, f *models.Fault, technicianName string) error
}

// DraftDispatcher sends a prepared notification draft over the configured
// channels. Dispatch is best effort.
type DraftDispatcher interface {
	Dispatch(ctx context.Context, draft *models.NotificationDraft) error
}

// FaultService drives the fault lifecycle end to end. Indexer and
// dispatcher are optional; when nil the corresponding side effect is
// skipped and callers still receive the draft for manual delivery.
type FaultService struct {
	faults     *store.FaultRepository
	workers    *store.WorkerRepository
	protocol   *signing.Protocol
	archiver   *act.Archiver
	indexer    ActIndexer
	dispatcher DraftDispatcher
	logger     logger.Logger

	mu       sync.Mutex
	updating map[string]bool
}

func NewFaultService(
	faults *store.FaultRepository,
	workers *store.WorkerRepository,
	protocol *signing.Protocol,
	archiver *act.Archiver,
	indexer ActIndexer,
	dispatcher DraftDispatcher,
	log logger.Logger,
) *FaultService {
	return &FaultService{
		faults:     faults,
		workers:    workers,
		protocol:   protocol,
		archiver:   archiver,
		indexer:    indexer,
		dispatcher: dispatcher,
		logger:     log.WithFields(map[string]interface{}{"component": "faults"}),
		updating:   make(map[string]bool),
	}
}

// beginUpdate marks the fault as having a mutation in flight. A second
// actor touching the same fault gets OPERATION_IN_FLIGHT instead of racing.
func (s *FaultService) beginUpdate(faultID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updating[faultID] {
		return commonerrors.NewOperationInFlightError(faultID)
	}
	s.updating[faultID] = true
	return nil
}

func (s *FaultService) endUpdate(faultID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.updating, faultID)
}

// ReportFault validates the submission, allocates a display id, runs
// automatic assignment and persists the new fault. When a technician was
// selected the returned draft announces the assignment; an unassignable
// fault is stored as new with a nil draft.
func (s *FaultService) ReportFault(ctx context.Context, input *models.NewFaultInput) (*models.Fault, *models.NotificationDraft, error) {
	if err := validation.ValidateFaultInput(input); err != nil {
		return nil, nil, err
	}

	existing, err := s.faults.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	displayIDs := make([]string, len(existing))
	for i := range existing {
		displayIDs[i] = existing[i].DisplayID
	}

	f := &models.Fault{
		DisplayID:     allocator.Allocate(displayIDs),
		Type:          input.Type,
		Description:   input.Description,
		Address:       input.Address,
		ReporterName:  input.ReporterName,
		ReporterEmail: input.ReporterEmail,
		ReporterPhone: input.ReporterPhone,
		Status:        models.StatusNew,
	}

	workers, err := s.workers.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	result := assignment.Assign(f, workers, existing)

	var draft *models.NotificationDraft
	var technicianName string
	if result.Assigned() {
		f.AssignedTechnicianID = result.TechnicianID
		technicianName = s.resolveName(workers, result.TechnicianID)
		f.Status = models.StatusAssigned
		draft = notify.DraftAssigned(f, technicianName)
	}

	id, err := s.faults.Create(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	f.ID = id

	metrics.FaultsCreated.WithLabelValues(string(f.Type), string(f.Status)).Inc()
	if draft != nil {
		metrics.TransitionsApplied.WithLabelValues(string(models.StatusNew), string(models.StatusAssigned)).Inc()
		s.deliver(draft)
	}

	s.logger.Info("fault reported", map[string]interface{}{
		"faultId":    f.ID,
		"displayId":  f.DisplayID,
		"type":       f.Type,
		"technician": f.AssignedTechnicianID,
	})
	return f, draft, nil
}

// AssignTechnician assigns or reassigns the fault to the given worker. A
// new fault moves to assigned; an already assigned or in-progress fault
// keeps its status and only the technician reference changes.
func (s *FaultService) AssignTechnician(ctx context.Context, faultID, technicianID string) (*models.NotificationDraft, error) {
	if err := s.beginUpdate(faultID); err != nil {
		return nil, err
	}
	defer s.endUpdate(faultID)

	f, err := s.faults.Get(ctx, faultID)
	if err != nil {
		return nil, err
	}

	w, err := s.workers.Get(ctx, technicianID)
	if err != nil {
		return nil, err
	}
	if !w.HasSpecialty(f.Type) {
		return nil, commonerrors.NewValidationFailedError("technician does not cover this fault type")
	}

	patch := map[string]interface{}{"assignedTechnicianId": technicianID}

	var draft *models.NotificationDraft
	switch f.Status {
	case models.StatusNew:
		f.AssignedTechnicianID = technicianID
		draft, err = lifecycle.Step(f, models.StatusAssigned, w.Name)
		if err != nil {
			metrics.TransitionsRejected.WithLabelValues("illegal-edge").Inc()
			return nil, err
		}
		patch["status"] = models.StatusAssigned
		metrics.TransitionsApplied.WithLabelValues(string(models.StatusNew), string(models.StatusAssigned)).Inc()
	case models.StatusAssigned, models.StatusInProgress:
		// Reassignment keeps the status.
	default:
		metrics.TransitionsRejected.WithLabelValues("terminal-status").Inc()
		return nil, commonerrors.NewInvalidTransitionError(string(f.Status), string(models.StatusAssigned))
	}

	if err := s.faults.Update(ctx, faultID, patch); err != nil {
		return nil, err
	}

	if draft != nil {
		s.deliver(draft)
	}
	s.logger.Info("technician assigned", map[string]interface{}{
		"faultId":    faultID,
		"technician": technicianID,
	})
	return draft, nil
}

// StartWork moves an assigned fault to in-progress and announces it to the
// reporter.
func (s *FaultService) StartWork(ctx context.Context, faultID string) (*models.NotificationDraft, error) {
	if err := s.beginUpdate(faultID); err != nil {
		return nil, err
	}
	defer s.endUpdate(faultID)

	f, err := s.faults.Get(ctx, faultID)
	if err != nil {
		return nil, err
	}

	draft, err := lifecycle.Step(f, models.StatusInProgress, "")
	if err != nil {
		metrics.TransitionsRejected.WithLabelValues("illegal-edge").Inc()
		return nil, err
	}

	if err := s.faults.Update(ctx, faultID, map[string]interface{}{
		"status": models.StatusInProgress,
	}); err != nil {
		return nil, err
	}

	metrics.TransitionsApplied.WithLabelValues(string(models.StatusAssigned), string(models.StatusInProgress)).Inc()
	s.deliver(draft)
	return draft, nil
}

// CaptureTechnicianSignature records the technician's signature on the
// fault.
func (s *FaultService) CaptureTechnicianSignature(ctx context.Context, faultID string, image []byte) error {
	if err := s.beginUpdate(faultID); err != nil {
		return err
	}
	defer s.endUpdate(faultID)

	return s.protocol.CaptureTechnicianSignature(ctx, faultID, image)
}

// CaptureCustomerSignature records the customer's signature and, when the
// ceremony succeeds, completes the fault, indexes the act and delivers the
// completion notice.
func (s *FaultService) CaptureCustomerSignature(ctx context.Context, faultID string, image []byte) (*models.NotificationDraft, error) {
	if err := s.beginUpdate(faultID); err != nil {
		return nil, err
	}
	defer s.endUpdate(faultID)

	draft, err := s.protocol.CaptureCustomerSignature(ctx, faultID, image)
	if err != nil {
		return nil, err
	}

	s.indexCompleted(ctx, faultID)
	s.deliver(draft)
	return draft, nil
}

// DownloadAct returns the completed act packaged as a PDF document plus its
// canonical filename.
func (s *FaultService) DownloadAct(ctx context.Context, faultID string) ([]byte, string, error) {
	f, err := s.faults.Get(ctx, faultID)
	if err != nil {
		return nil, "", err
	}
	if f.Status != models.StatusCompleted || len(f.ActSnapshot) == 0 {
		return nil, "", commonerrors.NewInvalidPhaseError("act is available only for completed faults")
	}

	doc, err := act.PackageAsDocument(f.ActSnapshot)
	if err != nil {
		return nil, "", err
	}
	return doc, act.DocumentFilename(f.DisplayID), nil
}

// ArchiveCompletedActs bundles every completed act into one zip. EmptyArchive
// is returned when nothing qualifies.
func (s *FaultService) ArchiveCompletedActs(ctx context.Context) (*act.ArchiveResult, error) {
	faults, err := s.faults.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.archiver.Archive(faults)
}

// AvailableActions reports the operations currently legal for the fault.
func (s *FaultService) AvailableActions(ctx context.Context, faultID string) ([]lifecycle.ActionKind, error) {
	f, err := s.faults.Get(ctx, faultID)
	if err != nil {
		return nil, err
	}
	return lifecycle.AvailableActions(f), nil
}

func (s *FaultService) GetFault(ctx context.Context, faultID string) (*models.Fault, error) {
	return s.faults.Get(ctx, faultID)
}

func (s *FaultService) ListFaults(ctx context.Context) ([]models.Fault, error) {
	return s.faults.List(ctx)
}

// SubscribeFaults returns a coalesced change signal for the faults
// collection; consumers re-read the listing on each signal.
func (s *FaultService) SubscribeFaults(ctx context.Context) (<-chan struct{}, func(), error) {
	return s.faults.Subscribe(ctx)
}

// deliver hands the draft to the dispatcher without blocking the calling
// operation. Failures are logged inside the dispatcher.
func (s *FaultService) deliver(draft *models.NotificationDraft) {
	metrics.NotificationDrafts.WithLabelValues("prepared").Inc()
	if s.dispatcher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		if err := s.dispatcher.Dispatch(ctx, draft); err != nil {
			s.logger.Warn("notification dispatch failed", map[string]interface{}{
				"subject": draft.Subject,
				"error":   err.Error(),
			})
		}
	}()
}

// indexCompleted pushes the completed act's metadata into the search index.
func (s *FaultService) indexCompleted(ctx context.Context, faultID string) {
	if s.indexer == nil {
		return
	}

	f, err := s.faults.Get(ctx, faultID)
	if err != nil {
		s.logger.Warn("act indexing skipped", map[string]interface{}{
			"faultId": faultID,
			"error":   err.Error(),
		})
		return
	}

	technicianName := notify.UnknownWorkerName
	if f.AssignedTechnicianID != "" {
		if w, err := s.workers.Get(ctx, f.AssignedTechnicianID); err == nil {
			technicianName = w.Name
		}
	}

	if err := s.indexer.IndexAct(ctx, f, technicianName); err != nil {
		s.logger.Warn("act indexing failed", map[string]interface{}{
			"faultId": faultID,
			"error":   err.Error(),
		})
	}
}

func (s *FaultService) resolveName(workers []models.Worker, id string) string {
	for i := range workers {
		if workers[i].ID == id {
			return workers[i].Name
		}
	}
	return notify.UnknownWorkerName
}
