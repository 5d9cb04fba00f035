package service

import (
	"context"
	"strings"

	commonerrors "github.com/judzis-sketch/gedimu-registras/internal/common/errors"
	"github.com/judzis-sketch/gedimu-registras/internal/common/logger"
	"github.com/judzis-sketch/gedimu-registras/internal/models"
	"github.com/judzis-sketch/gedimu-registras/internal/notify"
	"github.com/judzis-sketch/gedimu-registras/internal/store"
)

// WorkerService manages the technician roster. Deleting a worker never
// touches the faults that reference it; those references dangle and resolve
// to the unknown-worker name.
type WorkerService struct {
	workers *store.WorkerRepository
	logger  logger.Logger
}

func NewWorkerService(workers *store.WorkerRepository, log logger.Logger) *WorkerService {
	return &WorkerService{
		workers: workers,
		logger:  log.WithFields(map[string]interface{}{"component": "workers"}),
	}
}

func validateWorker(w *models.Worker) error {
	var problems []string
	if len(strings.TrimSpace(w.Name)) < 2 {
		problems = append(problems, "name must be at least 2 characters")
	}
	if len(w.Specialties) == 0 {
		problems = append(problems, "at least one specialty is required")
	}
	for _, s := range w.Specialties {
		if !s.Valid() {
			problems = append(problems, "unknown specialty: "+string(s))
		}
	}
	if len(problems) > 0 {
		return commonerrors.NewValidationFailedError(strings.Join(problems, "; "))
	}
	return nil
}

func (s *WorkerService) CreateWorker(ctx context.Context, w *models.Worker) (*models.Worker, error) {
	if err := validateWorker(w); err != nil {
		return nil, err
	}

	id, err := s.workers.Create(ctx, w)
	if err != nil {
		return nil, err
	}
	w.ID = id

	s.logger.Info("worker created", map[string]interface{}{
		"workerId": id,
		"name":     w.Name,
	})
	return w, nil
}

func (s *WorkerService) UpdateWorker(ctx context.Context, id string, patch map[string]interface{}) error {
	if specs, ok := patch["specialties"].([]models.FaultType); ok {
		for _, spec := range specs {
			if !spec.Valid() {
				return commonerrors.NewValidationFailedError("unknown specialty: " + string(spec))
			}
		}
	}
	return s.workers.Update(ctx, id, patch)
}

// DeleteWorker removes the roster entry. Assigned faults keep the dangling
// id on purpose; completed acts must not lose their technician attribution
// retroactively.
func (s *WorkerService) DeleteWorker(ctx context.Context, id string) error {
	if err := s.workers.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("worker deleted", map[string]interface{}{"workerId": id})
	return nil
}

func (s *WorkerService) GetWorker(ctx context.Context, id string) (*models.Worker, error) {
	return s.workers.Get(ctx, id)
}

func (s *WorkerService) ListWorkers(ctx context.Context) ([]models.Worker, error) {
	return s.workers.List(ctx)
}

// ResolveName returns the worker's display name, or the unknown-worker
// fallback when the id is empty or no longer resolves.
func (s *WorkerService) ResolveName(ctx context.Context, id string) string {
	if id == "" {
		return notify.UnknownWorkerName
	}
	w, err := s.workers.Get(ctx, id)
	if err != nil {
		return notify.UnknownWorkerName
	}
	return w.Name
}

// SubscribeWorkers returns a coalesced change signal for the roster.
func (s *WorkerService) SubscribeWorkers(ctx context.Context) (<-chan struct{}, func(), error) {
	return s.workers.Subscribe(ctx)
}
