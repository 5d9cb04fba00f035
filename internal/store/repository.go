// internal/store/repository.go
package store

import (
	"context"

	"github.com/judzis-sketch/gedimu-registras/internal/models"
)

// FaultRepository is the typed view over the issues collection. It owns the
// collection's subscription lifecycle; consumers depend on it instead of an
// ambient singleton.
type FaultRepository struct {
	store Store
}

func NewFaultRepository(s Store) *FaultRepository {
	return &FaultRepository{store: s}
}

func (r *FaultRepository) Create(ctx context.Context, f *models.Fault) (string, error) {
	return r.store.CreateDocument(ctx, CollectionIssues, f)
}

func (r *FaultRepository) Update(ctx context.Context, id string, patch map[string]interface{}) error {
	return r.store.UpdateDocument(ctx, CollectionIssues, id, patch)
}

func (r *FaultRepository) Get(ctx context.Context, id string) (*models.Fault, error) {
	var f models.Fault
	if err := r.store.GetDocument(ctx, CollectionIssues, id, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FaultRepository) List(ctx context.Context) ([]models.Fault, error) {
	var faults []models.Fault
	if err := r.store.ListDocuments(ctx, CollectionIssues, &faults); err != nil {
		return nil, err
	}
	return faults, nil
}

func (r *FaultRepository) Subscribe(ctx context.Context) (<-chan struct{}, func(), error) {
	return r.store.SubscribeCollection(ctx, CollectionIssues)
}

// WorkerRepository is the typed view over the employees collection.
type WorkerRepository struct {
	store Store
}

func NewWorkerRepository(s Store) *WorkerRepository {
	return &WorkerRepository{store: s}
}

func (r *WorkerRepository) Create(ctx context.Context, w *models.Worker) (string, error) {
	return r.store.CreateDocument(ctx, CollectionEmployees, w)
}

func (r *WorkerRepository) Update(ctx context.Context, id string, patch map[string]interface{}) error {
	return r.store.UpdateDocument(ctx, CollectionEmployees, id, patch)
}

// Delete removes the worker. Faults referencing it keep their dangling
// technician id; display code resolves those to "Nežinomas".
func (r *WorkerRepository) Delete(ctx context.Context, id string) error {
	return r.store.DeleteDocument(ctx, CollectionEmployees, id)
}

func (r *WorkerRepository) Get(ctx context.Context, id string) (*models.Worker, error) {
	var w models.Worker
	if err := r.store.GetDocument(ctx, CollectionEmployees, id, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WorkerRepository) List(ctx context.Context) ([]models.Worker, error) {
	var workers []models.Worker
	if err := r.store.ListDocuments(ctx, CollectionEmployees, &workers); err != nil {
		return nil, err
	}
	return workers, nil
}

func (r *WorkerRepository) Subscribe(ctx context.Context) (<-chan struct{}, func(), error) {
	return r.store.SubscribeCollection(ctx, CollectionEmployees)
}
