// internal/store/memory.go
package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	commonerrors "github.com/judzis-sketch/gedimu-registras/internal/common/errors"
)

// MemoryStore is an in-memory Store used by unit tests and local runs. It
// mirrors the backend semantics: merge-on-update, store-assigned
// timestamps (from the injected clock) and coalesced change signals.
type MemoryStore struct {
	mu          sync.Mutex
	now         func() time.Time
	collections map[string]map[string]memoryDoc
	subscribers map[string][]chan struct{}
}

type memoryDoc struct {
	fields    map[string]interface{}
	createdAt time.Time
	updatedAt time.Time
}

func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		now:         now,
		collections: make(map[string]map[string]memoryDoc),
		subscribers: make(map[string][]chan struct{}),
	}
}

func (s *MemoryStore) CreateDocument(_ context.Context, collection string, doc interface{}) (string, error) {
	fields, err := toFields(doc)
	if err != nil {
		return "", commonerrors.NewStoreWriteFailedError(err)
	}

	s.mu.Lock()
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]memoryDoc)
	}
	id := uuid.NewString()
	now := s.now().UTC()
	s.collections[collection][id] = memoryDoc{fields: fields, createdAt: now, updatedAt: now}
	s.mu.Unlock()

	s.notify(collection)
	return id, nil
}

func (s *MemoryStore) UpdateDocument(_ context.Context, collection, id string, patch map[string]interface{}) error {
	fields, err := toFields(patch)
	if err != nil {
		return commonerrors.NewStoreWriteFailedError(err)
	}

	s.mu.Lock()
	doc, ok := s.collections[collection][id]
	if !ok {
		s.mu.Unlock()
		return commonerrors.NewDocumentNotFoundError(collection, id)
	}
	for k, v := range fields {
		doc.fields[k] = v
	}
	doc.updatedAt = s.now().UTC()
	s.collections[collection][id] = doc
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *MemoryStore) DeleteDocument(_ context.Context, collection, id string) error {
	s.mu.Lock()
	delete(s.collections[collection], id)
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *MemoryStore) GetDocument(_ context.Context, collection, id string, out interface{}) error {
	s.mu.Lock()
	doc, ok := s.collections[collection][id]
	if !ok {
		s.mu.Unlock()
		return commonerrors.NewDocumentNotFoundError(collection, id)
	}
	data, err := json.Marshal(doc.projected(id))
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (s *MemoryStore) ListDocuments(_ context.Context, collection string, out interface{}) error {
	s.mu.Lock()
	type entry struct {
		id  string
		doc memoryDoc
	}
	entries := make([]entry, 0, len(s.collections[collection]))
	for id, doc := range s.collections[collection] {
		entries = append(entries, entry{id, doc})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].doc.createdAt.Equal(entries[j].doc.createdAt) {
			return entries[i].id < entries[j].id
		}
		return entries[i].doc.createdAt.Before(entries[j].doc.createdAt)
	})
	projected := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		projected = append(projected, e.doc.projected(e.id))
	}
	s.mu.Unlock()

	data, err := json.Marshal(projected)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (s *MemoryStore) SubscribeCollection(ctx context.Context, collection string) (<-chan struct{}, func(), error) {
	signals := make(chan struct{}, 1)

	s.mu.Lock()
	s.subscribers[collection] = append(s.subscribers[collection], signals)
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			subs := s.subscribers[collection]
			for i, ch := range subs {
				if ch == signals {
					s.subscribers[collection] = append(subs[:i], subs[i+1:]...)
					break
				}
			}
			close(signals)
		})
	}

	go func() {
		<-ctx.Done()
		cancel()
	}()

	return signals, cancel, nil
}

// notify signals every live subscriber. Sends are non-blocking and happen
// under the lock so a concurrent cancel cannot close a channel mid-send.
func (s *MemoryStore) notify(collection string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subscribers[collection] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (d memoryDoc) projected(id string) map[string]interface{} {
	out := make(map[string]interface{}, len(d.fields)+3)
	for k, v := range d.fields {
		out[k] = v
	}
	out["id"] = id
	out["createdAt"] = d.createdAt
	out["updatedAt"] = d.updatedAt
	return out
}

// toFields round-trips any document through JSON so merge semantics match
// the JSONB backend.
func toFields(doc interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
