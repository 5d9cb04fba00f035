// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	commonerrors "github.com/judzis-sketch/gedimu-registras/internal/common/errors"
	"github.com/judzis-sketch/gedimu-registras/internal/common/logger"
)

const changeChannelPrefix = "store:changes:"

// schema keeps every collection in one JSONB documents table. Timestamps
// are server-assigned; partial updates merge with the jsonb || operator
// (last write wins per field).
const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection  text        NOT NULL,
	id          text        NOT NULL,
	data        jsonb       NOT NULL,
	created_at  timestamptz NOT NULL DEFAULT now(),
	updated_at  timestamptz NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
)`

// docProjection folds the key columns back into the document so one scan
// yields the full shape consumers unmarshal.
const docProjection = `data || jsonb_build_object(
	'id', id,
	'createdAt', created_at,
	'updatedAt', updated_at
)`

// PostgresStore persists documents in PostgreSQL and fans change signals
// out across processes through Redis pub/sub.
type PostgresStore struct {
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, rdb *redis.Client, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		redis:  rdb,
		logger: log.WithFields(map[string]interface{}{"component": "store"}),
	}
}

// Bootstrap creates the documents table if it does not exist yet.
func (s *PostgresStore) Bootstrap(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("bootstrap documents table: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateDocument(ctx context.Context, collection string, doc interface{}) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", commonerrors.NewStoreWriteFailedError(err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)`,
		collection, id, data)
	if err != nil {
		return "", commonerrors.NewStoreWriteFailedError(err)
	}

	s.publishChange(ctx, collection)
	return id, nil
}

func (s *PostgresStore) UpdateDocument(ctx context.Context, collection, id string, patch map[string]interface{}) error {
	data, err := json.Marshal(patch)
	if err != nil {
		return commonerrors.NewStoreWriteFailedError(err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET data = data || $3, updated_at = now() WHERE collection = $1 AND id = $2`,
		collection, id, data)
	if err != nil {
		return commonerrors.NewStoreWriteFailedError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return commonerrors.NewDocumentNotFoundError(collection, id)
	}

	s.publishChange(ctx, collection)
	return nil
}

func (s *PostgresStore) DeleteDocument(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id)
	if err != nil {
		return commonerrors.NewStoreWriteFailedError(err)
	}
	s.publishChange(ctx, collection)
	return nil
}

func (s *PostgresStore) GetDocument(ctx context.Context, collection, id string, out interface{}) error {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT `+docProjection+` FROM documents WHERE collection = $1 AND id = $2`,
		collection, id).Scan(&data)
	if err == sql.ErrNoRows {
		return commonerrors.NewDocumentNotFoundError(collection, id)
	}
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}
	return json.Unmarshal(data, out)
}

func (s *PostgresStore) ListDocuments(ctx context.Context, collection string, out interface{}) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+docProjection+` FROM documents WHERE collection = $1 ORDER BY created_at`,
		collection)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []json.RawMessage
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, json.RawMessage(data))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	merged, err := json.Marshal(docs)
	if err != nil {
		return err
	}
	return json.Unmarshal(merged, out)
}

// SubscribeCollection listens on the collection's Redis pub/sub channel and
// converts messages into change signals. Signals are coalesced: a slow
// consumer sees at least one signal for any burst of writes.
func (s *PostgresStore) SubscribeCollection(ctx context.Context, collection string) (<-chan struct{}, func(), error) {
	sub := s.redis.Subscribe(ctx, changeChannelPrefix+collection)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", collection, err)
	}

	signals := make(chan struct{}, 1)
	done := make(chan struct{})

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			sub.Close()
		})
	}

	go func() {
		defer close(signals)
		defer cancel()
		ch := sub.Channel()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				select {
				case signals <- struct{}{}:
				default: // a signal is already pending
				}
			}
		}
	}()

	return signals, cancel, nil
}

// publishChange is fire-and-forget: a missed signal only delays a snapshot
// refresh until the next write.
func (s *PostgresStore) publishChange(ctx context.Context, collection string) {
	if err := s.redis.Publish(ctx, changeChannelPrefix+collection, "changed").Err(); err != nil {
		s.logger.Warn("change publish failed", map[string]interface{}{
			"collection": collection,
			"error":      err,
		})
	}
}
