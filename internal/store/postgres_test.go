package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "github.com/judzis-sketch/gedimu-registras/internal/common/errors"
	"github.com/judzis-sketch/gedimu-registras/internal/common/logger"
	"github.com/judzis-sketch/gedimu-registras/internal/models"
)

func setupRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newTestStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	db, mock := setupMockDB(t)
	return NewPostgresStore(db, setupRedis(t), logger.NewTestLogger(t)), mock
}

func TestPostgresStore_CreateDocument(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectExec(`INSERT INTO documents \(collection, id, data\) VALUES \(\$1, \$2, \$3\)`).
		WithArgs(CollectionIssues, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := s.CreateDocument(context.Background(), CollectionIssues, &models.Fault{
		DisplayID: "FAULT-0001",
		Status:    models.StatusNew,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateDocument_WriteFailure(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectExec(`INSERT INTO documents`).
		WillReturnError(sql.ErrConnDone)

	_, err := s.CreateDocument(context.Background(), CollectionIssues, &models.Fault{})

	assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeStoreWriteFailed))
}

func TestPostgresStore_UpdateDocument(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectExec(`UPDATE documents SET data = data \|\| \$3, updated_at = now\(\) WHERE collection = \$1 AND id = \$2`).
		WithArgs(CollectionIssues, "doc-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.UpdateDocument(context.Background(), CollectionIssues, "doc-1", map[string]interface{}{
		"status": models.StatusAssigned,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateDocument_NotFound(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectExec(`UPDATE documents`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.UpdateDocument(context.Background(), CollectionIssues, "missing", map[string]interface{}{
		"status": models.StatusAssigned,
	})

	assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeDocumentNotFound))
}

func TestPostgresStore_GetDocument(t *testing.T) {
	s, mock := newTestStore(t)

	doc := map[string]interface{}{
		"id":        "doc-1",
		"displayId": "FAULT-0002",
		"status":    "assigned",
		"createdAt": time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC),
		"updatedAt": time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT data \|\| jsonb_build_object`).
		WithArgs(CollectionIssues, "doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow(data))

	var f models.Fault
	require.NoError(t, s.GetDocument(context.Background(), CollectionIssues, "doc-1", &f))
	assert.Equal(t, "doc-1", f.ID)
	assert.Equal(t, "FAULT-0002", f.DisplayID)
	assert.Equal(t, models.StatusAssigned, f.Status)
	assert.False(t, f.CreatedAt.IsZero())
}

func TestPostgresStore_GetDocument_NotFound(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(`SELECT data \|\| jsonb_build_object`).
		WillReturnError(sql.ErrNoRows)

	var f models.Fault
	err := s.GetDocument(context.Background(), CollectionIssues, "missing", &f)
	assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeDocumentNotFound))
}

func TestPostgresStore_ListDocuments(t *testing.T) {
	s, mock := newTestStore(t)

	rows := sqlmock.NewRows([]string{"doc"})
	for _, displayID := range []string{"FAULT-0001", "FAULT-0002"} {
		data, err := json.Marshal(map[string]interface{}{"displayId": displayID, "status": "new"})
		require.NoError(t, err)
		rows.AddRow(data)
	}

	mock.ExpectQuery(`SELECT data \|\| jsonb_build_object\(.+ORDER BY created_at`).
		WithArgs(CollectionIssues).
		WillReturnRows(rows)

	var faults []models.Fault
	require.NoError(t, s.ListDocuments(context.Background(), CollectionIssues, &faults))
	require.Len(t, faults, 2)
	assert.Equal(t, "FAULT-0001", faults[0].DisplayID)
}

func TestPostgresStore_SubscribeCollection(t *testing.T) {
	db, mock := setupMockDB(t)
	rdb := setupRedis(t)
	s := NewPostgresStore(db, rdb, logger.NewTestLogger(t))

	signals, cancel, err := s.SubscribeCollection(context.Background(), CollectionIssues)
	require.NoError(t, err)
	defer cancel()

	mock.ExpectExec(`INSERT INTO documents`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err = s.CreateDocument(context.Background(), CollectionIssues, &models.Fault{DisplayID: "FAULT-0001"})
	require.NoError(t, err)

	select {
	case <-signals:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change signal after create")
	}
}

func TestPostgresStore_SubscribeCollection_CancelIsIdempotent(t *testing.T) {
	db, _ := setupMockDB(t)
	s := NewPostgresStore(db, setupRedis(t), logger.NewTestLogger(t))

	signals, cancel, err := s.SubscribeCollection(context.Background(), CollectionIssues)
	require.NoError(t, err)

	cancel()
	assert.NotPanics(t, cancel)

	select {
	case _, ok := <-signals:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("expected signal channel to close after cancel")
	}
}

func TestPostgresStore_SubscribeCollection_ContextCancelClosesSignals(t *testing.T) {
	db, _ := setupMockDB(t)
	s := NewPostgresStore(db, setupRedis(t), logger.NewTestLogger(t))

	ctx, stop := context.WithCancel(context.Background())
	signals, cancel, err := s.SubscribeCollection(ctx, CollectionIssues)
	require.NoError(t, err)
	defer cancel()

	stop()

	select {
	case _, ok := <-signals:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("expected signal channel to close after context cancellation")
	}
}
