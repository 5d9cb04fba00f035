// Package search maintains the completed-acts index so archived work can be
// found by address, reporter or technician long after completion.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/judzis-sketch/gedimu-registras/internal/common/logger"
	"github.com/judzis-sketch/gedimu-registras/internal/models"
)

const ActsIndex = "acts"

// ActDocument is the searchable metadata for one completed act. Snapshot
// bytes stay in the store; only text fields are indexed.
type ActDocument struct {
	FaultID        string    `json:"faultId"`
	DisplayID      string    `json:"displayId"`
	Type           string    `json:"type"`
	Description    string    `json:"description"`
	Address        string    `json:"address"`
	ReporterName   string    `json:"reporterName"`
	TechnicianName string    `json:"technicianName"`
	CompletedAt    time.Time `json:"completedAt"`
}

// Indexer writes completed act metadata into Elasticsearch.
type Indexer struct {
	client *elasticsearch.Client
	logger logger.Logger
}

func NewIndexer(client *elasticsearch.Client, log logger.Logger) *Indexer {
	return &Indexer{
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "search"}),
	}
}

// IndexAct upserts the act document keyed by fault id, so re-indexing after
// a retried completion overwrites rather than duplicates.
func (i *Indexer) IndexAct(ctx context.Context, f *models.Fault, technicianName string) error {
	doc := ActDocument{
		FaultID:        f.ID,
		DisplayID:      f.DisplayID,
		Type:           string(f.Type),
		Description:    f.Description,
		Address:        f.Address,
		ReporterName:   f.ReporterName,
		TechnicianName: technicianName,
		CompletedAt:    f.UpdatedAt,
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal act document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      ActsIndex,
		DocumentID: f.ID,
		Body:       strings.NewReader(string(body)),
	}

	res, err := req.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("index act: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index act: %s", res.Status())
	}

	i.logger.Debug("act indexed", map[string]interface{}{
		"faultId":   f.ID,
		"displayId": f.DisplayID,
	})
	return nil
}

// SearchActs runs a keyword search over the indexed act fields.
func (i *Indexer) SearchActs(ctx context.Context, keywords string, size int) ([]ActDocument, error) {
	if size <= 0 {
		size = 20
	}

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  keywords,
				"fields": []string{"displayId^3", "address^2", "reporterName^2", "technicianName", "description"},
				"type":   "best_fields",
			},
		},
		"size": size,
	}

	body, _ := json.Marshal(queryBody)
	req := esapi.SearchRequest{
		Index: []string{ActsIndex},
		Body:  strings.NewReader(string(body)),
	}

	res, err := req.Do(ctx, i.client)
	if err != nil {
		return nil, fmt.Errorf("search acts: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search acts: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source ActDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	docs := make([]ActDocument, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	return docs, nil
}
