package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"citypulse/internal/config"
	"citypulse/internal/models"
)

// ElasticsearchClient indexes the current event snapshot for deep text
// search over titles and descriptions. The ranked views never depend on
// it; it backs only the explicit search endpoint.
type ElasticsearchClient struct {
	client *elasticsearch.Client
	config config.ElasticsearchConfig
}

// NewElasticsearchClient создает новый клиент Elasticsearch
func NewElasticsearchClient(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     []string{cfg.URL},
		Username:      cfg.Username,
		Password:      cfg.Password,
		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	client := &ElasticsearchClient{
		client: es,
		config: cfg,
	}

	if err := client.ensureIndex(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return client, nil
}

// ensureIndex создает индекс если он не существует
func (c *ElasticsearchClient) ensureIndex(ctx context.Context) error {
	req := esapi.IndicesExistsRequest{
		Index: []string{c.config.Index},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		slog.Info("Elasticsearch index already exists", "index", c.config.Index)
		return nil
	}

	mapping := map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id": map[string]interface{}{
					"type": "keyword",
				},
				"title": map[string]interface{}{
					"type":     "text",
					"analyzer": "english",
					"fields": map[string]interface{}{
						"keyword": map[string]interface{}{
							"type":         "keyword",
							"ignore_above": 256,
						},
					},
				},
				"description": map[string]interface{}{
					"type":     "text",
					"analyzer": "english",
				},
				"category": map[string]interface{}{
					"type": "keyword",
				},
				"venue": map[string]interface{}{
					"type": "text",
				},
				"start_time": map[string]interface{}{
					"type":   "date",
					"format": "epoch_millis",
				},
				"price": map[string]interface{}{
					"type": "double",
				},
				"location": map[string]interface{}{
					"type": "geo_point",
				},
				"capacity": map[string]interface{}{
					"type": "integer",
				},
				"booked_seats": map[string]interface{}{
					"type": "integer",
				},
			},
		},
	}

	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	createReq := esapi.IndicesCreateRequest{
		Index: c.config.Index,
		Body:  strings.NewReader(string(mappingJSON)),
	}

	createRes, err := createReq.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("failed to create index: %s", createRes.String())
	}

	slog.Info("Created Elasticsearch index", "index", c.config.Index)
	return nil
}

type indexedEvent struct {
	models.Event
	Location map[string]float64 `json:"location"`
}

// IndexSnapshot replaces the indexed documents with the given snapshot.
// Stale documents from a previous snapshot are deleted first so the
// index never outlives the feed.
func (c *ElasticsearchClient) IndexSnapshot(ctx context.Context, events []models.Event) error {
	deleteReq := esapi.DeleteByQueryRequest{
		Index: []string{c.config.Index},
		Body:  strings.NewReader(`{"query":{"match_all":{}}}`),
	}
	res, err := deleteReq.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}
	res.Body.Close()

	if len(events) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, e := range events {
		meta := fmt.Sprintf(`{"index":{"_index":%q,"_id":%q}}`, c.config.Index, e.ID)
		buf.WriteString(meta)
		buf.WriteByte('\n')

		doc, err := json.Marshal(indexedEvent{
			Event: e,
			Location: map[string]float64{
				"lat": e.Latitude,
				"lon": e.Longitude,
			},
		})
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", e.ID, err)
		}
		buf.Write(doc)
		buf.WriteByte('\n')
	}

	bulkReq := esapi.BulkRequest{
		Body:    &buf,
		Refresh: "true",
	}

	bulkRes, err := bulkReq.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to bulk index snapshot: %w", err)
	}
	defer bulkRes.Body.Close()

	if bulkRes.IsError() {
		return fmt.Errorf("bulk indexing failed: %s", bulkRes.String())
	}

	slog.Info("Indexed event snapshot", "count", len(events))
	return nil
}

// Search выполняет полнотекстовый поиск событий
func (c *ElasticsearchClient) Search(ctx context.Context, query string, size int) ([]models.Event, error) {
	if size <= 0 {
		size = 20
	}

	searchRequest := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"title^2", "description", "venue"},
				"fuzziness": "AUTO",
			},
		},
		"size": size,
	}

	searchJSON, err := json.Marshal(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{c.config.Index},
		Body:  strings.NewReader(string(searchJSON)),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("Elasticsearch error: %s", res.String())
	}

	var response struct {
		Hits struct {
			Hits []struct {
				Source models.Event `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	events := make([]models.Event, len(response.Hits.Hits))
	for i, hit := range response.Hits.Hits {
		events[i] = hit.Source
	}

	return events, nil
}
