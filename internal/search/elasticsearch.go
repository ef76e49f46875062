package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"kassa/internal/config"
	"kassa/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ElasticsearchClient индексирует документы бронирований для админского поиска
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

	// Check connection and create index if needed
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
				"doc_id":     map[string]interface{}{"type": "keyword"},
				"booking_id": map[string]interface{}{"type": "keyword"},
				"event_id":   map[string]interface{}{"type": "long"},
				"event_name": map[string]interface{}{
					"type": "text",
					"fields": map[string]interface{}{
						"keyword": map[string]interface{}{
							"type":         "keyword",
							"ignore_above": 256,
						},
					},
				},
				"username": map[string]interface{}{"type": "keyword"},
				"display_name": map[string]interface{}{
					"type": "text",
					"fields": map[string]interface{}{
						"keyword": map[string]interface{}{
							"type":         "keyword",
							"ignore_above": 256,
						},
					},
				},
				"phone":      map[string]interface{}{"type": "keyword"},
				"email":      map[string]interface{}{"type": "keyword"},
				"seat_label": map[string]interface{}{"type": "keyword"},
				"row":        map[string]interface{}{"type": "integer"},
				"col":        map[string]interface{}{"type": "integer"},
				"price_paid": map[string]interface{}{"type": "double"},
				"booked_at": map[string]interface{}{
					"type":   "date",
					"format": "strict_date_optional_time||epoch_millis",
				},
				"group_size": map[string]interface{}{"type": "integer"},
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

// IndexDocs индексирует документы мест одного бронирования
func (c *ElasticsearchClient) IndexDocs(ctx context.Context, docs []models.BookingDoc) error {
	for i := range docs {
		doc := &docs[i]
		docJSON, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to marshal booking doc: %w", err)
		}

		req := esapi.IndexRequest{
			Index:      c.config.Index,
			DocumentID: doc.DocID,
			Body:       strings.NewReader(string(docJSON)),
			Refresh:    "wait_for",
		}

		res, err := req.Do(ctx, c.client)
		if err != nil {
			return fmt.Errorf("failed to index booking doc: %w", err)
		}
		res.Body.Close()

		if res.IsError() {
			return fmt.Errorf("indexing error: %s", res.String())
		}
	}

	return nil
}

// DeleteDocs удаляет документы по идентификаторам
func (c *ElasticsearchClient) DeleteDocs(ctx context.Context, docIDs []string) error {
	for _, id := range docIDs {
		req := esapi.DeleteRequest{
			Index:      c.config.Index,
			DocumentID: id,
			Refresh:    "wait_for",
		}

		res, err := req.Do(ctx, c.client)
		if err != nil {
			return fmt.Errorf("failed to delete booking doc: %w", err)
		}
		res.Body.Close()

		// 404 is fine, the doc may never have been indexed
		if res.IsError() && res.StatusCode != 404 {
			return fmt.Errorf("delete error: %s", res.String())
		}
	}

	return nil
}

// Search выполняет поиск бронирований по id, пользователю или телефону
func (c *ElasticsearchClient) Search(ctx context.Context, bookingID, username, phone, query string, page, pageSize int) ([]models.BookingDoc, error) {
	searchQuery := c.buildSearchQuery(bookingID, username, phone, query)

	from := 0
	if page > 0 && pageSize > 0 {
		from = (page - 1) * pageSize
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	searchRequest := map[string]interface{}{
		"query": searchQuery,
		"sort": []map[string]interface{}{
			{"booked_at": map[string]interface{}{"order": "desc"}},
			{"doc_id": map[string]interface{}{"order": "asc"}},
		},
		"from": from,
		"size": pageSize,
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
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var response struct {
		Hits struct {
			Hits []struct {
				Source models.BookingDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	docs := make([]models.BookingDoc, len(response.Hits.Hits))
	for i, hit := range response.Hits.Hits {
		docs[i] = hit.Source
	}

	return docs, nil
}

// buildSearchQuery строит поисковый запрос
func (c *ElasticsearchClient) buildSearchQuery(bookingID, username, phone, query string) map[string]interface{} {
	mustQueries := []map[string]interface{}{}

	if bookingID != "" {
		mustQueries = append(mustQueries, map[string]interface{}{
			"term": map[string]interface{}{"booking_id": bookingID},
		})
	}

	if username != "" {
		mustQueries = append(mustQueries, map[string]interface{}{
			"term": map[string]interface{}{"username": username},
		})
	}

	if phone != "" {
		mustQueries = append(mustQueries, map[string]interface{}{
			"term": map[string]interface{}{"phone": phone},
		})
	}

	if query != "" {
		mustQueries = append(mustQueries, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"display_name^2", "event_name"},
				"fuzziness": "AUTO",
			},
		})
	}

	if len(mustQueries) == 0 {
		return map[string]interface{}{
			"match_all": map[string]interface{}{},
		}
	}

	return map[string]interface{}{
		"bool": map[string]interface{}{
			"must": mustQueries,
		},
	}
}

// Count возвращает количество документов по запросу
func (c *ElasticsearchClient) Count(ctx context.Context, bookingID, username, phone, query string) (int64, error) {
	countRequest := map[string]interface{}{
		"query": c.buildSearchQuery(bookingID, username, phone, query),
	}

	countJSON, err := json.Marshal(countRequest)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal count query: %w", err)
	}

	req := esapi.CountRequest{
		Index: []string{c.config.Index},
		Body:  strings.NewReader(string(countJSON)),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return 0, fmt.Errorf("failed to execute count: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("count error: %s", res.String())
	}

	var response struct {
		Count int64 `json:"count"`
	}

	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return 0, fmt.Errorf("failed to decode count response: %w", err)
	}

	return response.Count, nil
}

// HealthCheck проверяет состояние Elasticsearch
func (c *ElasticsearchClient) HealthCheck(ctx context.Context) error {
	req := esapi.ClusterHealthRequest{
		WaitForStatus: "yellow",
		Timeout:       10 * time.Second,
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("health check error: %s", res.String())
	}

	return nil
}
