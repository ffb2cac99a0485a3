package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"chatbot-backend/internal/common/database"
	"chatbot-backend/internal/models"
)

// ArchivedExchange is the Elasticsearch document for one chat exchange.
type ArchivedExchange struct {
	SessionID      string    `json:"session_id"`
	UserID         string    `json:"user_id"`
	Message        string    `json:"message"`
	Response       string    `json:"response"`
	ResponseFormat string    `json:"response_format"`
	Intent         string    `json:"intent"`
	Timestamp      time.Time `json:"timestamp"`
}

// ExchangeArchive indexes chat exchanges into Elasticsearch for full-text
// search across a user's conversation history.
type ExchangeArchive struct {
	es    *database.ElasticsearchClient
	index string
}

func NewExchangeArchive(es *database.ElasticsearchClient) *ExchangeArchive {
	return &ExchangeArchive{es: es, index: es.Index}
}

// Index stores one exchange document.
func (a *ExchangeArchive) Index(ctx context.Context, doc *ArchivedExchange) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode exchange document: %w", err)
	}

	client := a.es.Client
	res, err := client.Index(
		a.index,
		bytes.NewReader(payload),
		client.Index.WithContext(ctx),
		client.Index.WithDocumentID(uuid.NewString()),
	)
	if err != nil {
		return fmt.Errorf("index exchange: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index exchange: %s", res.Status())
	}
	return nil
}

// Search runs a full-text match over message and response text, optionally
// scoped to one user.
func (a *ExchangeArchive) Search(ctx context.Context, userID, query string, limit int) ([]*ArchivedExchange, error) {
	if limit <= 0 {
		limit = 20
	}

	must := []map[string]interface{}{
		{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"message", "response"},
			},
		},
	}
	if userID != "" {
		must = append(must, map[string]interface{}{
			"term": map[string]interface{}{"user_id": userID},
		})
	}

	body := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"must": must},
		},
		"sort": []map[string]interface{}{
			{"timestamp": map[string]interface{}{"order": "desc"}},
		},
	}

	var buf strings.Builder
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encode search query: %w", err)
	}

	client := a.es.Client
	res, err := client.Search(
		client.Search.WithContext(ctx),
		client.Search.WithIndex(a.index),
		client.Search.WithBody(strings.NewReader(buf.String())),
	)
	if err != nil {
		return nil, fmt.Errorf("search exchanges: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search exchanges: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source ArchivedExchange `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]*ArchivedExchange, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		doc := hit.Source
		results = append(results, &doc)
	}
	return results, nil
}

// FromMessage builds the archive document for a persisted exchange.
func FromMessage(msg *models.ChatMessage, intent string) *ArchivedExchange {
	return &ArchivedExchange{
		SessionID:      msg.SessionID,
		UserID:         msg.UserID,
		Message:        msg.Message,
		Response:       msg.Response,
		ResponseFormat: string(msg.ResponseFormat),
		Intent:         intent,
		Timestamp:      msg.Timestamp,
	}
}
