package audit

import (
	"context"
	"fmt"

	"securebank/internal/models"
)

// DocumentIndexer is satisfied by client.ESClient.
type DocumentIndexer interface {
	IndexDocument(ctx context.Context, index, id string, document interface{}) error
}

type ElasticsearchSink struct {
	indexer DocumentIndexer
	index   string
}

func NewElasticsearchSink(indexer DocumentIndexer, index string) *ElasticsearchSink {
	return &ElasticsearchSink{indexer: indexer, index: index}
}

func (s *ElasticsearchSink) Name() string { return "elasticsearch" }

// Publish indexes the entry under its own ID so a retried publish overwrites
// rather than duplicates.
func (s *ElasticsearchSink) Publish(ctx context.Context, entry models.SecurityLogEntry) error {
	if err := s.indexer.IndexDocument(ctx, s.index, entry.ID, entry); err != nil {
		return fmt.Errorf("elasticsearch index: %w", err)
	}
	return nil
}
