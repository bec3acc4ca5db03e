package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/corpusdb/corpusdb/internal/errors"
	"github.com/corpusdb/corpusdb/internal/index"
	"github.com/corpusdb/corpusdb/internal/store"
)

// SearchResult is one resolved kNN hit. A chunk deleted between the index
// snapshot and store resolution keeps its id and distance with empty text.
type SearchResult struct {
	ID       string  `json:"id"`
	Distance float32 `json:"distance"`
	Text     string  `json:"text"`
}

// Search embeds the query once and runs kNN against every requested index,
// resolving hits to chunk texts outside the index lock. The result maps
// index name to hits in ascending distance order.
func (s *Service) Search(ctx context.Context, query string, k int, indexNames []string) (map[string][]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.ValidationError("query must not be empty")
	}
	if k <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidQuery, "k must be positive, got %d", k)
	}
	if len(indexNames) == 0 {
		indexNames = s.indexes.Names()
	}
	for _, name := range indexNames {
		if !s.indexes.Has(name) {
			return nil, errors.Newf(errors.ErrCodeUnknownIndex, "unknown index %q", name)
		}
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, errors.New(errors.ErrCodeEmbeddingFailed, "embed query", err)
	}

	results := make(map[string][]SearchResult, len(indexNames))
	for _, name := range indexNames {
		hits, err := s.indexes.SearchVector(vector, k, name)
		if err != nil {
			if stderrors.Is(err, index.ErrUnknownIndex) {
				return nil, errors.Newf(errors.ErrCodeUnknownIndex, "unknown index %q", name)
			}
			if stderrors.Is(err, index.ErrDimensionMismatch) {
				return nil, errors.Wrap(errors.ErrCodeDimensionMismatch, err)
			}
			return nil, fmt.Errorf("search %s: %w", name, err)
		}
		results[name] = s.resolve(ctx, hits)
	}
	return results, nil
}

// resolve hydrates chunk texts for search hits. Ids the store no longer
// holds become stubs rather than being dropped, so the hit count and order
// stay faithful to the index snapshot.
func (s *Service) resolve(ctx context.Context, hits []index.SearchHit) []SearchResult {
	results := make([]SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = SearchResult{ID: hit.ID, Distance: hit.Distance}
		chunk, err := s.store.GetChunk(ctx, hit.ID)
		if err == nil {
			results[i].Text = chunk.Text
		} else if !stderrors.Is(err, store.ErrNotFound) {
			s.log.Warn("chunk resolution failed",
				slog.String("chunk_id", hit.ID),
				slog.String("error", err.Error()))
		}
	}
	return results
}
