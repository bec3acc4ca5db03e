// Package service binds the chunk store, the embedder and the index
// manager into the application operations the API exposes. Index mutations
// are emitted only after the corresponding store commit succeeded; a failed
// index mutation is logged and surfaced, and a later rebuild reconciles.
package service

import (
	"context"
	"log/slog"

	"github.com/corpusdb/corpusdb/internal/embed"
	"github.com/corpusdb/corpusdb/internal/index"
	"github.com/corpusdb/corpusdb/internal/store"
)

// Service implements the corpus operations.
type Service struct {
	store    *store.Store
	embedder embed.Embedder
	indexes  *index.Manager
	log      *slog.Logger
}

// New creates a service over an opened store. The index manager reads
// committed embeddings back out of the store through the source adapter.
func New(st *store.Store, embedder embed.Embedder, manager *index.Manager, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: st, embedder: embedder, indexes: manager, log: log}
}

// Indexes exposes the index manager, mainly for status endpoints and tests.
func (s *Service) Indexes() *index.Manager { return s.indexes }

// RebuildIndexes batch-builds every configured index from the store.
func (s *Service) RebuildIndexes(ctx context.Context) error {
	return s.indexes.RebuildAll(ctx)
}

// dropVectors fans index deletions out for chunk ids removed by a cascade.
func (s *Service) dropVectors(ids []string) {
	for _, id := range ids {
		s.indexes.DeleteVector(id)
	}
}

// Source adapts the store to the index manager's embedding source.
type Source struct {
	Store *store.Store
}

// ListEmbeddings streams the (id, embedding) projection of every chunk.
func (s Source) ListEmbeddings(ctx context.Context) ([]index.Embedding, error) {
	chunks, err := s.Store.ListAllChunks(ctx, true)
	if err != nil {
		return nil, err
	}
	entries := make([]index.Embedding, len(chunks))
	for i, c := range chunks {
		entries[i] = index.Embedding{ID: c.ID, Vector: c.Embedding}
	}
	return entries, nil
}

var _ index.Source = Source{}
