package service

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"

	"github.com/corpusdb/corpusdb/internal/errors"
	"github.com/corpusdb/corpusdb/internal/store"
)

// CreateChunk embeds the text, persists the chunk, and inserts its vector
// into every index. The store commit happens first; if the index insert
// then fails the error is surfaced and a later rebuild reconciles.
func (s *Service) CreateChunk(ctx context.Context, documentID, text string) (*store.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New(errors.ErrCodeEmptyText, "chunk text must not be empty", nil)
	}
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, errors.New(errors.ErrCodeEmbeddingFailed, "embed chunk text", err)
	}

	chunk, err := s.store.CreateChunk(ctx, documentID, text, vector)
	if err != nil {
		return nil, err
	}
	if err := s.indexes.AddVector(ctx, vector, chunk.ID); err != nil {
		s.log.Error("index insert failed after commit",
			slog.String("chunk_id", chunk.ID),
			slog.String("error", err.Error()))
		return nil, errors.New(errors.ErrCodeIndexFailed, "index chunk "+chunk.ID, err)
	}
	return chunk, nil
}

// CreateRandomChunk attaches the text to a randomly chosen existing
// document. With no documents in the corpus it fails with an invalid-query
// error.
func (s *Service) CreateRandomChunk(ctx context.Context, text string) (*store.Chunk, error) {
	docID, err := s.store.RandomDocumentID(ctx)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, errors.New(errors.ErrCodeInvalidQuery, "no documents exist to attach the chunk to", nil)
	}
	if err != nil {
		return nil, err
	}
	return s.CreateChunk(ctx, docID, text)
}

// GetChunk returns a chunk by id.
func (s *Service) GetChunk(ctx context.Context, id string) (*store.Chunk, error) {
	chunk, err := s.store.GetChunk(ctx, id)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, errors.NotFound(errors.ErrCodeChunkNotFound, "chunk", id)
	}
	return chunk, err
}

// ListChunksByDocument pages through a document's chunks.
func (s *Service) ListChunksByDocument(ctx context.Context, documentID string, skip, limit int) ([]store.Chunk, error) {
	return s.store.ListChunksByDocument(ctx, documentID, skip, limit)
}

// UpdateChunk re-embeds the new text, persists it, and replaces the
// chunk's vector in every index.
func (s *Service) UpdateChunk(ctx context.Context, id, text string) (*store.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New(errors.ErrCodeEmptyText, "chunk text must not be empty", nil)
	}
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, errors.New(errors.ErrCodeEmbeddingFailed, "embed chunk text", err)
	}

	chunk, err := s.store.UpdateChunk(ctx, id, text, vector)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, errors.NotFound(errors.ErrCodeChunkNotFound, "chunk", id)
	}
	if err != nil {
		return nil, err
	}
	// AddVector deletes the old entry first, so the indices end up with
	// exactly one vector for this chunk.
	if err := s.indexes.AddVector(ctx, vector, chunk.ID); err != nil {
		s.log.Error("index update failed after commit",
			slog.String("chunk_id", chunk.ID),
			slog.String("error", err.Error()))
		return nil, errors.New(errors.ErrCodeIndexFailed, "reindex chunk "+chunk.ID, err)
	}
	return chunk, nil
}

// DeleteChunk removes a chunk from the store and from every index.
func (s *Service) DeleteChunk(ctx context.Context, id string) error {
	err := s.store.DeleteChunk(ctx, id)
	if stderrors.Is(err, store.ErrNotFound) {
		return errors.NotFound(errors.ErrCodeChunkNotFound, "chunk", id)
	}
	if err != nil {
		return err
	}
	s.indexes.DeleteVector(id)
	return nil
}

// DeleteChunksByDocument removes every chunk of a document from the store
// and the indices, returning how many were removed.
func (s *Service) DeleteChunksByDocument(ctx context.Context, documentID string) (int, error) {
	ids, err := s.store.DeleteChunksByDocument(ctx, documentID)
	if err != nil {
		return 0, err
	}
	s.dropVectors(ids)
	return len(ids), nil
}

// DeleteChunksByLibrary removes every chunk under a library from the store
// and the indices, returning how many were removed.
func (s *Service) DeleteChunksByLibrary(ctx context.Context, libraryID string) (int, error) {
	ids, err := s.store.DeleteChunksByLibrary(ctx, libraryID)
	if err != nil {
		return 0, err
	}
	s.dropVectors(ids)
	return len(ids), nil
}
