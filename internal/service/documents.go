package service

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"

	"github.com/corpusdb/corpusdb/internal/errors"
	"github.com/corpusdb/corpusdb/internal/store"
)

// DeleteDocumentResult reports what a document deletion removed.
type DeleteDocumentResult struct {
	DocumentsDeleted int
	ChunksDeleted    int
}

// CreateDocument validates and persists a new document under a library.
func (s *Service) CreateDocument(ctx context.Context, libraryID, name string) (*store.Document, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.ValidationError("document name must not be empty")
	}
	if strings.TrimSpace(libraryID) == "" {
		return nil, errors.ValidationError("library_id must not be empty")
	}
	return s.store.CreateDocument(ctx, libraryID, name)
}

// GetDocument returns a document by id.
func (s *Service) GetDocument(ctx context.Context, id string) (*store.Document, error) {
	doc, err := s.store.GetDocument(ctx, id)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, errors.NotFound(errors.ErrCodeDocumentNotFound, "document", id)
	}
	return doc, err
}

// ListDocumentsByLibrary pages through a library's documents.
func (s *Service) ListDocumentsByLibrary(ctx context.Context, libraryID string, skip, limit int) ([]store.Document, error) {
	return s.store.ListDocumentsByLibrary(ctx, libraryID, skip, limit)
}

// UpdateDocument renames a document.
func (s *Service) UpdateDocument(ctx context.Context, id, name string) (*store.Document, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.ValidationError("document name must not be empty")
	}
	doc, err := s.store.UpdateDocument(ctx, id, name)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, errors.NotFound(errors.ErrCodeDocumentNotFound, "document", id)
	}
	return doc, err
}

// DeleteDocument removes a document with its chunks, then drops the
// removed chunks from every index.
func (s *Service) DeleteDocument(ctx context.Context, id string) (*DeleteDocumentResult, error) {
	chunkIDs, err := s.store.DeleteDocument(ctx, id)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, errors.NotFound(errors.ErrCodeDocumentNotFound, "document", id)
	}
	if err != nil {
		return nil, err
	}
	s.dropVectors(chunkIDs)
	s.log.Info("document deleted",
		slog.String("document_id", id),
		slog.Int("chunks_removed", len(chunkIDs)))
	return &DeleteDocumentResult{DocumentsDeleted: 1, ChunksDeleted: len(chunkIDs)}, nil
}

// DeleteDocumentsByLibrary removes every document of a library with their
// chunks, then drops the removed chunks from every index. Unknown
// libraries are a no-op.
func (s *Service) DeleteDocumentsByLibrary(ctx context.Context, libraryID string) (*DeleteDocumentResult, error) {
	docsDeleted, chunkIDs, err := s.store.DeleteDocumentsByLibrary(ctx, libraryID)
	if err != nil {
		return nil, err
	}
	s.dropVectors(chunkIDs)
	return &DeleteDocumentResult{DocumentsDeleted: docsDeleted, ChunksDeleted: len(chunkIDs)}, nil
}
