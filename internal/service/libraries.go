package service

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"

	"github.com/corpusdb/corpusdb/internal/errors"
	"github.com/corpusdb/corpusdb/internal/store"
)

// CreateLibrary validates and persists a new library.
func (s *Service) CreateLibrary(ctx context.Context, fields store.LibraryFields) (*store.Library, error) {
	if strings.TrimSpace(fields.Name) == "" {
		return nil, errors.ValidationError("library name must not be empty")
	}
	return s.store.CreateLibrary(ctx, fields)
}

// GetLibrary returns a library by id.
func (s *Service) GetLibrary(ctx context.Context, id string) (*store.Library, error) {
	lib, err := s.store.GetLibrary(ctx, id)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, errors.NotFound(errors.ErrCodeLibraryNotFound, "library", id)
	}
	return lib, err
}

// ListLibraries pages through all libraries.
func (s *Service) ListLibraries(ctx context.Context, skip, limit int) ([]store.Library, error) {
	return s.store.ListLibraries(ctx, skip, limit)
}

// UpdateLibrary validates and replaces a library's fields.
func (s *Service) UpdateLibrary(ctx context.Context, id string, fields store.LibraryFields) (*store.Library, error) {
	if strings.TrimSpace(fields.Name) == "" {
		return nil, errors.ValidationError("library name must not be empty")
	}
	lib, err := s.store.UpdateLibrary(ctx, id, fields)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, errors.NotFound(errors.ErrCodeLibraryNotFound, "library", id)
	}
	return lib, err
}

// DeleteLibrary removes a library with its documents and chunks, then
// drops the removed chunks from every index.
func (s *Service) DeleteLibrary(ctx context.Context, id string) error {
	chunkIDs, err := s.store.DeleteLibrary(ctx, id)
	if stderrors.Is(err, store.ErrNotFound) {
		return errors.NotFound(errors.ErrCodeLibraryNotFound, "library", id)
	}
	if err != nil {
		return err
	}
	s.dropVectors(chunkIDs)
	s.log.Info("library deleted",
		slog.String("library_id", id),
		slog.Int("chunks_removed", len(chunkIDs)))
	return nil
}
