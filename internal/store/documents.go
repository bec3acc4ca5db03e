package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/corpusdb/corpusdb/internal/errors"
)

// CreateDocument inserts a new document under an existing library.
// A missing library yields a library-not-found error.
func (s *Store) CreateDocument(ctx context.Context, libraryID, name string) (*Document, error) {
	if _, err := s.GetLibrary(ctx, libraryID); err != nil {
		if stderrors.Is(err, ErrNotFound) {
			return nil, errors.NotFound(errors.ErrCodeLibraryNotFound, "library", libraryID)
		}
		return nil, err
	}
	now := time.Now().UTC()
	doc := &Document{
		ID:        uuid.NewString(),
		LibraryID: libraryID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, library_id, name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		doc.ID, doc.LibraryID, doc.Name, formatTime(now), formatTime(now))
	if err != nil {
		return nil, classify("create document", err)
	}
	return doc, nil
}

// GetDocument returns the document with the given id, or ErrNotFound.
func (s *Store) GetDocument(ctx context.Context, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, library_id, name, created_at, updated_at FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

// ListDocumentsByLibrary returns a library's documents with skip/limit
// pagination. An unknown library yields an empty list.
func (s *Store) ListDocumentsByLibrary(ctx context.Context, libraryID string, skip, limit int) ([]Document, error) {
	skip, limit = clampPage(skip, limit)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, library_id, name, created_at, updated_at
		 FROM documents WHERE library_id = ? ORDER BY created_at, id LIMIT ? OFFSET ?`,
		libraryID, limit, skip)
	if err != nil {
		return nil, classify("list documents", err)
	}
	defer rows.Close()

	documents := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		documents = append(documents, *doc)
	}
	return documents, classify("list documents", rows.Err())
}

// UpdateDocument renames a document. Returns the updated row, or ErrNotFound.
func (s *Store) UpdateDocument(ctx context.Context, id, name string) (*Document, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET name = ?, updated_at = ? WHERE id = ?`,
		name, formatTime(time.Now()), id)
	if err != nil {
		return nil, classify("update document", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetDocument(ctx, id)
}

// DeleteDocument removes a document, cascading to its chunks. The removed
// chunk ids are collected before the cascade and returned. Returns
// ErrNotFound for a missing id.
func (s *Store) DeleteDocument(ctx context.Context, id string) (chunkIDs []string, err error) {
	err = s.withTx(ctx, "delete document", func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE id = ?`, id).Scan(&exists); err != nil {
			return classify("delete document", err)
		}
		if exists == 0 {
			return ErrNotFound
		}
		chunkIDs, err = chunkIDsByDocument(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
			return classify("delete document", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return chunkIDs, nil
}

// DeleteDocumentsByLibrary removes every document of a library, cascading
// to chunks, and returns the document count with the removed chunk ids.
// An unknown library is a no-op with an empty result.
func (s *Store) DeleteDocumentsByLibrary(ctx context.Context, libraryID string) (docsDeleted int, chunkIDs []string, err error) {
	err = s.withTx(ctx, "delete documents by library", func(tx *sql.Tx) error {
		chunkIDs, err = chunkIDsByLibrary(ctx, tx, libraryID)
		if err != nil {
			return err
		}
		res, execErr := tx.ExecContext(ctx, `DELETE FROM documents WHERE library_id = ?`, libraryID)
		if execErr != nil {
			return classify("delete documents by library", execErr)
		}
		n, _ := res.RowsAffected()
		docsDeleted = int(n)
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return docsDeleted, chunkIDs, nil
}

func scanDocument(sc scanner) (*Document, error) {
	var doc Document
	var created, updated string
	err := sc.Scan(&doc.ID, &doc.LibraryID, &doc.Name, &created, &updated)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classify("scan document", err)
	}
	doc.CreatedAt = parseTime(created)
	doc.UpdatedAt = parseTime(updated)
	return &doc, nil
}
