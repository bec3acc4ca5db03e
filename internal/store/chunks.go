package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/corpusdb/corpusdb/internal/errors"
)

// CreateChunk inserts a new chunk with its embedding under an existing
// document. A missing document yields a document-not-found error.
func (s *Store) CreateChunk(ctx context.Context, documentID, text string, embedding []float32) (*Chunk, error) {
	if _, err := s.GetDocument(ctx, documentID); err != nil {
		if stderrors.Is(err, ErrNotFound) {
			return nil, errors.NotFound(errors.ErrCodeDocumentNotFound, "document", documentID)
		}
		return nil, err
	}
	now := time.Now().UTC()
	chunk := &Chunk{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		Text:       text,
		Embedding:  embedding,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chunks (id, document_id, text, embedding, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		chunk.ID, chunk.DocumentID, chunk.Text, encodeEmbedding(embedding),
		formatTime(now), formatTime(now))
	if err != nil {
		return nil, classify("create chunk", err)
	}
	return chunk, nil
}

// GetChunk returns the chunk with the given id, or ErrNotFound.
func (s *Store) GetChunk(ctx context.Context, id string) (*Chunk, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, document_id, text, embedding, created_at, updated_at FROM chunks WHERE id = ?`, id)
	return scanChunk(row)
}

// ListChunksByDocument returns a document's chunks with skip/limit
// pagination. An unknown document yields an empty list.
func (s *Store) ListChunksByDocument(ctx context.Context, documentID string, skip, limit int) ([]Chunk, error) {
	skip, limit = clampPage(skip, limit)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_id, text, embedding, created_at, updated_at
		 FROM chunks WHERE document_id = ? ORDER BY created_at, id LIMIT ? OFFSET ?`,
		documentID, limit, skip)
	if err != nil {
		return nil, classify("list chunks", err)
	}
	defer rows.Close()

	chunks := []Chunk{}
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}
	return chunks, classify("list chunks", rows.Err())
}

// UpdateChunk replaces a chunk's text and embedding together so the stored
// vector always matches the stored text. Returns the updated row, or
// ErrNotFound.
func (s *Store) UpdateChunk(ctx context.Context, id, text string, embedding []float32) (*Chunk, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE chunks SET text = ?, embedding = ?, updated_at = ? WHERE id = ?`,
		text, encodeEmbedding(embedding), formatTime(time.Now()), id)
	if err != nil {
		return nil, classify("update chunk", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetChunk(ctx, id)
}

// DeleteChunk removes a single chunk. Returns ErrNotFound for a missing id.
func (s *Store) DeleteChunk(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE id = ?`, id)
	if err != nil {
		return classify("delete chunk", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteChunksByDocument removes every chunk of a document and returns
// their ids. An unknown document is a no-op with an empty result.
func (s *Store) DeleteChunksByDocument(ctx context.Context, documentID string) (chunkIDs []string, err error) {
	err = s.withTx(ctx, "delete chunks by document", func(tx *sql.Tx) error {
		chunkIDs, err = chunkIDsByDocument(ctx, tx, documentID)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, documentID); err != nil {
			return classify("delete chunks by document", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return chunkIDs, nil
}

// DeleteChunksByLibrary removes every chunk under a library (across all of
// its documents) and returns their ids.
func (s *Store) DeleteChunksByLibrary(ctx context.Context, libraryID string) (chunkIDs []string, err error) {
	err = s.withTx(ctx, "delete chunks by library", func(tx *sql.Tx) error {
		chunkIDs, err = chunkIDsByLibrary(ctx, tx, libraryID)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM chunks WHERE document_id IN (SELECT id FROM documents WHERE library_id = ?)`,
			libraryID); err != nil {
			return classify("delete chunks by library", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return chunkIDs, nil
}

// ListAllChunks returns every chunk ordered by creation time. With
// forIndexing set, only the (id, embedding) projection is hydrated, which
// is all an index build needs; text and timestamps stay zero.
func (s *Store) ListAllChunks(ctx context.Context, forIndexing bool) ([]Chunk, error) {
	if forIndexing {
		rows, err := s.db.QueryContext(ctx, `SELECT id, embedding FROM chunks ORDER BY created_at, id`)
		if err != nil {
			return nil, classify("list all chunks", err)
		}
		defer rows.Close()

		chunks := []Chunk{}
		for rows.Next() {
			var chunk Chunk
			var blob []byte
			if err := rows.Scan(&chunk.ID, &blob); err != nil {
				return nil, classify("list all chunks", err)
			}
			chunk.Embedding = decodeEmbedding(blob)
			chunks = append(chunks, chunk)
		}
		return chunks, classify("list all chunks", rows.Err())
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_id, text, embedding, created_at, updated_at
		 FROM chunks ORDER BY created_at, id`)
	if err != nil {
		return nil, classify("list all chunks", err)
	}
	defer rows.Close()

	chunks := []Chunk{}
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}
	return chunks, classify("list all chunks", rows.Err())
}

// RandomDocumentID returns the id of a uniformly random document, or
// ErrNotFound when no documents exist.
func (s *Store) RandomDocumentID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM documents ORDER BY RANDOM() LIMIT 1`).Scan(&id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", classify("random document", err)
	}
	return id, nil
}

// CountChunksByDocument returns the number of chunks in a document.
func (s *Store) CountChunksByDocument(ctx context.Context, documentID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chunks WHERE document_id = ?`, documentID).Scan(&n)
	if err != nil {
		return 0, classify("count chunks", err)
	}
	return n, nil
}

// chunkIDsByDocument collects chunk ids for a document inside a transaction.
func chunkIDsByDocument(ctx context.Context, tx *sql.Tx, documentID string) ([]string, error) {
	return collectIDs(ctx, tx, `SELECT id FROM chunks WHERE document_id = ?`, documentID)
}

// chunkIDsByLibrary collects chunk ids across a library's documents.
func chunkIDsByLibrary(ctx context.Context, tx *sql.Tx, libraryID string) ([]string, error) {
	return collectIDs(ctx, tx,
		`SELECT c.id FROM chunks c JOIN documents d ON c.document_id = d.id WHERE d.library_id = ?`,
		libraryID)
}

func collectIDs(ctx context.Context, tx *sql.Tx, query string, arg string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, classify("collect chunk ids", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, classify("collect chunk ids", err)
		}
		ids = append(ids, id)
	}
	return ids, classify("collect chunk ids", rows.Err())
}

func scanChunk(sc scanner) (*Chunk, error) {
	var chunk Chunk
	var blob []byte
	var created, updated string
	err := sc.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Text, &blob, &created, &updated)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classify("scan chunk", err)
	}
	chunk.Embedding = decodeEmbedding(blob)
	chunk.CreatedAt = parseTime(created)
	chunk.UpdatedAt = parseTime(updated)
	return &chunk, nil
}
