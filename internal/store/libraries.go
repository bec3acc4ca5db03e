package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
)

// CreateLibrary inserts a new library and returns it with a generated id
// and timestamps.
func (s *Store) CreateLibrary(ctx context.Context, fields LibraryFields) (*Library, error) {
	now := time.Now().UTC()
	lib := &Library{
		ID:             uuid.NewString(),
		Name:           fields.Name,
		WrittenBy:      fields.WrittenBy,
		Description:    fields.Description,
		ProductionDate: fields.ProductionDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO libraries (id, name, written_by, description, production_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		lib.ID, lib.Name, lib.WrittenBy, lib.Description, lib.ProductionDate,
		formatTime(now), formatTime(now))
	if err != nil {
		return nil, classify("create library", err)
	}
	return lib, nil
}

// GetLibrary returns the library with the given id, or ErrNotFound.
func (s *Store) GetLibrary(ctx context.Context, id string) (*Library, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, written_by, description, production_date, created_at, updated_at
		 FROM libraries WHERE id = ?`, id)
	return scanLibrary(row)
}

// ListLibraries returns libraries ordered by creation time with skip/limit
// pagination.
func (s *Store) ListLibraries(ctx context.Context, skip, limit int) ([]Library, error) {
	skip, limit = clampPage(skip, limit)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, written_by, description, production_date, created_at, updated_at
		 FROM libraries ORDER BY created_at, id LIMIT ? OFFSET ?`, limit, skip)
	if err != nil {
		return nil, classify("list libraries", err)
	}
	defer rows.Close()

	libraries := []Library{}
	for rows.Next() {
		lib, err := scanLibrary(rows)
		if err != nil {
			return nil, err
		}
		libraries = append(libraries, *lib)
	}
	return libraries, classify("list libraries", rows.Err())
}

// UpdateLibrary replaces the caller-settable fields of a library.
// Returns the updated row, or ErrNotFound.
func (s *Store) UpdateLibrary(ctx context.Context, id string, fields LibraryFields) (*Library, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE libraries SET name = ?, written_by = ?, description = ?, production_date = ?, updated_at = ?
		 WHERE id = ?`,
		fields.Name, fields.WrittenBy, fields.Description, fields.ProductionDate,
		formatTime(time.Now()), id)
	if err != nil {
		return nil, classify("update library", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetLibrary(ctx, id)
}

// DeleteLibrary removes a library, cascading to its documents and chunks.
// The ids of the removed chunks are collected before the cascade and
// returned so indices can be updated. Returns ErrNotFound for a missing id.
func (s *Store) DeleteLibrary(ctx context.Context, id string) (chunkIDs []string, err error) {
	err = s.withTx(ctx, "delete library", func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM libraries WHERE id = ?`, id).Scan(&exists); err != nil {
			return classify("delete library", err)
		}
		if exists == 0 {
			return ErrNotFound
		}
		chunkIDs, err = chunkIDsByLibrary(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM libraries WHERE id = ?`, id); err != nil {
			return classify("delete library", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return chunkIDs, nil
}

// scanner abstracts sql.Row and sql.Rows for the shared scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func scanLibrary(sc scanner) (*Library, error) {
	var lib Library
	var created, updated string
	err := sc.Scan(&lib.ID, &lib.Name, &lib.WrittenBy, &lib.Description,
		&lib.ProductionDate, &created, &updated)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classify("scan library", err)
	}
	lib.CreatedAt = parseTime(created)
	lib.UpdatedAt = parseTime(updated)
	return &lib, nil
}
