// Package store persists the three-level corpus (library → document →
// chunk) in SQLite. Foreign keys cascade downward, and every mutation that
// can remove chunks reports the removed chunk ids so the index layer can
// stay consistent.
package store

import (
	"errors"
	"time"
)

// ErrNotFound indicates a row that does not exist. Match with errors.Is.
var ErrNotFound = errors.New("not found")

// Library is the top-level corpus entity.
type Library struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	WrittenBy      string    `json:"written_by"`
	Description    string    `json:"description"`
	ProductionDate string    `json:"production_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LibraryFields carries the caller-settable library attributes.
type LibraryFields struct {
	Name           string `json:"name"`
	WrittenBy      string `json:"written_by"`
	Description    string `json:"description"`
	ProductionDate string `json:"production_date"`
}

// Document groups chunks inside a library.
type Document struct {
	ID        string    `json:"id"`
	LibraryID string    `json:"library_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Chunk is a unit of text with its embedding.
type Chunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"embedding"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Pagination bounds for list queries.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// clampPage normalizes skip/limit: negative skip becomes 0, non-positive
// limit becomes DefaultLimit, and limit is capped at MaxLimit.
func clampPage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return skip, limit
}
