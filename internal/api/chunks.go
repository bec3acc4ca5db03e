package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/corpusdb/corpusdb/internal/errors"
)

type chunkCreateRequest struct {
	Text       string `json:"text"`
	DocumentID string `json:"document_id"`
}

type chunkUpdateRequest struct {
	Text string `json:"text"`
}

const defaultSearchK = 5

func (s *Server) handleCreateChunk(w http.ResponseWriter, r *http.Request) {
	var req chunkCreateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	chunk, err := s.svc.CreateChunk(r.Context(), req.DocumentID, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chunk)
}

func (s *Server) handleCreateRandomChunk(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if strings.TrimSpace(text) == "" {
		writeError(w, errors.New(errors.ErrCodeEmptyText, "text must not be empty", nil))
		return
	}
	if _, err := s.svc.CreateRandomChunk(r.Context(), text); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Added")
}

func (s *Server) handleGetChunk(w http.ResponseWriter, r *http.Request) {
	chunk, err := s.svc.GetChunk(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chunk)
}

func (s *Server) handleUpdateChunk(w http.ResponseWriter, r *http.Request) {
	var req chunkUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	chunk, err := s.svc.UpdateChunk(r.Context(), r.PathValue("id"), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chunk)
}

func (s *Server) handleDeleteChunk(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.svc.DeleteChunk(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("chunk %s deleted", id),
	})
}

func (s *Server) handleListChunksByDocument(w http.ResponseWriter, r *http.Request) {
	skip, limit := pageParams(r)
	chunks, err := s.svc.ListChunksByDocument(r.Context(), r.PathValue("doc_id"), skip, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chunks)
}

func (s *Server) handleDeleteChunksByDocument(w http.ResponseWriter, r *http.Request) {
	n, err := s.svc.DeleteChunksByDocument(r.Context(), r.PathValue("doc_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("deleted %d chunks", n),
	})
}

// searchResponse groups, per index, the texts of the nearest chunks.
type searchResponse struct {
	ListOfChunks map[string][]string `json:"list_of_chunks"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("query")

	k := defaultSearchK
	if v := q.Get("k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, errors.Newf(errors.ErrCodeInvalidQuery, "k must be an integer, got %q", v))
			return
		}
		k = n
	}

	var indexNames []string
	if v := q.Get("index_types"); v != "" {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				indexNames = append(indexNames, name)
			}
		}
	}

	results, err := s.svc.Search(r.Context(), query, k, indexNames)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := searchResponse{ListOfChunks: make(map[string][]string, len(results))}
	for name, hits := range results {
		texts := make([]string, len(hits))
		for i, hit := range hits {
			texts[i] = hit.Text
		}
		resp.ListOfChunks[name] = texts
	}
	writeJSON(w, http.StatusOK, resp)
}
