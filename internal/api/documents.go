package api

import (
	"fmt"
	"net/http"
)

type documentCreateRequest struct {
	Name      string `json:"name"`
	LibraryID string `json:"library_id"`
}

type documentUpdateRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req documentCreateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	doc, err := s.svc.CreateDocument(r.Context(), req.LibraryID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.GetDocument(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	var req documentUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	doc, err := s.svc.UpdateDocument(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.DeleteDocument(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("deleted 1 document and %d chunks", result.ChunksDeleted),
	})
}

func (s *Server) handleListDocumentsByLibrary(w http.ResponseWriter, r *http.Request) {
	skip, limit := pageParams(r)
	documents, err := s.svc.ListDocumentsByLibrary(r.Context(), r.PathValue("lib_id"), skip, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documents)
}

func (s *Server) handleDeleteDocumentsByLibrary(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.DeleteDocumentsByLibrary(r.Context(), r.PathValue("lib_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("deleted %d documents and %d chunks", result.DocumentsDeleted, result.ChunksDeleted),
	})
}
