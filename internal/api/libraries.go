package api

import (
	"net/http"

	"github.com/corpusdb/corpusdb/internal/store"
)

func (s *Server) handleCreateLibrary(w http.ResponseWriter, r *http.Request) {
	var fields store.LibraryFields
	if err := decodeBody(r, &fields); err != nil {
		writeError(w, err)
		return
	}
	lib, err := s.svc.CreateLibrary(r.Context(), fields)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, lib)
}

func (s *Server) handleListLibraries(w http.ResponseWriter, r *http.Request) {
	skip, limit := pageParams(r)
	libraries, err := s.svc.ListLibraries(r.Context(), skip, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, libraries)
}

func (s *Server) handleGetLibrary(w http.ResponseWriter, r *http.Request) {
	lib, err := s.svc.GetLibrary(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lib)
}

func (s *Server) handleUpdateLibrary(w http.ResponseWriter, r *http.Request) {
	var fields store.LibraryFields
	if err := decodeBody(r, &fields); err != nil {
		writeError(w, err)
		return
	}
	lib, err := s.svc.UpdateLibrary(r.Context(), r.PathValue("id"), fields)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lib)
}

func (s *Server) handleDeleteLibrary(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteLibrary(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
