package http

import (
	"net/http"

	"saveyourmoney/internal/core"
)

const categoryNotFound = "Categoria não encontrada."

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.finance.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err, categoryNotFound)
		return
	}
	if categories == nil {
		categories = []core.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	category, err := categoryCreateFromPayload(decodeBody(r))
	if err != nil {
		writeError(w, r, err, categoryNotFound)
		return
	}
	created, err := s.finance.CreateCategory(r.Context(), category)
	if err != nil {
		writeError(w, r, err, categoryNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, categoryNotFound)
		return
	}
	existing, err := s.finance.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, r, err, categoryNotFound)
		return
	}
	category, err := categoryUpdateFromPayload(decodeBody(r), existing)
	if err != nil {
		writeError(w, r, err, categoryNotFound)
		return
	}
	updated, err := s.finance.UpdateCategory(r.Context(), category)
	if err != nil {
		writeError(w, r, err, categoryNotFound)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, categoryNotFound)
		return
	}
	if err := s.finance.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, r, err, categoryNotFound)
		return
	}
	writeMessage(w, http.StatusOK, "Categoria excluída com sucesso.")
}
