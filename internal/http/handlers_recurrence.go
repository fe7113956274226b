package http

import (
	"net/http"

	"saveyourmoney/internal/core"
)

const recurrenceNotFound = "Recorrência não encontrada."

func (s *Server) handleListRecurrences(w http.ResponseWriter, r *http.Request) {
	recurrences, err := s.finance.ListRecurrences(r.Context())
	if err != nil {
		writeError(w, r, err, recurrenceNotFound)
		return
	}
	if recurrences == nil {
		recurrences = []core.Recurrence{}
	}
	writeJSON(w, http.StatusOK, recurrences)
}

func (s *Server) handleCreateRecurrence(w http.ResponseWriter, r *http.Request) {
	rec, err := recurrenceCreateFromPayload(decodeBody(r))
	if err != nil {
		writeInvalidData(w, r, err, "recorrência", recurrenceNotFound)
		return
	}
	created, err := s.finance.CreateRecurrence(r.Context(), rec)
	if err != nil {
		writeInvalidData(w, r, err, "recorrência", recurrenceNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateRecurrence(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, recurrenceNotFound)
		return
	}
	existing, err := s.finance.GetRecurrence(r.Context(), id)
	if err != nil {
		writeError(w, r, err, recurrenceNotFound)
		return
	}
	rec, err := recurrenceUpdateFromPayload(decodeBody(r), existing)
	if err != nil {
		writeInvalidData(w, r, err, "recorrência", recurrenceNotFound)
		return
	}
	updated, err := s.finance.UpdateRecurrence(r.Context(), rec)
	if err != nil {
		writeInvalidData(w, r, err, "recorrência", recurrenceNotFound)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteRecurrence(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, recurrenceNotFound)
		return
	}
	if _, err := s.finance.GetRecurrence(r.Context(), id); err != nil {
		writeError(w, r, err, recurrenceNotFound)
		return
	}
	if err := s.finance.DeleteRecurrence(r.Context(), id); err != nil {
		writeError(w, r, err, recurrenceNotFound)
		return
	}
	writeMessage(w, http.StatusOK, "Recorrência excluída com sucesso.")
}

func (s *Server) handleApplyRecurrence(w http.ResponseWriter, r *http.Request) {
	data := decodeBody(r)
	id, err := parseOptionalID(pick(data, "id"), "ID da recorrência")
	if err != nil || id == nil {
		writeErrorMessage(w, http.StatusBadRequest, "ID da recorrência é obrigatório.")
		return
	}

	expenses, incomes, err := s.finance.ApplyRecurrence(r.Context(), *id)
	if err != nil {
		writeError(w, r, err, recurrenceNotFound)
		return
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}
	if incomes == nil {
		incomes = []core.Income{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"expenses": expenses,
		"incomes":  incomes,
	})
}
