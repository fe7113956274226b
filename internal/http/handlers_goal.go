package http

import (
	"net/http"

	"saveyourmoney/internal/core"
	"saveyourmoney/internal/storage"
)

const goalNotFound = "Meta não encontrada."

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.finance.ListGoals(r.Context(), storage.GoalFilter{
		Month: queryInt(r, "mes"),
		Year:  queryInt(r, "ano"),
	})
	if err != nil {
		writeError(w, r, err, goalNotFound)
		return
	}
	if goals == nil {
		goals = []core.Goal{}
	}
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := goalCreateFromPayload(decodeBody(r))
	if err != nil {
		writeInvalidData(w, r, err, "meta", goalNotFound)
		return
	}
	created, err := s.finance.CreateGoal(r.Context(), goal)
	if err != nil {
		writeInvalidData(w, r, err, "meta", goalNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, goalNotFound)
		return
	}
	existing, err := s.finance.GetGoal(r.Context(), id)
	if err != nil {
		writeError(w, r, err, goalNotFound)
		return
	}
	goal, err := goalUpdateFromPayload(decodeBody(r), existing)
	if err != nil {
		writeInvalidData(w, r, err, "meta", goalNotFound)
		return
	}
	updated, err := s.finance.UpdateGoal(r.Context(), goal)
	if err != nil {
		writeInvalidData(w, r, err, "meta", goalNotFound)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, goalNotFound)
		return
	}
	if _, err := s.finance.GetGoal(r.Context(), id); err != nil {
		writeError(w, r, err, goalNotFound)
		return
	}
	if err := s.finance.DeleteGoal(r.Context(), id); err != nil {
		writeError(w, r, err, goalNotFound)
		return
	}
	writeMessage(w, http.StatusOK, "Meta excluída com sucesso.")
}
