package http

import (
	"net/http"

	"saveyourmoney/internal/core"
	"saveyourmoney/internal/storage"
)

const incomeNotFound = "Entrada não encontrada."

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	incomes, err := s.finance.ListIncomes(r.Context(), storage.IncomeFilter{
		Month: queryInt(r, "mes"),
		Year:  queryInt(r, "ano"),
	})
	if err != nil {
		writeError(w, r, err, incomeNotFound)
		return
	}
	if incomes == nil {
		incomes = []core.Income{}
	}
	writeJSON(w, http.StatusOK, incomes)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	income, err := incomeCreateFromPayload(decodeBody(r))
	if err != nil {
		writeInvalidData(w, r, err, "entrada", incomeNotFound)
		return
	}
	created, err := s.finance.CreateIncome(r.Context(), income)
	if err != nil {
		writeInvalidData(w, r, err, "entrada", incomeNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, incomeNotFound)
		return
	}
	existing, err := s.finance.GetIncome(r.Context(), id)
	if err != nil {
		writeError(w, r, err, incomeNotFound)
		return
	}
	income, err := incomeUpdateFromPayload(decodeBody(r), existing)
	if err != nil {
		writeInvalidData(w, r, err, "entrada", incomeNotFound)
		return
	}
	updated, err := s.finance.UpdateIncome(r.Context(), income)
	if err != nil {
		writeInvalidData(w, r, err, "entrada", incomeNotFound)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, incomeNotFound)
		return
	}
	if err := s.finance.DeleteIncome(r.Context(), id); err != nil {
		writeError(w, r, err, incomeNotFound)
		return
	}
	writeMessage(w, http.StatusOK, "Entrada excluída com sucesso.")
}
