package http

import (
	"net/http"
	"strings"

	"saveyourmoney/internal/core"
	"saveyourmoney/internal/services"
	"saveyourmoney/internal/storage"
)

const expenseNotFound = "Gasto não encontrado."

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	filter := storage.ExpenseFilter{
		Month: queryInt(r, "mes"),
		Year:  queryInt(r, "ano"),
	}
	expenses, err := s.finance.ListExpenses(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, expenseNotFound)
		return
	}

	recurring := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("recorrente")))
	if recurring == "sim" || recurring == "nao" {
		wantRecurring := recurring == "sim"
		filtered := expenses[:0]
		for _, e := range expenses {
			if (e.RecurrenceID != nil) == wantRecurring {
				filtered = append(filtered, e)
			}
		}
		expenses = filtered
	}

	if expenses == nil {
		expenses = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	data := decodeBody(r)

	expense, err := expenseCreateFromPayload(data)
	if err != nil {
		writeInvalidData(w, r, err, "gasto", expenseNotFound)
		return
	}
	if err := expense.Validate(); err != nil {
		writeInvalidData(w, r, err, "gasto", expenseNotFound)
		return
	}
	if err := s.finance.EnsureCategory(r.Context(), expense.CategoryID); err != nil {
		writeInvalidData(w, r, err, "gasto", expenseNotFound)
		return
	}
	recurring, err := recurringInputFromPayload(data)
	if err != nil {
		writeInvalidData(w, r, err, "gasto", expenseNotFound)
		return
	}

	// Installment errors answer with their own messages, no prefix.
	installments, err := installmentsInputFromPayload(data)
	if err != nil {
		writeError(w, r, err, expenseNotFound)
		return
	}

	created, _, err := s.finance.CreateExpense(r.Context(), services.CreateExpenseInput{
		Expense:      expense,
		Recurring:    recurring,
		Installments: installments,
	})
	if err != nil {
		writeError(w, r, err, expenseNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, expenseNotFound)
		return
	}
	existing, err := s.finance.GetExpense(r.Context(), id)
	if err != nil {
		writeError(w, r, err, expenseNotFound)
		return
	}

	data := decodeBody(r)
	scope, err := services.ParseEditScope(bodyScope(data))
	if err != nil {
		writeInvalidData(w, r, err, "gasto", expenseNotFound)
		return
	}
	expense, err := expenseUpdateFromPayload(data, existing)
	if err != nil {
		writeInvalidData(w, r, err, "gasto", expenseNotFound)
		return
	}

	updated, err := s.finance.UpdateExpense(r.Context(), expense, scope)
	if err != nil {
		writeInvalidData(w, r, err, "gasto", expenseNotFound)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, expenseNotFound)
		return
	}
	scope, err := services.ParseCancelScope(bodyScope(decodeBody(r)))
	if err != nil {
		writeError(w, r, err, expenseNotFound)
		return
	}

	cascaded, err := s.finance.DeleteExpense(r.Context(), id, scope)
	if err != nil {
		writeError(w, r, err, expenseNotFound)
		return
	}
	if cascaded {
		writeMessage(w, http.StatusOK, "Recorrência cancelada com sucesso.")
		return
	}
	writeMessage(w, http.StatusOK, "Gasto excluído com sucesso.")
}

func bodyScope(data map[string]any) string {
	if v, ok := data["scope"].(string); ok {
		return v
	}
	return ""
}
