// Package services holds the business operations layered on top of storage:
// recurrence expansion, monthly report aggregation, backup export/restore,
// and the finance service orchestrating CRUD plus events.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"saveyourmoney/internal/core"
	"saveyourmoney/internal/storage"
)

// RecurrenceService expands recurrence rules into concrete records.
type RecurrenceService struct {
	expenses *storage.ExpenseRepo
	incomes  *storage.IncomeRepo
}

func NewRecurrenceService(expenses *storage.ExpenseRepo, incomes *storage.IncomeRepo) *RecurrenceService {
	return &RecurrenceService{expenses: expenses, incomes: incomes}
}

// Apply expands the rule into one persisted record per competence and returns
// the created records in competence order. One of the two slices is always
// empty depending on the rule's kind.
//
// Records are inserted one by one, not in a transaction: a failure partway
// leaves the earlier records persisted. Generated expenses do not carry the
// rule's id; linkage only exists for the expense created together with an
// inline rule.
func (s *RecurrenceService) Apply(ctx context.Context, rec core.Recurrence) ([]core.Expense, []core.Income, error) {
	if err := rec.Validate(); err != nil {
		return nil, nil, err
	}

	competences, err := core.GenerateCompetences(rec.StartMonth, rec.StartYear, rec.IntervalMonths, rec.Occurrences)
	if err != nil {
		return nil, nil, err
	}

	var (
		expenses []core.Expense
		incomes  []core.Income
	)
	for _, comp := range competences {
		switch rec.Kind {
		case core.KindExpense:
			method := core.PaymentDebit
			if rec.PaymentMethod != nil && *rec.PaymentMethod != "" {
				method = *rec.PaymentMethod
			}
			created, err := s.expenses.Add(ctx, core.Expense{
				Name:          rec.Name,
				Value:         rec.Value,
				Month:         comp.Month,
				Year:          comp.Year,
				CategoryID:    rec.CategoryID,
				PaymentMethod: method,
				Notes:         rec.Notes,
			})
			if err != nil {
				return expenses, incomes, fmt.Errorf("persist generated expense: %w", err)
			}
			expenses = append(expenses, created)
		case core.KindIncome:
			confirmed := true
			if rec.Confirmed != nil {
				confirmed = *rec.Confirmed
			}
			created, err := s.incomes.Add(ctx, core.Income{
				Name:      rec.Name,
				Value:     rec.Value,
				Month:     comp.Month,
				Year:      comp.Year,
				Confirmed: confirmed,
				Notes:     rec.Notes,
			})
			if err != nil {
				return expenses, incomes, fmt.Errorf("persist generated income: %w", err)
			}
			incomes = append(incomes, created)
		}
	}

	slog.InfoContext(ctx, "Recurrence applied",
		"recurrence_id", rec.ID,
		"kind", rec.Kind,
		"expenses", len(expenses),
		"incomes", len(incomes))

	return expenses, incomes, nil
}
