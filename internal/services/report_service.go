package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"saveyourmoney/internal/core"
	"saveyourmoney/internal/storage"
)

// CategoryTotal is one by_category entry of the month report.
type CategoryTotal struct {
	Name  string
	Value float64
}

// CategoryBreakdown serializes as a JSON object whose keys appear in
// first-encounter order while folding over the month's expenses. A plain map
// would marshal its keys sorted, which is not what consumers see today.
type CategoryBreakdown []CategoryTotal

func (b CategoryBreakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(entry.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// GoalStatus reports one goal's progress within the month.
type GoalStatus struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	LimitValue float64 `json:"limit_value"`
	Spent      float64 `json:"spent"`
	Remaining  float64 `json:"remaining"`
}

// MonthReport is the aggregated view of one competence.
type MonthReport struct {
	Month         int               `json:"month"`
	Year          int               `json:"year"`
	TotalExpenses float64           `json:"total_expenses"`
	TotalIncomes  float64           `json:"total_incomes"`
	Balance       float64           `json:"balance"`
	ByCategory    CategoryBreakdown `json:"by_category"`
	Goals         []GoalStatus      `json:"goals"`
}

// ReportService aggregates expenses, incomes, goals, and categories into
// monthly reports.
type ReportService struct {
	expenses   *storage.ExpenseRepo
	incomes    *storage.IncomeRepo
	categories *storage.CategoryRepo
	goals      *storage.GoalRepo
}

func NewReportService(expenses *storage.ExpenseRepo, incomes *storage.IncomeRepo, categories *storage.CategoryRepo, goals *storage.GoalRepo) *ReportService {
	return &ReportService{
		expenses:   expenses,
		incomes:    incomes,
		categories: categories,
		goals:      goals,
	}
}

// BuildMonthReport computes totals, the per-category breakdown, and goal
// progress for one competence. Sums run at full float precision; rounding to
// 2 digits happens once per output field. Missing data degrades to zero
// totals and empty collections.
func (s *ReportService) BuildMonthReport(ctx context.Context, month, year int) (MonthReport, error) {
	expenses, err := s.expenses.List(ctx, storage.ExpenseFilter{Month: &month, Year: &year})
	if err != nil {
		return MonthReport{}, fmt.Errorf("list expenses for report: %w", err)
	}
	incomes, err := s.incomes.List(ctx, storage.IncomeFilter{Month: &month, Year: &year})
	if err != nil {
		return MonthReport{}, fmt.Errorf("list incomes for report: %w", err)
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return MonthReport{}, fmt.Errorf("list categories for report: %w", err)
	}

	names := make(map[int64]string, len(categories))
	for _, cat := range categories {
		names[cat.ID] = cat.Name
	}

	var totalExpenses, totalIncomes float64
	for _, e := range expenses {
		totalExpenses += e.Value
	}
	for _, in := range incomes {
		totalIncomes += in.Value
	}

	byCategory := CategoryBreakdown{}
	index := map[string]int{}
	for _, e := range expenses {
		label := "Sem categoria"
		if e.CategoryID != nil {
			if name, ok := names[*e.CategoryID]; ok {
				label = name
			}
		}
		if i, ok := index[label]; ok {
			byCategory[i].Value += e.Value
		} else {
			index[label] = len(byCategory)
			byCategory = append(byCategory, CategoryTotal{Name: label, Value: e.Value})
		}
	}

	goals, err := s.goals.List(ctx, storage.GoalFilter{Month: &month, Year: &year})
	if err != nil {
		return MonthReport{}, fmt.Errorf("list goals for report: %w", err)
	}

	goalStatus := make([]GoalStatus, 0, len(goals))
	for _, goal := range goals {
		var spent float64
		if goal.CategoryID != nil {
			for _, e := range expenses {
				if e.CategoryID != nil && *e.CategoryID == *goal.CategoryID {
					spent += e.Value
				}
			}
		} else {
			// A goal without a category caps the whole month.
			spent = totalExpenses
		}
		goalStatus = append(goalStatus, GoalStatus{
			ID:         goal.ID,
			Name:       goal.Name,
			LimitValue: goal.LimitValue,
			Spent:      core.Round2(spent),
			Remaining:  core.Round2(goal.LimitValue - spent),
		})
	}

	return MonthReport{
		Month:         month,
		Year:          year,
		TotalExpenses: core.Round2(totalExpenses),
		TotalIncomes:  core.Round2(totalIncomes),
		Balance:       core.Round2(totalIncomes - totalExpenses),
		ByCategory:    byCategory,
		Goals:         goalStatus,
	}, nil
}
