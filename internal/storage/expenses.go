package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"saveyourmoney/internal/core"
)

type ExpenseRepo struct {
	db *sql.DB
}

// ExpenseFilter narrows List. Nil fields match everything.
type ExpenseFilter struct {
	Month        *int
	Year         *int
	CategoryID   *int64
	RecurrenceID *int64
}

const expenseCols = `id, name, value, month, year, category_id, recurrence_id, payment_method, notes`

func (r *ExpenseRepo) Add(ctx context.Context, e core.Expense) (core.Expense, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (name, value, month, year, category_id, recurrence_id, payment_method, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Name, e.Value, e.Month, e.Year, nullInt(e.CategoryID), nullInt(e.RecurrenceID), e.PaymentMethod, nullStr(e.Notes))
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense insert id: %w", err)
	}
	e.ID = id
	return e, nil
}

func (r *ExpenseRepo) Get(ctx context.Context, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+expenseCols+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func (r *ExpenseRepo) List(ctx context.Context, f ExpenseFilter) ([]core.Expense, error) {
	var (
		conds []string
		args  []any
	)
	if f.Month != nil {
		conds = append(conds, "month = ?")
		args = append(args, *f.Month)
	}
	if f.Year != nil {
		conds = append(conds, "year = ?")
		args = append(args, *f.Year)
	}
	if f.CategoryID != nil {
		conds = append(conds, "category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.RecurrenceID != nil {
		conds = append(conds, "recurrence_id = ?")
		args = append(args, *f.RecurrenceID)
	}

	query := `SELECT ` + expenseCols + ` FROM expenses`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *ExpenseRepo) Update(ctx context.Context, e core.Expense) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET name = ?, value = ?, month = ?, year = ?, category_id = ?, recurrence_id = ?, payment_method = ?, notes = ?
		 WHERE id = ?`,
		e.Name, e.Value, e.Month, e.Year, nullInt(e.CategoryID), nullInt(e.RecurrenceID), e.PaymentMethod, nullStr(e.Notes), e.ID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return affected(res)
}

func (r *ExpenseRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return affected(res)
}

// DeleteByRecurrence removes generated expenses of one rule. The from
// competence, when set, keeps records that precede it.
func (r *ExpenseRepo) DeleteByRecurrence(ctx context.Context, recurrenceID int64, from *core.Competence) (int64, error) {
	query := `DELETE FROM expenses WHERE recurrence_id = ?`
	args := []any{recurrenceID}
	if from != nil {
		query += ` AND (year > ? OR (year = ? AND month >= ?))`
		args = append(args, from.Year, from.Year, from.Month)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete expenses by recurrence: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// ExistsWithCategory reports whether any expense references the category.
func (r *ExpenseRepo) ExistsWithCategory(ctx context.Context, categoryID int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM expenses WHERE category_id = ? LIMIT 1`, categoryID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check expenses with category: %w", err)
	}
	return true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e      core.Expense
		catID  sql.NullInt64
		recID  sql.NullInt64
		method sql.NullString
		notes  sql.NullString
	)
	if err := row.Scan(&e.ID, &e.Name, &e.Value, &e.Month, &e.Year, &catID, &recID, &method, &notes); err != nil {
		return core.Expense{}, err
	}
	e.CategoryID = intPtr(catID)
	e.RecurrenceID = intPtr(recID)
	if method.Valid {
		e.PaymentMethod = method.String
	}
	e.Notes = strPtr(notes)
	return e, nil
}
