package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"saveyourmoney/internal/core"
)

type GoalRepo struct {
	db *sql.DB
}

// GoalFilter narrows List. Nil fields match everything.
type GoalFilter struct {
	Month *int
	Year  *int
}

const goalCols = `id, name, limit_value, month, year, category_id`

func (r *GoalRepo) Add(ctx context.Context, g core.Goal) (core.Goal, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (name, limit_value, month, year, category_id) VALUES (?, ?, ?, ?, ?)`,
		g.Name, g.LimitValue, g.Month, g.Year, nullInt(g.CategoryID))
	if err != nil {
		return core.Goal{}, fmt.Errorf("insert goal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Goal{}, fmt.Errorf("goal insert id: %w", err)
	}
	g.ID = id
	return g, nil
}

func (r *GoalRepo) Get(ctx context.Context, id int64) (core.Goal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+goalCols+` FROM goals WHERE id = ?`, id)
	g, err := scanGoal(row)
	if err == sql.ErrNoRows {
		return core.Goal{}, core.ErrNotFound
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

func (r *GoalRepo) List(ctx context.Context, f GoalFilter) ([]core.Goal, error) {
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

	query := `SELECT ` + goalCols + ` FROM goals`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *GoalRepo) Update(ctx context.Context, g core.Goal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE goals SET name = ?, limit_value = ?, month = ?, year = ?, category_id = ? WHERE id = ?`,
		g.Name, g.LimitValue, g.Month, g.Year, nullInt(g.CategoryID), g.ID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return affected(res)
}

func (r *GoalRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return affected(res)
}

// ExistsWithCategory reports whether any goal references the category.
func (r *GoalRepo) ExistsWithCategory(ctx context.Context, categoryID int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM goals WHERE category_id = ? LIMIT 1`, categoryID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check goals with category: %w", err)
	}
	return true, nil
}

func scanGoal(row rowScanner) (core.Goal, error) {
	var (
		g     core.Goal
		catID sql.NullInt64
	)
	if err := row.Scan(&g.ID, &g.Name, &g.LimitValue, &g.Month, &g.Year, &catID); err != nil {
		return core.Goal{}, err
	}
	g.CategoryID = intPtr(catID)
	return g, nil
}
