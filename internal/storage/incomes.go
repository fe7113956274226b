package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"saveyourmoney/internal/core"
)

type IncomeRepo struct {
	db *sql.DB
}

// IncomeFilter narrows List. Nil fields match everything.
type IncomeFilter struct {
	Month *int
	Year  *int
}

const incomeCols = `id, name, value, month, year, confirmed, notes`

func (r *IncomeRepo) Add(ctx context.Context, in core.Income) (core.Income, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO incomes (name, value, month, year, confirmed, notes) VALUES (?, ?, ?, ?, ?, ?)`,
		in.Name, in.Value, in.Month, in.Year, boolInt(in.Confirmed), nullStr(in.Notes))
	if err != nil {
		return core.Income{}, fmt.Errorf("insert income: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Income{}, fmt.Errorf("income insert id: %w", err)
	}
	in.ID = id
	return in, nil
}

func (r *IncomeRepo) Get(ctx context.Context, id int64) (core.Income, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+incomeCols+` FROM incomes WHERE id = ?`, id)
	in, err := scanIncome(row)
	if err == sql.ErrNoRows {
		return core.Income{}, core.ErrNotFound
	}
	if err != nil {
		return core.Income{}, fmt.Errorf("get income: %w", err)
	}
	return in, nil
}

func (r *IncomeRepo) List(ctx context.Context, f IncomeFilter) ([]core.Income, error) {
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

	query := `SELECT ` + incomeCols + ` FROM incomes`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var out []core.Income
	for rows.Next() {
		in, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (r *IncomeRepo) Update(ctx context.Context, in core.Income) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE incomes SET name = ?, value = ?, month = ?, year = ?, confirmed = ?, notes = ? WHERE id = ?`,
		in.Name, in.Value, in.Month, in.Year, boolInt(in.Confirmed), nullStr(in.Notes), in.ID)
	if err != nil {
		return fmt.Errorf("update income: %w", err)
	}
	return affected(res)
}

func (r *IncomeRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM incomes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	return affected(res)
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func scanIncome(row rowScanner) (core.Income, error) {
	var (
		in        core.Income
		confirmed int64
		notes     sql.NullString
	)
	if err := row.Scan(&in.ID, &in.Name, &in.Value, &in.Month, &in.Year, &confirmed, &notes); err != nil {
		return core.Income{}, err
	}
	in.Confirmed = confirmed != 0
	in.Notes = strPtr(notes)
	return in, nil
}
