package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"saveyourmoney/internal/core"
)

type InstallmentRepo struct {
	db *sql.DB
}

// InstallmentFilter narrows List. Nil fields match everything.
type InstallmentFilter struct {
	Month  *int
	Year   *int
	CardID *int64
}

const installmentCols = `id, card_id, expense_name, installment_number, total_installments, value, month, year, status`

func (r *InstallmentRepo) Add(ctx context.Context, p core.Installment) (core.Installment, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO installments (card_id, expense_name, installment_number, total_installments, value, month, year, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.CardID, p.ExpenseName, p.InstallmentNumber, p.TotalInstallments, p.Value, p.Month, p.Year, p.Status)
	if err != nil {
		return core.Installment{}, fmt.Errorf("insert installment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Installment{}, fmt.Errorf("installment insert id: %w", err)
	}
	p.ID = id
	return p, nil
}

func (r *InstallmentRepo) Get(ctx context.Context, id int64) (core.Installment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+installmentCols+` FROM installments WHERE id = ?`, id)
	p, err := scanInstallment(row)
	if err == sql.ErrNoRows {
		return core.Installment{}, core.ErrNotFound
	}
	if err != nil {
		return core.Installment{}, fmt.Errorf("get installment: %w", err)
	}
	return p, nil
}

func (r *InstallmentRepo) List(ctx context.Context, f InstallmentFilter) ([]core.Installment, error) {
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
	if f.CardID != nil {
		conds = append(conds, "card_id = ?")
		args = append(args, *f.CardID)
	}

	query := `SELECT ` + installmentCols + ` FROM installments`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list installments: %w", err)
	}
	defer rows.Close()

	var out []core.Installment
	for rows.Next() {
		p, err := scanInstallment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan installment: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *InstallmentRepo) Update(ctx context.Context, p core.Installment) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE installments SET card_id = ?, expense_name = ?, installment_number = ?, total_installments = ?, value = ?, month = ?, year = ?, status = ?
		 WHERE id = ?`,
		p.CardID, p.ExpenseName, p.InstallmentNumber, p.TotalInstallments, p.Value, p.Month, p.Year, p.Status, p.ID)
	if err != nil {
		return fmt.Errorf("update installment: %w", err)
	}
	return affected(res)
}

func (r *InstallmentRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM installments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete installment: %w", err)
	}
	return affected(res)
}

// DeleteByCard removes every installment charged against the card.
func (r *InstallmentRepo) DeleteByCard(ctx context.Context, cardID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM installments WHERE card_id = ?`, cardID)
	if err != nil {
		return 0, fmt.Errorf("delete installments by card: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// ExistsWithCard reports whether any installment references the card.
func (r *InstallmentRepo) ExistsWithCard(ctx context.Context, cardID int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM installments WHERE card_id = ? LIMIT 1`, cardID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check installments with card: %w", err)
	}
	return true, nil
}

func scanInstallment(row rowScanner) (core.Installment, error) {
	var p core.Installment
	if err := row.Scan(&p.ID, &p.CardID, &p.ExpenseName, &p.InstallmentNumber, &p.TotalInstallments, &p.Value, &p.Month, &p.Year, &p.Status); err != nil {
		return core.Installment{}, err
	}
	return p, nil
}
