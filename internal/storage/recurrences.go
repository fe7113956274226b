package storage

import (
	"context"
	"database/sql"
	"fmt"

	"saveyourmoney/internal/core"
)

type RecurrenceRepo struct {
	db *sql.DB
}

const recurrenceCols = `id, kind, name, value, start_month, start_year, interval_months, occurrences, category_id, payment_method, confirmed, notes`

func (r *RecurrenceRepo) Add(ctx context.Context, rec core.Recurrence) (core.Recurrence, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO recurrences (kind, name, value, start_month, start_year, interval_months, occurrences, category_id, payment_method, confirmed, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Kind, rec.Name, rec.Value, rec.StartMonth, rec.StartYear, rec.IntervalMonths, rec.Occurrences,
		nullInt(rec.CategoryID), nullStr(rec.PaymentMethod), nullBoolInt(rec.Confirmed), nullStr(rec.Notes))
	if err != nil {
		return core.Recurrence{}, fmt.Errorf("insert recurrence: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Recurrence{}, fmt.Errorf("recurrence insert id: %w", err)
	}
	rec.ID = id
	return rec, nil
}

func (r *RecurrenceRepo) Get(ctx context.Context, id int64) (core.Recurrence, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recurrenceCols+` FROM recurrences WHERE id = ?`, id)
	rec, err := scanRecurrence(row)
	if err == sql.ErrNoRows {
		return core.Recurrence{}, core.ErrNotFound
	}
	if err != nil {
		return core.Recurrence{}, fmt.Errorf("get recurrence: %w", err)
	}
	return rec, nil
}

func (r *RecurrenceRepo) List(ctx context.Context) ([]core.Recurrence, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recurrenceCols+` FROM recurrences ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list recurrences: %w", err)
	}
	defer rows.Close()

	var out []core.Recurrence
	for rows.Next() {
		rec, err := scanRecurrence(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurrence: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *RecurrenceRepo) Update(ctx context.Context, rec core.Recurrence) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recurrences SET kind = ?, name = ?, value = ?, start_month = ?, start_year = ?, interval_months = ?, occurrences = ?, category_id = ?, payment_method = ?, confirmed = ?, notes = ?
		 WHERE id = ?`,
		rec.Kind, rec.Name, rec.Value, rec.StartMonth, rec.StartYear, rec.IntervalMonths, rec.Occurrences,
		nullInt(rec.CategoryID), nullStr(rec.PaymentMethod), nullBoolInt(rec.Confirmed), nullStr(rec.Notes), rec.ID)
	if err != nil {
		return fmt.Errorf("update recurrence: %w", err)
	}
	return affected(res)
}

func (r *RecurrenceRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recurrences WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recurrence: %w", err)
	}
	return affected(res)
}

// ExistsWithCategory reports whether any recurrence references the category.
func (r *RecurrenceRepo) ExistsWithCategory(ctx context.Context, categoryID int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM recurrences WHERE category_id = ? LIMIT 1`, categoryID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check recurrences with category: %w", err)
	}
	return true, nil
}

func scanRecurrence(row rowScanner) (core.Recurrence, error) {
	var (
		rec       core.Recurrence
		catID     sql.NullInt64
		method    sql.NullString
		confirmed sql.NullInt64
		notes     sql.NullString
	)
	if err := row.Scan(&rec.ID, &rec.Kind, &rec.Name, &rec.Value, &rec.StartMonth, &rec.StartYear,
		&rec.IntervalMonths, &rec.Occurrences, &catID, &method, &confirmed, &notes); err != nil {
		return core.Recurrence{}, err
	}
	rec.CategoryID = intPtr(catID)
	rec.PaymentMethod = strPtr(method)
	rec.Confirmed = boolPtr(confirmed)
	rec.Notes = strPtr(notes)
	return rec, nil
}
