package storage

import (
	"context"
	"database/sql"
	"fmt"

	"saveyourmoney/internal/core"
)

// Dataset is a full snapshot of the finance tables, used by backup restore.
type Dataset struct {
	Categories   []core.Category
	Expenses     []core.Expense
	Incomes      []core.Income
	Cards        []core.Card
	Installments []core.Installment
	Recurrences  []core.Recurrence
	Goals        []core.Goal
}

// ReplaceAll swaps the entire dataset in one transaction: either every table
// ends up holding exactly the snapshot, or nothing changes. Snapshot ids are
// preserved and the AUTOINCREMENT counters are realigned so new records never
// collide with restored ones.
func (s *Store) ReplaceAll(ctx context.Context, ds Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin restore transaction: %w", err)
	}
	defer tx.Rollback()

	// Children before parents.
	for _, table := range []string{"installments", "expenses", "incomes", "recurrences", "goals", "cards", "categories"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	maxIDs := map[string]int64{}
	track := func(table string, id int64) {
		if id > maxIDs[table] {
			maxIDs[table] = id
		}
	}

	for _, c := range ds.Categories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (id, name, description) VALUES (?, ?, ?)`,
			c.ID, c.Name, nullStr(c.Description)); err != nil {
			return fmt.Errorf("restore category %d: %w", c.ID, err)
		}
		track("categories", c.ID)
	}

	for _, c := range ds.Cards {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cards (id, name, limit_value, bank, brand, closing_day, due_day) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.Limit, nullStr(c.Bank), nullStr(c.Brand), c.ClosingDay, c.DueDay); err != nil {
			return fmt.Errorf("restore card %d: %w", c.ID, err)
		}
		track("cards", c.ID)
	}

	for _, rec := range ds.Recurrences {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO recurrences (id, kind, name, value, start_month, start_year, interval_months, occurrences, category_id, payment_method, confirmed, notes)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.Kind, rec.Name, rec.Value, rec.StartMonth, rec.StartYear, rec.IntervalMonths, rec.Occurrences,
			nullInt(rec.CategoryID), nullStr(rec.PaymentMethod), nullBoolInt(rec.Confirmed), nullStr(rec.Notes)); err != nil {
			return fmt.Errorf("restore recurrence %d: %w", rec.ID, err)
		}
		track("recurrences", rec.ID)
	}

	for _, e := range ds.Expenses {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (id, name, value, month, year, category_id, recurrence_id, payment_method, notes)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Name, e.Value, e.Month, e.Year, nullInt(e.CategoryID), nullInt(e.RecurrenceID), e.PaymentMethod, nullStr(e.Notes)); err != nil {
			return fmt.Errorf("restore expense %d: %w", e.ID, err)
		}
		track("expenses", e.ID)
	}

	for _, in := range ds.Incomes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO incomes (id, name, value, month, year, confirmed, notes) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			in.ID, in.Name, in.Value, in.Month, in.Year, boolInt(in.Confirmed), nullStr(in.Notes)); err != nil {
			return fmt.Errorf("restore income %d: %w", in.ID, err)
		}
		track("incomes", in.ID)
	}

	for _, p := range ds.Installments {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO installments (id, card_id, expense_name, installment_number, total_installments, value, month, year, status)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.CardID, p.ExpenseName, p.InstallmentNumber, p.TotalInstallments, p.Value, p.Month, p.Year, p.Status); err != nil {
			return fmt.Errorf("restore installment %d: %w", p.ID, err)
		}
		track("installments", p.ID)
	}

	for _, g := range ds.Goals {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO goals (id, name, limit_value, month, year, category_id) VALUES (?, ?, ?, ?, ?, ?)`,
			g.ID, g.Name, g.LimitValue, g.Month, g.Year, nullInt(g.CategoryID)); err != nil {
			return fmt.Errorf("restore goal %d: %w", g.ID, err)
		}
		track("goals", g.ID)
	}

	for _, table := range []string{"categories", "cards", "expenses", "incomes", "recurrences", "installments", "goals"} {
		if err := resetSequence(ctx, tx, table, maxIDs[table]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit restore transaction: %w", err)
	}
	return nil
}

// resetSequence pins the AUTOINCREMENT counter at the highest restored id,
// dropping the counter row entirely for tables that ended up empty.
func resetSequence(ctx context.Context, tx *sql.Tx, table string, maxID int64) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM sqlite_sequence WHERE name = ?`, table); err != nil {
		return fmt.Errorf("reset sequence for %s: %w", table, err)
	}
	if maxID > 0 {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sqlite_sequence (name, seq) VALUES (?, ?)`, table, maxID); err != nil {
			return fmt.Errorf("seed sequence for %s: %w", table, err)
		}
	}
	return nil
}

// Snapshot reads every table for backup export.
func (s *Store) Snapshot(ctx context.Context) (Dataset, error) {
	var (
		ds  Dataset
		err error
	)
	if ds.Categories, err = s.categories.List(ctx); err != nil {
		return Dataset{}, err
	}
	if ds.Expenses, err = s.expenses.List(ctx, ExpenseFilter{}); err != nil {
		return Dataset{}, err
	}
	if ds.Incomes, err = s.incomes.List(ctx, IncomeFilter{}); err != nil {
		return Dataset{}, err
	}
	if ds.Cards, err = s.cards.List(ctx); err != nil {
		return Dataset{}, err
	}
	if ds.Installments, err = s.installments.List(ctx, InstallmentFilter{}); err != nil {
		return Dataset{}, err
	}
	if ds.Recurrences, err = s.recurrences.List(ctx); err != nil {
		return Dataset{}, err
	}
	if ds.Goals, err = s.goals.List(ctx, GoalFilter{}); err != nil {
		return Dataset{}, err
	}
	return ds, nil
}
