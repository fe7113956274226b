package storage

import (
	"context"
	"database/sql"
	"fmt"

	"saveyourmoney/internal/core"
)

type CardRepo struct {
	db *sql.DB
}

const cardCols = `id, name, limit_value, bank, brand, closing_day, due_day`

func (r *CardRepo) Add(ctx context.Context, c core.Card) (core.Card, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO cards (name, limit_value, bank, brand, closing_day, due_day) VALUES (?, ?, ?, ?, ?, ?)`,
		c.Name, c.Limit, nullStr(c.Bank), nullStr(c.Brand), c.ClosingDay, c.DueDay)
	if err != nil {
		return core.Card{}, fmt.Errorf("insert card: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Card{}, fmt.Errorf("card insert id: %w", err)
	}
	c.ID = id
	return c, nil
}

func (r *CardRepo) Get(ctx context.Context, id int64) (core.Card, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+cardCols+` FROM cards WHERE id = ?`, id)
	c, err := scanCard(row)
	if err == sql.ErrNoRows {
		return core.Card{}, core.ErrNotFound
	}
	if err != nil {
		return core.Card{}, fmt.Errorf("get card: %w", err)
	}
	return c, nil
}

func (r *CardRepo) List(ctx context.Context) ([]core.Card, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+cardCols+` FROM cards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var out []core.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CardRepo) Update(ctx context.Context, c core.Card) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cards SET name = ?, limit_value = ?, bank = ?, brand = ?, closing_day = ?, due_day = ? WHERE id = ?`,
		c.Name, c.Limit, nullStr(c.Bank), nullStr(c.Brand), c.ClosingDay, c.DueDay, c.ID)
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}
	return affected(res)
}

func (r *CardRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	return affected(res)
}

func scanCard(row rowScanner) (core.Card, error) {
	var (
		c     core.Card
		bank  sql.NullString
		brand sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Limit, &bank, &brand, &c.ClosingDay, &c.DueDay); err != nil {
		return core.Card{}, err
	}
	c.Bank = strPtr(bank)
	c.Brand = strPtr(brand)
	return c, nil
}
