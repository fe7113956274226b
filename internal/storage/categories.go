package storage

import (
	"context"
	"database/sql"
	"fmt"

	"saveyourmoney/internal/core"
)

type CategoryRepo struct {
	db *sql.DB
}

func (r *CategoryRepo) Add(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, description) VALUES (?, ?)`,
		c.Name, nullStr(c.Description))
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category insert id: %w", err)
	}
	c.ID = id
	return c, nil
}

func (r *CategoryRepo) Get(ctx context.Context, id int64) (core.Category, error) {
	var (
		c    core.Category
		desc sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &desc)
	if err == sql.ErrNoRows {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	c.Description = strPtr(desc)
	return c, nil
}

func (r *CategoryRepo) List(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var (
			c    core.Category
			desc sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &desc); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Description = strPtr(desc)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoryRepo) Update(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, description = ? WHERE id = ?`,
		c.Name, nullStr(c.Description), c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return affected(res)
}

func (r *CategoryRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return affected(res)
}

// affected turns a zero-row write into core.ErrNotFound so the services can
// answer 404 without a prior existence check.
func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
