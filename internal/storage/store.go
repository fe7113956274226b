// Package storage persists the finance dataset in SQLite. One Store owns the
// database handle; per-entity repositories share it and expose the add/get/
// list/update/delete surface the services depend on.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB

	categories   *CategoryRepo
	expenses     *ExpenseRepo
	incomes      *IncomeRepo
	cards        *CardRepo
	installments *InstallmentRepo
	recurrences  *RecurrenceRepo
	goals        *GoalRepo
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite serializes writers; one connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{
		db:           db,
		categories:   &CategoryRepo{db: db},
		expenses:     &ExpenseRepo{db: db},
		incomes:      &IncomeRepo{db: db},
		cards:        &CardRepo{db: db},
		installments: &InstallmentRepo{db: db},
		recurrences:  &RecurrenceRepo{db: db},
		goals:        &GoalRepo{db: db},
	}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Categories() *CategoryRepo     { return s.categories }
func (s *Store) Expenses() *ExpenseRepo        { return s.expenses }
func (s *Store) Incomes() *IncomeRepo          { return s.incomes }
func (s *Store) Cards() *CardRepo              { return s.cards }
func (s *Store) Installments() *InstallmentRepo { return s.installments }
func (s *Store) Recurrences() *RecurrenceRepo  { return s.recurrences }
func (s *Store) Goals() *GoalRepo              { return s.goals }

// nullable column helpers shared by the repositories

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func nullStr(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

// nullBoolInt maps a tri-state bool onto a nullable INTEGER column.
func nullBoolInt(p *bool) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	v := int64(0)
	if *p {
		v = 1
	}
	return sql.NullInt64{Int64: v, Valid: true}
}

func intPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func strPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}

func boolPtr(n sql.NullInt64) *bool {
	if !n.Valid {
		return nil
	}
	v := n.Int64 != 0
	return &v
}
