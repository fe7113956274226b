package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saveyourmoney/internal/core"
	"saveyourmoney/internal/storage"
)

func seedDataset(t *testing.T, store *storage.Store) {
	t.Helper()
	ctx := context.Background()

	cat, err := store.Categories().Add(ctx, core.Category{Name: "Casa", Description: ptr("moradia")})
	require.NoError(t, err)
	card, err := store.Cards().Add(ctx, core.Card{Name: "Nubank", Limit: 3000, Bank: ptr("Nu"), ClosingDay: 5, DueDay: 12})
	require.NoError(t, err)
	rec, err := store.Recurrences().Add(ctx, core.Recurrence{
		Kind: core.KindExpense, Name: "Aluguel", Value: 1500,
		StartMonth: 1, StartYear: 2026, IntervalMonths: 1, Occurrences: 12,
		CategoryID: &cat.ID,
	})
	require.NoError(t, err)
	_, err = store.Expenses().Add(ctx, core.Expense{
		Name: "Aluguel", Value: 1500, Month: 1, Year: 2026,
		CategoryID: &cat.ID, RecurrenceID: &rec.ID, PaymentMethod: core.PaymentDebit,
	})
	require.NoError(t, err)
	_, err = store.Incomes().Add(ctx, core.Income{Name: "Salário", Value: 5200, Month: 1, Year: 2026, Confirmed: true})
	require.NoError(t, err)
	_, err = store.Installments().Add(ctx, core.Installment{
		CardID: card.ID, ExpenseName: "Notebook", InstallmentNumber: 1, TotalInstallments: 10,
		Value: 350, Month: 1, Year: 2026, Status: core.StatusPending,
	})
	require.NoError(t, err)
	_, err = store.Goals().Add(ctx, core.Goal{Name: "Teto", LimitValue: 4000, Month: 1, Year: 2026, CategoryID: &cat.ID})
	require.NoError(t, err)
}

// toPayload runs the snapshot through JSON so Restore sees the same untyped
// tree an uploaded backup file produces.
func toPayload(t *testing.T, snap Snapshot) any {
	t.Helper()
	body, err := json.Marshal(snap)
	require.NoError(t, err)
	var payload any
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload
}

func TestBackupExportShape(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedDataset(t, store)
	svc := NewBackupService(store)

	snap, err := svc.Export(ctx)
	require.NoError(t, err)

	assert.Equal(t, BackupVersion, snap.Version)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, snap.ExportedAt)
	assert.Len(t, snap.Categories, 1)
	assert.Len(t, snap.Cards, 1)
	assert.Len(t, snap.Expenses, 1)
	assert.Len(t, snap.RecurringExpenses, 1)
	assert.Len(t, snap.Income, 1)
	assert.Len(t, snap.Installments, 1)
	assert.Len(t, snap.Goals, 1)
	assert.NotNil(t, snap.Settings)

	body, err := json.Marshal(snap)
	require.NoError(t, err)
	var keys map[string]any
	require.NoError(t, json.Unmarshal(body, &keys))
	for _, key := range []string{"version", "exportedAt", "cards", "expenses", "recurringExpenses", "income", "categories", "installments", "goals", "settings"} {
		assert.Contains(t, keys, key)
	}
}

func TestBackupRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedDataset(t, store)
	svc := NewBackupService(store)

	snap, err := svc.Export(ctx)
	require.NoError(t, err)
	before, err := store.Snapshot(ctx)
	require.NoError(t, err)

	counts, err := svc.Restore(ctx, toPayload(t, snap))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"cards": 1, "categories": 1, "expenses": 1, "incomes": 1,
		"recurrences": 1, "installments": 1, "goals": 1,
	}, counts)

	after, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestBackupRestoreLegacyKeys(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewBackupService(store)

	payload := map[string]any{
		"version":    "1.0",
		"cards":      []any{},
		"expenses":   []any{},
		"categories": []any{},
		"recurrences": []any{
			map[string]any{
				"id": float64(4), "kind": "income", "name": "Bônus", "value": float64(300),
				"start_month": float64(6), "start_year": float64(2026),
				"interval_months": float64(1), "occurrences": float64(2),
				"confirmed": "sim",
			},
		},
		"incomes": []any{
			map[string]any{
				"id": float64(9), "name": "Salário", "value": "4200.50",
				"month": float64(2), "year": float64(2026), "confirmed": "1",
			},
		},
	}

	counts, err := svc.Restore(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, 1, counts["recurrences"])
	assert.Equal(t, 1, counts["incomes"])

	rec, err := store.Recurrences().Get(ctx, 4)
	require.NoError(t, err)
	require.NotNil(t, rec.Confirmed)
	assert.True(t, *rec.Confirmed)

	in, err := store.Incomes().Get(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, 4200.50, in.Value)
	assert.True(t, in.Confirmed)
}

func TestBackupRestoreVersionGate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewBackupService(store)

	payload := map[string]any{
		"version":    "2.0",
		"cards":      []any{},
		"expenses":   []any{},
		"categories": []any{},
	}
	_, err := svc.Restore(ctx, payload)
	require.Error(t, err)
	assert.True(t, core.IsBackup(err))
	assert.Contains(t, err.Error(), "incompatível")
}

func TestBackupRestoreStructuralValidation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewBackupService(store)

	tests := []struct {
		name    string
		payload any
	}{
		{"not an object", []any{"x"}},
		{"missing version", map[string]any{"cards": []any{}, "expenses": []any{}, "categories": []any{}}},
		{"cards not a list", map[string]any{"version": "1.0", "cards": "x", "expenses": []any{}, "categories": []any{}}},
		{"settings not an object", map[string]any{
			"version": "1.0", "cards": []any{}, "expenses": []any{}, "categories": []any{},
			"settings": []any{},
		}},
		{"record not an object", map[string]any{
			"version": "1.0", "cards": []any{}, "expenses": []any{"x"}, "categories": []any{},
		}},
		{"record missing id", map[string]any{
			"version": "1.0", "cards": []any{}, "expenses": []any{}, "categories": []any{
				map[string]any{"name": "Casa"},
			},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Restore(ctx, tt.payload)
			require.Error(t, err)
			assert.True(t, core.IsBackup(err), "want backup validation error, got %v", err)
		})
	}
}

func TestBackupRestoreAtomicityOnDanglingReference(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	seedDataset(t, store)
	svc := NewBackupService(store)

	before, err := store.Snapshot(ctx)
	require.NoError(t, err)

	payload := map[string]any{
		"version":    "1.0",
		"cards":      []any{},
		"categories": []any{},
		"expenses": []any{
			map[string]any{
				"id": float64(1), "name": "Órfão", "value": float64(10),
				"month": float64(1), "year": float64(2026),
				"category_id": float64(99),
			},
		},
	}
	_, err = svc.Restore(ctx, payload)
	require.Error(t, err)
	assert.True(t, core.IsBackup(err))
	assert.Contains(t, err.Error(), "categoria inexistente")

	after, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after, "failed restore must leave the dataset untouched")
}
