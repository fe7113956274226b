package services

import (
	"context"
	"testing"

	"saveyourmoney/internal/core"
	"saveyourmoney/internal/storage"
)

func newFinanceService(t *testing.T) (*FinanceService, *storage.Store) {
	t.Helper()
	store := newTestStore(t)
	return NewFinanceService(store, nil), store
}

func TestCreateExpenseWithInlineRecurrence(t *testing.T) {
	ctx := context.Background()
	svc, store := newFinanceService(t)

	created, _, err := svc.CreateExpense(ctx, CreateExpenseInput{
		Expense: core.Expense{
			Name: "Academia", Value: 89.9, Month: 2, Year: 2026, PaymentMethod: core.PaymentDebit,
		},
		Recurring: &RecurringInput{Frequency: "mensal", Occurrences: 6},
	})
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}
	if created.RecurrenceID == nil {
		t.Fatal("inline recurring expense should be linked to the created rule")
	}

	rec, err := store.Recurrences().Get(ctx, *created.RecurrenceID)
	if err != nil {
		t.Fatalf("get recurrence: %v", err)
	}
	if rec.Kind != core.KindExpense {
		t.Errorf("rule kind = %q, want %q", rec.Kind, core.KindExpense)
	}
	if rec.StartMonth != 2 || rec.StartYear != 2026 {
		t.Errorf("rule start = %d/%d, want 2/2026", rec.StartMonth, rec.StartYear)
	}
	if rec.IntervalMonths != 1 || rec.Occurrences != 6 {
		t.Errorf("rule interval/occurrences = %d/%d, want 1/6", rec.IntervalMonths, rec.Occurrences)
	}
}

func TestCreateExpenseInlineRecurrenceEndDate(t *testing.T) {
	ctx := context.Background()
	svc, store := newFinanceService(t)

	tests := []struct {
		name            string
		recurring       RecurringInput
		wantInterval    int
		wantOccurrences int
	}{
		{
			name:            "monthly until end of year",
			recurring:       RecurringInput{Frequency: "mensal", EndMonth: 12, EndYear: 2026},
			wantInterval:    1,
			wantOccurrences: 12,
		},
		{
			name:            "yearly frequency",
			recurring:       RecurringInput{Frequency: "anual", EndMonth: 1, EndYear: 2028},
			wantInterval:    12,
			wantOccurrences: 3,
		},
		{
			name:            "end before start clamps to one",
			recurring:       RecurringInput{Frequency: "mensal", EndMonth: 12, EndYear: 2025},
			wantInterval:    1,
			wantOccurrences: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created, _, err := svc.CreateExpense(ctx, CreateExpenseInput{
				Expense: core.Expense{
					Name: "Seguro", Value: 120, Month: 1, Year: 2026, PaymentMethod: core.PaymentDebit,
				},
				Recurring: &tt.recurring,
			})
			if err != nil {
				t.Fatalf("CreateExpense() error = %v", err)
			}
			rec, err := store.Recurrences().Get(ctx, *created.RecurrenceID)
			if err != nil {
				t.Fatalf("get recurrence: %v", err)
			}
			if rec.IntervalMonths != tt.wantInterval {
				t.Errorf("interval = %d, want %d", rec.IntervalMonths, tt.wantInterval)
			}
			if rec.Occurrences != tt.wantOccurrences {
				t.Errorf("occurrences = %d, want %d", rec.Occurrences, tt.wantOccurrences)
			}
		})
	}
}

func TestCreateExpenseWithInstallments(t *testing.T) {
	ctx := context.Background()
	svc, store := newFinanceService(t)

	card, err := store.Cards().Add(ctx, core.Card{Name: "Inter", Limit: 5000, ClosingDay: 1, DueDay: 8})
	if err != nil {
		t.Fatalf("add card: %v", err)
	}

	_, installments, err := svc.CreateExpense(ctx, CreateExpenseInput{
		Expense: core.Expense{
			Name: "Notebook", Value: 100, Month: 11, Year: 2026, PaymentMethod: "credit",
		},
		Installments: &InstallmentsInput{CardID: card.ID, Total: 3},
	})
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}
	if len(installments) != 3 {
		t.Fatalf("created %d installments, want 3", len(installments))
	}

	wantValues := []float64{33.33, 33.33, 33.34}
	wantCompetences := []core.Competence{
		{Month: 11, Year: 2026},
		{Month: 12, Year: 2026},
		{Month: 1, Year: 2027},
	}
	sum := 0.0
	for i, p := range installments {
		if p.Value != wantValues[i] {
			t.Errorf("installment %d value = %v, want %v", i+1, p.Value, wantValues[i])
		}
		if p.Month != wantCompetences[i].Month || p.Year != wantCompetences[i].Year {
			t.Errorf("installment %d competence = %d/%d, want %d/%d",
				i+1, p.Month, p.Year, wantCompetences[i].Month, wantCompetences[i].Year)
		}
		if p.InstallmentNumber != i+1 || p.TotalInstallments != 3 {
			t.Errorf("installment %d numbering = %d/%d", i+1, p.InstallmentNumber, p.TotalInstallments)
		}
		if p.Status != core.StatusPending {
			t.Errorf("installment %d status = %q, want %q", i+1, p.Status, core.StatusPending)
		}
		sum += p.Value
	}
	if core.Round2(sum) != 100 {
		t.Errorf("installments sum = %v, want 100", sum)
	}
}

func TestCreateExpenseRejectsUnknownCategory(t *testing.T) {
	ctx := context.Background()
	svc, _ := newFinanceService(t)

	missing := int64(42)
	_, _, err := svc.CreateExpense(ctx, CreateExpenseInput{
		Expense: core.Expense{
			Name: "Luz", Value: 80, Month: 1, Year: 2026,
			CategoryID: &missing, PaymentMethod: core.PaymentDebit,
		},
	})
	if !core.IsValidation(err) {
		t.Errorf("CreateExpense() error = %v, want validation error", err)
	}
}

func TestUpdateExpenseFutureScopeRewritesRecurrence(t *testing.T) {
	ctx := context.Background()
	svc, store := newFinanceService(t)

	created, _, err := svc.CreateExpense(ctx, CreateExpenseInput{
		Expense:   core.Expense{Name: "Streaming", Value: 40, Month: 1, Year: 2026, PaymentMethod: core.PaymentDebit},
		Recurring: &RecurringInput{},
	})
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}

	updated := created
	updated.Name = "Streaming anual"
	updated.Value = 45.9
	if _, err := svc.UpdateExpense(ctx, updated, ScopeFuture); err != nil {
		t.Fatalf("UpdateExpense() error = %v", err)
	}

	rec, err := store.Recurrences().Get(ctx, *created.RecurrenceID)
	if err != nil {
		t.Fatalf("get recurrence: %v", err)
	}
	if rec.Name != "Streaming anual" || rec.Value != 45.9 {
		t.Errorf("rule after future edit = %q/%v, want rewritten name and value", rec.Name, rec.Value)
	}
}

func TestDeleteExpenseScopeCascades(t *testing.T) {
	ctx := context.Background()
	svc, store := newFinanceService(t)

	created, _, err := svc.CreateExpense(ctx, CreateExpenseInput{
		Expense:   core.Expense{Name: "Curso", Value: 200, Month: 1, Year: 2026, PaymentMethod: core.PaymentDebit},
		Recurring: &RecurringInput{Occurrences: 4},
	})
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}
	// Simulate later generated siblings carrying the same rule id.
	for m := 2; m <= 4; m++ {
		if _, err := store.Expenses().Add(ctx, core.Expense{
			Name: "Curso", Value: 200, Month: m, Year: 2026,
			RecurrenceID: created.RecurrenceID, PaymentMethod: core.PaymentDebit,
		}); err != nil {
			t.Fatalf("add sibling expense: %v", err)
		}
	}

	cascaded, err := svc.DeleteExpense(ctx, created.ID, ScopeAll)
	if err != nil {
		t.Fatalf("DeleteExpense() error = %v", err)
	}
	if !cascaded {
		t.Error("DeleteExpense() with scope all should cascade")
	}

	if _, err := store.Recurrences().Get(ctx, *created.RecurrenceID); err != core.ErrNotFound {
		t.Errorf("rule still present after cascade, err = %v", err)
	}
	left, err := store.Expenses().List(ctx, storage.ExpenseFilter{})
	if err != nil {
		t.Fatalf("list expenses: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("%d expenses left after cascade, want 0", len(left))
	}
}

func TestDeleteExpenseScopeThisKeepsSiblings(t *testing.T) {
	ctx := context.Background()
	svc, store := newFinanceService(t)

	created, _, err := svc.CreateExpense(ctx, CreateExpenseInput{
		Expense:   core.Expense{Name: "Curso", Value: 200, Month: 1, Year: 2026, PaymentMethod: core.PaymentDebit},
		Recurring: &RecurringInput{Occurrences: 2},
	})
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}
	sibling, err := store.Expenses().Add(ctx, core.Expense{
		Name: "Curso", Value: 200, Month: 2, Year: 2026,
		RecurrenceID: created.RecurrenceID, PaymentMethod: core.PaymentDebit,
	})
	if err != nil {
		t.Fatalf("add sibling expense: %v", err)
	}

	cascaded, err := svc.DeleteExpense(ctx, created.ID, ScopeThis)
	if err != nil {
		t.Fatalf("DeleteExpense() error = %v", err)
	}
	if cascaded {
		t.Error("scope this should not cascade")
	}
	if _, err := store.Expenses().Get(ctx, sibling.ID); err != nil {
		t.Errorf("sibling should survive scope this delete, err = %v", err)
	}
	if _, err := store.Recurrences().Get(ctx, *created.RecurrenceID); err != nil {
		t.Errorf("rule should survive scope this delete, err = %v", err)
	}
}

func TestDeleteCategoryConflicts(t *testing.T) {
	ctx := context.Background()
	svc, store := newFinanceService(t)

	cat, err := store.Categories().Add(ctx, core.Category{Name: "Casa"})
	if err != nil {
		t.Fatalf("add category: %v", err)
	}
	if _, err := store.Expenses().Add(ctx, core.Expense{
		Name: "Aluguel", Value: 1500, Month: 1, Year: 2026,
		CategoryID: &cat.ID, PaymentMethod: core.PaymentDebit,
	}); err != nil {
		t.Fatalf("add expense: %v", err)
	}

	err = svc.DeleteCategory(ctx, cat.ID)
	if !core.IsConflict(err) {
		t.Errorf("DeleteCategory() error = %v, want conflict", err)
	}

	unused, err := store.Categories().Add(ctx, core.Category{Name: "Vazia"})
	if err != nil {
		t.Fatalf("add category: %v", err)
	}
	if err := svc.DeleteCategory(ctx, unused.ID); err != nil {
		t.Errorf("DeleteCategory() on unused category error = %v", err)
	}
}

func TestDeleteCardConflicts(t *testing.T) {
	ctx := context.Background()
	svc, store := newFinanceService(t)

	card, err := store.Cards().Add(ctx, core.Card{Name: "Nubank", Limit: 2000, ClosingDay: 5, DueDay: 12})
	if err != nil {
		t.Fatalf("add card: %v", err)
	}
	if _, err := store.Installments().Add(ctx, core.Installment{
		CardID: card.ID, ExpenseName: "TV", InstallmentNumber: 1, TotalInstallments: 5,
		Value: 200, Month: 1, Year: 2026, Status: core.StatusPending,
	}); err != nil {
		t.Fatalf("add installment: %v", err)
	}

	err = svc.DeleteCard(ctx, card.ID)
	if !core.IsConflict(err) {
		t.Errorf("DeleteCard() error = %v, want conflict", err)
	}
}

func TestInvoiceTotals(t *testing.T) {
	ctx := context.Background()
	svc, store := newFinanceService(t)

	card, err := store.Cards().Add(ctx, core.Card{Name: "Inter", Limit: 4000, ClosingDay: 1, DueDay: 8})
	if err != nil {
		t.Fatalf("add card: %v", err)
	}
	for _, value := range []float64{33.33, 33.33, 100.10} {
		if _, err := store.Installments().Add(ctx, core.Installment{
			CardID: card.ID, ExpenseName: "Compras", InstallmentNumber: 1, TotalInstallments: 1,
			Value: value, Month: 3, Year: 2026, Status: core.StatusPending,
		}); err != nil {
			t.Fatalf("add installment: %v", err)
		}
	}

	total, installments, err := svc.Invoice(ctx, card.ID, 3, 2026)
	if err != nil {
		t.Fatalf("Invoice() error = %v", err)
	}
	if total != 166.76 {
		t.Errorf("Invoice() total = %v, want 166.76", total)
	}
	if len(installments) != 3 {
		t.Errorf("Invoice() returned %d installments, want 3", len(installments))
	}
}

func TestParseScopes(t *testing.T) {
	if scope, err := ParseEditScope(""); err != nil || scope != ScopeThis {
		t.Errorf("ParseEditScope(\"\") = %q, %v; want this", scope, err)
	}
	if scope, err := ParseCancelScope(""); err != nil || scope != ScopeAll {
		t.Errorf("ParseCancelScope(\"\") = %q, %v; want all", scope, err)
	}
	if _, err := ParseEditScope("all"); !core.IsValidation(err) {
		t.Errorf("ParseEditScope(all) error = %v, want validation error", err)
	}
	if _, err := ParseCancelScope("monthly"); !core.IsValidation(err) {
		t.Errorf("ParseCancelScope(monthly) error = %v, want validation error", err)
	}
}

func TestApplyRecurrenceByIDNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newFinanceService(t)

	_, _, err := svc.ApplyRecurrence(ctx, 999)
	if err != core.ErrNotFound {
		t.Errorf("ApplyRecurrence(999) error = %v, want ErrNotFound", err)
	}
}
