package core

import "testing"

func ptr[T any](v T) *T { return &v }

func TestExpenseValidate(t *testing.T) {
	valid := Expense{Name: "Internet", Value: 99.9, Month: 1, Year: 2026, PaymentMethod: PaymentDebit}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid expense rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Expense)
	}{
		{"empty name", func(e *Expense) { e.Name = "  " }},
		{"negative value", func(e *Expense) { e.Value = -1 }},
		{"month too low", func(e *Expense) { e.Month = 0 }},
		{"month too high", func(e *Expense) { e.Month = 13 }},
		{"year zero", func(e *Expense) { e.Year = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := valid
			tc.mutate(&e)
			if err := e.Validate(); !IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestIncomeValidate(t *testing.T) {
	valid := Income{Name: "Salário", Value: 4200, Month: 2, Year: 2026, Confirmed: true}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid income rejected: %v", err)
	}
	invalid := valid
	invalid.Value = -0.01
	if err := invalid.Validate(); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCardValidate(t *testing.T) {
	valid := Card{Name: "Nubank", Limit: 3000, ClosingDay: 5, DueDay: 12}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid card rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Card)
	}{
		{"empty name", func(c *Card) { c.Name = "" }},
		{"negative limit", func(c *Card) { c.Limit = -10 }},
		{"closing day zero", func(c *Card) { c.ClosingDay = 0 }},
		{"due day out of range", func(c *Card) { c.DueDay = 32 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid
			tc.mutate(&c)
			if err := c.Validate(); !IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestInstallmentValidate(t *testing.T) {
	valid := Installment{
		CardID:            1,
		ExpenseName:       "Notebook",
		InstallmentNumber: 2,
		TotalInstallments: 10,
		Value:             150,
		Month:             3,
		Year:              2026,
		Status:            StatusPending,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid installment rejected: %v", err)
	}

	over := valid
	over.InstallmentNumber = 11
	if err := over.Validate(); !IsValidation(err) {
		t.Fatalf("number past total should be rejected, got %v", err)
	}
	noCard := valid
	noCard.CardID = 0
	if err := noCard.Validate(); !IsValidation(err) {
		t.Fatalf("missing card should be rejected, got %v", err)
	}
}

func TestRecurrenceValidate(t *testing.T) {
	valid := Recurrence{
		Kind:           KindExpense,
		Name:           "Aluguel",
		Value:          1500,
		StartMonth:     1,
		StartYear:      2026,
		IntervalMonths: 1,
		Occurrences:    12,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid recurrence rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Recurrence)
	}{
		{"unknown kind", func(r *Recurrence) { r.Kind = "transfer" }},
		{"zero interval", func(r *Recurrence) { r.IntervalMonths = 0 }},
		{"zero occurrences", func(r *Recurrence) { r.Occurrences = 0 }},
		{"bad start month", func(r *Recurrence) { r.StartMonth = 14 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := valid
			tc.mutate(&r)
			if err := r.Validate(); !IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestGoalValidate(t *testing.T) {
	valid := Goal{Name: "Mercado", LimitValue: 800, Month: 1, Year: 2026, CategoryID: ptr(int64(3))}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid goal rejected: %v", err)
	}
	zeroLimit := valid
	zeroLimit.LimitValue = 0
	if err := zeroLimit.Validate(); !IsValidation(err) {
		t.Fatalf("zero limit should be rejected, got %v", err)
	}
}

func TestCategoryValidate(t *testing.T) {
	if err := (Category{Name: "Transporte"}).Validate(); err != nil {
		t.Fatalf("valid category rejected: %v", err)
	}
	if err := (Category{Name: " "}).Validate(); !IsValidation(err) {
		t.Fatal("blank category name should be rejected")
	}
}
