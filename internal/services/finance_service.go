package services

import (
	"context"
	"log/slog"
	"strings"

	"saveyourmoney/internal/amqp"
	"saveyourmoney/internal/core"
	"saveyourmoney/internal/storage"
)

// Edit/cancel scopes for expenses that belong to a recurrence.
const (
	ScopeThis   = "this"
	ScopeFuture = "future"
	ScopeAll    = "all"
)

// ParseEditScope validates a PUT scope, defaulting to "this".
func ParseEditScope(raw string) (string, error) {
	scope := strings.ToLower(strings.TrimSpace(raw))
	if scope == "" {
		scope = ScopeThis
	}
	if scope != ScopeThis && scope != ScopeFuture {
		return "", core.Validationf("Escopo de edição inválido. Use 'this' ou 'future'.")
	}
	return scope, nil
}

// ParseCancelScope validates a DELETE scope, defaulting to "all".
func ParseCancelScope(raw string) (string, error) {
	scope := strings.ToLower(strings.TrimSpace(raw))
	if scope == "" {
		scope = ScopeAll
	}
	if scope != ScopeThis && scope != ScopeFuture && scope != ScopeAll {
		return "", core.Validationf("Escopo de cancelamento inválido. Use 'this', 'future' ou 'all'.")
	}
	return scope, nil
}

// RecurringInput is the inline recurrence block of an expense creation.
type RecurringInput struct {
	Frequency      string
	IntervalMonths int
	Occurrences    int
	EndMonth       int
	EndYear        int
}

// InstallmentsInput asks expense creation to split the value into card
// installments.
type InstallmentsInput struct {
	CardID int64
	Total  int
}

// CreateExpenseInput bundles an expense with its optional inline recurrence
// and installment split.
type CreateExpenseInput struct {
	Expense      core.Expense
	Recurring    *RecurringInput
	Installments *InstallmentsInput
}

// FinanceService orchestrates entity operations across storage and the event
// bus. Event publishing is best-effort: a missing or failing AMQP client
// never fails the request.
type FinanceService struct {
	store       *storage.Store
	events      *amqp.Client
	recurrences *RecurrenceService
}

func NewFinanceService(store *storage.Store, events *amqp.Client) *FinanceService {
	return &FinanceService{
		store:       store,
		events:      events,
		recurrences: NewRecurrenceService(store.Expenses(), store.Incomes()),
	}
}

func (s *FinanceService) publish(ctx context.Context, kind, action string, id int64) {
	if s.events == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping event", "kind", kind, "action", action)
		return
	}
	if err := s.events.PublishTransactionEvent(ctx, kind, action, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"kind", kind, "action", action, "id", id, "error", err)
	}
}

// EnsureCategory fails with a validation error when the referenced category
// does not exist. Nil means "no category" and always passes.
func (s *FinanceService) EnsureCategory(ctx context.Context, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.store.Categories().Get(ctx, *categoryID); err != nil {
		if err == core.ErrNotFound {
			return core.Validationf("Categoria não encontrada.")
		}
		return err
	}
	return nil
}

// EnsureCard fails with a validation error when the referenced card does not
// exist.
func (s *FinanceService) EnsureCard(ctx context.Context, cardID int64) error {
	if _, err := s.store.Cards().Get(ctx, cardID); err != nil {
		if err == core.ErrNotFound {
			return core.Validationf("Cartão não encontrado.")
		}
		return err
	}
	return nil
}

// categories

func (s *FinanceService) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	return s.store.Categories().Get(ctx, id)
}

func (s *FinanceService) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.store.Categories().List(ctx)
}

func (s *FinanceService) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	return s.store.Categories().Add(ctx, c)
}

func (s *FinanceService) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := s.store.Categories().Update(ctx, c); err != nil {
		return core.Category{}, err
	}
	return c, nil
}

// DeleteCategory refuses when expenses, recurrences, or goals still reference
// the category.
func (s *FinanceService) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := s.store.Categories().Get(ctx, id); err != nil {
		return err
	}
	for _, check := range []func(context.Context, int64) (bool, error){
		s.store.Expenses().ExistsWithCategory,
		s.store.Recurrences().ExistsWithCategory,
		s.store.Goals().ExistsWithCategory,
	} {
		linked, err := check(ctx, id)
		if err != nil {
			return err
		}
		if linked {
			return core.Conflictf("Não é possível excluir categoria com itens vinculados.")
		}
	}
	return s.store.Categories().Delete(ctx, id)
}

// expenses

func (s *FinanceService) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	return s.store.Expenses().Get(ctx, id)
}

func (s *FinanceService) ListExpenses(ctx context.Context, f storage.ExpenseFilter) ([]core.Expense, error) {
	return s.store.Expenses().List(ctx, f)
}

// CreateExpense persists the expense, optionally creating an inline
// recurrence rule it gets linked to, and optionally splitting its value into
// card installments with the competence advancing month by month.
func (s *FinanceService) CreateExpense(ctx context.Context, in CreateExpenseInput) (core.Expense, []core.Installment, error) {
	if err := in.Expense.Validate(); err != nil {
		return core.Expense{}, nil, err
	}
	if err := s.EnsureCategory(ctx, in.Expense.CategoryID); err != nil {
		return core.Expense{}, nil, err
	}

	expense := in.Expense
	if in.Recurring != nil {
		rec, err := s.buildInlineRecurrence(expense, *in.Recurring)
		if err != nil {
			return core.Expense{}, nil, err
		}
		created, err := s.store.Recurrences().Add(ctx, rec)
		if err != nil {
			return core.Expense{}, nil, err
		}
		expense.RecurrenceID = &created.ID
	}

	created, err := s.store.Expenses().Add(ctx, expense)
	if err != nil {
		return core.Expense{}, nil, err
	}

	var installments []core.Installment
	if in.Installments != nil {
		installments, err = s.createInstallments(ctx, created, *in.Installments)
		if err != nil {
			return core.Expense{}, nil, err
		}
	}

	s.publish(ctx, "expense", amqp.ActionCreated, created.ID)
	return created, installments, nil
}

// buildInlineRecurrence derives the rule created alongside an expense. With
// an end competence the occurrence count comes from the covered month span;
// otherwise it defaults to 12.
func (s *FinanceService) buildInlineRecurrence(expense core.Expense, in RecurringInput) (core.Recurrence, error) {
	frequency := strings.ToLower(strings.TrimSpace(in.Frequency))
	if frequency == "" {
		frequency = "mensal"
	}
	intervalByFrequency := map[string]int{"semanal": 1, "mensal": 1, "anual": 12}

	interval := in.IntervalMonths
	if interval == 0 {
		if v, ok := intervalByFrequency[frequency]; ok {
			interval = v
		} else {
			interval = 1
		}
	}
	if interval <= 0 {
		return core.Recurrence{}, core.Validationf("interval_months deve ser maior que zero.")
	}

	occurrences := in.Occurrences
	if occurrences == 0 {
		occurrences = 12
	}
	if in.EndMonth != 0 && in.EndYear != 0 {
		startIndex := expense.Year*12 + expense.Month
		endIndex := in.EndYear*12 + in.EndMonth
		totalMonths := endIndex - startIndex
		if totalMonths < 0 {
			totalMonths = 0
		}
		occurrences = totalMonths/interval + 1
	}

	var method *string
	if expense.PaymentMethod != "" {
		m := expense.PaymentMethod
		method = &m
	}

	rec := core.Recurrence{
		Kind:           core.KindExpense,
		Name:           expense.Name,
		Value:          expense.Value,
		StartMonth:     expense.Month,
		StartYear:      expense.Year,
		IntervalMonths: interval,
		Occurrences:    occurrences,
		CategoryID:     expense.CategoryID,
		PaymentMethod:  method,
		Notes:          expense.Notes,
	}
	if err := rec.Validate(); err != nil {
		return core.Recurrence{}, err
	}
	return rec, nil
}

func (s *FinanceService) createInstallments(ctx context.Context, expense core.Expense, in InstallmentsInput) ([]core.Installment, error) {
	if in.CardID == 0 {
		return nil, core.Validationf("cartao_id é obrigatório para parcelas.")
	}
	if err := s.EnsureCard(ctx, in.CardID); err != nil {
		return nil, err
	}
	total := in.Total
	if total == 0 {
		total = 1
	}
	values, err := core.SplitInstallments(expense.Value, total)
	if err != nil {
		return nil, err
	}

	comp := core.Competence{Month: expense.Month, Year: expense.Year}
	installments := make([]core.Installment, 0, len(values))
	for i, value := range values {
		created, err := s.store.Installments().Add(ctx, core.Installment{
			CardID:            in.CardID,
			ExpenseName:       expense.Name,
			InstallmentNumber: i + 1,
			TotalInstallments: total,
			Value:             value,
			Month:             comp.Month,
			Year:              comp.Year,
			Status:            core.StatusPending,
		})
		if err != nil {
			return installments, err
		}
		installments = append(installments, created)
		comp = comp.Next()
	}
	return installments, nil
}

// UpdateExpense rewrites the record; with scope "future" the owning
// recurrence is rewritten too so upcoming applications pick up the change.
// The stored recurrence link is preserved regardless of the payload.
func (s *FinanceService) UpdateExpense(ctx context.Context, expense core.Expense, scope string) (core.Expense, error) {
	existing, err := s.store.Expenses().Get(ctx, expense.ID)
	if err != nil {
		return core.Expense{}, err
	}
	if err := expense.Validate(); err != nil {
		return core.Expense{}, err
	}
	if err := s.EnsureCategory(ctx, expense.CategoryID); err != nil {
		return core.Expense{}, err
	}

	expense.RecurrenceID = existing.RecurrenceID
	if err := s.store.Expenses().Update(ctx, expense); err != nil {
		return core.Expense{}, err
	}

	if scope == ScopeFuture && existing.RecurrenceID != nil {
		rec, err := s.store.Recurrences().Get(ctx, *existing.RecurrenceID)
		if err == nil {
			rec.Name = expense.Name
			rec.Value = expense.Value
			rec.CategoryID = expense.CategoryID
			if expense.PaymentMethod != "" {
				m := expense.PaymentMethod
				rec.PaymentMethod = &m
			}
			rec.Notes = expense.Notes
			if err := s.store.Recurrences().Update(ctx, rec); err != nil {
				return core.Expense{}, err
			}
		} else if err != core.ErrNotFound {
			return core.Expense{}, err
		}
	}

	s.publish(ctx, "expense", amqp.ActionUpdated, expense.ID)
	return expense, nil
}

// DeleteExpense removes the record. For expenses owned by a recurrence,
// scopes "future" and "all" cancel the rule and cascade to every generated
// expense; the returned flag reports whether that cascade happened.
func (s *FinanceService) DeleteExpense(ctx context.Context, id int64, scope string) (bool, error) {
	existing, err := s.store.Expenses().Get(ctx, id)
	if err != nil {
		return false, err
	}

	if existing.RecurrenceID != nil && (scope == ScopeFuture || scope == ScopeAll) {
		if err := s.store.Recurrences().Delete(ctx, *existing.RecurrenceID); err != nil && err != core.ErrNotFound {
			return false, err
		}
		if _, err := s.store.Expenses().DeleteByRecurrence(ctx, *existing.RecurrenceID, nil); err != nil {
			return false, err
		}
		s.publish(ctx, "expense", amqp.ActionDeleted, id)
		return true, nil
	}

	if err := s.store.Expenses().Delete(ctx, id); err != nil {
		return false, err
	}
	s.publish(ctx, "expense", amqp.ActionDeleted, id)
	return false, nil
}

// incomes

func (s *FinanceService) GetIncome(ctx context.Context, id int64) (core.Income, error) {
	return s.store.Incomes().Get(ctx, id)
}

func (s *FinanceService) ListIncomes(ctx context.Context, f storage.IncomeFilter) ([]core.Income, error) {
	return s.store.Incomes().List(ctx, f)
}

func (s *FinanceService) CreateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	created, err := s.store.Incomes().Add(ctx, in)
	if err != nil {
		return core.Income{}, err
	}
	s.publish(ctx, "income", amqp.ActionCreated, created.ID)
	return created, nil
}

func (s *FinanceService) UpdateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	if _, err := s.store.Incomes().Get(ctx, in.ID); err != nil {
		return core.Income{}, err
	}
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	if err := s.store.Incomes().Update(ctx, in); err != nil {
		return core.Income{}, err
	}
	s.publish(ctx, "income", amqp.ActionUpdated, in.ID)
	return in, nil
}

func (s *FinanceService) DeleteIncome(ctx context.Context, id int64) error {
	if err := s.store.Incomes().Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, "income", amqp.ActionDeleted, id)
	return nil
}

// cards

func (s *FinanceService) GetCard(ctx context.Context, id int64) (core.Card, error) {
	return s.store.Cards().Get(ctx, id)
}

func (s *FinanceService) ListCards(ctx context.Context) ([]core.Card, error) {
	return s.store.Cards().List(ctx)
}

func (s *FinanceService) CreateCard(ctx context.Context, c core.Card) (core.Card, error) {
	if err := c.Validate(); err != nil {
		return core.Card{}, err
	}
	return s.store.Cards().Add(ctx, c)
}

func (s *FinanceService) UpdateCard(ctx context.Context, c core.Card) (core.Card, error) {
	if _, err := s.store.Cards().Get(ctx, c.ID); err != nil {
		return core.Card{}, err
	}
	if err := c.Validate(); err != nil {
		return core.Card{}, err
	}
	if err := s.store.Cards().Update(ctx, c); err != nil {
		return core.Card{}, err
	}
	return c, nil
}

// DeleteCard refuses when installments still reference the card.
func (s *FinanceService) DeleteCard(ctx context.Context, id int64) error {
	if _, err := s.store.Cards().Get(ctx, id); err != nil {
		return err
	}
	linked, err := s.store.Installments().ExistsWithCard(ctx, id)
	if err != nil {
		return err
	}
	if linked {
		return core.Conflictf("Não é possível excluir cartão com parcelas vinculadas.")
	}
	return s.store.Cards().Delete(ctx, id)
}

// installments

func (s *FinanceService) ListInstallments(ctx context.Context, f storage.InstallmentFilter) ([]core.Installment, error) {
	return s.store.Installments().List(ctx, f)
}

// Invoice sums the card's installments of one competence.
func (s *FinanceService) Invoice(ctx context.Context, cardID int64, month, year int) (float64, []core.Installment, error) {
	installments, err := s.store.Installments().List(ctx, storage.InstallmentFilter{
		Month:  &month,
		Year:   &year,
		CardID: &cardID,
	})
	if err != nil {
		return 0, nil, err
	}
	values := make([]float64, len(installments))
	for i, p := range installments {
		values[i] = p.Value
	}
	return core.InvoiceTotal(values), installments, nil
}

// goals

func (s *FinanceService) GetGoal(ctx context.Context, id int64) (core.Goal, error) {
	return s.store.Goals().Get(ctx, id)
}

func (s *FinanceService) ListGoals(ctx context.Context, f storage.GoalFilter) ([]core.Goal, error) {
	return s.store.Goals().List(ctx, f)
}

func (s *FinanceService) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	if err := s.EnsureCategory(ctx, g.CategoryID); err != nil {
		return core.Goal{}, err
	}
	return s.store.Goals().Add(ctx, g)
}

func (s *FinanceService) UpdateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if _, err := s.store.Goals().Get(ctx, g.ID); err != nil {
		return core.Goal{}, err
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	if err := s.EnsureCategory(ctx, g.CategoryID); err != nil {
		return core.Goal{}, err
	}
	if err := s.store.Goals().Update(ctx, g); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

func (s *FinanceService) DeleteGoal(ctx context.Context, id int64) error {
	return s.store.Goals().Delete(ctx, id)
}

// recurrences

func (s *FinanceService) GetRecurrence(ctx context.Context, id int64) (core.Recurrence, error) {
	return s.store.Recurrences().Get(ctx, id)
}

func (s *FinanceService) ListRecurrences(ctx context.Context) ([]core.Recurrence, error) {
	return s.store.Recurrences().List(ctx)
}

func (s *FinanceService) CreateRecurrence(ctx context.Context, rec core.Recurrence) (core.Recurrence, error) {
	if err := rec.Validate(); err != nil {
		return core.Recurrence{}, err
	}
	if err := s.EnsureCategory(ctx, rec.CategoryID); err != nil {
		return core.Recurrence{}, err
	}
	return s.store.Recurrences().Add(ctx, rec)
}

func (s *FinanceService) UpdateRecurrence(ctx context.Context, rec core.Recurrence) (core.Recurrence, error) {
	if _, err := s.store.Recurrences().Get(ctx, rec.ID); err != nil {
		return core.Recurrence{}, err
	}
	if err := rec.Validate(); err != nil {
		return core.Recurrence{}, err
	}
	if err := s.EnsureCategory(ctx, rec.CategoryID); err != nil {
		return core.Recurrence{}, err
	}
	if err := s.store.Recurrences().Update(ctx, rec); err != nil {
		return core.Recurrence{}, err
	}
	return rec, nil
}

// DeleteRecurrence cancels the rule and cascades to every expense it
// generated.
func (s *FinanceService) DeleteRecurrence(ctx context.Context, id int64) error {
	if err := s.store.Recurrences().Delete(ctx, id); err != nil {
		return err
	}
	if _, err := s.store.Expenses().DeleteByRecurrence(ctx, id, nil); err != nil {
		return err
	}
	return nil
}

// ApplyRecurrence expands a stored rule into concrete records.
func (s *FinanceService) ApplyRecurrence(ctx context.Context, id int64) ([]core.Expense, []core.Income, error) {
	rec, err := s.store.Recurrences().Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	expenses, incomes, err := s.recurrences.Apply(ctx, rec)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range expenses {
		s.publish(ctx, "expense", amqp.ActionCreated, e.ID)
	}
	for _, in := range incomes {
		s.publish(ctx, "income", amqp.ActionCreated, in.ID)
	}
	return expenses, incomes, nil
}
