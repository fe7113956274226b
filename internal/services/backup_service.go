package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"saveyourmoney/internal/core"
	"saveyourmoney/internal/storage"
)

// BackupVersion tags exported snapshots; restore accepts any snapshot whose
// major version matches supportedBackupMajor.
const (
	BackupVersion        = "1.0"
	supportedBackupMajor = "1"
)

// Snapshot is the external backup representation. The key names are part of
// the format and must not change: "income" (not "incomes") and
// "recurringExpenses" (not "recurrences") are what existing backup files use.
type Snapshot struct {
	Version           string             `json:"version"`
	ExportedAt        string             `json:"exportedAt"`
	Cards             []core.Card        `json:"cards"`
	Expenses          []core.Expense     `json:"expenses"`
	RecurringExpenses []core.Recurrence  `json:"recurringExpenses"`
	Income            []core.Income      `json:"income"`
	Categories        []core.Category    `json:"categories"`
	Installments      []core.Installment `json:"installments"`
	Goals             []core.Goal        `json:"goals"`
	Settings          map[string]any     `json:"settings"`
}

// BackupService exports the dataset to a versioned snapshot and restores a
// snapshot atomically.
type BackupService struct {
	store *storage.Store
}

func NewBackupService(store *storage.Store) *BackupService {
	return &BackupService{store: store}
}

// Export serializes every record, ids included. Ids are authoritative on
// restore.
func (s *BackupService) Export(ctx context.Context) (Snapshot, error) {
	ds, err := s.store.Snapshot(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read dataset for export: %w", err)
	}

	snap := Snapshot{
		Version:           BackupVersion,
		ExportedAt:        time.Now().UTC().Format("2006-01-02"),
		Cards:             ds.Cards,
		Expenses:          ds.Expenses,
		RecurringExpenses: ds.Recurrences,
		Income:            ds.Incomes,
		Categories:        ds.Categories,
		Installments:      ds.Installments,
		Goals:             ds.Goals,
		Settings:          map[string]any{},
	}

	// Empty tables serialize as [] rather than null.
	if snap.Cards == nil {
		snap.Cards = []core.Card{}
	}
	if snap.Expenses == nil {
		snap.Expenses = []core.Expense{}
	}
	if snap.RecurringExpenses == nil {
		snap.RecurringExpenses = []core.Recurrence{}
	}
	if snap.Income == nil {
		snap.Income = []core.Income{}
	}
	if snap.Categories == nil {
		snap.Categories = []core.Category{}
	}
	if snap.Installments == nil {
		snap.Installments = []core.Installment{}
	}
	if snap.Goals == nil {
		snap.Goals = []core.Goal{}
	}

	return snap, nil
}

// Restore validates the raw payload completely, then swaps the dataset in one
// transaction. Nothing is written until every structural, field-level, and
// referential check has passed; any mutation failure rolls the whole swap
// back. Returns per-entity restored counts.
func (s *BackupService) Restore(ctx context.Context, payload any) (map[string]int, error) {
	raw, err := validateStructure(payload)
	if err != nil {
		return nil, err
	}

	ds := storage.Dataset{}
	for _, item := range raw.categories {
		c, err := parseCategory(item)
		if err != nil {
			return nil, err
		}
		ds.Categories = append(ds.Categories, c)
	}
	for _, item := range raw.cards {
		c, err := parseCard(item)
		if err != nil {
			return nil, err
		}
		ds.Cards = append(ds.Cards, c)
	}
	for _, item := range raw.expenses {
		e, err := parseExpense(item)
		if err != nil {
			return nil, err
		}
		ds.Expenses = append(ds.Expenses, e)
	}
	for _, item := range raw.recurrences {
		r, err := parseRecurrence(item)
		if err != nil {
			return nil, err
		}
		ds.Recurrences = append(ds.Recurrences, r)
	}
	for _, item := range raw.incomes {
		in, err := parseIncome(item)
		if err != nil {
			return nil, err
		}
		ds.Incomes = append(ds.Incomes, in)
	}
	for _, item := range raw.installments {
		p, err := parseInstallment(item)
		if err != nil {
			return nil, err
		}
		ds.Installments = append(ds.Installments, p)
	}
	for _, item := range raw.goals {
		g, err := parseGoal(item)
		if err != nil {
			return nil, err
		}
		ds.Goals = append(ds.Goals, g)
	}

	if err := validateRelationships(ds); err != nil {
		return nil, err
	}

	if err := s.store.ReplaceAll(ctx, ds); err != nil {
		return nil, fmt.Errorf("restore dataset: %w", err)
	}

	counts := map[string]int{
		"cards":        len(ds.Cards),
		"categories":   len(ds.Categories),
		"expenses":     len(ds.Expenses),
		"incomes":      len(ds.Incomes),
		"recurrences":  len(ds.Recurrences),
		"installments": len(ds.Installments),
		"goals":        len(ds.Goals),
	}

	slog.InfoContext(ctx, "Backup restored",
		"cards", counts["cards"],
		"categories", counts["categories"],
		"expenses", counts["expenses"],
		"incomes", counts["incomes"],
		"recurrences", counts["recurrences"],
		"installments", counts["installments"],
		"goals", counts["goals"])

	return counts, nil
}

type rawSnapshot struct {
	cards        []any
	expenses     []any
	categories   []any
	recurrences  []any
	incomes      []any
	installments []any
	goals        []any
}

func validateStructure(payload any) (rawSnapshot, error) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return rawSnapshot{}, core.Backupf("Arquivo inválido: estrutura JSON deve ser um objeto.")
	}

	version, ok := obj["version"].(string)
	if !ok || strings.TrimSpace(version) == "" {
		return rawSnapshot{}, core.Backupf("Arquivo inválido: versão de backup ausente.")
	}
	major, _, _ := strings.Cut(version, ".")
	if major != supportedBackupMajor {
		return rawSnapshot{}, core.Backupf("Versão de backup incompatível com esta aplicação.")
	}

	var raw rawSnapshot
	for _, field := range []struct {
		name string
		dst  *[]any
	}{
		{"cards", &raw.cards},
		{"expenses", &raw.expenses},
		{"categories", &raw.categories},
	} {
		list, ok := obj[field.name].([]any)
		if !ok {
			return rawSnapshot{}, core.Backupf("Arquivo inválido: campo '%s' deve ser uma lista.", field.name)
		}
		*field.dst = list
	}

	var err error
	if raw.recurrences, err = optionalList(obj, "recurringExpenses", "recurrences"); err != nil {
		return rawSnapshot{}, err
	}
	if raw.incomes, err = optionalList(obj, "income", "incomes"); err != nil {
		return rawSnapshot{}, err
	}
	if raw.installments, err = optionalList(obj, "installments", ""); err != nil {
		return rawSnapshot{}, err
	}
	if raw.goals, err = optionalList(obj, "goals", ""); err != nil {
		return rawSnapshot{}, err
	}

	if settings, present := obj["settings"]; present && settings != nil {
		if _, ok := settings.(map[string]any); !ok {
			return rawSnapshot{}, core.Backupf("Arquivo inválido: campo 'settings' deve ser um objeto.")
		}
	}

	return raw, nil
}

// optionalList resolves a snapshot array that may live under a legacy key and
// defaults to empty when absent.
func optionalList(obj map[string]any, name, legacy string) ([]any, error) {
	value, present := obj[name]
	if !present && legacy != "" {
		value, present = obj[legacy]
	}
	if !present || value == nil {
		return []any{}, nil
	}
	list, ok := value.([]any)
	if !ok {
		return nil, core.Backupf("Arquivo inválido: campo '%s' deve ser uma lista.", name)
	}
	return list, nil
}

func validateRelationships(ds storage.Dataset) error {
	categoryIDs := make(map[int64]bool, len(ds.Categories))
	for _, c := range ds.Categories {
		categoryIDs[c.ID] = true
	}
	cardIDs := make(map[int64]bool, len(ds.Cards))
	for _, c := range ds.Cards {
		cardIDs[c.ID] = true
	}
	recurrenceIDs := make(map[int64]bool, len(ds.Recurrences))
	for _, r := range ds.Recurrences {
		recurrenceIDs[r.ID] = true
	}

	for _, e := range ds.Expenses {
		if e.CategoryID != nil && !categoryIDs[*e.CategoryID] {
			return core.Backupf("Integridade inválida: gasto referencia categoria inexistente.")
		}
	}
	for _, r := range ds.Recurrences {
		if r.CategoryID != nil && !categoryIDs[*r.CategoryID] {
			return core.Backupf("Integridade inválida: recorrência referencia categoria inexistente.")
		}
	}
	for _, e := range ds.Expenses {
		if e.RecurrenceID != nil && !recurrenceIDs[*e.RecurrenceID] {
			return core.Backupf("Integridade inválida: gasto recorrente referencia recorrência inexistente.")
		}
	}
	for _, g := range ds.Goals {
		if g.CategoryID != nil && !categoryIDs[*g.CategoryID] {
			return core.Backupf("Integridade inválida: meta referencia categoria inexistente.")
		}
	}
	for _, p := range ds.Installments {
		if !cardIDs[p.CardID] {
			return core.Backupf("Integridade inválida: parcela referencia cartão inexistente.")
		}
	}
	return nil
}

// record parsing

func parseRecord(raw any, collection string) (map[string]any, error) {
	item, ok := raw.(map[string]any)
	if !ok {
		return nil, core.Backupf("Arquivo inválido: item em '%s' deve ser um objeto.", collection)
	}
	return item, nil
}

func requireInt(item map[string]any, field, collection string) (int64, error) {
	value, present := item[field]
	if !present {
		return 0, core.Backupf("Campo '%s' inválido em '%s'.", field, collection)
	}
	n, err := toInt(value)
	if err != nil {
		return 0, core.Backupf("Campo '%s' inválido em '%s'.", field, collection)
	}
	return n, nil
}

func requireFloat(item map[string]any, field, collection string) (float64, error) {
	value, present := item[field]
	if !present {
		return 0, core.Backupf("Campo '%s' inválido em '%s'.", field, collection)
	}
	switch v := value.(type) {
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, core.Backupf("Campo '%s' inválido em '%s'.", field, collection)
		}
		return f, nil
	default:
		return 0, core.Backupf("Campo '%s' inválido em '%s'.", field, collection)
	}
}

func requireString(item map[string]any, field, collection string) (string, error) {
	value, present := item[field]
	if !present || value == nil {
		return "", core.Backupf("Registro inválido em '%s'.", collection)
	}
	if s, ok := value.(string); ok {
		return s, nil
	}
	return fmt.Sprint(value), nil
}

func toInt(value any) (int64, error) {
	switch v := value.(type) {
	case float64:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, err
		}
		return n, nil
	default:
		return 0, fmt.Errorf("valor não numérico: %v", value)
	}
}

func optionalIntField(item map[string]any, field string) (*int64, error) {
	value, present := item[field]
	if !present || value == nil || value == "" {
		return nil, nil
	}
	n, err := toInt(value)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func optionalStringField(item map[string]any, field string) *string {
	value, present := item[field]
	if !present || value == nil {
		return nil
	}
	s, ok := value.(string)
	if !ok {
		s = fmt.Sprint(value)
	}
	return &s
}

func optionalBoolField(item map[string]any, field string) (*bool, error) {
	value, present := item[field]
	if !present || value == nil || value == "" {
		return nil, nil
	}
	if b, ok := value.(bool); ok {
		return &b, nil
	}
	normalized := strings.ToLower(strings.TrimSpace(fmt.Sprint(value)))
	switch normalized {
	case "1", "true", "sim", "yes":
		b := true
		return &b, nil
	case "0", "false", "nao", "não", "no":
		b := false
		return &b, nil
	}
	return nil, fmt.Errorf("valor booleano inválido: %v", value)
}

func parseCategory(raw any) (core.Category, error) {
	item, err := parseRecord(raw, "categories")
	if err != nil {
		return core.Category{}, err
	}
	id, err := requireInt(item, "id", "categories")
	if err != nil {
		return core.Category{}, err
	}
	name, err := requireString(item, "name", "categories")
	if err != nil {
		return core.Category{}, err
	}
	c := core.Category{
		ID:          id,
		Name:        name,
		Description: optionalStringField(item, "description"),
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, core.Backupf("Registro inválido em 'categories'.")
	}
	return c, nil
}

func parseCard(raw any) (core.Card, error) {
	item, err := parseRecord(raw, "cards")
	if err != nil {
		return core.Card{}, err
	}
	id, err := requireInt(item, "id", "cards")
	if err != nil {
		return core.Card{}, err
	}
	name, err := requireString(item, "name", "cards")
	if err != nil {
		return core.Card{}, err
	}
	limit, err := requireFloat(item, "limit", "cards")
	if err != nil {
		return core.Card{}, err
	}
	closingDay, err := requireInt(item, "closing_day", "cards")
	if err != nil {
		return core.Card{}, err
	}
	dueDay, err := requireInt(item, "due_day", "cards")
	if err != nil {
		return core.Card{}, err
	}
	c := core.Card{
		ID:         id,
		Name:       name,
		Limit:      limit,
		Bank:       optionalStringField(item, "bank"),
		Brand:      optionalStringField(item, "brand"),
		ClosingDay: int(closingDay),
		DueDay:     int(dueDay),
	}
	if err := c.Validate(); err != nil {
		return core.Card{}, core.Backupf("Registro inválido em 'cards'.")
	}
	return c, nil
}

func parseExpense(raw any) (core.Expense, error) {
	item, err := parseRecord(raw, "expenses")
	if err != nil {
		return core.Expense{}, err
	}
	id, err := requireInt(item, "id", "expenses")
	if err != nil {
		return core.Expense{}, err
	}
	name, err := requireString(item, "name", "expenses")
	if err != nil {
		return core.Expense{}, err
	}
	value, err := requireFloat(item, "value", "expenses")
	if err != nil {
		return core.Expense{}, err
	}
	month, err := requireInt(item, "month", "expenses")
	if err != nil {
		return core.Expense{}, err
	}
	year, err := requireInt(item, "year", "expenses")
	if err != nil {
		return core.Expense{}, err
	}
	categoryID, err := optionalIntField(item, "category_id")
	if err != nil {
		return core.Expense{}, core.Backupf("Registro inválido em 'expenses'.")
	}
	recurrenceID, err := optionalIntField(item, "recurrence_id")
	if err != nil {
		return core.Expense{}, core.Backupf("Registro inválido em 'expenses'.")
	}
	method := core.PaymentDebit
	if m := optionalStringField(item, "payment_method"); m != nil && *m != "" {
		method = *m
	}
	e := core.Expense{
		ID:            id,
		Name:          name,
		Value:         value,
		Month:         int(month),
		Year:          int(year),
		CategoryID:    categoryID,
		RecurrenceID:  recurrenceID,
		PaymentMethod: method,
		Notes:         optionalStringField(item, "notes"),
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, core.Backupf("Registro inválido em 'expenses'.")
	}
	return e, nil
}

func parseIncome(raw any) (core.Income, error) {
	item, err := parseRecord(raw, "income")
	if err != nil {
		return core.Income{}, err
	}
	id, err := requireInt(item, "id", "income")
	if err != nil {
		return core.Income{}, err
	}
	name, err := requireString(item, "name", "income")
	if err != nil {
		return core.Income{}, err
	}
	value, err := requireFloat(item, "value", "income")
	if err != nil {
		return core.Income{}, err
	}
	month, err := requireInt(item, "month", "income")
	if err != nil {
		return core.Income{}, err
	}
	year, err := requireInt(item, "year", "income")
	if err != nil {
		return core.Income{}, err
	}
	confirmedPtr, err := optionalBoolField(item, "confirmed")
	if err != nil {
		return core.Income{}, core.Backupf("Registro inválido em 'income'.")
	}
	confirmed := true
	if confirmedPtr != nil {
		confirmed = *confirmedPtr
	}
	in := core.Income{
		ID:        id,
		Name:      name,
		Value:     value,
		Month:     int(month),
		Year:      int(year),
		Confirmed: confirmed,
		Notes:     optionalStringField(item, "notes"),
	}
	if err := in.Validate(); err != nil {
		return core.Income{}, core.Backupf("Registro inválido em 'income'.")
	}
	return in, nil
}

func parseRecurrence(raw any) (core.Recurrence, error) {
	item, err := parseRecord(raw, "recurringExpenses")
	if err != nil {
		return core.Recurrence{}, err
	}
	id, err := requireInt(item, "id", "recurringExpenses")
	if err != nil {
		return core.Recurrence{}, err
	}
	kind, err := requireString(item, "kind", "recurringExpenses")
	if err != nil {
		return core.Recurrence{}, err
	}
	name, err := requireString(item, "name", "recurringExpenses")
	if err != nil {
		return core.Recurrence{}, err
	}
	value, err := requireFloat(item, "value", "recurringExpenses")
	if err != nil {
		return core.Recurrence{}, err
	}
	startMonth, err := requireInt(item, "start_month", "recurringExpenses")
	if err != nil {
		return core.Recurrence{}, err
	}
	startYear, err := requireInt(item, "start_year", "recurringExpenses")
	if err != nil {
		return core.Recurrence{}, err
	}
	intervalMonths, err := requireInt(item, "interval_months", "recurringExpenses")
	if err != nil {
		return core.Recurrence{}, err
	}
	occurrences, err := requireInt(item, "occurrences", "recurringExpenses")
	if err != nil {
		return core.Recurrence{}, err
	}
	categoryID, err := optionalIntField(item, "category_id")
	if err != nil {
		return core.Recurrence{}, core.Backupf("Registro inválido em 'recurringExpenses'.")
	}
	confirmed, err := optionalBoolField(item, "confirmed")
	if err != nil {
		return core.Recurrence{}, core.Backupf("Registro inválido em 'recurringExpenses'.")
	}
	r := core.Recurrence{
		ID:             id,
		Kind:           kind,
		Name:           name,
		Value:          value,
		StartMonth:     int(startMonth),
		StartYear:      int(startYear),
		IntervalMonths: int(intervalMonths),
		Occurrences:    int(occurrences),
		CategoryID:     categoryID,
		PaymentMethod:  optionalStringField(item, "payment_method"),
		Confirmed:      confirmed,
		Notes:          optionalStringField(item, "notes"),
	}
	if err := r.Validate(); err != nil {
		return core.Recurrence{}, core.Backupf("Registro inválido em 'recurringExpenses'.")
	}
	return r, nil
}

func parseInstallment(raw any) (core.Installment, error) {
	item, err := parseRecord(raw, "installments")
	if err != nil {
		return core.Installment{}, err
	}
	id, err := requireInt(item, "id", "installments")
	if err != nil {
		return core.Installment{}, err
	}
	cardID, err := requireInt(item, "card_id", "installments")
	if err != nil {
		return core.Installment{}, err
	}
	expenseName, err := requireString(item, "expense_name", "installments")
	if err != nil {
		return core.Installment{}, err
	}
	number, err := requireInt(item, "installment_number", "installments")
	if err != nil {
		return core.Installment{}, err
	}
	total, err := requireInt(item, "total_installments", "installments")
	if err != nil {
		return core.Installment{}, err
	}
	value, err := requireFloat(item, "value", "installments")
	if err != nil {
		return core.Installment{}, err
	}
	month, err := requireInt(item, "month", "installments")
	if err != nil {
		return core.Installment{}, err
	}
	year, err := requireInt(item, "year", "installments")
	if err != nil {
		return core.Installment{}, err
	}
	status := core.StatusPending
	if s := optionalStringField(item, "status"); s != nil && *s != "" {
		status = *s
	}
	p := core.Installment{
		ID:                id,
		CardID:            cardID,
		ExpenseName:       expenseName,
		InstallmentNumber: int(number),
		TotalInstallments: int(total),
		Value:             value,
		Month:             int(month),
		Year:              int(year),
		Status:            status,
	}
	if err := p.Validate(); err != nil {
		return core.Installment{}, core.Backupf("Registro inválido em 'installments'.")
	}
	return p, nil
}

func parseGoal(raw any) (core.Goal, error) {
	item, err := parseRecord(raw, "goals")
	if err != nil {
		return core.Goal{}, err
	}
	id, err := requireInt(item, "id", "goals")
	if err != nil {
		return core.Goal{}, err
	}
	name, err := requireString(item, "name", "goals")
	if err != nil {
		return core.Goal{}, err
	}
	limitValue, err := requireFloat(item, "limit_value", "goals")
	if err != nil {
		return core.Goal{}, err
	}
	month, err := requireInt(item, "month", "goals")
	if err != nil {
		return core.Goal{}, err
	}
	year, err := requireInt(item, "year", "goals")
	if err != nil {
		return core.Goal{}, err
	}
	categoryID, err := optionalIntField(item, "category_id")
	if err != nil {
		return core.Goal{}, core.Backupf("Registro inválido em 'goals'.")
	}
	g := core.Goal{
		ID:         id,
		Name:       name,
		LimitValue: limitValue,
		Month:      int(month),
		Year:       int(year),
		CategoryID: categoryID,
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, core.Backupf("Registro inválido em 'goals'.")
	}
	return g, nil
}
