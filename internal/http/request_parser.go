package http

import (
	"fmt"
	"strconv"
	"strings"

	"saveyourmoney/internal/core"
	"saveyourmoney/internal/services"
)

// Payload fields accept both the English entity names and the Portuguese
// aliases the original clients send (nome, valor, mes, ...). Helpers below
// parse one field; builders assemble whole entities, merging with the stored
// record on updates so partial payloads work.

func pick(data map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := data[key]; ok {
			return v
		}
	}
	return nil
}

func pickDefault(data map[string]any, def any, keys ...string) any {
	for _, key := range keys {
		if v, ok := data[key]; ok {
			return v
		}
	}
	return def
}

func parseFloatField(v any, field string) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f, nil
		}
	}
	return 0, core.Validationf("%s inválido.", field)
}

func parseIntField(v any, field string) (int, error) {
	switch t := v.(type) {
	case float64:
		return int(t), nil
	case int:
		return t, nil
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n, nil
		}
	}
	return 0, core.Validationf("%s inválido.", field)
}

// parseOptionalID parses a positive int64 reference, treating nil and ""
// as absent.
func parseOptionalID(v any, field string) (*int64, error) {
	if v == nil || v == "" {
		return nil, nil
	}
	n, err := parseIntField(v, field)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, core.Validationf("%s inválido.", field)
	}
	id := int64(n)
	return &id, nil
}

func requiredString(data map[string]any, field string, keys ...string) (string, error) {
	raw := pick(data, keys...)
	value := ""
	if raw != nil {
		value = strings.TrimSpace(fmt.Sprint(raw))
	}
	if value == "" {
		return "", core.Validationf("%s é obrigatório.", field)
	}
	return value, nil
}

func optionalString(data map[string]any, keys ...string) *string {
	raw := pick(data, keys...)
	if raw == nil {
		return nil
	}
	value := strings.TrimSpace(fmt.Sprint(raw))
	if value == "" {
		return nil
	}
	return &value
}

func parseOptionalBool(v any) (*bool, error) {
	if v == nil {
		return nil, nil
	}
	if b, ok := v.(bool); ok {
		return &b, nil
	}
	var normalized string
	if f, ok := v.(float64); ok {
		normalized = strconv.FormatFloat(f, 'f', -1, 64)
	} else {
		normalized = strings.ToLower(strings.TrimSpace(fmt.Sprint(v)))
	}
	switch normalized {
	case "1", "true", "sim", "yes":
		b := true
		return &b, nil
	case "0", "false", "nao", "não", "no":
		b := false
		return &b, nil
	}
	return nil, core.Validationf("Valor booleano inválido.")
}

// expenses

func expenseCreateFromPayload(data map[string]any) (core.Expense, error) {
	name, err := requiredString(data, "Nome do gasto", "name", "nome")
	if err != nil {
		return core.Expense{}, err
	}
	value, err := parseFloatField(pick(data, "value", "valor"), "Valor")
	if err != nil {
		return core.Expense{}, err
	}
	month, err := parseIntField(pick(data, "month", "mes"), "Mês")
	if err != nil {
		return core.Expense{}, err
	}
	year, err := parseIntField(pick(data, "year", "ano"), "Ano")
	if err != nil {
		return core.Expense{}, err
	}
	categoryID, err := parseOptionalID(pick(data, "category_id", "categoria_id"), "Categoria")
	if err != nil {
		return core.Expense{}, err
	}
	payment := strings.TrimSpace(fmt.Sprint(pickDefault(data, core.PaymentDebit, "payment_method", "forma")))
	if payment == "" {
		payment = core.PaymentDebit
	}
	return core.Expense{
		Name:          name,
		Value:         value,
		Month:         month,
		Year:          year,
		CategoryID:    categoryID,
		PaymentMethod: payment,
		Notes:         optionalString(data, "notes", "observacao"),
	}, nil
}

func expenseUpdateFromPayload(data map[string]any, existing core.Expense) (core.Expense, error) {
	value, err := parseFloatField(pickDefault(data, existing.Value, "value", "valor"), "Valor")
	if err != nil {
		return core.Expense{}, err
	}
	month, err := parseIntField(pickDefault(data, existing.Month, "month", "mes"), "Mês")
	if err != nil {
		return core.Expense{}, err
	}
	year, err := parseIntField(pickDefault(data, existing.Year, "year", "ano"), "Ano")
	if err != nil {
		return core.Expense{}, err
	}
	categoryID := existing.CategoryID
	if hasKey(data, "category_id", "categoria_id") {
		categoryID, err = parseOptionalID(pick(data, "category_id", "categoria_id"), "Categoria")
		if err != nil {
			return core.Expense{}, err
		}
	}
	updated := existing
	updated.Name = stringDefault(data, existing.Name, "name", "nome")
	updated.Value = value
	updated.Month = month
	updated.Year = year
	updated.CategoryID = categoryID
	updated.PaymentMethod = stringDefault(data, existing.PaymentMethod, "payment_method", "forma")
	updated.Notes = optionalStringDefault(data, existing.Notes, "notes", "observacao")
	return updated, nil
}

// recurringInputFromPayload reads the inline "recurring" block of an expense
// creation. Nil means the block is absent or not enabled.
func recurringInputFromPayload(data map[string]any) (*services.RecurringInput, error) {
	raw, ok := data["recurring"].(map[string]any)
	if !ok {
		return nil, nil
	}
	enabled, err := parseOptionalBool(raw["enabled"])
	if err != nil {
		return nil, err
	}
	if enabled == nil || !*enabled {
		return nil, nil
	}

	in := &services.RecurringInput{
		Frequency: strings.ToLower(strings.TrimSpace(fmt.Sprint(pickDefault(raw, "mensal", "frequency")))),
	}
	if v := pick(raw, "interval_months"); v != nil && v != "" {
		if in.IntervalMonths, err = parseIntField(v, "Intervalo de meses"); err != nil {
			return nil, err
		}
		if in.IntervalMonths <= 0 {
			return nil, core.Validationf("interval_months deve ser maior que zero.")
		}
	}
	if v := pick(raw, "occurrences"); v != nil && v != "" {
		if in.Occurrences, err = parseIntField(v, "Ocorrências"); err != nil {
			return nil, err
		}
	}
	if v := pick(raw, "end_month"); v != nil && v != "" {
		if in.EndMonth, err = parseIntField(v, "Mês final"); err != nil {
			return nil, err
		}
	}
	if v := pick(raw, "end_year"); v != nil && v != "" {
		if in.EndYear, err = parseIntField(v, "Ano final"); err != nil {
			return nil, err
		}
	}
	return in, nil
}

// installmentsInputFromPayload reads the "installments"/"parcelas" block.
// Nil means no split was requested.
func installmentsInputFromPayload(data map[string]any) (*services.InstallmentsInput, error) {
	raw, ok := pick(data, "installments", "parcelas").(map[string]any)
	if !ok {
		return nil, nil
	}
	cardID, err := parseOptionalID(pick(raw, "card_id", "cartao_id"), "Cartão")
	if err != nil {
		return nil, err
	}
	if cardID == nil {
		return nil, core.Validationf("cartao_id é obrigatório para parcelas.")
	}
	total := 1
	if v := pick(raw, "total", "total_parcelas"); v != nil && v != "" {
		if total, err = parseIntField(v, "Total de parcelas"); err != nil {
			return nil, err
		}
	}
	return &services.InstallmentsInput{CardID: *cardID, Total: total}, nil
}

// incomes

func incomeCreateFromPayload(data map[string]any) (core.Income, error) {
	name, err := requiredString(data, "Nome da entrada", "name", "nome")
	if err != nil {
		return core.Income{}, err
	}
	value, err := parseFloatField(pick(data, "value", "valor"), "Valor")
	if err != nil {
		return core.Income{}, err
	}
	month, err := parseIntField(pick(data, "month", "mes"), "Mês")
	if err != nil {
		return core.Income{}, err
	}
	year, err := parseIntField(pick(data, "year", "ano"), "Ano")
	if err != nil {
		return core.Income{}, err
	}
	confirmed, err := parseOptionalBool(pick(data, "confirmed", "confirmado"))
	if err != nil {
		return core.Income{}, err
	}
	in := core.Income{
		Name:      name,
		Value:     value,
		Month:     month,
		Year:      year,
		Confirmed: true,
		Notes:     optionalString(data, "notes", "observacao"),
	}
	if confirmed != nil {
		in.Confirmed = *confirmed
	}
	return in, nil
}

func incomeUpdateFromPayload(data map[string]any, existing core.Income) (core.Income, error) {
	value, err := parseFloatField(pickDefault(data, existing.Value, "value", "valor"), "Valor")
	if err != nil {
		return core.Income{}, err
	}
	month, err := parseIntField(pickDefault(data, existing.Month, "month", "mes"), "Mês")
	if err != nil {
		return core.Income{}, err
	}
	year, err := parseIntField(pickDefault(data, existing.Year, "year", "ano"), "Ano")
	if err != nil {
		return core.Income{}, err
	}
	confirmed, err := parseOptionalBool(pick(data, "confirmed", "confirmado"))
	if err != nil {
		return core.Income{}, err
	}
	updated := existing
	updated.Name = stringDefault(data, existing.Name, "name", "nome")
	updated.Value = value
	updated.Month = month
	updated.Year = year
	updated.Notes = optionalStringDefault(data, existing.Notes, "notes", "observacao")
	if confirmed != nil {
		updated.Confirmed = *confirmed
	}
	return updated, nil
}

// cards

func cardCreateFromPayload(data map[string]any) (core.Card, error) {
	name, err := requiredString(data, "Nome do cartão", "name", "nome")
	if err != nil {
		return core.Card{}, err
	}
	limit := 0.0
	if v := pick(data, "limit", "limite"); v != nil && v != "" {
		if limit, err = parseFloatField(v, "Limite"); err != nil {
			return core.Card{}, err
		}
	}
	closingDay, err := parseIntField(pickDefault(data, 1, "closing_day", "dia_fechamento"), "Dia de fechamento")
	if err != nil {
		return core.Card{}, err
	}
	dueDay, err := parseIntField(pickDefault(data, 1, "due_day", "dia_vencimento"), "Dia de vencimento")
	if err != nil {
		return core.Card{}, err
	}
	return core.Card{
		Name:       name,
		Limit:      limit,
		Bank:       optionalString(data, "bank", "banco"),
		Brand:      optionalString(data, "brand", "bandeira"),
		ClosingDay: closingDay,
		DueDay:     dueDay,
	}, nil
}

func cardUpdateFromPayload(data map[string]any, existing core.Card) (core.Card, error) {
	limit := existing.Limit
	if v := pick(data, "limit", "limite"); v != nil && v != "" {
		var err error
		if limit, err = parseFloatField(v, "Limite"); err != nil {
			return core.Card{}, err
		}
	}
	closingDay, err := parseIntField(pickDefault(data, existing.ClosingDay, "closing_day", "dia_fechamento"), "Dia de fechamento")
	if err != nil {
		return core.Card{}, err
	}
	dueDay, err := parseIntField(pickDefault(data, existing.DueDay, "due_day", "dia_vencimento"), "Dia de vencimento")
	if err != nil {
		return core.Card{}, err
	}
	updated := existing
	updated.Name = stringDefault(data, existing.Name, "name", "nome")
	updated.Limit = limit
	updated.Bank = optionalStringDefault(data, existing.Bank, "bank", "banco")
	updated.Brand = optionalStringDefault(data, existing.Brand, "brand", "bandeira")
	updated.ClosingDay = closingDay
	updated.DueDay = dueDay
	return updated, nil
}

// goals

func goalCreateFromPayload(data map[string]any) (core.Goal, error) {
	name, err := requiredString(data, "Nome da meta", "name", "nome")
	if err != nil {
		return core.Goal{}, err
	}
	limitValue, err := parseFloatField(pick(data, "limit_value", "valor_limite"), "Valor limite")
	if err != nil {
		return core.Goal{}, err
	}
	month, err := parseIntField(pick(data, "month", "mes"), "Mês")
	if err != nil {
		return core.Goal{}, err
	}
	year, err := parseIntField(pick(data, "year", "ano"), "Ano")
	if err != nil {
		return core.Goal{}, err
	}
	categoryID, err := parseOptionalID(pick(data, "category_id", "categoria_id"), "Categoria")
	if err != nil {
		return core.Goal{}, err
	}
	return core.Goal{
		Name:       name,
		LimitValue: limitValue,
		Month:      month,
		Year:       year,
		CategoryID: categoryID,
	}, nil
}

func goalUpdateFromPayload(data map[string]any, existing core.Goal) (core.Goal, error) {
	limitValue, err := parseFloatField(pickDefault(data, existing.LimitValue, "limit_value", "valor_limite"), "Valor limite")
	if err != nil {
		return core.Goal{}, err
	}
	month, err := parseIntField(pickDefault(data, existing.Month, "month", "mes"), "Mês")
	if err != nil {
		return core.Goal{}, err
	}
	year, err := parseIntField(pickDefault(data, existing.Year, "year", "ano"), "Ano")
	if err != nil {
		return core.Goal{}, err
	}
	categoryID := existing.CategoryID
	if hasKey(data, "category_id", "categoria_id") {
		categoryID, err = parseOptionalID(pick(data, "category_id", "categoria_id"), "Categoria")
		if err != nil {
			return core.Goal{}, err
		}
	}
	updated := existing
	updated.Name = stringDefault(data, existing.Name, "name", "nome")
	updated.LimitValue = limitValue
	updated.Month = month
	updated.Year = year
	updated.CategoryID = categoryID
	return updated, nil
}

// recurrences

func recurrenceCreateFromPayload(data map[string]any) (core.Recurrence, error) {
	kind, err := requiredString(data, "Tipo de recorrência", "kind", "tipo")
	if err != nil {
		return core.Recurrence{}, err
	}
	name, err := requiredString(data, "Nome da recorrência", "name", "nome")
	if err != nil {
		return core.Recurrence{}, err
	}
	value, err := parseFloatField(pick(data, "value", "valor"), "Valor")
	if err != nil {
		return core.Recurrence{}, err
	}
	startMonth, err := parseIntField(pick(data, "start_month", "mes_inicio"), "Mês inicial")
	if err != nil {
		return core.Recurrence{}, err
	}
	startYear, err := parseIntField(pick(data, "start_year", "ano_inicio"), "Ano inicial")
	if err != nil {
		return core.Recurrence{}, err
	}
	interval, err := parseIntField(pickDefault(data, 1, "interval_months", "intervalo_meses"), "Intervalo de meses")
	if err != nil {
		return core.Recurrence{}, err
	}
	occurrences, err := parseIntField(pickDefault(data, 12, "occurrences", "ocorrencias"), "Ocorrências")
	if err != nil {
		return core.Recurrence{}, err
	}
	categoryID, err := parseOptionalID(pick(data, "category_id", "categoria_id"), "Categoria")
	if err != nil {
		return core.Recurrence{}, err
	}
	confirmed, err := parseOptionalBool(pick(data, "confirmed", "confirmado"))
	if err != nil {
		return core.Recurrence{}, err
	}
	return core.Recurrence{
		Kind:           kind,
		Name:           name,
		Value:          value,
		StartMonth:     startMonth,
		StartYear:      startYear,
		IntervalMonths: interval,
		Occurrences:    occurrences,
		CategoryID:     categoryID,
		PaymentMethod:  optionalString(data, "payment_method", "forma"),
		Confirmed:      confirmed,
		Notes:          optionalString(data, "notes", "observacao"),
	}, nil
}

func recurrenceUpdateFromPayload(data map[string]any, existing core.Recurrence) (core.Recurrence, error) {
	value, err := parseFloatField(pickDefault(data, existing.Value, "value", "valor"), "Valor")
	if err != nil {
		return core.Recurrence{}, err
	}
	startMonth, err := parseIntField(pickDefault(data, existing.StartMonth, "start_month", "mes_inicio"), "Mês inicial")
	if err != nil {
		return core.Recurrence{}, err
	}
	startYear, err := parseIntField(pickDefault(data, existing.StartYear, "start_year", "ano_inicio"), "Ano inicial")
	if err != nil {
		return core.Recurrence{}, err
	}
	interval, err := parseIntField(pickDefault(data, existing.IntervalMonths, "interval_months", "intervalo_meses"), "Intervalo de meses")
	if err != nil {
		return core.Recurrence{}, err
	}
	occurrences, err := parseIntField(pickDefault(data, existing.Occurrences, "occurrences", "ocorrencias"), "Ocorrências")
	if err != nil {
		return core.Recurrence{}, err
	}
	categoryID := existing.CategoryID
	if hasKey(data, "category_id", "categoria_id") {
		categoryID, err = parseOptionalID(pick(data, "category_id", "categoria_id"), "Categoria")
		if err != nil {
			return core.Recurrence{}, err
		}
	}
	confirmed := existing.Confirmed
	if hasKey(data, "confirmed", "confirmado") {
		confirmed, err = parseOptionalBool(pick(data, "confirmed", "confirmado"))
		if err != nil {
			return core.Recurrence{}, err
		}
	}
	updated := existing
	updated.Kind = stringDefault(data, existing.Kind, "kind", "tipo")
	updated.Name = stringDefault(data, existing.Name, "name", "nome")
	updated.Value = value
	updated.StartMonth = startMonth
	updated.StartYear = startYear
	updated.IntervalMonths = interval
	updated.Occurrences = occurrences
	updated.CategoryID = categoryID
	updated.PaymentMethod = optionalStringDefault(data, existing.PaymentMethod, "payment_method", "forma")
	updated.Confirmed = confirmed
	updated.Notes = optionalStringDefault(data, existing.Notes, "notes", "observacao")
	return updated, nil
}

// categories

func categoryCreateFromPayload(data map[string]any) (core.Category, error) {
	name, err := requiredString(data, "Nome da categoria", "name", "nome")
	if err != nil {
		return core.Category{}, err
	}
	return core.Category{
		Name:        name,
		Description: optionalString(data, "description", "descricao"),
	}, nil
}

func categoryUpdateFromPayload(data map[string]any, existing core.Category) (core.Category, error) {
	updated := existing
	updated.Name = stringDefault(data, existing.Name, "name", "nome")
	if strings.TrimSpace(updated.Name) == "" {
		return core.Category{}, core.Validationf("Nome da categoria é obrigatório.")
	}
	updated.Description = optionalStringDefault(data, existing.Description, "description", "descricao")
	return updated, nil
}

// merge helpers

func hasKey(data map[string]any, keys ...string) bool {
	for _, key := range keys {
		if _, ok := data[key]; ok {
			return true
		}
	}
	return false
}

func stringDefault(data map[string]any, def string, keys ...string) string {
	raw := pick(data, keys...)
	if raw == nil {
		return def
	}
	return strings.TrimSpace(fmt.Sprint(raw))
}

func optionalStringDefault(data map[string]any, def *string, keys ...string) *string {
	if !hasKey(data, keys...) {
		return def
	}
	return optionalString(data, keys...)
}
