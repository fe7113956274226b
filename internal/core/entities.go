package core

import "strings"

// Recurrence kinds. The set is closed: a rule either generates expenses or
// incomes, never both.
const (
	KindExpense = "expense"
	KindIncome  = "income"
)

// Default payment method for expenses created without one.
const PaymentDebit = "debit"

// Default status for freshly created card installments.
const StatusPending = "pendente"

type (
	// Category groups expenses, recurrences and goals. Referenced by id.
	Category struct {
		ID          int64   `json:"id"`
		Name        string  `json:"name"`
		Description *string `json:"description"`
	}

	// Expense is a single outgoing transaction in a month/year competence.
	// RecurrenceID is set when the expense belongs to a recurrence rule.
	Expense struct {
		ID            int64   `json:"id"`
		Name          string  `json:"name"`
		Value         float64 `json:"value"`
		Month         int     `json:"month"`
		Year          int     `json:"year"`
		CategoryID    *int64  `json:"category_id"`
		RecurrenceID  *int64  `json:"recurrence_id"`
		PaymentMethod string  `json:"payment_method"`
		Notes         *string `json:"notes"`
	}

	// Income is a single incoming transaction (salary, bonus, ...).
	Income struct {
		ID        int64   `json:"id"`
		Name      string  `json:"name"`
		Value     float64 `json:"value"`
		Month     int     `json:"month"`
		Year      int     `json:"year"`
		Confirmed bool    `json:"confirmed"`
		Notes     *string `json:"notes"`
	}

	// Card is a credit card installments are charged against.
	Card struct {
		ID         int64   `json:"id"`
		Name       string  `json:"name"`
		Limit      float64 `json:"limit"`
		Bank       *string `json:"bank"`
		Brand      *string `json:"brand"`
		ClosingDay int     `json:"closing_day"`
		DueDay     int     `json:"due_day"`
	}

	// Installment is one of N parts of a card purchase, attributed to its
	// own month/year competence.
	Installment struct {
		ID                int64   `json:"id"`
		CardID            int64   `json:"card_id"`
		ExpenseName       string  `json:"expense_name"`
		InstallmentNumber int     `json:"installment_number"`
		TotalInstallments int     `json:"total_installments"`
		Value             float64 `json:"value"`
		Month             int     `json:"month"`
		Year              int     `json:"year"`
		Status            string  `json:"status"`
	}

	// Recurrence is a rule that expands into a fixed number of periodic
	// expense or income records. Confirmed is tri-state and only meaningful
	// for income rules: nil means "default to confirmed" on expansion.
	Recurrence struct {
		ID             int64   `json:"id"`
		Kind           string  `json:"kind"`
		Name           string  `json:"name"`
		Value          float64 `json:"value"`
		StartMonth     int     `json:"start_month"`
		StartYear      int     `json:"start_year"`
		IntervalMonths int     `json:"interval_months"`
		Occurrences    int     `json:"occurrences"`
		CategoryID     *int64  `json:"category_id"`
		PaymentMethod  *string `json:"payment_method"`
		Confirmed      *bool   `json:"confirmed"`
		Notes          *string `json:"notes"`
	}

	// Goal is a monthly spending cap. Without a category it caps the whole
	// month, not a single category.
	Goal struct {
		ID         int64   `json:"id"`
		Name       string  `json:"name"`
		LimitValue float64 `json:"limit_value"`
		Month      int     `json:"month"`
		Year       int     `json:"year"`
		CategoryID *int64  `json:"category_id"`
	}
)

func validMonth(m int) bool { return m >= 1 && m <= 12 }

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func (c Category) Validate() error {
	if blank(c.Name) {
		return Validationf("Nome da categoria é obrigatório.")
	}
	return nil
}

func (e Expense) Validate() error {
	if blank(e.Name) {
		return Validationf("Nome do gasto é obrigatório.")
	}
	if e.Value < 0 {
		return Validationf("Valor do gasto não pode ser negativo.")
	}
	if !validMonth(e.Month) {
		return Validationf("Mês do gasto deve estar entre 1 e 12.")
	}
	if e.Year <= 0 {
		return Validationf("Ano do gasto deve ser positivo.")
	}
	return nil
}

func (i Income) Validate() error {
	if blank(i.Name) {
		return Validationf("Nome da entrada é obrigatório.")
	}
	if i.Value < 0 {
		return Validationf("Valor da entrada não pode ser negativo.")
	}
	if !validMonth(i.Month) {
		return Validationf("Mês da entrada deve estar entre 1 e 12.")
	}
	if i.Year <= 0 {
		return Validationf("Ano da entrada deve ser positivo.")
	}
	return nil
}

func (c Card) Validate() error {
	if blank(c.Name) {
		return Validationf("Nome do cartão é obrigatório.")
	}
	if c.Limit < 0 {
		return Validationf("Limite do cartão não pode ser negativo.")
	}
	if c.ClosingDay < 1 || c.ClosingDay > 31 {
		return Validationf("Dia de fechamento deve estar entre 1 e 31.")
	}
	if c.DueDay < 1 || c.DueDay > 31 {
		return Validationf("Dia de vencimento deve estar entre 1 e 31.")
	}
	return nil
}

func (p Installment) Validate() error {
	if p.CardID <= 0 {
		return Validationf("Cartão inválido.")
	}
	if blank(p.ExpenseName) {
		return Validationf("Nome do gasto é obrigatório.")
	}
	if p.Value < 0 {
		return Validationf("Valor da parcela não pode ser negativo.")
	}
	if p.InstallmentNumber <= 0 || p.TotalInstallments <= 0 {
		return Validationf("Número de parcela inválido.")
	}
	if p.InstallmentNumber > p.TotalInstallments {
		return Validationf("Parcela maior que o total.")
	}
	if !validMonth(p.Month) {
		return Validationf("Mês da parcela deve estar entre 1 e 12.")
	}
	if p.Year <= 0 {
		return Validationf("Ano da parcela deve ser positivo.")
	}
	return nil
}

func (r Recurrence) Validate() error {
	if r.Kind != KindExpense && r.Kind != KindIncome {
		return Validationf("Tipo de recorrência inválido.")
	}
	if blank(r.Name) {
		return Validationf("Nome da recorrência é obrigatório.")
	}
	if r.Value < 0 {
		return Validationf("Valor da recorrência não pode ser negativo.")
	}
	if !validMonth(r.StartMonth) {
		return Validationf("Mês inicial inválido.")
	}
	if r.StartYear <= 0 {
		return Validationf("Ano inicial inválido.")
	}
	if r.IntervalMonths <= 0 {
		return Validationf("Intervalo deve ser maior que zero.")
	}
	if r.Occurrences <= 0 {
		return Validationf("Ocorrências deve ser maior que zero.")
	}
	return nil
}

func (g Goal) Validate() error {
	if blank(g.Name) {
		return Validationf("Nome da meta é obrigatório.")
	}
	if g.LimitValue <= 0 {
		return Validationf("Valor da meta deve ser positivo.")
	}
	if !validMonth(g.Month) {
		return Validationf("Mês da meta deve estar entre 1 e 12.")
	}
	if g.Year <= 0 {
		return Validationf("Ano da meta deve ser positivo.")
	}
	return nil
}
