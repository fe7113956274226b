package core

// Competence identifies the calendar period (month/year) a transaction
// belongs to.
type Competence struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// NewCompetence validates the month/year ranges at construction.
func NewCompetence(month, year int) (Competence, error) {
	if !validMonth(month) {
		return Competence{}, Validationf("Mês deve estar entre 1 e 12.")
	}
	if year <= 0 {
		return Competence{}, Validationf("Ano deve ser positivo.")
	}
	return Competence{Month: month, Year: year}, nil
}

// Next returns the competence one calendar month ahead, rolling December
// over into January of the following year.
func (c Competence) Next() Competence {
	if c.Month == 12 {
		return Competence{Month: 1, Year: c.Year + 1}
	}
	return Competence{Month: c.Month + 1, Year: c.Year}
}

// GenerateCompetences produces the ordered sequence of competences a
// recurrence rule expands to: exactly occurrences entries, starting at
// (startMonth, startYear), each advanced from the previous by intervalMonths
// calendar months. The advance applies Next once per month so the December
// rollover behaves like a real calendar, not modular arithmetic.
func GenerateCompetences(startMonth, startYear, intervalMonths, occurrences int) ([]Competence, error) {
	current, err := NewCompetence(startMonth, startYear)
	if err != nil {
		return nil, err
	}
	competences := make([]Competence, 0, max(occurrences, 0))
	for i := 0; i < occurrences; i++ {
		competences = append(competences, current)
		for j := 0; j < intervalMonths; j++ {
			current = current.Next()
		}
	}
	return competences, nil
}
