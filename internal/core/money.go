// Package core holds the domain model: entities with construction-time
// validation, monthly competences, and the money helpers shared by the
// report and installment logic.
package core

import "math"

// Round2 rounds a monetary value to 2 fraction digits, half away from zero.
// Sums are carried at full float precision and rounded once, here, at the
// computation boundary.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SplitInstallments divides a total into n equal parts rounded to 2 digits,
// absorbing the rounding remainder into the last part so the parts always
// sum exactly to the total.
func SplitInstallments(total float64, n int) ([]float64, error) {
	if n <= 0 {
		return nil, Validationf("Número de parcelas deve ser maior que zero.")
	}
	base := Round2(total / float64(n))
	parts := make([]float64, n)
	sum := 0.0
	for i := range parts {
		parts[i] = base
		sum += base
	}
	diff := Round2(total - sum)
	parts[n-1] = Round2(parts[n-1] + diff)
	return parts, nil
}

// InvoiceTotal sums installment values into a card invoice total.
func InvoiceTotal(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return Round2(total)
}
