package form

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AccountSummary é o retrato imutável dos dados validados numa submissão aceita.
// É sempre manipulado por valor, portanto edições posteriores do formulário não o afetam.
type AccountSummary struct {
	Name      string          `json:"name"`
	Age       int             `json:"age"`
	Sex       Sex             `json:"sex"`
	Limit     decimal.Decimal `json:"limit"`
	IsStudent bool            `json:"isStudent"`
}

// newSummary monta o resumo a partir de campos já validados.
func newSummary(f Fields) AccountSummary {
	age, _ := ParseAge(f.AgeText) // validado antes
	return AccountSummary{
		Name:      strings.TrimSpace(f.Name),
		Age:       age,
		Sex:       f.Sex,
		Limit:     f.Limit,
		IsStudent: f.IsStudent != nil && *f.IsStudent,
	}
}
