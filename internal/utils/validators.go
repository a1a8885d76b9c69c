package utils

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/form"
)

// --- Filtros de entrada do lado da tela ---
// Estes helpers fazem o que os controles da tela fazem (teclado numérico,
// slider). O núcleo do formulário revalida de qualquer jeito.

// SanitizeAgeInput mantém apenas dígitos ASCII e corta em form.AgeMaxDigits caracteres.
func SanitizeAgeInput(raw string) string {
	var sb strings.Builder
	for _, r := range raw {
		if r < '0' || r > '9' {
			continue
		}
		if sb.Len() >= form.AgeMaxDigits {
			break
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

var (
	limitStep = decimal.NewFromInt(form.LimitStep)
	limitMin  = decimal.NewFromInt(form.MinLimit)
	limitMax  = decimal.NewFromInt(form.MaxLimit)
)

// SnapLimit se comporta como o slider de limite: prende o valor em
// [MinLimit, MaxLimit] e arredonda para o múltiplo de LimitStep mais próximo.
func SnapLimit(v decimal.Decimal) decimal.Decimal {
	if v.LessThan(limitMin) {
		return limitMin
	}
	if v.GreaterThan(limitMax) {
		return limitMax
	}
	return v.Div(limitStep).Round(0).Mul(limitStep)
}

// --- Funções de Sanitização ---

// SanitizeInput remove caracteres de controle e colapsa espaços repetidos.
// Usado em textos livres que vão para a trilha de auditoria.
func SanitizeInput(inputStr string) string {
	if inputStr == "" {
		return ""
	}
	var sb strings.Builder
	lastWasSpace := false
	for _, r := range inputStr {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				sb.WriteRune(' ')
				lastWasSpace = true
			}
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		sb.WriteRune(r)
		lastWasSpace = false
	}
	return strings.TrimSpace(sb.String())
}
