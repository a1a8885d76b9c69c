// Package presenter formata o resultado do formulário para exibição
// (textos do alerta de conta aberta, moeda, rótulos). Não desenha nada.
package presenter

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/form"
)

// CurrencySymbol é exibido antes do limite nos dois idiomas.
const CurrencySymbol = "R$"

type labels struct {
	successTitle string
	errorTitle   string
	name         string
	age          string
	sex          string
	limit        string
	student      string
	yes          string
	no           string
	sexes        map[form.Sex]string
}

var labelsByLanguage = map[language.Tag]labels{
	language.English: {
		successTitle: "Account opened",
		errorTitle:   "Form errors",
		name:         "Name",
		age:          "Age",
		sex:          "Sex",
		limit:        "Limit",
		student:      "Student",
		yes:          "Yes",
		no:           "No",
		sexes: map[form.Sex]string{
			form.SexMale:   "Male",
			form.SexFemale: "Female",
			form.SexOther:  "Other",
		},
	},
	language.BrazilianPortuguese: {
		successTitle: "Conta Aberta",
		errorTitle:   "Erros no formulário",
		name:         "Nome",
		age:          "Idade",
		sex:          "Sexo",
		limit:        "Limite",
		student:      "Estudante",
		yes:          "Sim",
		no:           "Não",
		sexes: map[form.Sex]string{
			form.SexMale:   "Masculino",
			form.SexFemale: "Feminino",
			form.SexOther:  "Outro",
		},
	},
}

func labelsFor(tag language.Tag) (language.Tag, labels) {
	matched := form.MatchLanguage(tag)
	return matched, labelsByLanguage[matched]
}

// FormatCurrency formata v com duas casas decimais e o agrupamento do idioma
// (pt-BR: 3.000,00; en: 3,000.00). Não inclui o símbolo. Os dígitos vêm de
// v.StringFixed(2), sem passar por float64.
func FormatCurrency(v decimal.Decimal, tag language.Tag) string {
	matched, _ := labelsFor(tag)
	group, point := separators(matched)

	digits := v.StringFixed(2)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	intPart, frac, _ := strings.Cut(digits, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(group)
		}
		b.WriteRune(d)
	}
	b.WriteString(point)
	b.WriteString(frac)
	return b.String()
}

// separators extrai do x/text os separadores de milhar e decimal do idioma.
func separators(tag language.Tag) (group, point string) {
	sample := []rune(message.NewPrinter(tag).Sprintf("%v", number.Decimal(1234.5, number.Scale(1))))
	if len(sample) != 7 {
		return ",", "."
	}
	return string(sample[1]), string(sample[5])
}

// SexLabel devolve o rótulo exibido no seletor; vazio para SexUnset.
func SexLabel(s form.Sex, tag language.Tag) string {
	_, l := labelsFor(tag)
	return l.sexes[s]
}

// SuccessTitle é o título do alerta de conta aberta.
func SuccessTitle(tag language.Tag) string {
	_, l := labelsFor(tag)
	return l.successTitle
}

// ErrorTitle é o título do alerta de erros.
func ErrorTitle(tag language.Tag) string {
	_, l := labelsFor(tag)
	return l.errorTitle
}

// SummaryText monta o corpo do alerta de conta aberta, uma linha por campo.
func SummaryText(s form.AccountSummary, tag language.Tag) string {
	matched, l := labelsFor(tag)
	student := l.no
	if s.IsStudent {
		student = l.yes
	}
	lines := []string{
		l.name + ": " + s.Name,
		l.age + ": " + strconv.Itoa(s.Age),
		l.sex + ": " + l.sexes[s.Sex],
		l.limit + ": " + CurrencySymbol + " " + FormatCurrency(s.Limit, matched),
		l.student + ": " + student,
	}
	return strings.Join(lines, "\n")
}

// ErrorsText junta as mensagens de uma submissão rejeitada, uma por linha.
func ErrorsText(messages []string) string {
	return strings.Join(messages, "\n")
}
