package form

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Errors mapeia cada campo inválido para sua mensagem. Campos válidos não aparecem.
type Errors map[Field]string

// Has informa se o campo tem erro.
func (e Errors) Has(f Field) bool {
	_, ok := e[f]
	return ok
}

// Fields devolve os campos com erro na ordem da tela.
func (e Errors) Fields() []Field {
	out := make([]Field, 0, len(e))
	for _, f := range FieldOrder {
		if e.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Messages devolve as mensagens na ordem da tela.
func (e Errors) Messages() []string {
	out := make([]string, 0, len(e))
	for _, f := range e.Fields() {
		out = append(out, e[f])
	}
	return out
}

// Clone devolve uma cópia independente; nil vira mapa vazio.
func (e Errors) Clone() Errors {
	if e == nil {
		return Errors{}
	}
	return maps.Clone(e)
}

// StringMap converte para map[string]string (formato de ValidationError e JSON).
func (e Errors) StringMap() map[string]string {
	out := make(map[string]string, len(e))
	for f, msg := range e {
		out[string(f)] = msg
	}
	return out
}

// ErrorsFromStringMap reconstrói Errors a partir de StringMap; chaves
// desconhecidas são descartadas.
func ErrorsFromStringMap(m map[string]string) Errors {
	out := make(Errors, len(m))
	for _, f := range FieldOrder {
		if msg, ok := m[string(f)]; ok {
			out[f] = msg
		}
	}
	return out
}

var (
	minLimit = decimal.NewFromInt(MinLimit)
	maxLimit = decimal.NewFromInt(MaxLimit)
)

// Validator aplica as regras do formulário e redige as mensagens num idioma.
type Validator struct {
	tag     language.Tag
	printer *message.Printer
}

// NewValidator cria um validador para o idioma suportado mais próximo de tag.
func NewValidator(tag language.Tag) *Validator {
	matched := MatchLanguage(tag)
	return &Validator{tag: matched, printer: newPrinter(matched)}
}

var defaultValidator = NewValidator(language.English)

// Validate aplica as regras com mensagens em inglês.
func Validate(f Fields) Errors {
	return defaultValidator.Validate(f)
}

// Language devolve o idioma das mensagens.
func (v *Validator) Language() language.Tag {
	return v.tag
}

// Validate calcula os erros de f. É pura: todas as regras rodam sempre,
// cada campo recebe no máximo uma mensagem e nunca há erro de retorno.
func (v *Validator) Validate(f Fields) Errors {
	errs := Errors{}

	if strings.TrimSpace(f.Name) == "" {
		errs[FieldName] = v.printer.Sprintf(msgNameRequired)
	}

	if msg, ok := v.checkAge(f.AgeText); !ok {
		errs[FieldAge] = msg
	}

	if !f.Sex.Valid() {
		errs[FieldSex] = v.printer.Sprintf(msgSexRequired)
	}

	if f.Limit.LessThan(minLimit) || f.Limit.GreaterThan(maxLimit) {
		errs[FieldLimit] = v.printer.Sprintf(msgLimitOutOfRange)
	}

	// Inalcançável a partir de um switch; mantido para entradas malformadas.
	if f.IsStudent == nil {
		errs[FieldStudent] = v.printer.Sprintf(msgStudentMissing)
	}

	return errs
}

func (v *Validator) checkAge(ageText string) (string, bool) {
	trimmed := strings.TrimSpace(ageText)
	if trimmed == "" {
		return v.printer.Sprintf(msgAgeRequired), false
	}
	age, err := ParseAge(trimmed)
	if err != nil {
		// A tela já filtra dígitos; este ramo cobre entradas não filtradas.
		return v.printer.Sprintf(msgAgeNotNumeric), false
	}
	if age < MinAge {
		return v.printer.Sprintf(msgAgeBelowMinimum), false
	}
	return "", true
}

// ParseAge interpreta o texto de idade como inteiro base 10, ignorando espaços nas pontas.
// O texto inteiro precisa ser numérico: "25abc" e valores fora de int são rejeitados.
func ParseAge(ageText string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(ageText))
}
