// Package form contém o estado do formulário de abertura de conta: os cinco
// campos editáveis, as regras de validação e o controlador que revalida a
// cada alteração e produz o resumo da conta na submissão.
package form

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Limites e valores iniciais do formulário.
const (
	MinLimit     = 500
	MaxLimit     = 10000
	InitialLimit = 2500
	// LimitStep é o passo do slider de limite. O núcleo não o impõe.
	LimitStep = 50

	MinAge = 18
	// AgeMaxDigits é o tamanho máximo que o campo de idade aceita na tela.
	AgeMaxDigits = 3
)

// Field identifica um campo do formulário; é a chave do mapa de erros.
type Field string

const (
	FieldName    Field = "name"
	FieldAge     Field = "age"
	FieldSex     Field = "sex"
	FieldLimit   Field = "limit"
	FieldStudent Field = "isStudent"
)

// FieldOrder é a ordem em que os campos aparecem na tela e nas mensagens consolidadas.
var FieldOrder = []Field{FieldName, FieldAge, FieldSex, FieldLimit, FieldStudent}

// Sex é a opção escolhida no seletor de sexo. O valor zero é "não selecionado".
type Sex string

const (
	SexUnset  Sex = ""
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

// Valid informa se s é uma das opções selecionáveis.
func (s Sex) Valid() bool {
	switch s {
	case SexMale, SexFemale, SexOther:
		return true
	}
	return false
}

// ParseSex aceita o valor canônico ou o rótulo em português da tela
// (Masculino, Feminino, Outro), sem diferenciar maiúsculas.
// String vazia resulta em SexUnset.
func ParseSex(raw string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return SexUnset, nil
	case "male", "masculino", "m":
		return SexMale, nil
	case "female", "feminino", "f":
		return SexFemale, nil
	case "other", "outro", "o":
		return SexOther, nil
	}
	return SexUnset, fmt.Errorf("opção de sexo desconhecida: %q", raw)
}

// UnmarshalText permite decodificar Sex de JSON usando ParseSex.
func (s *Sex) UnmarshalText(text []byte) error {
	parsed, err := ParseSex(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Fields são os valores correntes do formulário, sobrescritos a cada edição.
type Fields struct {
	Name    string          `json:"name"`
	AgeText string          `json:"ageText"`
	Sex     Sex             `json:"sex"`
	Limit   decimal.Decimal `json:"limit"`
	// IsStudent nil representa uma entrada malformada (não booleana).
	// Um controle do tipo switch nunca produz esse estado.
	IsStudent *bool `json:"isStudent"`
}

// DefaultFields devolve os valores de início de sessão.
func DefaultFields() Fields {
	student := false
	return Fields{
		Limit:     decimal.NewFromInt(InitialLimit),
		IsStudent: &student,
	}
}

// clone copia os campos sem compartilhar o ponteiro de IsStudent.
func (f Fields) clone() Fields {
	out := f
	if f.IsStudent != nil {
		v := *f.IsStudent
		out.IsStudent = &v
	}
	return out
}
