package form

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Chaves das mensagens de validação. O texto em inglês é a própria chave.
var (
	msgNameRequired    = "Name is required."
	msgAgeRequired     = "Age is required."
	msgAgeNotNumeric   = "Age must be numeric."
	msgAgeBelowMinimum = fmt.Sprintf("Minimum age to open an account is %d.", MinAge)
	msgSexRequired     = "Select a sex."
	msgLimitOutOfRange = fmt.Sprintf("Limit must be between %d and %d.", MinLimit, MaxLimit)
	msgStudentMissing  = "Specify whether you are a student."
)

// SupportedLanguages lista os idiomas com catálogo; o primeiro é o padrão.
var SupportedLanguages = []language.Tag{language.English, language.BrazilianPortuguese}

var (
	messages       = buildCatalog()
	messageMatcher = language.NewMatcher(SupportedLanguages)
)

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))

	ptBR := map[string]string{
		msgNameRequired:    "Nome é obrigatório.",
		msgAgeRequired:     "Idade é obrigatória.",
		msgAgeNotNumeric:   "Idade deve ser numérica.",
		msgAgeBelowMinimum: fmt.Sprintf("Idade mínima para abrir conta é %d anos.", MinAge),
		msgSexRequired:     "Selecione o sexo.",
		msgLimitOutOfRange: fmt.Sprintf("Limite deve estar entre %d e %d.", MinLimit, MaxLimit),
		msgStudentMissing:  "Informe se é estudante.",
	}
	for key, text := range ptBR {
		mustSet(b, language.English, key, key)
		mustSet(b, language.BrazilianPortuguese, key, text)
	}
	return b
}

func mustSet(b *catalog.Builder, tag language.Tag, key, text string) {
	if err := b.SetString(tag, key, text); err != nil {
		panic(fmt.Sprintf("catálogo de mensagens inválido (%s, %q): %v", tag, key, err))
	}
}

// MatchLanguage resolve tag para o idioma suportado mais próximo.
func MatchLanguage(tag language.Tag) language.Tag {
	_, idx, _ := messageMatcher.Match(tag)
	return SupportedLanguages[idx]
}

// ParseLanguage interpreta códigos como "en", "pt", "pt-BR".
// Códigos inválidos caem no idioma padrão.
func ParseLanguage(code string) language.Tag {
	tag, err := language.Parse(code)
	if err != nil {
		return SupportedLanguages[0]
	}
	return MatchLanguage(tag)
}

func newPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(messages))
}
