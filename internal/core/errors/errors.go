package errors

import (
	stdErrors "errors"
	"fmt"
	"sort"
	"strings"
)

// Erros sentinela para os tipos de falha da aplicação.
// Verifique com errors.Is(err, ErrNotFound).
var (
	// --- Erros Gerais ---
	ErrInternal      = stdErrors.New("erro interno da aplicação")
	ErrConfiguration = stdErrors.New("erro de configuração da aplicação")

	// --- Erros de Sessão de Formulário ---
	ErrSessionExpired = stdErrors.New("sessão expirada")
	ErrInvalidSession = stdErrors.New("sessão inválida ou não encontrada")

	// --- Erros de Banco de Dados / Repositório ---
	ErrDatabase = stdErrors.New("erro na operação com o banco de dados")
	ErrNotFound = stdErrors.New("registro não encontrado")

	// --- Erros de Validação e Entrada ---
	ErrValidation   = stdErrors.New("erro de validação nos dados fornecidos")
	ErrInvalidInput = stdErrors.New("entrada de dados inválida ou mal formatada")

	// --- Erros Específicos da Aplicação ---
	ErrExport = stdErrors.New("falha ao exportar dados")
)

// ValidationError carrega os campos que falharam na validação.
// Usado pela camada de serviço para devolver uma submissão rejeitada como erro;
// o núcleo do formulário nunca retorna erros, apenas o mapa de mensagens.
type ValidationError struct {
	// Message é uma mensagem geral sobre a falha de validação.
	Message string
	// Fields mapeia nomes de campos para suas respectivas mensagens de erro.
	Fields map[string]string
	// Underlying é o erro original (opcional).
	Underlying error
}

// NewValidationError cria uma nova instância de ValidationError.
func NewValidationError(message string, fields map[string]string) *ValidationError {
	return &ValidationError{
		Message: message,
		Fields:  fields,
	}
}

// Error implementa a interface error.
func (ve *ValidationError) Error() string {
	var sb strings.Builder
	if ve.Message != "" {
		sb.WriteString(ve.Message)
	} else {
		sb.WriteString("Erro de validação")
	}

	if len(ve.Fields) > 0 {
		keys := make([]string, 0, len(ve.Fields))
		for field := range ve.Fields {
			keys = append(keys, field)
		}
		sort.Strings(keys) // saída estável

		fieldErrors := make([]string, 0, len(keys))
		for _, field := range keys {
			fieldErrors = append(fieldErrors, fmt.Sprintf("%s: %s", field, ve.Fields[field]))
		}
		sb.WriteString(" (Detalhes: ")
		sb.WriteString(strings.Join(fieldErrors, ", "))
		sb.WriteString(")")
	}
	if ve.Underlying != nil {
		sb.WriteString(fmt.Sprintf(" | Erro original: %v", ve.Underlying))
	}
	return sb.String()
}

// Unwrap retorna o erro encapsulado.
func (ve *ValidationError) Unwrap() error {
	return ve.Underlying
}

// Is faz `errors.Is(err, ErrValidation)` funcionar para qualquer *ValidationError.
func (ve *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// DatabaseErrorDetail carrega mais informações sobre um erro de banco de dados.
type DatabaseErrorDetail struct {
	// Operation descreve a operação que estava sendo realizada (ex: "gravando log").
	Operation string
	// Err é o erro original retornado pelo driver ou ORM.
	Err error
}

// NewDatabaseErrorDetail cria um novo DatabaseErrorDetail.
func NewDatabaseErrorDetail(operation string, originalErr error) *DatabaseErrorDetail {
	if originalErr == nil {
		originalErr = ErrDatabase
	}
	return &DatabaseErrorDetail{Operation: operation, Err: originalErr}
}

// Error implementa a interface error.
func (de *DatabaseErrorDetail) Error() string {
	return fmt.Sprintf("erro de banco de dados durante %s: %v", de.Operation, de.Err)
}

// Unwrap retorna o erro original do banco de dados.
func (de *DatabaseErrorDetail) Unwrap() error {
	return de.Err
}

// Is: um DatabaseErrorDetail é sempre um ErrDatabase.
func (de *DatabaseErrorDetail) Is(target error) bool {
	if target == ErrDatabase {
		return true
	}
	return stdErrors.Is(de.Err, target)
}

// WrapErrorf envolve um erro existente com uma mensagem formatada,
// preservando-o para `errors.Is` e `errors.As`.
func WrapErrorf(originalErr error, format string, args ...interface{}) error {
	if originalErr == nil {
		return fmt.Errorf(format, args...)
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), originalErr)
}
