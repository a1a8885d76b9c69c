package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	appErrors "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core/errors"
	appLogger "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/data/models"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/form"
)

// ImportColumns são os cabeçalhos esperados na planilha de abertura em lote.
var ImportColumns = []string{"Nome", "Idade", "Sexo", "Limite", "Estudante"}

// ImportRowResult é o resultado de uma linha da planilha.
type ImportRowResult struct {
	Line     int                  `json:"line"` // linha no arquivo, contando o cabeçalho
	Accepted bool                 `json:"accepted"`
	Summary  *form.AccountSummary `json:"summary,omitempty"`
	Messages []string             `json:"messages,omitempty"`
}

// ImportReport resume uma importação.
type ImportReport struct {
	File     string            `json:"file"`
	Encoding string            `json:"encoding"`
	Accepted int               `json:"accepted"`
	Rejected int               `json:"rejected"`
	Rows     []ImportRowResult `json:"rows"`
}

// Table devolve o relatório em formato tabular (primeira linha é o cabeçalho),
// pronto para utils.NewSliceDataInput.
func (r *ImportReport) Table() [][]string {
	data := [][]string{{"Linha", "Resultado", "Nome", "Idade", "Limite", "Mensagens"}}
	for _, row := range r.Rows {
		result, name, age, limit := "REJEITADA", "", "", ""
		if row.Accepted {
			result = "ACEITA"
			name = row.Summary.Name
			age = fmt.Sprint(row.Summary.Age)
			limit = row.Summary.Limit.StringFixed(2)
		}
		data = append(data, []string{fmt.Sprint(row.Line), result, name, age, limit, strings.Join(row.Messages, " | ")})
	}
	return data
}

// ImportService abre contas em lote a partir de uma planilha CSV.
type ImportService interface {
	// ImportAccounts submete cada linha numa sessão própria. Linhas
	// rejeitadas não interrompem a importação.
	ImportAccounts(filePath string) (*ImportReport, error)
}

type importServiceImpl struct {
	accounts AccountService
	audit    AuditLogService // pode ser nil
}

// NewImportService cria uma nova instância de ImportService.
func NewImportService(accounts AccountService, audit AuditLogService) ImportService {
	if accounts == nil {
		appLogger.Fatalf("AccountService não pode ser nil para NewImportService")
	}
	return &importServiceImpl{accounts: accounts, audit: audit}
}

func (s *importServiceImpl) ImportAccounts(filePath string) (*ImportReport, error) {
	fileName := filepath.Base(filePath)
	records, encoding, err := readImportCSV(filePath)
	if err != nil {
		return nil, err
	}
	appLogger.Infof("Iniciando importação de '%s' (encoding: %s, %d linhas).", fileName, encoding, len(records))

	report := &ImportReport{File: fileName, Encoding: encoding, Rows: make([]ImportRowResult, 0, len(records))}
	for _, record := range records {
		row, err := s.importRow(record.line, record.fields)
		if err != nil {
			return nil, err
		}
		if row.Accepted {
			report.Accepted++
		} else {
			report.Rejected++
		}
		report.Rows = append(report.Rows, row)
	}

	if s.audit != nil {
		logErr := s.audit.LogAction(models.AuditLogEntry{
			Action:      models.ActionBatchImported,
			Description: fmt.Sprintf("Importação de '%s': %d conta(s) aberta(s), %d linha(s) rejeitada(s).", fileName, report.Accepted, report.Rejected),
			Severity:    "INFO",
			Metadata:    models.JSONMetadata{"file": fileName, "accepted": report.Accepted, "rejected": report.Rejected},
		})
		if logErr != nil {
			appLogger.Warnf("Falha ao registrar auditoria da importação '%s': %v", fileName, logErr)
		}
	}
	appLogger.Infof("Importação de '%s' concluída. Aceitas: %d, Rejeitadas: %d.", fileName, report.Accepted, report.Rejected)
	return report, nil
}

// importRow devolve erro apenas para falhas de sessão; rejeições são resultado.
func (s *importServiceImpl) importRow(line int, record []string) (ImportRowResult, error) {
	row := ImportRowResult{Line: line}
	changes, problems := rowChanges(record)
	if len(problems) > 0 {
		appLogger.Warnf("Linha %d ignorada: %s", line, strings.Join(problems, "; "))
		row.Messages = problems
		return row, nil
	}

	state, err := s.accounts.OpenSession()
	if err != nil {
		return row, err
	}
	defer func() {
		if err := s.accounts.CloseSession(state.ID); err != nil {
			appLogger.Warnf("Linha %d: falha ao encerrar sessão %s: %v", line, state.ID, err)
		}
	}()

	if _, err := s.accounts.Update(state.ID, changes); err != nil {
		return row, err
	}
	receipt, err := s.accounts.Submit(state.ID)
	if err != nil {
		var ve *appErrors.ValidationError
		if !errors.As(err, &ve) {
			return row, err
		}
		row.Messages = form.ErrorsFromStringMap(ve.Fields).Messages()
		return row, nil
	}
	row.Accepted = true
	summary := receipt.Summary
	row.Summary = &summary
	return row, nil
}

// rowChanges converte uma linha da planilha. Valores que o formulário não
// consegue representar (sexo, limite ou estudante ilegíveis) viram problemas.
func rowChanges(record []string) (form.Changes, []string) {
	if len(record) != len(ImportColumns) {
		return form.Changes{}, []string{fmt.Sprintf("esperado %d campos, encontrado %d", len(ImportColumns), len(record))}
	}
	var problems []string

	name := record[0]
	ageText := record[1]
	sex, err := form.ParseSex(record[2])
	if err != nil {
		problems = append(problems, fmt.Sprintf("Sexo inválido: %q", record[2]))
	}
	limit, err := parseBRDecimal(record[3])
	if err != nil {
		problems = append(problems, fmt.Sprintf("Limite inválido: %q", record[3]))
	}
	student, ok := parseYesNo(record[4])
	if !ok {
		problems = append(problems, fmt.Sprintf("Estudante inválido: %q", record[4]))
	}

	return form.Changes{
		Name:      &name,
		AgeText:   &ageText,
		Sex:       &sex,
		Limit:     &limit,
		IsStudent: &student,
	}, problems
}

// parseBRDecimal aceita "3000", "3000.50", "3.000,50" e "R$ 3.000,50".
func parseBRDecimal(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "R$"))
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}

func parseYesNo(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sim", "s", "yes", "y", "true", "1":
		return true, true
	case "não", "nao", "n", "no", "false", "0", "":
		return false, true
	}
	return false, false
}

// importRecord é uma linha de dados com a linha física em que começa no arquivo.
type importRecord struct {
	line   int
	fields []string
}

// readImportCSV lê a planilha separada por ';'. Tenta UTF-8 (removendo o
// BOM) e, se inválido, decodifica como Latin-1.
func readImportCSV(filePath string) ([]importRecord, string, error) {
	fileName := filepath.Base(filePath)
	rawBytes, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", appErrors.WrapErrorf(appErrors.ErrNotFound, "arquivo '%s' não encontrado", fileName)
		}
		appLogger.Errorf("Erro ao ler arquivo '%s': %v", filePath, err)
		return nil, "", appErrors.WrapErrorf(appErrors.ErrInvalidInput, "falha ao ler arquivo '%s': %v", fileName, err)
	}

	rawBytes = bytes.TrimPrefix(rawBytes, []byte{0xEF, 0xBB, 0xBF})
	encoding := "UTF-8"
	if !utf8.Valid(rawBytes) {
		appLogger.Warnf("Arquivo '%s' não é UTF-8 válido. Decodificando como Latin-1.", fileName)
		decoded, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), rawBytes)
		if err != nil {
			return nil, "", appErrors.WrapErrorf(appErrors.ErrInvalidInput, "arquivo '%s' não pôde ser decodificado como UTF-8 ou Latin-1", fileName)
		}
		rawBytes = decoded
		encoding = "Latin-1"
	}

	reader := csv.NewReader(bytes.NewReader(rawBytes))
	reader.Comma = ';'
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // linhas com contagem errada são rejeitadas individualmente

	var records []importRecord
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, "", appErrors.WrapErrorf(appErrors.ErrInvalidInput, "arquivo '%s' mal formatado (linha %d): %v", fileName, pe.Line, pe.Err)
			}
			return nil, "", appErrors.WrapErrorf(appErrors.ErrInvalidInput, "falha ao parsear CSV '%s': %v", fileName, err)
		}
		line, _ := reader.FieldPos(0)
		records = append(records, importRecord{line: line, fields: fields})
	}
	if len(records) == 0 {
		return nil, "", appErrors.WrapErrorf(appErrors.ErrInvalidInput, "arquivo '%s' está vazio", fileName)
	}

	header := records[0].fields
	if len(header) != len(ImportColumns) {
		return nil, "", appErrors.WrapErrorf(appErrors.ErrInvalidInput, "arquivo '%s' tem %d colunas no cabeçalho, esperado %d",
			fileName, len(header), len(ImportColumns))
	}
	for i, expected := range ImportColumns {
		if !strings.EqualFold(strings.TrimSpace(header[i]), expected) {
			return nil, "", appErrors.WrapErrorf(appErrors.ErrInvalidInput, "arquivo '%s' tem cabeçalho inválido (coluna %d: '%s' != '%s')",
				fileName, i+1, header[i], expected)
		}
	}
	return records[1:], encoding, nil
}
