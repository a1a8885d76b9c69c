package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core"
	appErrors "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core/errors"
	appLogger "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core/logger"
)

// DataInput abstrai a fonte tabular dos dados de exportação.
type DataInput interface {
	Headers() ([]string, error)
	Rows() ([][]string, error)
	GetSheetName() string
}

// SliceDataInput é um DataInput sobre `[][]string`; a primeira linha é o cabeçalho.
type SliceDataInput struct {
	data      [][]string
	sheetName string
}

// NewSliceDataInput cria um DataInput a partir de um slice de slices de string.
func NewSliceDataInput(data [][]string, sheetName string) (*SliceDataInput, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: nenhum dado fornecido para SliceDataInput", appErrors.ErrInvalidInput)
	}
	if sheetName == "" {
		sheetName = "Dados"
	}
	return &SliceDataInput{data: data, sheetName: sheetName}, nil
}

func (s *SliceDataInput) Headers() ([]string, error) { return s.data[0], nil }

func (s *SliceDataInput) Rows() ([][]string, error) {
	if len(s.data) <= 1 {
		return [][]string{}, nil
	}
	return s.data[1:], nil
}

func (s *SliceDataInput) GetSheetName() string { return s.sheetName }

// --- Sanitização ---
var (
	cpfRegex   = regexp.MustCompile(`\b(\d{3}[.-]?\d{3}[.-]?\d{3}-?\d{2})\b`)
	emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

func sanitizeString(s string) string {
	s = cpfRegex.ReplaceAllString(s, "***.***.***-**")
	s = emailRegex.ReplaceAllString(s, "****@****.***")
	return s
}

func sanitizeData(headers []string, rows [][]string, sanitizeColumns []string) [][]string {
	if len(sanitizeColumns) == 0 || len(rows) == 0 {
		return rows
	}

	cols := make(map[int]bool)
	for _, colName := range sanitizeColumns {
		found := false
		for i, h := range headers {
			if strings.EqualFold(h, colName) {
				cols[i] = true
				found = true
				break
			}
		}
		if !found {
			appLogger.Warnf("Coluna de sanitização '%s' não encontrada nos cabeçalhos. Ignorando.", colName)
		}
	}
	if len(cols) == 0 {
		return rows
	}

	out := make([][]string, len(rows))
	for i, row := range rows {
		newRow := make([]string, len(row))
		copy(newRow, row)
		for colIdx := range row {
			if cols[colIdx] {
				newRow[colIdx] = sanitizeString(row[colIdx])
			}
		}
		out[i] = newRow
	}
	return out
}

// ExportOptions contém opções para a exportação.
type ExportOptions struct {
	CreateBackup    bool
	Sanitize        bool
	SanitizeColumns []string
}

// ExportToCSV exporta dados para um arquivo CSV separado por ponto e vírgula.
func ExportToCSV(input DataInput, outputPath string, cfg *core.Config, opts *ExportOptions) (string, error) {
	if opts == nil {
		opts = &ExportOptions{}
	}
	finalPath, err := prepareOutput(outputPath, cfg.ExportDir, ".csv", opts.CreateBackup)
	if err != nil {
		return "", err
	}

	headers, err := input.Headers()
	if err != nil {
		return "", err
	}
	rows, err := input.Rows()
	if err != nil {
		return "", err
	}
	if opts.Sanitize {
		rows = sanitizeData(headers, rows, opts.SanitizeColumns)
	}

	file, err := os.Create(finalPath)
	if err != nil {
		return "", appErrors.WrapErrorf(appErrors.ErrExport, "falha ao criar arquivo CSV '%s': %v", finalPath, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	writer.Comma = ';'

	if err := writer.Write(headers); err != nil {
		return "", appErrors.WrapErrorf(appErrors.ErrExport, "falha ao escrever cabeçalhos CSV: %v", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return "", appErrors.WrapErrorf(appErrors.ErrExport, "falha ao escrever linha CSV: %v", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", appErrors.WrapErrorf(appErrors.ErrExport, "falha ao dar flush no writer CSV: %v", err)
	}
	appLogger.Infof("Dados exportados para CSV: %s", finalPath)
	return finalPath, nil
}

// ExportToXLSX exporta uma ou mais planilhas para um arquivo XLSX.
func ExportToXLSX(inputs []DataInput, outputPath string, cfg *core.Config, opts *ExportOptions) (string, error) {
	if opts == nil {
		opts = &ExportOptions{}
	}
	finalPath, err := prepareOutput(outputPath, cfg.ExportDir, ".xlsx", opts.CreateBackup)
	if err != nil {
		return "", err
	}

	xlsx := excelize.NewFile()
	defer func() {
		if err := xlsx.Close(); err != nil {
			appLogger.Errorf("Erro ao fechar arquivo XLSX: %v", err)
		}
	}()

	headerStyle, err := xlsx.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1A659E"}, Pattern: 1},
		Font:      &excelize.Font{Color: "FFFFFF", Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return "", appErrors.WrapErrorf(appErrors.ErrExport, "falha ao criar estilo de cabeçalho: %v", err)
	}

	for i, input := range inputs {
		sheetName := input.GetSheetName()
		if sheetName == "" {
			sheetName = fmt.Sprintf("Planilha%d", i+1)
		}
		// Excelize cria "Sheet1" por padrão: a primeira planilha apenas a renomeia.
		if i == 0 {
			if err := xlsx.SetSheetName("Sheet1", sheetName); err != nil {
				return "", appErrors.WrapErrorf(appErrors.ErrExport, "falha ao renomear planilha: %v", err)
			}
		} else if _, err := xlsx.NewSheet(sheetName); err != nil {
			return "", appErrors.WrapErrorf(appErrors.ErrExport, "falha ao criar planilha '%s': %v", sheetName, err)
		}

		headers, err := input.Headers()
		if err != nil {
			return "", err
		}
		rows, err := input.Rows()
		if err != nil {
			return "", err
		}
		if opts.Sanitize {
			rows = sanitizeData(headers, rows, opts.SanitizeColumns)
		}

		for colIdx, headerVal := range headers {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
			_ = xlsx.SetCellValue(sheetName, cell, headerVal)
			_ = xlsx.SetCellStyle(sheetName, cell, cell, headerStyle)
		}

		for rowIdx, rowData := range rows {
			for colIdx, cellData := range rowData {
				cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2) // linha 1 é o cabeçalho
				_ = xlsx.SetCellValue(sheetName, cell, typedCellValue(cellData))
			}
		}

		if len(headers) > 0 {
			lastCol, _ := excelize.ColumnNumberToName(len(headers))
			_ = xlsx.SetColWidth(sheetName, "A", lastCol, 22)
		}
	}

	if len(inputs) == 0 {
		_ = xlsx.SetCellValue("Sheet1", "A1", "Nenhum dado para exportar.")
	}

	if err := xlsx.SaveAs(finalPath); err != nil {
		return "", appErrors.WrapErrorf(appErrors.ErrExport, "falha ao salvar arquivo XLSX '%s': %v", finalPath, err)
	}
	appLogger.Infof("Dados exportados para XLSX: %s", finalPath)
	return finalPath, nil
}

// typedCellValue converte números e booleanos para que o Excel os formate como tal.
// Textos com zeros à esquerda (ex: "007") continuam texto.
func typedCellValue(s string) interface{} {
	if s == "" || (len(s) > 1 && s[0] == '0' && s[1] != '.') {
		return s
	}
	if num, err := strconv.ParseFloat(s, 64); err == nil {
		return num
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// --- Funções Utilitárias Internas ---

func prepareOutput(outputPath, defaultDir, defaultExt string, backup bool) (string, error) {
	finalPath, err := resolveOutputPath(outputPath, defaultDir, defaultExt)
	if err != nil {
		return "", err
	}
	if backup && fileExists(finalPath) {
		if err := createBackup(finalPath); err != nil {
			return "", appErrors.WrapErrorf(appErrors.ErrExport, "falha ao criar backup de '%s': %v", finalPath, err)
		}
	}
	return finalPath, nil
}

func resolveOutputPath(path, defaultDir, defaultExt string) (string, error) {
	p := filepath.Clean(path)
	if !filepath.IsAbs(p) {
		absDefaultDir, err := filepath.Abs(defaultDir)
		if err != nil {
			return "", appErrors.WrapErrorf(appErrors.ErrExport, "diretório de exportação inválido '%s': %v", defaultDir, err)
		}
		p = filepath.Join(absDefaultDir, p)
	}

	if err := os.MkdirAll(filepath.Dir(p), os.ModePerm); err != nil {
		return "", appErrors.WrapErrorf(appErrors.ErrExport, "não foi possível criar diretório de exportação '%s': %v", filepath.Dir(p), err)
	}

	if filepath.Ext(p) == "" {
		p += defaultExt
	}
	return p, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

func createBackup(path string) error {
	timestamp := time.Now().Format("20060102_150405")
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	backupPath := fmt.Sprintf("%s_backup_%s%s", base, timestamp, ext)

	if err := os.Rename(path, backupPath); err != nil {
		return err
	}
	appLogger.Infof("Backup criado: %s", backupPath)
	return nil
}
