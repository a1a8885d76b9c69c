package services

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	appErrors "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core/errors"
	appLogger "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/data/models"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/form"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/session"
)

func writeImportFile(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lote.csv")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func newImportFixture(t *testing.T) (ImportService, *memoryAuditRepo) {
	t.Helper()
	repo := &memoryAuditRepo{}
	audit := NewAuditLogService(repo)
	mgr := session.NewManager(session.Options{})
	t.Cleanup(mgr.Shutdown)
	return NewImportService(NewAccountService(mgr, audit, nil), audit), repo
}

func TestImportService_ImportsEachRowInOwnSession(t *testing.T) {
	svc, repo := newImportFixture(t)
	path := writeImportFile(t, []byte("\xEF\xBB\xBFNome;Idade;Sexo;Limite;Estudante\n"+
		"Maria;25;Feminino;3.000,00;Sim\n"+
		";15;;400;não\n"+
		"João;40;M;R$ 10000;n\n"+
		"Ana;30;robô;1000;s\n"+
		"Curta;20\n"))

	report, err := svc.ImportAccounts(path)
	require.NoError(t, err)

	assert.Equal(t, "UTF-8", report.Encoding)
	assert.Equal(t, 2, report.Accepted)
	assert.Equal(t, 3, report.Rejected)
	require.Len(t, report.Rows, 5)

	maria := report.Rows[0]
	assert.Equal(t, 2, maria.Line)
	require.True(t, maria.Accepted)
	assert.Equal(t, form.SexFemale, maria.Summary.Sex)
	assert.True(t, maria.Summary.Limit.Equal(decimal.NewFromInt(3000)))
	assert.True(t, maria.Summary.IsStudent)

	assert.Equal(t, []string{
		"Name is required.",
		"Minimum age to open an account is 18.",
		"Select a sex.",
		"Limit must be between 500 and 10000.",
	}, report.Rows[1].Messages)

	assert.True(t, report.Rows[2].Accepted)
	assert.Equal(t, []string{`Sexo inválido: "robô"`}, report.Rows[3].Messages)
	assert.Len(t, report.Rows[4].Messages, 1)

	last := repo.entries[len(repo.entries)-1]
	assert.Equal(t, models.ActionBatchImported, last.Action)

	table := report.Table()
	require.Len(t, table, 6)
	assert.Equal(t, []string{"2", "ACEITA", "Maria", "25", "3000.00", ""}, table[1])
}

// closeFailingAccounts delega ao serviço real, mas falha ao encerrar sessões.
type closeFailingAccounts struct {
	AccountService
}

func (closeFailingAccounts) CloseSession(string) error {
	return errors.New("sessão presa")
}

func TestImportService_LogsCloseFailure(t *testing.T) {
	var buf bytes.Buffer
	appLogger.SetOutput(&buf)
	t.Cleanup(func() { appLogger.SetOutput(os.Stderr) })

	mgr := session.NewManager(session.Options{})
	t.Cleanup(mgr.Shutdown)
	svc := NewImportService(closeFailingAccounts{NewAccountService(mgr, nil, nil)}, nil)
	path := writeImportFile(t, []byte("Nome;Idade;Sexo;Limite;Estudante\nMaria;25;F;3000;sim\n"))

	report, err := svc.ImportAccounts(path)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Accepted)
	assert.Contains(t, buf.String(), "Linha 2: falha ao encerrar sessão")
	assert.Contains(t, buf.String(), "sessão presa")
}

func TestImportService_ReportsPhysicalLines(t *testing.T) {
	svc, _ := newImportFixture(t)
	path := writeImportFile(t, []byte("Nome;Idade;Sexo;Limite;Estudante\n"+
		"Maria;25;F;3000;sim\n"+
		"\n"+
		"\"Ana\nSouza\";30;F;1000;s\n"+
		"Beto;17;M;3000;não\n"))

	report, err := svc.ImportAccounts(path)
	require.NoError(t, err)

	require.Len(t, report.Rows, 3)
	assert.Equal(t, 2, report.Rows[0].Line)
	assert.Equal(t, 4, report.Rows[1].Line)
	assert.Equal(t, 6, report.Rows[2].Line)
	assert.Equal(t, []string{"Minimum age to open an account is 18."}, report.Rows[2].Messages)
}

func TestImportService_DecodesLatin1(t *testing.T) {
	svc, _ := newImportFixture(t)
	latin1, err := charmap.ISO8859_1.NewEncoder().String("Nome;Idade;Sexo;Limite;Estudante\nJosé;33;Masculino;2500;Não\n")
	require.NoError(t, err)

	report, err := svc.ImportAccounts(writeImportFile(t, []byte(latin1)))

	require.NoError(t, err)
	assert.Equal(t, "Latin-1", report.Encoding)
	require.Len(t, report.Rows, 1)
	require.True(t, report.Rows[0].Accepted)
	assert.Equal(t, "José", report.Rows[0].Summary.Name)
	assert.False(t, report.Rows[0].Summary.IsStudent)
}

func TestImportService_RejectsBadFiles(t *testing.T) {
	svc, _ := newImportFixture(t)

	_, err := svc.ImportAccounts(filepath.Join(t.TempDir(), "nao-existe.csv"))
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.ImportAccounts(writeImportFile(t, []byte("Nome;Idade\nMaria;25\n")))
	assert.True(t, errors.Is(err, appErrors.ErrInvalidInput))

	_, err = svc.ImportAccounts(writeImportFile(t, []byte("")))
	assert.True(t, errors.Is(err, appErrors.ErrInvalidInput))
}

func TestParseBRDecimal(t *testing.T) {
	for raw, want := range map[string]string{
		"3000":        "3000",
		"3000.5":      "3000.5",
		"3.000,50":    "3000.5",
		"R$ 1.234,00": "1234",
	} {
		got, err := parseBRDecimal(raw)
		require.NoError(t, err, raw)
		assert.True(t, got.Equal(decimal.RequireFromString(want)), raw)
	}
	_, err := parseBRDecimal("mil")
	assert.Error(t, err)
}
