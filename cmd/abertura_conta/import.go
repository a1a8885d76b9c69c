package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core"
	appErrors "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core/errors"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/services"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/utils"
)

func importCmd(flags *globalFlags) *cobra.Command {
	var filePath, reportPath string

	cmd := &cobra.Command{
		Use:   "importar",
		Short: "Abre contas em lote a partir de uma planilha CSV",
		Long: `Lê uma planilha separada por ponto e vírgula com as colunas
Nome;Idade;Sexo;Limite;Estudante (UTF-8 ou Latin-1) e submete cada linha
numa sessão de formulário própria.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if filePath == "" {
				return appErrors.WrapErrorf(appErrors.ErrInvalidInput, "--arquivo é obrigatório")
			}
			app, err := bootstrap(flags)
			if err != nil {
				return err
			}
			defer app.close()
			return runImport(app.imports, app.cfg, filePath, reportPath, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&filePath, "arquivo", "", "planilha CSV de entrada")
	cmd.Flags().StringVar(&reportPath, "relatorio", "", "grava o relatório (.csv ou .xlsx) em APP_EXPORT_DIR")
	return cmd
}

func runImport(imports services.ImportService, cfg *core.Config, filePath, reportPath string, out io.Writer) error {
	report, err := imports.ImportAccounts(filePath)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s (%s): %d aceita(s), %d rejeitada(s)\n", report.File, report.Encoding, report.Accepted, report.Rejected)
	for _, row := range report.Rows {
		if !row.Accepted {
			fmt.Fprintf(out, "  linha %d: %s\n", row.Line, strings.Join(row.Messages, "; "))
		}
	}

	if reportPath == "" {
		return nil
	}
	input, err := utils.NewSliceDataInput(report.Table(), "Importacao")
	if err != nil {
		return err
	}
	var saved string
	if strings.EqualFold(filepath.Ext(reportPath), ".xlsx") {
		saved, err = utils.ExportToXLSX([]utils.DataInput{input}, reportPath, cfg, &utils.ExportOptions{CreateBackup: true})
	} else {
		saved, err = utils.ExportToCSV(input, reportPath, cfg, &utils.ExportOptions{CreateBackup: true})
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Relatório gravado em %s\n", saved)
	return nil
}
