package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	appErrors "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core/errors"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/repositories"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/services"
)

type exportInput struct {
	format    string
	output    string
	action    string
	severity  string
	sessionID string
	since     string
	until     string
}

func exportCmd(flags *globalFlags) *cobra.Command {
	in := exportInput{}

	cmd := &cobra.Command{
		Use:   "exportar",
		Short: "Exporta a trilha de auditoria para CSV ou XLSX",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap(flags)
			if err != nil {
				return err
			}
			defer app.close()

			if app.exports == nil {
				return appErrors.WrapErrorf(appErrors.ErrConfiguration, "trilha de auditoria desabilitada; nada para exportar")
			}
			path, err := runExport(app.exports, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Auditoria exportada para %s\n", path)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.format, "formato", services.ExportFormatCSV, "formato do arquivo: csv ou xlsx")
	f.StringVar(&in.output, "saida", "", "arquivo de saída (relativo a APP_EXPORT_DIR)")
	f.StringVar(&in.action, "acao", "", "filtra pela ação (ex: CONTA_ABERTA)")
	f.StringVar(&in.severity, "severidade", "", "filtra pela severidade")
	f.StringVar(&in.sessionID, "sessao", "", "filtra pelo ID da sessão")
	f.StringVar(&in.since, "desde", "", "data inicial AAAA-MM-DD")
	f.StringVar(&in.until, "ate", "", "data final AAAA-MM-DD")
	return cmd
}

func runExport(exports services.ExportService, in exportInput) (string, error) {
	filter, err := in.filter()
	if err != nil {
		return "", err
	}
	return exports.ExportAuditLogs(filter, in.format, in.output)
}

func (in exportInput) filter() (repositories.AuditLogFilter, error) {
	filter := repositories.AuditLogFilter{
		Action:    in.action,
		Severity:  in.severity,
		SessionID: in.sessionID,
	}
	var err error
	if filter.StartDate, err = parseDate("--desde", in.since); err != nil {
		return filter, err
	}
	if filter.EndDate, err = parseDate("--ate", in.until); err != nil {
		return filter, err
	}
	return filter, nil
}

func parseDate(flag, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	if err != nil {
		return nil, appErrors.WrapErrorf(appErrors.ErrInvalidInput, "%s deve estar no formato AAAA-MM-DD: %q", flag, value)
	}
	return &t, nil
}
