package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core"
	appErrors "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core/errors"
	appLogger "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/data"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/form"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/metrics"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/repositories"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/services"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/session"
)

// application reúne as dependências montadas a partir da configuração.
type application struct {
	cfg      *core.Config
	db       *gorm.DB
	registry *prometheus.Registry
	sessions *session.Manager
	audit    services.AuditLogService // nil com APP_AUDIT_ENABLED=false
	accounts services.AccountService
	exports  services.ExportService // nil sem auditoria
	imports  services.ImportService
}

// bootstrap carrega a configuração, o logger, o banco (se houver auditoria) e os serviços.
func bootstrap(flags *globalFlags) (*application, error) {
	cfg, err := core.LoadConfig(flags.envPath)
	if err != nil {
		return nil, appErrors.WrapErrorf(appErrors.ErrConfiguration, "erro ao carregar configuração: %v", err)
	}
	if flags.locale != "" {
		if flags.locale != "en" && flags.locale != "pt-BR" {
			return nil, appErrors.WrapErrorf(appErrors.ErrInvalidInput, "--idioma inválido '%s': use 'en' ou 'pt-BR'", flags.locale)
		}
		cfg.AppLocale = flags.locale
	}

	if err := appLogger.SetupLogger(cfg); err != nil {
		return nil, appErrors.WrapErrorf(appErrors.ErrConfiguration, "erro ao configurar logger: %v", err)
	}
	appLogger.Infof("Iniciando %s v%s...", cfg.AppName, cfg.AppVersion)
	appLogger.Debugf("Modo Debug: %t", cfg.AppDebug)

	app := &application{cfg: cfg, registry: prometheus.NewRegistry()}
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if cfg.AuditEnabled {
		db, err := data.InitializeDB(cfg)
		if err != nil {
			return nil, appErrors.WrapErrorf(appErrors.ErrDatabase, "erro ao inicializar banco de dados: %v", err)
		}
		app.db = db
		app.audit = services.NewAuditLogService(repositories.NewGormAuditLogRepository(db))
		app.exports = services.NewExportService(app.audit, cfg)
	} else {
		appLogger.Info("Trilha de auditoria desabilitada (APP_AUDIT_ENABLED=false).")
	}

	tag := form.ParseLanguage(cfg.AppLocale)
	app.sessions = session.NewManager(session.Options{
		Timeout:         cfg.FormSessionTimeout,
		CleanupInterval: cfg.FormSessionCleanupInterval,
		CleanupEnabled:  cfg.FormSessionCleanupEnabled,
		NewController: func() *form.Controller {
			return form.NewController(form.WithValidator(form.NewValidator(tag)))
		},
	})
	app.accounts = services.NewAccountService(app.sessions, app.audit, metrics.New(app.registry, app.sessions.Count))
	app.imports = services.NewImportService(app.accounts, app.audit)

	appLogger.Info("Todos os serviços foram inicializados.")
	return app, nil
}

// close encerra as sessões e a conexão com o banco.
func (a *application) close() {
	a.sessions.Shutdown()
	if a.db == nil {
		return
	}
	if err := data.CloseDB(a.db); err != nil {
		appLogger.Errorf("Erro ao fechar conexão com banco de dados: %v", err)
	}
}
