package data

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/data/models"
)

// InitializeDB abre a conexão da trilha de auditoria e executa as migrações automáticas.
func InitializeDB(cfg *core.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	appLogger.Infof("Inicializando conexão com banco de dados: %s", cfg.DBEngine)

	switch cfg.DBEngine {
	case "postgresql":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)
		dialector = postgres.Open(dsn)
		appLogger.Infof("Conectando ao PostgreSQL: host=%s dbname=%s user=%s port=%d", cfg.DBHost, cfg.DBName, cfg.DBUser, cfg.DBPort)
	case "sqlite":
		dialector = sqlite.Open(cfg.DBName + "?_foreign_keys=on")
		appLogger.Infof("Usando banco de dados SQLite: %s", cfg.DBName)
	default:
		return nil, fmt.Errorf("motor de banco de dados não suportado: %s", cfg.DBEngine)
	}

	db, err := gorm.Open(dialector, gormConfig(cfg.AppDebug))
	if err != nil {
		appLogger.Errorf("Falha ao conectar ao banco de dados %s: %v", cfg.DBEngine, err)
		return nil, fmt.Errorf("falha ao abrir conexão com %s: %w", cfg.DBEngine, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("falha ao configurar pool de conexões: %w", err)
	}
	if cfg.DBEngine == "sqlite" {
		// SQLite serializa escritas; uma conexão também mantém ":memory:" num único banco.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
		sqlDB.SetConnMaxIdleTime(10 * time.Minute)
	}
	appLogger.Info("Conexão com banco de dados estabelecida.")

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func gormConfig(debug bool) *gorm.Config {
	gormLogLevel := gormlogger.Silent
	if debug {
		gormLogLevel = gormlogger.Info // Loga todas as queries SQL em modo debug
	}
	return &gorm.Config{
		Logger: gormlogger.New(
			appLogger.WithFields(logrus.Fields{"component": "gorm"}),
			gormlogger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  gormLogLevel,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// Migrate cria/atualiza as tabelas da trilha de auditoria.
func Migrate(db *gorm.DB) error {
	appLogger.Info("Executando migrações automáticas do GORM...")
	if err := db.AutoMigrate(&models.AuditLogEntry{}); err != nil {
		appLogger.Errorf("Falha durante AutoMigrate: %v", err)
		return fmt.Errorf("falha na migração do esquema do banco de dados: %w", err)
	}
	appLogger.Info("Migrações automáticas do GORM concluídas.")
	return nil
}

// CloseDB fecha a conexão com o banco de dados.
func CloseDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		appLogger.Errorf("Erro ao obter *sql.DB para fechar: %v", err)
		return err
	}
	appLogger.Info("Fechando conexão com o banco de dados...")
	return sqlDB.Close()
}
