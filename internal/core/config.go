package core

import (
	"fmt"
	"log" // Usado para logs iniciais antes que o logger da aplicação esteja configurado
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config armazena todas as configurações da aplicação.
type Config struct {
	AppName    string
	AppVersion string
	AppDebug   bool
	// AppLocale define o idioma das mensagens de validação e do resumo ("en" ou "pt-BR").
	AppLocale string

	// Database (trilha de auditoria)
	AuditEnabled bool
	DBEngine     string
	DBName       string
	DBHost       string
	DBPort       int
	DBUser       string
	DBPassword   string

	// Logging
	LogDir         string
	LogLevel       string
	LogMaxBytes    int
	LogBackupCount int
	LogToConsole   bool
	LogToFile      bool

	// Sessões de formulário
	FormSessionTimeout         time.Duration
	FormSessionCleanupInterval time.Duration
	FormSessionCleanupEnabled  bool

	// HTTP
	HTTPAddr string

	// Export
	ExportDir string
}

// LoadConfig carrega as configurações do arquivo .env especificado ou encontrado na árvore de diretórios.
func LoadConfig(envPath string) (*Config, error) {
	foundEnvPath, err := findEnvFile(envPath)
	if err != nil {
		// Sem .env: seguimos apenas com variáveis de ambiente e defaults.
		log.Printf("Aviso: Arquivo .env em '%s' não encontrado: %v. Usando variáveis de ambiente existentes ou defaults.", envPath, err)
	} else {
		log.Printf("Carregando configurações de: %s", foundEnvPath)
		if err := godotenv.Load(foundEnvPath); err != nil {
			log.Printf("Aviso: Erro ao carregar arquivo .env de '%s': %v.", foundEnvPath, err)
		}
	}

	cfg := FromEnv()

	if cfg.AppLocale != "en" && cfg.AppLocale != "pt-BR" {
		return nil, fmt.Errorf("APP_LOCALE inválido '%s': use 'en' ou 'pt-BR'", cfg.AppLocale)
	}
	if cfg.FormSessionTimeout <= 0 {
		return nil, fmt.Errorf("APP_FORM_SESSION_TIMEOUT deve ser positivo, recebido %v", cfg.FormSessionTimeout)
	}

	if cfg.LogToFile {
		if err := ensureDir(cfg.LogDir); err != nil {
			return nil, fmt.Errorf("falha ao criar diretório de log essencial '%s': %w", cfg.LogDir, err)
		}
	}
	if cfg.AuditEnabled && cfg.DBEngine == "sqlite" {
		sqliteDir := filepath.Dir(cfg.DBName)
		if sqliteDir != "." && sqliteDir != string(filepath.Separator) {
			if err := ensureDir(sqliteDir); err != nil {
				return nil, fmt.Errorf("falha ao criar diretório para banco de dados SQLite '%s': %w", sqliteDir, err)
			}
		}
	}

	log.Println("Configurações carregadas e validadas.")
	return cfg, nil
}

// FromEnv monta a Config somente a partir das variáveis de ambiente, sem validar nem criar diretórios.
func FromEnv() *Config {
	cfg := &Config{}

	cfg.AppName = getEnv("APP_NAME", "Abertura de Conta GO")
	cfg.AppVersion = getEnv("APP_VERSION", "1.0.0-go")
	cfg.AppDebug = getEnvAsBool("APP_DEBUG", false)
	cfg.AppLocale = getEnv("APP_LOCALE", "en")

	cfg.AuditEnabled = getEnvAsBool("APP_AUDIT_ENABLED", true)
	cfg.DBEngine = getEnv("APP_DB_ENGINE", "sqlite")
	cfg.DBName = getEnv("APP_DB_NAME", "abertura_conta_go.db")
	cfg.DBHost = getEnv("APP_DB_HOST", "localhost")
	cfg.DBPort = getEnvAsInt("APP_DB_PORT", 5432)
	cfg.DBUser = getEnv("APP_DB_USER", "user")
	cfg.DBPassword = getEnv("APP_DB_PASSWORD", "password")

	cfg.LogDir = getEnv("APP_LOG_DIR", "./app_logs")
	cfg.LogLevel = strings.ToUpper(getEnv("APP_LOG_LEVEL", "INFO"))
	cfg.LogMaxBytes = getEnvAsInt("APP_LOG_MAX_BYTES", 5*1024*1024) // 5MB
	cfg.LogBackupCount = getEnvAsInt("APP_LOG_BACKUP_COUNT", 7)
	cfg.LogToConsole = getEnvAsBool("APP_LOG_TO_CONSOLE", true)
	cfg.LogToFile = getEnvAsBool("APP_LOG_TO_FILE", true)

	cfg.FormSessionTimeout = getEnvAsDuration("APP_FORM_SESSION_TIMEOUT", 1800)                 // 30 minutos
	cfg.FormSessionCleanupInterval = getEnvAsDuration("APP_FORM_SESSION_CLEANUP_INTERVAL", 300) // 5 minutos
	cfg.FormSessionCleanupEnabled = getEnvAsBool("APP_FORM_SESSION_CLEANUP_ENABLED", true)

	cfg.HTTPAddr = getEnv("APP_HTTP_ADDR", ":8080")

	cfg.ExportDir = getEnv("APP_EXPORT_DIR", "./app_exports")
	return cfg
}

// findEnvFile tenta localizar o arquivo .env.
// Primeiro no path fornecido, depois subindo na árvore de diretórios a partir do CWD.
func findEnvFile(envPath string) (string, error) {
	if _, err := os.Stat(envPath); err == nil {
		absPath, _ := filepath.Abs(envPath)
		return absPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("não foi possível obter o diretório de trabalho atual: %w", err)
	}

	for i := 0; i < 5; i++ {
		tryPath := filepath.Join(cwd, ".env")
		if _, err := os.Stat(tryPath); err == nil {
			return tryPath, nil
		}
		parent := filepath.Dir(cwd)
		if parent == cwd { // Chegou à raiz
			break
		}
		cwd = parent
	}
	return "", fmt.Errorf("arquivo .env não encontrado no caminho '%s' ou nos diretórios pais", envPath)
}

// ensureDir garante que um diretório exista, criando-o se necessário.
func ensureDir(dirPath string) error {
	absPath, err := filepath.Abs(dirPath)
	if err != nil {
		return fmt.Errorf("não foi possível resolver o caminho absoluto para '%s': %w", dirPath, err)
	}
	if err := os.MkdirAll(absPath, os.ModePerm); err != nil {
		return fmt.Errorf("não foi possível criar o diretório '%s': %w", absPath, err)
	}
	return nil
}

// getEnv recupera o valor de uma variável de ambiente ou retorna um fallback.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration lê uma duração em segundos.
func getEnvAsDuration(key string, fallbackSeconds int) time.Duration {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return time.Duration(value) * time.Second
	}
	return time.Duration(fallbackSeconds) * time.Second
}
