package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core"
)

// log é o logger global. Antes de SetupLogger ele só emite avisos em stderr,
// o que mantém testes e comandos curtos silenciosos.
var log = newDefaultLogger()

func newDefaultLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	return l
}

// SetupLogger inicializa o logger global da aplicação.
// Deve ser chamado uma vez no início.
func SetupLogger(cfg *core.Config) error {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
		fmt.Fprintf(os.Stderr, "Nível de log inválido '%s', usando INFO: %v\n", cfg.LogLevel, err)
	}
	l.SetLevel(level)

	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00", // ISO8601 com milissegundos
	})

	var writers []io.Writer
	logFilePath := ""
	if cfg.LogToFile {
		logFilePath = filepath.Join(cfg.LogDir, strings.ToLower(strings.ReplaceAll(cfg.AppName, " ", "_"))+".log")
		logDirAbs, _ := filepath.Abs(cfg.LogDir)
		if err := os.MkdirAll(logDirAbs, os.ModePerm); err != nil {
			return fmt.Errorf("falha ao criar diretório de log '%s': %w", logDirAbs, err)
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   logFilePath,
			MaxSize:    maxSizeMB(cfg.LogMaxBytes),
			MaxBackups: cfg.LogBackupCount,
			MaxAge:     28, // dias
			Compress:   true,
		})
	}
	if cfg.LogToConsole {
		writers = append(writers, os.Stderr)
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}
	l.SetOutput(io.MultiWriter(writers...))

	log = l
	log.Infof("Logger configurado. Nível: %s. Arquivo: %s", level.String(), logFilePath)
	return nil
}

// maxSizeMB converte bytes para o MaxSize do lumberjack (megabytes, mínimo 1).
func maxSizeMB(bytes int) int {
	mb := bytes / (1024 * 1024)
	if mb < 1 {
		return 1
	}
	return mb
}

// SetOutput redireciona o logger global; usado por testes que inspecionam a saída.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// SetLevel ajusta o nível do logger global.
func SetLevel(level logrus.Level) {
	log.SetLevel(level)
}

// Funções de logging exportadas (Debug, Info, Warn, Error, Fatal)
func Debug(args ...interface{})                 { log.Debug(args...) }
func Debugf(format string, args ...interface{}) { log.Debugf(format, args...) }
func Info(args ...interface{})                  { log.Info(args...) }
func Infof(format string, args ...interface{})  { log.Infof(format, args...) }
func Warn(args ...interface{})                  { log.Warn(args...) }
func Warnf(format string, args ...interface{})  { log.Warnf(format, args...) }
func Error(args ...interface{})                 { log.Error(args...) }
func Errorf(format string, args ...interface{}) { log.Errorf(format, args...) }
func Fatal(args ...interface{})                 { log.Fatal(args...) }
func Fatalf(format string, args ...interface{}) { log.Fatalf(format, args...) }

// WithFields devolve uma entry com campos estruturados.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return log.WithFields(fields)
}
