package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Informações de versão definidas no build (-ldflags "-X main.version=...").
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// errRejected encerra com código 1 sem mensagem extra: os erros já foram impressos.
var errRejected = errors.New("submissão rejeitada")

type globalFlags struct {
	envPath string
	locale  string
}

func main() {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "abertura_conta",
		Short: "Formulário de abertura de conta",
		Long: `Abertura de Conta coleta nome, idade, sexo, limite de crédito e
indicador de estudante, valida os campos a cada alteração e, na
submissão, exibe o resumo da conta aberta.

Pode ser usado como API HTTP (servir) ou numa sessão única pela linha
de comando (abrir).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.envPath, "env", ".env", "arquivo .env com a configuração")
	rootCmd.PersistentFlags().StringVar(&flags.locale, "idioma", "", "idioma das mensagens (en ou pt-BR); sobrescreve APP_LOCALE")

	rootCmd.AddCommand(
		serveCmd(flags),
		openCmd(flags),
		exportCmd(flags),
		importCmd(flags),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errRejected) {
			fmt.Fprintf(os.Stderr, "Erro: %s\n", err)
		}
		os.Exit(1)
	}
}
