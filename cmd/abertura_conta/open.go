package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	appErrors "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core/errors"
	appLogger "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/form"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/presenter"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/services"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/utils"
)

// openInput são os valores de formulário vindos das flags de "abrir".
type openInput struct {
	name      string
	ageText   string
	sex       string
	limit     string
	isStudent bool
	// Emulam os controles da tela: o campo de idade só aceita dígitos e o
	// slider anda de 50 em 50 dentro da faixa.
	filterAge bool
	snapLimit bool
}

func openCmd(flags *globalFlags) *cobra.Command {
	in := openInput{}

	cmd := &cobra.Command{
		Use:   "abrir",
		Short: "Preenche e submete o formulário numa única sessão",
		Long: `Preenche o formulário com os valores das flags e submete.
Imprime o resumo da conta aberta ou as mensagens de erro; termina com
código 1 quando a submissão é rejeitada.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap(flags)
			if err != nil {
				return err
			}
			defer app.close()
			return runOpen(app.accounts, in, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.name, "nome", "", "nome do titular")
	f.StringVar(&in.ageText, "idade", "", "idade em anos")
	f.StringVar(&in.sex, "sexo", "", "sexo: masculino, feminino ou outro")
	f.StringVar(&in.limit, "limite", strconv.Itoa(form.InitialLimit), "limite de crédito em reais")
	f.BoolVar(&in.isStudent, "estudante", false, "o titular é estudante")
	f.BoolVar(&in.filterAge, "filtrar-idade", false, "mantém só os dígitos da idade (máx. 3), como o campo da tela")
	f.BoolVar(&in.snapLimit, "ajustar-limite", false, "ajusta o limite à faixa e ao passo do slider")
	return cmd
}

// runOpen executa uma sessão completa e escreve o resultado em out.
func runOpen(accounts services.AccountService, in openInput, out io.Writer) error {
	changes, err := in.changes()
	if err != nil {
		return err
	}

	state, err := accounts.OpenSession()
	if err != nil {
		return err
	}
	defer func() {
		if err := accounts.CloseSession(state.ID); err != nil {
			appLogger.Warnf("Falha ao encerrar sessão %s: %v", state.ID, err)
		}
	}()

	if _, err := accounts.Update(state.ID, changes); err != nil {
		return err
	}

	receipt, err := accounts.Submit(state.ID)
	if err != nil {
		var ve *appErrors.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		fmt.Fprintln(out, ve.Message)
		fmt.Fprintln(out, presenter.ErrorsText(form.ErrorsFromStringMap(ve.Fields).Messages()))
		return errRejected
	}

	fmt.Fprintln(out, receipt.Title)
	fmt.Fprintln(out, receipt.Text)
	return nil
}

func (in openInput) changes() (form.Changes, error) {
	sex, err := form.ParseSex(in.sex)
	if err != nil {
		return form.Changes{}, appErrors.WrapErrorf(appErrors.ErrInvalidInput, "--sexo: %v", err)
	}
	limit, err := decimal.NewFromString(in.limit)
	if err != nil {
		return form.Changes{}, appErrors.WrapErrorf(appErrors.ErrInvalidInput, "--limite deve ser numérico: %q", in.limit)
	}
	if in.snapLimit {
		limit = utils.SnapLimit(limit)
	}
	ageText := in.ageText
	if in.filterAge {
		ageText = utils.SanitizeAgeInput(ageText)
	}

	name, student := in.name, in.isStudent
	return form.Changes{
		Name:      &name,
		AgeText:   &ageText,
		Sex:       &sex,
		Limit:     &limit,
		IsStudent: &student,
	}, nil
}
