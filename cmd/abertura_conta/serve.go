package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	appLogger "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/httpserver"
	httptransport "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/transport/http"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "servir",
		Short: "Inicia a API HTTP de sessões de formulário",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap(flags)
			if err != nil {
				return err
			}
			defer app.close()

			if addr == "" {
				addr = app.cfg.HTTPAddr
			}
			app.sessions.StartCleanupGoroutine()

			handler := httptransport.NewRouter(httptransport.NewHandler(app.accounts, app.registry))
			srv := httpserver.New(addr, handler)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				appLogger.Infof("API HTTP ouvindo em %s", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			appLogger.Info("Encerrando API HTTP...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			appLogger.Info("Aplicação encerrada normalmente.")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "endereco", "", "endereço de escuta (padrão: APP_HTTP_ADDR)")
	return cmd
}
