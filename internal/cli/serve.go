package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/edgekit/bindlike/host"
	"github.com/edgekit/bindlike/internal/gateway"
	"github.com/edgekit/bindlike/wasmhost"
)

var (
	serveConfig    string
	serveListen    string
	serveWasm      string
	serveWatch     bool
	serveLogLevel  string
	serveLogFormat string
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveConfig, "config", "c", "bindlike.yaml", "Path to binding config YAML")
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", ":8787", "HTTP listen address")
	serveCmd.Flags().StringVarP(&serveWasm, "wasm", "w", "", "Path to the compute unit wasm file (required)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", true, "Reload bindings when config or certificate files change")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "info", "Log level (trace|debug|info|warn|error)")
	serveCmd.Flags().StringVar(&serveLogFormat, "log-format", "console", "Log format (console|json)")
	serveCmd.MarkFlagRequired("wasm")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a compute unit over HTTP",
	Long:  "Provisions the binding environment from the config file, loads the\nwasm compute unit, and dispatches every incoming request to it.\nWith --watch, config and certificate changes take effect without a restart.",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	log, err := newLogger(serveLogLevel, serveLogFormat)
	if err != nil {
		return err
	}

	reloader, err := host.NewReloader(serveConfig, log)
	if err != nil {
		return fmt.Errorf("load bindings: %w", err)
	}

	unit, err := wasmhost.LoadUnit(serveWasm, log)
	if err != nil {
		return fmt.Errorf("load compute unit: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if serveWatch {
		go func() {
			if err := reloader.Run(ctx); err != nil {
				log.Warn().Err(err).Msg("binding hot-reload disabled")
			}
		}()
	}

	srv := &http.Server{
		Addr:    serveListen,
		Handler: gateway.New(unit, reloader, log),
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", serveListen).Str("wasm", serveWasm).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
