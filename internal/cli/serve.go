package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	httpapi "github.com/tbourn/resume-gate/internal/http"
	"github.com/tbourn/resume-gate/internal/observability"
	"github.com/tbourn/resume-gate/internal/sysutil"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Run the HTTP server until SIGINT or SIGTERM.

Configuration comes from the environment (see PORT, STORE_DRIVER,
RESUME_PATH, EMAIL_USER and friends); the --env-file is loaded first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rootOpts, nil)
		},
	}
}

// runServe wires the server and blocks until ctx is done. When ready is
// non-nil it receives the bound address once the listener is open.
func runServe(ctx context.Context, opts *RootOptions, ready chan<- string) error {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	sysutil.SetupLogger(nil, cfg.LogLevel, cfg.LogPretty)
	gin.SetMode(cfg.GinMode)

	shutdownOTel, err := observability.SetupOTel(ctx, cfg, opts.Version)
	if err != nil {
		return WrapExitError(ExitFailure, "tracing setup failed", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Error().Err(err).Msg("otel shutdown failed")
		}
	}()

	store, closeStore, err := opts.OpenStore(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "open request store", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error().Err(err).Msg("store close failed")
		}
	}()

	r := gin.New()
	reqSvc := httpapi.RegisterRoutes(r, store, opts.NewSender(cfg.Mail), cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return WrapExitError(ExitFailure, "listen", err)
	}
	if ready != nil {
		ready <- ln.Addr().String()
	}

	log.Info().
		Str("addr", ln.Addr().String()).
		Str("store", cfg.Store.Driver).
		Bool("mail", cfg.Mail.Enabled()).
		Bool("signed_links", cfg.Links.Signed()).
		Bool("admin_auth", cfg.Admin.Enabled()).
		Str("version", opts.Version).
		Msg("server starting")

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown requested")
	case err := <-errCh:
		if err != nil {
			return WrapExitError(ExitFailure, "server failed", err)
		}
		return nil
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return WrapExitError(ExitFailure, "graceful shutdown failed", err)
	}
	// Download alerts outlive their requests; let them finish.
	if err := reqSvc.Wait(sctx); err != nil {
		log.Warn().Err(err).Msg("background notifications still running at exit")
	}
	log.Info().Msg("server stopped")
	return nil
}
