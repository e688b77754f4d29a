package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"authd/internal/auth"
	"authd/internal/config"
	"authd/internal/httpapi"
	"authd/internal/manager"
	"authd/internal/store"
	"authd/internal/store/memstore"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(g *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Example: "  authd serve --mongo-uri mongodb://localhost:27017\n" +
			"  MONGO_URI=memory://dev authd serve --env development",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			log, err := g.logger(cmd, cfg)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, log, nil)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "HTTP listen address (defaults AUTHD_ADDR or :PORT)")
	return cmd
}

// serve runs the API until ctx is canceled. onListen, if set, receives the
// bound address. A configuration error is returned before listening.
func serve(ctx context.Context, cfg config.Config, log zerolog.Logger, onListen func(net.Addr)) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	d := dialerFor(cfg.MongoURI)
	if md, ok := d.(*memstore.Dialer); ok {
		seedMemory(ctx, md, cfg, log)
	}

	mgr := manager.NewWithConfig(cfg.Manager(d, &log))
	if err := mgr.Start(); err != nil {
		return err
	}
	svc := auth.New(mgr, auth.Config{Token: cfg.Token, Logger: &log})

	httpapi.SetLogger(log)
	httpapi.SetEnvironment(cfg.Env)
	httpapi.SetCORSOptions(*cfg.CORSEnabled, cfg.CORSOrigins, nil, nil)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetLoginTimeoutSeconds(cfg.LoginTimeoutSeconds)
	// Handlers get their own base so Shutdown can drain them; it is canceled
	// only when the drain window runs out.
	reqCtx, cancelReq := context.WithCancel(context.Background())
	defer cancelReq()
	httpapi.SetBaseContext(reqCtx)

	srv := &http.Server{
		Handler:           httpapi.NewMux(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		_ = mgr.Close(context.Background())
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}
	if onListen != nil {
		onListen(ln.Addr())
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Str("env", cfg.Env).Msg("authd listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
		// Stragglers answer 503 once their context ends.
		cancelReq()
		fctx, fcancel := context.WithTimeout(context.Background(), time.Second)
		if err := srv.Shutdown(fctx); err != nil {
			_ = srv.Close()
		}
		fcancel()
	}
	cctx, ccancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer ccancel()
	if err := mgr.Close(cctx); err != nil {
		log.Warn().Err(err).Msg("store close error")
	}
	log.Info().Msg("authd stopped")
	return serveErr
}

// seedMemory inserts the development user into an in-memory store so a
// memory:// target can serve logins without a separate seed run.
func seedMemory(ctx context.Context, d *memstore.Dialer, cfg config.Config, log zerolog.Logger) {
	h, err := d.Dial(ctx, cfg.MongoURI, store.Options{})
	if err != nil {
		return
	}
	defer h.Close(ctx)
	_, err = auth.SeedUser(ctx, h.Users(), defaultSeedEmail, defaultSeedPassword, cfg.BcryptCost)
	if err != nil && !errors.Is(err, store.ErrDuplicateEmail) {
		log.Warn().Err(err).Msg("seed memory store")
	}
}
