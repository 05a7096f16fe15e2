package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Hadidomena/inqwheel/config"
	"github.com/Hadidomena/inqwheel/email"
	"github.com/Hadidomena/inqwheel/handlers"
	"github.com/Hadidomena/inqwheel/jwt_auth"
	"github.com/Hadidomena/inqwheel/logging"
	"github.com/Hadidomena/inqwheel/middleware"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the codec and keybook as a JSON API",
		Long: `Serve exposes /api/encode, /api/decode and /api/wheels, plus the keybook
(/api/keys) when database.dsn is set and /api/send when smtp.addr is set.
When auth.jwt_secret is set, the keybook routes and any key_name lookup need
a bearer token with the "keys" scope, and /api/send needs the "send" scope.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", a.cfg.Server.Addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", a.cfg.Server.Addr, err)
			}
			return a.serve(ctx, ln)
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	a.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}

// serve runs the API on ln until ctx is done, then drains open requests.
func (a *app) serve(ctx context.Context, ln net.Listener) error {
	logger := logging.Component(a.logger, "server")

	hc, release, err := a.handlerContext(ctx)
	if err != nil {
		ln.Close()
		return err
	}
	defer release()

	chain := []func(http.Handler) http.Handler{
		middleware.RequestLogger(logging.Component(a.logger, "http")),
		middleware.SecurityHeadersMiddleware(a.cfg.Server.Production),
		middleware.CORSMiddleware(a.cfg.Server.AllowedOrigins),
	}
	if a.cfg.Server.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(ctx, a.cfg.Server.RateLimit, a.cfg.Server.RateWindow)
		chain = append(chain, limiter.RateLimitMiddleware)
	}

	srv := &http.Server{
		Handler:           middleware.Chain(hc.Routes(), chain...),
		ReadTimeout:       a.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: a.cfg.Server.ReadTimeout,
		WriteTimeout:      2 * a.cfg.Server.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// handlerContext wires the optional keybook, authority and mailer from config.
func (a *app) handlerContext(ctx context.Context) (*handlers.HandlerContext, func(), error) {
	cfg := a.cfg
	hc := &handlers.HandlerContext{
		Strict: cfg.Codec.Strict,
		Logger: logging.Component(a.logger, "api"),
	}
	if cfg.Codec.SigningSecret != "" {
		hc.SigningSecret = []byte(cfg.Codec.SigningSecret)
	}

	release := func() {}
	if cfg.Database.DSN != "" {
		store, closeStore, err := a.openStore(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		hc.Keys = store
		release = closeStore
	} else {
		a.logger.Warn("database.dsn not set; keybook routes disabled")
	}

	if cfg.Auth.JWTSecret != "" {
		authority, err := jwt_auth.NewAuthority(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		if err != nil {
			release()
			return nil, nil, err
		}
		hc.Auth = authority
	} else {
		a.logger.Warn("auth.jwt_secret not set; keybook routes are unauthenticated")
	}

	if cfg.SMTP.Addr != "" {
		hc.Mailer = email.NewMailer(smtpConfig(cfg.SMTP))
	}

	return hc, release, nil
}

func smtpConfig(c config.SMTPConfig) email.SMTPConfig {
	return email.SMTPConfig{
		Addr:      c.Addr,
		Username:  c.Username,
		Password:  c.Password,
		From:      c.From,
		TLSServer: c.TLSServer,
	}
}
